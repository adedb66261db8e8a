package models

import "time"

// User is the account a post, comment or like belongs to. Rows are owned by
// the identity provider; this service only reads them.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"size:64;not null;uniqueIndex" json:"username"`
	Name      string    `gorm:"size:128" json:"name"`
	AvatarURL string    `gorm:"size:512" json:"avatar_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AuthorSummary is the public subset of a user embedded in post and comment payloads.
type AuthorSummary struct {
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
}

// Summary projects the user to its public fields.
func (u User) Summary() AuthorSummary {
	return AuthorSummary{ID: u.ID, Username: u.Username, Name: u.Name, AvatarURL: u.AvatarURL}
}
