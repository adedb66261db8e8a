package models

import "time"

// Post is a captioned entry with optional media. IDs are assigned in
// creation order and double as the keyset pagination cursor.
type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	AuthorID  uint      `gorm:"index;not null" json:"author_id"`
	Caption   string    `gorm:"type:text;not null" json:"caption"`
	Media     *string   `gorm:"size:1024" json:"media"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Author    User      `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}

// LikerRef identifies one user in a post's liker set.
type LikerRef struct {
	ID uint `json:"id"`
}

// PostDetail is the read-side shape of a post: author summary, liker ids
// and comments with their authors.
type PostDetail struct {
	ID           uint            `json:"id"`
	AuthorID     uint            `json:"author_id"`
	Caption      string          `json:"caption"`
	Media        *string         `json:"media"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	Author       AuthorSummary   `json:"author"`
	LikedBy      []LikerRef      `json:"liked_by"`
	LikeCount    int             `json:"like_count"`
	Comments     []CommentDetail `json:"comments"`
	CommentCount int             `json:"comment_count"`
}
