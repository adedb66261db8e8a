package models

import "time"

// Comment represents a reply to a post. It belongs to exactly one post and one author.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"index;not null" json:"post_id"`
	AuthorID  uint      `gorm:"index;not null" json:"author_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Post      Post      `gorm:"foreignKey:PostID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Author    User      `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}

// CommentDetail is a comment together with its author summary.
type CommentDetail struct {
	ID        uint          `json:"id"`
	PostID    uint          `json:"post_id"`
	Content   string        `json:"content"`
	CreatedAt time.Time     `json:"created_at"`
	Author    AuthorSummary `json:"author"`
}
