package models

import "time"

// PostLike is one membership of a post's liker set. The composite key keeps
// each (post, user) pair unique.
type PostLike struct {
	PostID    uint      `gorm:"primaryKey;autoIncrement:false" json:"post_id"`
	UserID    uint      `gorm:"primaryKey;autoIncrement:false;index" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName pins the join table name.
func (PostLike) TableName() string {
	return "post_likes"
}
