package models

import (
	"time"

	"gorm.io/gorm"
)

// Post is authored content. The author is fixed at creation from the caller.
type Post struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Title     string         `gorm:"size:255;not null" json:"title"`
	Content   string         `gorm:"type:text;not null" json:"content"`
	UserID    uint           `gorm:"not null;index" json:"author"`
	User      User           `gorm:"foreignKey:UserID" json:"-"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Computed at query time, never persisted.
	AuthorUsername string   `gorm:"-" json:"author_username"`
	Likes          int64    `gorm:"-" json:"likes"`
	LikedBy        []string `gorm:"-" json:"liked_by"`
	IsLiked        bool     `gorm:"-" json:"is_liked"`
}

// Like represents a user's like on a post.
// The combination of UserID and PostID must be unique; unlike removes the row.
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_like_user_post" json:"user_id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_like_user_post;index" json:"post_id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Post Post `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
}

// PostAnalytics summarizes likes across all posts for one day.
type PostAnalytics struct {
	Date       string `json:"date"`
	TotalLikes int64  `json:"total_likes"`
	MostLikes  int64  `json:"most_likes"`
	TopPosts   []uint `json:"top_posts"`
}

// PostDailyLikes is the like count of a single post for one day.
type PostDailyLikes struct {
	Date  string `json:"date"`
	Likes int64  `json:"likes"`
}

// LikeEvent is the minimal projection of a like used for analytics.
type LikeEvent struct {
	PostID    uint
	CreatedAt time.Time
}
