// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"fmt"
	"testing"
	"time"

	"socialnet/internal/database"
	"socialnet/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// NewTestDB returns a migrated in-memory SQLite database private to t.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.ConnectSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// CreateUser inserts an active user named username with a placeholder password hash.
func CreateUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	u := &models.User{
		Username: username,
		Email:    fmt.Sprintf("%s@example.com", username),
		Password: "$2a$10$placeholderplaceholderplaceholderplaceholderplacehold",
		IsActive: true,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

// Follow inserts the edge from -> to.
func Follow(t *testing.T, db *gorm.DB, from, to uint) {
	t.Helper()
	require.NoError(t, db.Create(&models.UserFriend{UserID: from, FriendID: to}).Error)
}

// CreatePost inserts a post authored by userID.
func CreatePost(t *testing.T, db *gorm.DB, userID uint, title string) *models.Post {
	t.Helper()
	p := &models.Post{Title: title, Content: title + " body", UserID: userID}
	require.NoError(t, db.Create(p).Error)
	return p
}

// LikeAt inserts a like with a fixed timestamp.
func LikeAt(t *testing.T, db *gorm.DB, userID, postID uint, at time.Time) {
	t.Helper()
	require.NoError(t, db.Create(&models.Like{UserID: userID, PostID: postID, CreatedAt: at}).Error)
}
