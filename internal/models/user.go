// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// User represents an account. Accounts are never hard-deleted; deactivation
// clears IsActive and hides the user from listings.
type User struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Username    string     `gorm:"uniqueIndex;size:30;not null" json:"username"`
	Email       string     `gorm:"uniqueIndex;not null" json:"email"`
	Password    string     `gorm:"not null" json:"-"`
	FirstName   string     `gorm:"size:150" json:"first_name"`
	LastName    string     `gorm:"size:150" json:"last_name"`
	Bio         string     `gorm:"type:text" json:"bio"`
	IsActive    bool       `gorm:"default:true;not null;index" json:"is_active"`
	IsAdmin     bool       `gorm:"default:false;not null" json:"is_admin"`
	LastLogin   *time.Time `json:"last_login"`
	LastRequest *time.Time `json:"last_request"`
	CreatedAt   time.Time  `gorm:"index" json:"date_joined"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (User) TableName() string {
	return "users"
}
