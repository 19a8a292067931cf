package models

import (
	"time"
)

// UserFriend is a directed follow edge: UserID follows FriendID.
// The pair is unique; self-edges are rejected before they reach the store.
type UserFriend struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_user_friend_pair;index" json:"user_id"`
	FriendID  uint      `gorm:"not null;uniqueIndex:idx_user_friend_pair;index" json:"friend_id"`
	CreatedAt time.Time `json:"created_at"`

	User   User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Friend User `gorm:"foreignKey:FriendID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for GORM
func (UserFriend) TableName() string {
	return "user_friends"
}

// Relationship is the viewer-relative classification of a candidate user.
// It is derived from the two possible edges and never stored.
type Relationship struct {
	IsFollower bool `json:"is_follower"`
	IsFollowed bool `json:"is_followed"`
	IsFriends  bool `json:"is_friends"`
}

// NewRelationship builds the classification from the two edge tests.
// follower: candidate -> viewer, followed: viewer -> candidate.
func NewRelationship(follower, followed bool) Relationship {
	return Relationship{
		IsFollower: follower,
		IsFollowed: followed,
		IsFriends:  follower && followed,
	}
}

// RelationshipView selects which relationship class a listing returns.
type RelationshipView string

const (
	ViewFriends   RelationshipView = "friends"
	ViewFollowers RelationshipView = "followers"
	ViewFollowed  RelationshipView = "followed"
)

// Includes reports whether a candidate with rel belongs to the view.
func (v RelationshipView) Includes(rel Relationship) bool {
	switch v {
	case ViewFriends:
		return rel.IsFriends
	case ViewFollowers:
		return rel.IsFollower
	case ViewFollowed:
		return rel.IsFollowed
	default:
		return false
	}
}

// Valid reports whether v names a known view.
func (v RelationshipView) Valid() bool {
	switch v {
	case ViewFriends, ViewFollowers, ViewFollowed:
		return true
	}
	return false
}
