package server

import (
	"time"

	"socialnet/internal/models"
	"socialnet/internal/service"
)

// UserShape selects the JSON representation of a user.
type UserShape int

const (
	ShapeList UserShape = iota
	ShapeDetail
	ShapeActivity
)

// userListView is the compact user representation. Relationship flags are
// omitted for anonymous viewers.
type userListView struct {
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	*models.Relationship
}

type userDetailView struct {
	userListView
	Email      string    `json:"email"`
	Bio        string    `json:"bio"`
	DateJoined time.Time `json:"date_joined"`
	Followers  int64     `json:"followers"`
	Following  int64     `json:"following"`
}

type userActivityView struct {
	ID          uint       `json:"id"`
	Username    string     `json:"username"`
	LastLogin   *time.Time `json:"last_login"`
	LastRequest *time.Time `json:"last_request"`
}

// userDetails carries what the detail shape needs beyond the user row.
type userDetails struct {
	Followers int64
	Following int64
}

func renderUser(shape UserShape, u *models.User, rel *models.Relationship, details userDetails) any {
	list := userListView{
		ID:           u.ID,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Relationship: rel,
	}
	switch shape {
	case ShapeDetail:
		return userDetailView{
			userListView: list,
			Email:        u.Email,
			Bio:          u.Bio,
			DateJoined:   u.CreatedAt,
			Followers:    details.Followers,
			Following:    details.Following,
		}
	case ShapeActivity:
		return userActivityView{
			ID:          u.ID,
			Username:    u.Username,
			LastLogin:   u.LastLogin,
			LastRequest: u.LastRequest,
		}
	default:
		return list
	}
}

// renderUserPage renders annotated users in the list shape. Flags are only
// attached for an authenticated viewer.
func renderUserPage(viewerID uint, users []service.AnnotatedUser) []any {
	out := make([]any, 0, len(users))
	for i := range users {
		var rel *models.Relationship
		if viewerID != 0 {
			rel = &users[i].Relationship
		}
		out = append(out, renderUser(ShapeList, &users[i].User, rel, userDetails{}))
	}
	return out
}
