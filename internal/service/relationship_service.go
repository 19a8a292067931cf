// Package service contains the business logic behind the HTTP handlers.
package service

import (
	"context"

	"socialnet/internal/featureflags"
	"socialnet/internal/models"
	"socialnet/internal/observability"
	"socialnet/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// AnnotatedUser is a candidate together with its relationship to the viewer.
type AnnotatedUser struct {
	User         models.User
	Relationship models.Relationship
}

// UserPage is one page of a user listing. Count is the size of the whole
// listing, not of Results.
type UserPage struct {
	Results []AnnotatedUser
	Count   int64
}

// ListRelationshipsInput selects one relationship view for a viewer.
type ListRelationshipsInput struct {
	ViewerID uint
	View     models.RelationshipView
	Filter   repository.UserFilter
	Limit    int
	Offset   int
}

// RelationshipService manages follow edges and classifies users relative to a viewer.
type RelationshipService struct {
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
	flags      *featureflags.Manager
}

// NewRelationshipService returns a new RelationshipService.
func NewRelationshipService(followRepo repository.FollowRepository, userRepo repository.UserRepository, flags *featureflags.Manager) *RelationshipService {
	return &RelationshipService{
		followRepo: followRepo,
		userRepo:   userRepo,
		flags:      flags,
	}
}

// AddFriend makes callerID follow targetID. It reports whether a new edge
// was created; an existing edge is not an error.
func (s *RelationshipService) AddFriend(ctx context.Context, callerID, targetID uint) (bool, error) {
	if callerID == targetID {
		return false, models.NewInvalidOperationError("you can't befriend yourself")
	}
	target, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return false, err
	}
	if !target.IsActive {
		return false, models.NewNotFoundError("User", targetID)
	}
	return s.followRepo.Add(ctx, callerID, targetID)
}

// RemoveFriend deletes the edge callerID -> targetID and reports whether it
// existed. The reverse edge is left untouched. Deactivated targets can
// still be unfollowed.
func (s *RelationshipService) RemoveFriend(ctx context.Context, callerID, targetID uint) (bool, error) {
	if callerID == targetID {
		return false, models.NewInvalidOperationError("you can't remove yourself from friends")
	}
	if _, err := s.userRepo.GetByID(ctx, targetID); err != nil {
		return false, err
	}
	return s.followRepo.Remove(ctx, callerID, targetID)
}

// Classify returns the relationship of a single candidate to the viewer.
func (s *RelationshipService) Classify(ctx context.Context, viewerID, candidateID uint) (models.Relationship, error) {
	if viewerID == 0 || viewerID == candidateID {
		return models.Relationship{}, nil
	}
	annotated, err := s.Annotate(ctx, viewerID, []models.User{{ID: candidateID}})
	if err != nil {
		return models.Relationship{}, err
	}
	return annotated[0].Relationship, nil
}

// Annotate classifies every candidate with two batch edge lookups.
// An anonymous viewer (0) gets empty relationships.
func (s *RelationshipService) Annotate(ctx context.Context, viewerID uint, candidates []models.User) ([]AnnotatedUser, error) {
	out := make([]AnnotatedUser, len(candidates))
	for i, u := range candidates {
		out[i].User = u
	}
	if viewerID == 0 || len(candidates) == 0 {
		return out, nil
	}

	ids := make([]uint, len(candidates))
	for i, u := range candidates {
		ids[i] = u.ID
	}
	followed, err := s.followRepo.FollowedAmong(ctx, viewerID, ids)
	if err != nil {
		return nil, err
	}
	followers, err := s.followRepo.FollowersAmong(ctx, viewerID, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		id := out[i].User.ID
		out[i].Relationship = models.NewRelationship(followers[id], followed[id])
	}
	return out, nil
}

// ListUsers returns a page of active users, annotated for the viewer.
func (s *RelationshipService) ListUsers(ctx context.Context, viewerID uint, filter repository.UserFilter, limit, offset int) (*UserPage, error) {
	filter.ViewerID, filter.View = 0, ""
	users, total, err := s.userRepo.ListActive(ctx, filter, limit, offset)
	if err != nil {
		return nil, err
	}
	annotated, err := s.Annotate(ctx, viewerID, users)
	if err != nil {
		return nil, err
	}
	return &UserPage{Results: annotated, Count: total}, nil
}

// ListRelationships returns the viewer's friends, followers or followed users.
// By default the view is applied before paging. With the
// legacy_relationship_paging flag a page of all active users is classified
// and filtered instead.
func (s *RelationshipService) ListRelationships(ctx context.Context, in ListRelationshipsInput) (page *UserPage, err error) {
	if !in.View.Valid() {
		return nil, models.NewValidationError("unknown relationship view")
	}
	if in.ViewerID == 0 {
		return nil, models.NewAuthenticationError("authentication required")
	}

	filter := in.Filter
	legacy := s.flags.Enabled(featureflags.LegacyRelationshipPaging, in.ViewerID)

	ctx, end := observability.StartSpan(ctx, "relationships.list",
		attribute.String("view", string(in.View)),
		attribute.Bool("legacy_paging", legacy))
	defer func() { end(err) }()

	if legacy {
		filter.ViewerID, filter.View = 0, ""
	} else {
		filter.ViewerID, filter.View = in.ViewerID, in.View
	}

	users, total, err := s.userRepo.ListActive(ctx, filter, in.Limit, in.Offset)
	if err != nil {
		return nil, err
	}
	annotated, err := s.Annotate(ctx, in.ViewerID, users)
	if err != nil {
		return nil, err
	}

	results := make([]AnnotatedUser, 0, len(annotated))
	for _, a := range annotated {
		if in.View.Includes(a.Relationship) {
			results = append(results, a)
		}
	}
	return &UserPage{Results: results, Count: total}, nil
}

// Counts returns how many users follow userID and how many it follows.
func (s *RelationshipService) Counts(ctx context.Context, userID uint) (followers, following int64, err error) {
	if followers, err = s.followRepo.CountFollowers(ctx, userID); err != nil {
		return 0, 0, err
	}
	if following, err = s.followRepo.CountFollowing(ctx, userID); err != nil {
		return 0, 0, err
	}
	return followers, following, nil
}
