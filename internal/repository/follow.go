package repository

import (
	"context"

	"socialnet/internal/middleware"
	"socialnet/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FollowRepository stores directed follow edges (user_friends).
type FollowRepository interface {
	// Add inserts from -> to and reports whether a new edge was created.
	Add(ctx context.Context, from, to uint) (bool, error)
	// Remove deletes from -> to and reports whether an edge existed.
	Remove(ctx context.Context, from, to uint) (bool, error)
	Exists(ctx context.Context, from, to uint) (bool, error)
	// FollowedAmong returns the subset of candidates that viewer follows.
	FollowedAmong(ctx context.Context, viewer uint, candidates []uint) (map[uint]bool, error)
	// FollowersAmong returns the subset of candidates that follow viewer.
	FollowersAmong(ctx context.Context, viewer uint, candidates []uint) (map[uint]bool, error)
	CountFollowing(ctx context.Context, userID uint) (int64, error)
	CountFollowers(ctx context.Context, userID uint) (int64, error)
}

type followRepository struct {
	db *gorm.DB
}

// NewFollowRepository returns a new FollowRepository implementation.
func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

func (r *followRepository) Add(ctx context.Context, from, to uint) (bool, error) {
	if from == to {
		return false, models.NewInvalidOperationError("you can't befriend yourself")
	}
	edge := models.UserFriend{UserID: from, FriendID: to}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&edge)
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	changed := res.RowsAffected > 0
	middleware.FollowEdgeOps.WithLabelValues("add", middleware.BoolLabel(changed)).Inc()
	return changed, nil
}

func (r *followRepository) Remove(ctx context.Context, from, to uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND friend_id = ?", from, to).
		Delete(&models.UserFriend{})
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	changed := res.RowsAffected > 0
	middleware.FollowEdgeOps.WithLabelValues("remove", middleware.BoolLabel(changed)).Inc()
	return changed, nil
}

func (r *followRepository) Exists(ctx context.Context, from, to uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.UserFriend{}).
		Where("user_id = ? AND friend_id = ?", from, to).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *followRepository) FollowedAmong(ctx context.Context, viewer uint, candidates []uint) (map[uint]bool, error) {
	return r.among(ctx, "friend_id", "user_id = ? AND friend_id IN ?", viewer, candidates)
}

func (r *followRepository) FollowersAmong(ctx context.Context, viewer uint, candidates []uint) (map[uint]bool, error) {
	return r.among(ctx, "user_id", "friend_id = ? AND user_id IN ?", viewer, candidates)
}

func (r *followRepository) among(ctx context.Context, column, where string, viewer uint, candidates []uint) (map[uint]bool, error) {
	out := make(map[uint]bool, len(candidates))
	if len(candidates) == 0 {
		return out, nil
	}
	var ids []uint
	if err := readDB(r.db).WithContext(ctx).
		Model(&models.UserFriend{}).
		Where(where, viewer, candidates).
		Pluck(column, &ids).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

func (r *followRepository) CountFollowing(ctx context.Context, userID uint) (int64, error) {
	return r.count(ctx, "user_id = ?", userID)
}

func (r *followRepository) CountFollowers(ctx context.Context, userID uint) (int64, error) {
	return r.count(ctx, "friend_id = ?", userID)
}

func (r *followRepository) count(ctx context.Context, where string, userID uint) (int64, error) {
	var n int64
	if err := readDB(r.db).WithContext(ctx).
		Model(&models.UserFriend{}).
		Where(where, userID).
		Count(&n).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}
