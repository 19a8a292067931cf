package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"socialnet/internal/cache"
	"socialnet/internal/models"

	"gorm.io/gorm"
)

// UserFilter narrows the active-user listing.
type UserFilter struct {
	Search       string
	Ordering     string
	JoinedAfter  *time.Time
	JoinedBefore *time.Time

	// ViewerID and View restrict candidates to one relationship class
	// relative to the viewer. An empty View applies no restriction.
	ViewerID uint
	View     models.RelationshipView
}

// Orderings accepted by ListActive. Username is always the final tie-breaker.
var userOrderings = map[string]string{
	"username":     "username ASC",
	"-username":    "username DESC",
	"date_joined":  "created_at ASC",
	"-date_joined": "created_at DESC",
}

// ValidUserOrdering reports whether ordering is accepted by ListActive.
func ValidUserOrdering(ordering string) bool {
	_, ok := userOrderings[ordering]
	return ordering == "" || ok
}

// UserRepository defines persistence operations for users.
type UserRepository interface {
	// GetByID is served through the cache. Cached copies omit the password
	// hash; use GetForUpdate when it is needed.
	GetByID(ctx context.Context, id uint) (*models.User, error)
	// GetForUpdate reads the primary directly and includes the password hash.
	GetForUpdate(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, id uint, hash string) error
	Deactivate(ctx context.Context, id uint) error
	TouchLastLogin(ctx context.Context, id uint, at time.Time) error
	TouchLastRequest(ctx context.Context, id uint, at time.Time) error
	ListActive(ctx context.Context, filter UserFilter, limit, offset int) ([]models.User, int64, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := cache.Aside(ctx, cache.UserKey(id), &user, cache.UserTTL, func() error {
		return r.first(readDB(r.db).WithContext(ctx), &user, id)
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetForUpdate(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.first(r.db.WithContext(ctx), &user, id); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) first(db *gorm.DB, user *models.User, id uint) error {
	if err := db.First(user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("User", id)
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findBy(ctx, "LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email)))
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findBy(ctx, "username = ?", username)
}

// findBy returns nil, nil when no row matches.
func (r *userRepository) findBy(ctx context.Context, where string, arg any) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where(where, arg).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("you already signed up")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	err := r.db.WithContext(ctx).
		Model(user).
		Select("username", "email", "first_name", "last_name", "bio", "updated_at").
		Updates(user).Error
	if err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("username or email already taken")
		}
		return models.NewInternalError(err)
	}
	cache.InvalidateUser(ctx, user.ID)
	return nil
}

func (r *userRepository) UpdatePassword(ctx context.Context, id uint, hash string) error {
	return r.updateColumn(ctx, id, "password", hash, true)
}

func (r *userRepository) Deactivate(ctx context.Context, id uint) error {
	return r.updateColumn(ctx, id, "is_active", false, true)
}

func (r *userRepository) TouchLastLogin(ctx context.Context, id uint, at time.Time) error {
	return r.updateColumn(ctx, id, "last_login", at, false)
}

// TouchLastRequest runs on every authenticated request, so it leaves
// updated_at and the cached copy alone.
func (r *userRepository) TouchLastRequest(ctx context.Context, id uint, at time.Time) error {
	return r.updateColumn(ctx, id, "last_request", at, false)
}

func (r *userRepository) updateColumn(ctx context.Context, id uint, column string, value any, invalidate bool) error {
	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn(column, value)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("User", id)
	}
	if invalidate {
		cache.InvalidateUser(ctx, id)
	}
	return nil
}

func (r *userRepository) ListActive(ctx context.Context, filter UserFilter, limit, offset int) ([]models.User, int64, error) {
	limit, offset = clampPage(limit, offset)

	q := readDB(r.db).WithContext(ctx).Model(&models.User{}).Where("is_active = ?", true)

	if s := strings.TrimSpace(filter.Search); s != "" {
		q = q.Where("LOWER(username) LIKE ?", "%"+strings.ToLower(s)+"%")
	}
	if filter.JoinedAfter != nil {
		q = q.Where("created_at >= ?", *filter.JoinedAfter)
	}
	if filter.JoinedBefore != nil {
		q = q.Where("created_at <= ?", *filter.JoinedBefore)
	}
	q = relationshipScope(q, filter.ViewerID, filter.View)

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	order := "username ASC"
	if o, ok := userOrderings[filter.Ordering]; ok && o != order {
		q = q.Order(o)
	}

	var users []models.User
	if err := q.Order(order).Order("id ASC").Limit(limit).Offset(offset).Find(&users).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return users, total, nil
}

const (
	viewerFollowsCandidate = "EXISTS (SELECT 1 FROM user_friends f WHERE f.user_id = ? AND f.friend_id = users.id)"
	candidateFollowsViewer = "EXISTS (SELECT 1 FROM user_friends f WHERE f.user_id = users.id AND f.friend_id = ?)"
)

func relationshipScope(q *gorm.DB, viewer uint, view models.RelationshipView) *gorm.DB {
	switch view {
	case models.ViewFollowed:
		return q.Where(viewerFollowsCandidate, viewer)
	case models.ViewFollowers:
		return q.Where(candidateFollowsViewer, viewer)
	case models.ViewFriends:
		return q.Where(viewerFollowsCandidate, viewer).Where(candidateFollowsViewer, viewer)
	default:
		return q
	}
}
