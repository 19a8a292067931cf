package repository

import (
	"context"
	"errors"
	"time"

	"socialnet/internal/middleware"
	"socialnet/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostFilter narrows post listings. Zero values apply no restriction.
type PostFilter struct {
	AuthorID uint
}

// PostRepository defines the interface for post data operations.
// Read methods fill the computed like fields relative to viewerID (0 = anonymous).
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id, viewerID uint) (*models.Post, error)
	List(ctx context.Context, filter PostFilter, limit, offset int, viewerID uint) ([]*models.Post, int64, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uint) error
	// Like and Unlike report whether the like set changed.
	Like(ctx context.Context, userID, postID uint) (bool, error)
	Unlike(ctx context.Context, userID, postID uint) (bool, error)
	// LikeEvents returns likes created in [from, to). postID 0 covers every live post.
	LikeEvents(ctx context.Context, postID uint, from, to time.Time) ([]models.LikeEvent, error)
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id, viewerID uint) (*models.Post, error) {
	var post models.Post
	if err := readDB(r.db).WithContext(ctx).Preload("User").First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}
	if err := r.enrich(ctx, []*models.Post{&post}, viewerID); err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) List(ctx context.Context, filter PostFilter, limit, offset int, viewerID uint) ([]*models.Post, int64, error) {
	limit, offset = clampPage(limit, offset)

	q := readDB(r.db).WithContext(ctx).Model(&models.Post{})
	if filter.AuthorID != 0 {
		q = q.Where("user_id = ?", filter.AuthorID)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var posts []*models.Post
	if err := q.Preload("User").
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	if err := r.enrich(ctx, posts, viewerID); err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// enrich fills AuthorUsername, Likes, LikedBy and IsLiked with two batch queries.
func (r *postRepository) enrich(ctx context.Context, posts []*models.Post, viewerID uint) error {
	if len(posts) == 0 {
		return nil
	}
	ids := make([]uint, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}

	var rows []struct {
		PostID   uint
		UserID   uint
		Username string
	}
	if err := readDB(r.db).WithContext(ctx).
		Table("likes").
		Select("likes.post_id, likes.user_id, users.username").
		Joins("JOIN users ON users.id = likes.user_id").
		Where("likes.post_id IN ?", ids).
		Order("likes.created_at ASC").
		Order("likes.id ASC").
		Scan(&rows).Error; err != nil {
		return models.NewInternalError(err)
	}

	byPost := make(map[uint]*models.Post, len(posts))
	for _, p := range posts {
		p.AuthorUsername = p.User.Username
		p.LikedBy = []string{}
		p.Likes = 0
		p.IsLiked = false
		byPost[p.ID] = p
	}
	for _, row := range rows {
		p := byPost[row.PostID]
		p.Likes++
		p.LikedBy = append(p.LikedBy, row.Username)
		if viewerID != 0 && row.UserID == viewerID {
			p.IsLiked = true
		}
	}
	return nil
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).
		Model(post).
		Select("title", "content", "updated_at").
		Updates(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Post{}, id)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post", id)
	}
	return nil
}

func (r *postRepository) Like(ctx context.Context, userID, postID uint) (bool, error) {
	like := models.Like{UserID: userID, PostID: postID}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&like)
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	changed := res.RowsAffected > 0
	middleware.PostLikeOps.WithLabelValues("like", middleware.BoolLabel(changed)).Inc()
	return changed, nil
}

func (r *postRepository) Unlike(ctx context.Context, userID, postID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&models.Like{})
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	changed := res.RowsAffected > 0
	middleware.PostLikeOps.WithLabelValues("unlike", middleware.BoolLabel(changed)).Inc()
	return changed, nil
}

func (r *postRepository) LikeEvents(ctx context.Context, postID uint, from, to time.Time) ([]models.LikeEvent, error) {
	q := readDB(r.db).WithContext(ctx).
		Table("likes").
		Select("likes.post_id, likes.created_at").
		Joins("JOIN posts ON posts.id = likes.post_id AND posts.deleted_at IS NULL").
		Where("likes.created_at >= ? AND likes.created_at < ?", from, to)
	if postID != 0 {
		q = q.Where("likes.post_id = ?", postID)
	}

	var events []models.LikeEvent
	if err := q.Order("likes.created_at ASC").Scan(&events).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return events, nil
}
