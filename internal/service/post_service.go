package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"socialnet/internal/models"
	"socialnet/internal/repository"
)

const (
	analyticsDateLayout  = "2006-01-02"
	defaultAnalyticsDays = 30
)

// PostInput carries post fields from the caller. Nil fields are left as they are.
type PostInput struct {
	Title   *string
	Content *string
}

// DateRange is an inclusive range of calendar days in UTC.
type DateRange struct {
	From time.Time
	To   time.Time
}

// PostService provides post, like and analytics business logic.
type PostService struct {
	postRepo repository.PostRepository
	userRepo repository.UserRepository
	now      func() time.Time
}

// NewPostService returns a new PostService.
func NewPostService(postRepo repository.PostRepository, userRepo repository.UserRepository) *PostService {
	return &PostService{postRepo: postRepo, userRepo: userRepo, now: time.Now}
}

// Create stores a post authored by the caller.
func (s *PostService) Create(ctx context.Context, authorID uint, in PostInput) (*models.Post, error) {
	if in.Title == nil || in.Content == nil {
		return nil, models.NewValidationError("title and content are required")
	}
	post := &models.Post{
		Title:   strings.TrimSpace(*in.Title),
		Content: *in.Content,
		UserID:  authorID,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, post.ID, authorID)
}

func (s *PostService) Get(ctx context.Context, id, viewerID uint) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, id, viewerID)
}

func (s *PostService) List(ctx context.Context, filter repository.PostFilter, limit, offset int, viewerID uint) ([]*models.Post, int64, error) {
	return s.postRepo.List(ctx, filter, limit, offset, viewerID)
}

// loadOwned returns the post when actorID is its author or an admin.
func (s *PostService) loadOwned(ctx context.Context, actorID, postID uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID, actorID)
	if err != nil {
		return nil, err
	}
	if post.UserID == actorID {
		return post, nil
	}
	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin {
		return nil, models.NewPermissionDeniedError("You do not have permission to perform this action.")
	}
	return post, nil
}

// Update edits title and content. The author never changes.
func (s *PostService) Update(ctx context.Context, actorID, postID uint, in PostInput) (*models.Post, error) {
	post, err := s.loadOwned(ctx, actorID, postID)
	if err != nil {
		return nil, err
	}
	if in.Title != nil {
		post.Title = strings.TrimSpace(*in.Title)
	}
	if in.Content != nil {
		post.Content = *in.Content
	}
	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, postID, actorID)
}

func (s *PostService) Delete(ctx context.Context, actorID, postID uint) error {
	if _, err := s.loadOwned(ctx, actorID, postID); err != nil {
		return err
	}
	return s.postRepo.Delete(ctx, postID)
}

// Like records the caller's like and returns the post and whether it changed.
func (s *PostService) Like(ctx context.Context, userID, postID uint) (*models.Post, bool, error) {
	if _, err := s.postRepo.GetByID(ctx, postID, userID); err != nil {
		return nil, false, err
	}
	changed, err := s.postRepo.Like(ctx, userID, postID)
	if err != nil {
		return nil, false, err
	}
	post, err := s.postRepo.GetByID(ctx, postID, userID)
	return post, changed, err
}

// Unlike removes the caller's like and returns the post.
func (s *PostService) Unlike(ctx context.Context, userID, postID uint) (*models.Post, error) {
	if _, err := s.postRepo.GetByID(ctx, postID, userID); err != nil {
		return nil, err
	}
	if _, err := s.postRepo.Unlike(ctx, userID, postID); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, postID, userID)
}

// ParseDateRange reads YYYY-MM-DD bounds. Missing bounds default to the last
// 30 days ending today.
func (s *PostService) ParseDateRange(from, to string) (DateRange, error) {
	today := s.now().UTC().Truncate(24 * time.Hour)
	r := DateRange{From: today.AddDate(0, 0, -defaultAnalyticsDays), To: today}

	if from != "" {
		t, err := time.Parse(analyticsDateLayout, from)
		if err != nil {
			return DateRange{}, models.NewValidationError("invalid date").WithField("date_from", "Enter a valid date in YYYY-MM-DD format.")
		}
		r.From = t
	}
	if to != "" {
		t, err := time.Parse(analyticsDateLayout, to)
		if err != nil {
			return DateRange{}, models.NewValidationError("invalid date").WithField("date_to", "Enter a valid date in YYYY-MM-DD format.")
		}
		r.To = t
	}
	if r.From.After(r.To) {
		return DateRange{}, models.NewValidationError("date_from must not be after date_to")
	}
	return r, nil
}

// Analytics aggregates likes on all posts per day. Days without likes are omitted.
func (s *PostService) Analytics(ctx context.Context, r DateRange) ([]models.PostAnalytics, error) {
	events, err := s.postRepo.LikeEvents(ctx, 0, r.From, r.To.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}

	perDay := make(map[string]map[uint]int64)
	for _, e := range events {
		day := e.CreatedAt.UTC().Format(analyticsDateLayout)
		if perDay[day] == nil {
			perDay[day] = make(map[uint]int64)
		}
		perDay[day][e.PostID]++
	}

	out := make([]models.PostAnalytics, 0, len(perDay))
	for day, counts := range perDay {
		a := models.PostAnalytics{Date: day, TopPosts: []uint{}}
		for postID, n := range counts {
			a.TotalLikes += n
			switch {
			case n > a.MostLikes:
				a.MostLikes = n
				a.TopPosts = []uint{postID}
			case n == a.MostLikes:
				a.TopPosts = append(a.TopPosts, postID)
			}
		}
		sort.Slice(a.TopPosts, func(i, j int) bool { return a.TopPosts[i] < a.TopPosts[j] })
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

// PostAnalytics returns the daily like counts of one post.
func (s *PostService) PostAnalytics(ctx context.Context, postID uint, r DateRange) ([]models.PostDailyLikes, error) {
	if _, err := s.postRepo.GetByID(ctx, postID, 0); err != nil {
		return nil, err
	}
	events, err := s.postRepo.LikeEvents(ctx, postID, r.From, r.To.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}

	out := []models.PostDailyLikes{}
	for _, e := range events {
		day := e.CreatedAt.UTC().Format(analyticsDateLayout)
		if n := len(out); n > 0 && out[n-1].Date == day {
			out[n-1].Likes++
			continue
		}
		out = append(out, models.PostDailyLikes{Date: day, Likes: 1})
	}
	return out, nil
}
