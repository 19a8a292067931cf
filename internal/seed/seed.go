// Package seed fills a database with demo users, follow edges, posts and
// likes. It is meant for development and tests only.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"socialnet/internal/auth"
	"socialnet/internal/middleware"
	"socialnet/internal/models"
	"socialnet/internal/validation"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultPassword is the password of every seeded user.
const DefaultPassword = "password123"

var usernameStrip = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// Options controls the size and shape of the generated data.
type Options struct {
	Users int
	Posts int
	// FollowProbability is the chance that any ordered pair of users has an edge.
	FollowProbability float64
	// MaxLikesPerPost bounds the likes generated for a single post.
	MaxLikesPerPost int
	// Days is how far back post and like timestamps are spread.
	Days  int
	Clean bool
	// Seed makes the output reproducible. Zero picks a random seed.
	Seed int64
}

// DefaultOptions returns a small, well-connected data set.
func DefaultOptions() Options {
	return Options{
		Users:             50,
		Posts:             200,
		FollowProbability: 0.15,
		MaxLikesPerPost:   10,
		Days:              30,
		Clean:             true,
	}
}

// Summary counts the rows created by Run.
type Summary struct {
	Users int
	Edges int
	Posts int
	Likes int
}

// Seeder generates data with gofakeit and writes it through GORM.
type Seeder struct {
	db    *gorm.DB
	opts  Options
	faker *gofakeit.Faker
	now   time.Time
}

func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	if opts.Days <= 0 {
		opts.Days = 30
	}
	return &Seeder{
		db:    db,
		opts:  opts,
		faker: gofakeit.New(opts.Seed),
		now:   time.Now().UTC(),
	}
}

// Run seeds everything in one transaction.
func (s *Seeder) Run(ctx context.Context) (*Summary, error) {
	sum := &Summary{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if s.opts.Clean {
			if err := wipe(tx); err != nil {
				return err
			}
		}

		users, err := s.createUsers(tx)
		if err != nil {
			return err
		}
		sum.Users = len(users)

		if sum.Edges, err = s.createEdges(tx, users); err != nil {
			return err
		}

		posts, err := s.createPosts(tx, users)
		if err != nil {
			return err
		}
		sum.Posts = len(posts)

		sum.Likes, err = s.createLikes(tx, users, posts)
		return err
	})
	if err != nil {
		return nil, err
	}
	middleware.Logger.Info("seed completed",
		slog.Int("users", sum.Users),
		slog.Int("edges", sum.Edges),
		slog.Int("posts", sum.Posts),
		slog.Int("likes", sum.Likes),
	)
	return sum, nil
}

func wipe(tx *gorm.DB) error {
	for _, m := range []any{&models.Like{}, &models.Post{}, &models.UserFriend{}, &models.User{}} {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(m).Error; err != nil {
			return fmt.Errorf("clear %T: %w", m, err)
		}
	}
	return nil
}

// username turns a fake handle into one that passes validation.
func (s *Seeder) username(taken map[string]bool) string {
	for {
		base := usernameStrip.ReplaceAllString(s.faker.Username(), "")
		base = strings.Trim(base, "_-")
		if len(base) > 24 {
			base = base[:24]
		}
		name := fmt.Sprintf("%s%d", base, s.faker.Number(10, 9999))
		if !taken[strings.ToLower(name)] && validation.ValidateUsername(name) == nil {
			taken[strings.ToLower(name)] = true
			return name
		}
	}
}

func (s *Seeder) createUsers(tx *gorm.DB) ([]models.User, error) {
	hash, err := auth.HashPassword(DefaultPassword)
	if err != nil {
		return nil, err
	}

	taken := make(map[string]bool, s.opts.Users)
	users := make([]models.User, 0, s.opts.Users)
	for i := 0; i < s.opts.Users; i++ {
		name := s.username(taken)
		users = append(users, models.User{
			Username:  name,
			Email:     validation.NormalizeEmail(name + "@example.com"),
			Password:  hash,
			FirstName: s.faker.FirstName(),
			LastName:  s.faker.LastName(),
			Bio:       s.faker.Sentence(10),
			IsActive:  true,
			CreatedAt: s.pastTime(),
		})
	}
	if len(users) == 0 {
		return users, nil
	}
	if err := tx.CreateInBatches(&users, 100).Error; err != nil {
		return nil, fmt.Errorf("create users: %w", err)
	}
	return users, nil
}

func (s *Seeder) createEdges(tx *gorm.DB, users []models.User) (int, error) {
	var edges []models.UserFriend
	for _, from := range users {
		for _, to := range users {
			if from.ID == to.ID || s.faker.Float64Range(0, 1) >= s.opts.FollowProbability {
				continue
			}
			edges = append(edges, models.UserFriend{UserID: from.ID, FriendID: to.ID})
		}
	}
	if len(edges) == 0 {
		return 0, nil
	}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(&edges, 500).Error; err != nil {
		return 0, fmt.Errorf("create edges: %w", err)
	}
	return len(edges), nil
}

func (s *Seeder) createPosts(tx *gorm.DB, users []models.User) ([]models.Post, error) {
	if len(users) == 0 || s.opts.Posts <= 0 {
		return nil, nil
	}
	posts := make([]models.Post, 0, s.opts.Posts)
	for i := 0; i < s.opts.Posts; i++ {
		author := users[s.faker.Number(0, len(users)-1)]
		title := strings.TrimSuffix(s.faker.Sentence(s.faker.Number(3, 8)), ".")
		if len(title) > 255 {
			title = title[:255]
		}
		posts = append(posts, models.Post{
			Title:     title,
			Content:   s.faker.Paragraph(1, 3, 12, "\n"),
			UserID:    author.ID,
			CreatedAt: s.pastTime(),
		})
	}
	if err := tx.CreateInBatches(&posts, 100).Error; err != nil {
		return nil, fmt.Errorf("create posts: %w", err)
	}
	return posts, nil
}

func (s *Seeder) createLikes(tx *gorm.DB, users []models.User, posts []models.Post) (int, error) {
	if len(users) == 0 || s.opts.MaxLikesPerPost <= 0 {
		return 0, nil
	}
	var likes []models.Like
	for _, p := range posts {
		n := s.faker.Number(0, min(s.opts.MaxLikesPerPost, len(users)))
		seen := make(map[uint]bool, n)
		for len(seen) < n {
			liker := users[s.faker.Number(0, len(users)-1)]
			if seen[liker.ID] {
				continue
			}
			seen[liker.ID] = true
			likes = append(likes, models.Like{
				UserID:    liker.ID,
				PostID:    p.ID,
				CreatedAt: s.timeAfter(p.CreatedAt),
			})
		}
	}
	if len(likes) == 0 {
		return 0, nil
	}
	if err := tx.CreateInBatches(&likes, 500).Error; err != nil {
		return 0, fmt.Errorf("create likes: %w", err)
	}
	return len(likes), nil
}

func (s *Seeder) pastTime() time.Time {
	window := time.Duration(s.opts.Days) * 24 * time.Hour
	return s.now.Add(-time.Duration(s.faker.Float64Range(0, 1) * float64(window)))
}

func (s *Seeder) timeAfter(t time.Time) time.Time {
	span := s.now.Sub(t)
	if span <= 0 {
		return s.now
	}
	return t.Add(time.Duration(s.faker.Float64Range(0, 1) * float64(span)))
}
