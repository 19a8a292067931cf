package service

import (
	"context"
	"testing"
	"time"

	"socialnet/internal/models"
	"socialnet/internal/repository"
	"socialnet/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newPostFixture(t *testing.T) (*PostService, *gorm.DB) {
	t.Helper()
	db := testutil.NewTestDB(t)
	return NewPostService(repository.NewPostRepository(db), repository.NewUserRepository(db)), db
}

func TestPostService_OwnershipRules(t *testing.T) {
	svc, db := newPostFixture(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	admin := testutil.CreateUser(t, db, "admin")
	require.NoError(t, db.Model(admin).Update("is_admin", true).Error)

	post, err := svc.Create(ctx, alice.ID, PostInput{Title: strPtr("hello"), Content: strPtr("world")})
	require.NoError(t, err)
	assert.Equal(t, alice.ID, post.UserID)
	assert.Equal(t, "alice", post.AuthorUsername)

	_, err = svc.Update(ctx, bob.ID, post.ID, PostInput{Title: strPtr("mine now")})
	requireCode(t, err, models.CodePermissionDenied)

	updated, err := svc.Update(ctx, admin.ID, post.ID, PostInput{Title: strPtr("moderated")})
	require.NoError(t, err)
	assert.Equal(t, "moderated", updated.Title)
	assert.Equal(t, "world", updated.Content)
	assert.Equal(t, alice.ID, updated.UserID)

	err = svc.Delete(ctx, bob.ID, post.ID)
	requireCode(t, err, models.CodePermissionDenied)
	require.NoError(t, svc.Delete(ctx, alice.ID, post.ID))
	_, err = svc.Get(ctx, post.ID, 0)
	requireCode(t, err, models.CodeNotFound)

	_, err = svc.Create(ctx, alice.ID, PostInput{Title: strPtr("no content")})
	requireCode(t, err, models.CodeValidation)
}

func TestPostService_LikeUnlike(t *testing.T) {
	svc, db := newPostFixture(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	post := testutil.CreatePost(t, db, alice.ID, "hello")

	liked, changed, err := svc.Like(ctx, bob.ID, post.ID)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.True(t, liked.IsLiked)
	assert.Equal(t, int64(1), liked.Likes)

	liked, changed, err = svc.Like(ctx, bob.ID, post.ID)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, int64(1), liked.Likes)

	unliked, err := svc.Unlike(ctx, bob.ID, post.ID)
	require.NoError(t, err)
	assert.False(t, unliked.IsLiked)
	assert.Zero(t, unliked.Likes)

	_, _, err = svc.Like(ctx, bob.ID, 999)
	requireCode(t, err, models.CodeNotFound)
}

func TestPostService_ParseDateRange(t *testing.T) {
	svc := NewPostService(nil, nil)
	svc.now = func() time.Time { return time.Date(2024, 3, 31, 15, 0, 0, 0, time.UTC) }

	r, err := svc.ParseDateRange("", "")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), r.From)
	assert.Equal(t, time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC), r.To)

	r, err = svc.ParseDateRange("2024-01-01", "2024-01-02")
	require.NoError(t, err)
	assert.Equal(t, 2024, r.From.Year())

	_, err = svc.ParseDateRange("2024-02-01", "2024-01-01")
	requireCode(t, err, models.CodeValidation)

	_, err = svc.ParseDateRange("yesterday", "")
	requireCode(t, err, models.CodeValidation)
}

func TestPostService_Analytics(t *testing.T) {
	svc, db := newPostFixture(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	carol := testutil.CreateUser(t, db, "carol")
	p1 := testutil.CreatePost(t, db, alice.ID, "one")
	p2 := testutil.CreatePost(t, db, alice.ID, "two")

	day1 := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)
	testutil.LikeAt(t, db, bob.ID, p1.ID, day1)
	testutil.LikeAt(t, db, carol.ID, p1.ID, day1.Add(time.Hour))
	testutil.LikeAt(t, db, bob.ID, p2.ID, day1.Add(2*time.Hour))
	testutil.LikeAt(t, db, carol.ID, p2.ID, day2)
	testutil.LikeAt(t, db, alice.ID, p1.ID, day2.Add(time.Hour))

	r, err := svc.ParseDateRange("2024-03-10", "2024-03-11")
	require.NoError(t, err)

	all, err := svc.Analytics(ctx, r)
	require.NoError(t, err)
	assert.Equal(t, []models.PostAnalytics{
		{Date: "2024-03-10", TotalLikes: 3, MostLikes: 2, TopPosts: []uint{p1.ID}},
		{Date: "2024-03-11", TotalLikes: 2, MostLikes: 1, TopPosts: []uint{p1.ID, p2.ID}},
	}, all)

	single, err := svc.PostAnalytics(ctx, p1.ID, r)
	require.NoError(t, err)
	assert.Equal(t, []models.PostDailyLikes{
		{Date: "2024-03-10", Likes: 2},
		{Date: "2024-03-11", Likes: 1},
	}, single)

	narrow, err := svc.ParseDateRange("2024-03-11", "2024-03-11")
	require.NoError(t, err)
	single, err = svc.PostAnalytics(ctx, p2.ID, narrow)
	require.NoError(t, err)
	assert.Equal(t, []models.PostDailyLikes{{Date: "2024-03-11", Likes: 1}}, single)

	_, err = svc.PostAnalytics(ctx, 999, r)
	requireCode(t, err, models.CodeNotFound)
}
