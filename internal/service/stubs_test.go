package service

import (
	"context"
	"time"

	"socialnet/internal/models"
	"socialnet/internal/repository"
)

type userRepoStub struct {
	getByIDFn          func(context.Context, uint) (*models.User, error)
	getForUpdateFn     func(context.Context, uint) (*models.User, error)
	getByEmailFn       func(context.Context, string) (*models.User, error)
	getByUsernameFn    func(context.Context, string) (*models.User, error)
	createFn           func(context.Context, *models.User) error
	updateFn           func(context.Context, *models.User) error
	updatePasswordFn   func(context.Context, uint, string) error
	deactivateFn       func(context.Context, uint) error
	touchLastLoginFn   func(context.Context, uint, time.Time) error
	touchLastRequestFn func(context.Context, uint, time.Time) error
	listActiveFn       func(context.Context, repository.UserFilter, int, int) ([]models.User, int64, error)
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetForUpdate(ctx context.Context, id uint) (*models.User, error) {
	return s.getForUpdateFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}
func (s *userRepoStub) UpdatePassword(ctx context.Context, id uint, hash string) error {
	return s.updatePasswordFn(ctx, id, hash)
}
func (s *userRepoStub) Deactivate(ctx context.Context, id uint) error {
	return s.deactivateFn(ctx, id)
}
func (s *userRepoStub) TouchLastLogin(ctx context.Context, id uint, at time.Time) error {
	return s.touchLastLoginFn(ctx, id, at)
}
func (s *userRepoStub) TouchLastRequest(ctx context.Context, id uint, at time.Time) error {
	return s.touchLastRequestFn(ctx, id, at)
}
func (s *userRepoStub) ListActive(ctx context.Context, filter repository.UserFilter, limit, offset int) ([]models.User, int64, error) {
	return s.listActiveFn(ctx, filter, limit, offset)
}

func activeUser(id uint) *models.User {
	return &models.User{ID: id, Username: "user", IsActive: true}
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn:          func(_ context.Context, id uint) (*models.User, error) { return activeUser(id), nil },
		getForUpdateFn:     func(_ context.Context, id uint) (*models.User, error) { return activeUser(id), nil },
		getByEmailFn:       func(context.Context, string) (*models.User, error) { return nil, nil },
		getByUsernameFn:    func(context.Context, string) (*models.User, error) { return nil, nil },
		createFn:           func(context.Context, *models.User) error { return nil },
		updateFn:           func(context.Context, *models.User) error { return nil },
		updatePasswordFn:   func(context.Context, uint, string) error { return nil },
		deactivateFn:       func(context.Context, uint) error { return nil },
		touchLastLoginFn:   func(context.Context, uint, time.Time) error { return nil },
		touchLastRequestFn: func(context.Context, uint, time.Time) error { return nil },
		listActiveFn:       func(context.Context, repository.UserFilter, int, int) ([]models.User, int64, error) { return nil, 0, nil },
	}
}

// memFollowRepo keeps edges in a set so edge properties can be checked without a database.
type memFollowRepo struct {
	edges map[[2]uint]bool
}

func newMemFollowRepo() *memFollowRepo {
	return &memFollowRepo{edges: make(map[[2]uint]bool)}
}

func (m *memFollowRepo) Add(_ context.Context, from, to uint) (bool, error) {
	if m.edges[[2]uint{from, to}] {
		return false, nil
	}
	m.edges[[2]uint{from, to}] = true
	return true, nil
}
func (m *memFollowRepo) Remove(_ context.Context, from, to uint) (bool, error) {
	if !m.edges[[2]uint{from, to}] {
		return false, nil
	}
	delete(m.edges, [2]uint{from, to})
	return true, nil
}
func (m *memFollowRepo) Exists(_ context.Context, from, to uint) (bool, error) {
	return m.edges[[2]uint{from, to}], nil
}
func (m *memFollowRepo) FollowedAmong(_ context.Context, viewer uint, candidates []uint) (map[uint]bool, error) {
	out := map[uint]bool{}
	for _, c := range candidates {
		if m.edges[[2]uint{viewer, c}] {
			out[c] = true
		}
	}
	return out, nil
}
func (m *memFollowRepo) FollowersAmong(_ context.Context, viewer uint, candidates []uint) (map[uint]bool, error) {
	out := map[uint]bool{}
	for _, c := range candidates {
		if m.edges[[2]uint{c, viewer}] {
			out[c] = true
		}
	}
	return out, nil
}
func (m *memFollowRepo) CountFollowing(_ context.Context, userID uint) (int64, error) {
	var n int64
	for e := range m.edges {
		if e[0] == userID {
			n++
		}
	}
	return n, nil
}
func (m *memFollowRepo) CountFollowers(_ context.Context, userID uint) (int64, error) {
	var n int64
	for e := range m.edges {
		if e[1] == userID {
			n++
		}
	}
	return n, nil
}
