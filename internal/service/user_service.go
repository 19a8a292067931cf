package service

import (
	"context"
	"strings"
	"time"

	"socialnet/internal/auth"
	"socialnet/internal/models"
	"socialnet/internal/repository"
	"socialnet/internal/validation"
)

// RegisterInput is a validated signup request.
type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	Bio       string
}

// ProfileUpdate carries the editable profile fields. Nil fields are left as they are.
type ProfileUpdate struct {
	Username  *string
	Email     *string
	FirstName *string
	LastName  *string
	Bio       *string
}

// UserService provides account lifecycle business logic.
type UserService struct {
	userRepo repository.UserRepository
	now      func() time.Time
}

// NewUserService returns a new UserService.
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo, now: time.Now}
}

// Register creates an active account with a hashed password.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	email := validation.NormalizeEmail(in.Email)
	if err := s.ensureAvailable(ctx, 0, in.Username, email); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	user := &models.User{
		Username:  in.Username,
		Email:     email,
		Password:  hash,
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Bio:       in.Bio,
		IsActive:  true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ensureAvailable rejects a username or email held by a user other than selfID.
func (s *UserService) ensureAvailable(ctx context.Context, selfID uint, username, email string) error {
	conflict := models.NewConflictError("username or email already taken")
	if username != "" {
		existing, err := s.userRepo.GetByUsername(ctx, username)
		if err != nil {
			return err
		}
		if existing != nil && existing.ID != selfID {
			conflict.WithField("username", "A user with that username already exists.")
		}
	}
	if email != "" {
		existing, err := s.userRepo.GetByEmail(ctx, email)
		if err != nil {
			return err
		}
		if existing != nil && existing.ID != selfID {
			conflict.WithField("email", "A user with that email already exists.")
		}
	}
	if len(conflict.Fields) > 0 {
		return conflict
	}
	return nil
}

// Get returns an active user. Deactivated accounts are reported as not found.
func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, models.NewNotFoundError("User", id)
	}
	return user, nil
}

// authorize allows the account owner and admins.
func (s *UserService) authorize(ctx context.Context, actorID, targetID uint) error {
	if actorID == 0 {
		return models.NewAuthenticationError("authentication required")
	}
	if actorID == targetID {
		return nil
	}
	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return err
	}
	if !actor.IsAdmin {
		return models.NewPermissionDeniedError("You do not have permission to perform this action.")
	}
	return nil
}

// loadTarget authorizes the actor and returns the target read from the primary.
func (s *UserService) loadTarget(ctx context.Context, actorID, targetID uint) (*models.User, error) {
	if err := s.authorize(ctx, actorID, targetID); err != nil {
		return nil, err
	}
	target, err := s.userRepo.GetForUpdate(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if !target.IsActive {
		return nil, models.NewNotFoundError("User", targetID)
	}
	return target, nil
}

// UpdateProfile applies upd to the target account. Only the owner or an admin may do it.
func (s *UserService) UpdateProfile(ctx context.Context, actorID, targetID uint, upd ProfileUpdate) (*models.User, error) {
	target, err := s.loadTarget(ctx, actorID, targetID)
	if err != nil {
		return nil, err
	}

	var username, email string
	if upd.Username != nil && *upd.Username != target.Username {
		username = *upd.Username
	}
	if upd.Email != nil {
		if e := validation.NormalizeEmail(*upd.Email); e != target.Email {
			email = e
		}
	}
	if err := s.ensureAvailable(ctx, target.ID, username, email); err != nil {
		return nil, err
	}

	if username != "" {
		target.Username = username
	}
	if email != "" {
		target.Email = email
	}
	if upd.FirstName != nil {
		target.FirstName = strings.TrimSpace(*upd.FirstName)
	}
	if upd.LastName != nil {
		target.LastName = strings.TrimSpace(*upd.LastName)
	}
	if upd.Bio != nil {
		target.Bio = *upd.Bio
	}

	if err := s.userRepo.Update(ctx, target); err != nil {
		return nil, err
	}
	return target, nil
}

// Deactivate marks the account inactive. Edges and posts are kept.
func (s *UserService) Deactivate(ctx context.Context, actorID, targetID uint) error {
	if _, err := s.loadTarget(ctx, actorID, targetID); err != nil {
		return err
	}
	return s.userRepo.Deactivate(ctx, targetID)
}

// ChangePassword replaces the target's password after checking the old one.
func (s *UserService) ChangePassword(ctx context.Context, actorID, targetID uint, oldPassword, newPassword string) error {
	target, err := s.loadTarget(ctx, actorID, targetID)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(target.Password, oldPassword) {
		return models.NewAuthenticationError("wrong password").WithField("old_password", "Wrong password.")
	}
	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return models.NewInternalError(err)
	}
	return s.userRepo.UpdatePassword(ctx, targetID, hash)
}

// Activity returns the target with fresh last_login and last_request values.
func (s *UserService) Activity(ctx context.Context, actorID, targetID uint) (*models.User, error) {
	return s.loadTarget(ctx, actorID, targetID)
}

// Authenticate checks credentials and records the login time.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, validation.NormalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if user == nil || !auth.CheckPassword(user.Password, password) {
		return nil, models.NewAuthenticationError("wrong email or password")
	}
	if !user.IsActive {
		return nil, models.NewAuthenticationError("account is disabled")
	}

	now := s.now().UTC()
	if err := s.userRepo.TouchLastLogin(ctx, user.ID, now); err != nil {
		return nil, err
	}
	user.LastLogin = &now
	return user, nil
}

// ResolveActive returns the caller identified by a credential. Unknown and
// deactivated users fail authentication.
func (s *UserService) ResolveActive(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			return nil, models.NewAuthenticationError("user not found")
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, models.NewAuthenticationError("account is disabled")
	}
	return user, nil
}

// TouchRequest records activity for an authenticated request.
func (s *UserService) TouchRequest(ctx context.Context, id uint) error {
	return s.userRepo.TouchLastRequest(ctx, id, s.now().UTC())
}
