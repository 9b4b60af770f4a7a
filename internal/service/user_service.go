package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"libraryapi/internal/cache"
	"libraryapi/internal/errors"
	"libraryapi/internal/model"
	"libraryapi/internal/repository"
)

const bcryptCost = 10

const (
	msgUserEmail       = "Invalid email format."
	msgUserEmailExists = "Email already exists."
	msgUserPhone       = "Phone number must be at least 10 characters."
	msgUserName        = "Name must be at least 2 characters."
	msgUserPassword    = "Password is required."
	msgUserNotFound    = "User not found."
	msgUserHasLoans    = "User has borrowing records and cannot be deleted."
)

var validate = validator.New()

// UserInput carries user fields. Nil fields are absent from the request.
// Password is hashed and never stored; PasswordHash is accepted as pre-hashed.
type UserInput struct {
	Name         *string `json:"name" example:"Jane Reader"`
	Phone        *string `json:"phone" example:"0612345678"`
	Email        *string `json:"email" example:"jane@example.com"`
	Password     *string `json:"password,omitempty" example:"secret123"`
	PasswordHash *string `json:"password_hash,omitempty"`
	IsAdmin      *bool   `json:"is_admin,omitempty"`
}

// UserService exposes domain operations.
type UserService interface {
	Create(ctx context.Context, in UserInput) (*model.User, error)
	Update(ctx context.Context, id uint, in UserInput) (*model.User, error)
	Get(ctx context.Context, id uint) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Delete(ctx context.Context, id uint) error
}

type userService struct {
	repo       repository.UserRepository
	borrowings repository.BorrowingRepository
	cache      *cache.Client
}

// NewUserService builds a UserService with repository and cache.
func NewUserService(repo repository.UserRepository, borrowings repository.BorrowingRepository, cache *cache.Client) UserService {
	return &userService{repo: repo, borrowings: borrowings, cache: cache}
}

// Create validates a signup and stores the user with a hashed password.
func (s *userService) Create(ctx context.Context, in UserInput) (*model.User, error) {
	if in.Email == nil || !validEmail(*in.Email) {
		return nil, errors.Validation(msgUserEmail)
	}
	if err := s.ensureUniqueEmail(ctx, *in.Email, 0); err != nil {
		return nil, err
	}
	if in.Phone == nil || len(*in.Phone) < 10 {
		return nil, errors.Validation(msgUserPhone)
	}
	if in.Name == nil || !minLen(*in.Name, 2) {
		return nil, errors.Validation(msgUserName)
	}

	user := &model.User{
		Name:  strings.TrimSpace(*in.Name),
		Phone: *in.Phone,
		Email: *in.Email,
	}
	switch {
	case in.Password != nil && *in.Password != "":
		hash, err := hashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	case in.PasswordHash != nil && *in.PasswordHash != "":
		user.PasswordHash = *in.PasswordHash
	default:
		return nil, errors.Validation(msgUserPassword)
	}
	if in.IsAdmin != nil {
		user.IsAdmin = *in.IsAdmin
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, writeError(err, msgUserEmailExists, "")
	}
	return user, nil
}

// Update re-validates email only when present and re-hashes only a new plaintext password.
func (s *userService) Update(ctx context.Context, id uint, in UserInput) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, msgUserNotFound)
	}

	if in.Email != nil {
		if !validEmail(*in.Email) {
			return nil, errors.Validation(msgUserEmail)
		}
		if err := s.ensureUniqueEmail(ctx, *in.Email, id); err != nil {
			return nil, err
		}
		user.Email = *in.Email
	}
	if in.Phone != nil {
		if len(*in.Phone) < 10 {
			return nil, errors.Validation(msgUserPhone)
		}
		user.Phone = *in.Phone
	}
	if in.Name != nil {
		if !minLen(*in.Name, 2) {
			return nil, errors.Validation(msgUserName)
		}
		user.Name = strings.TrimSpace(*in.Name)
	}
	switch {
	case in.Password != nil && *in.Password != "":
		hash, err := hashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	case in.PasswordHash != nil && *in.PasswordHash != "":
		user.PasswordHash = *in.PasswordHash
	}
	if in.IsAdmin != nil {
		user.IsAdmin = *in.IsAdmin
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, writeError(err, msgUserEmailExists, "")
	}
	_ = s.cache.Delete(ctx, cache.Key("user", id))
	return user, nil
}

func (s *userService) ensureUniqueEmail(ctx context.Context, email string, self uint) error {
	existing, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return errors.Storage(err)
	}
	if existing.ID != self {
		return errors.Conflict(msgUserEmailExists)
	}
	return nil
}

// Get retrieves a user by ID with caching. The cached copy carries no password hash.
func (s *userService) Get(ctx context.Context, id uint) (*model.User, error) {
	var cached model.User
	if s.cache.GetJSON(ctx, cache.Key("user", id), &cached) {
		return &cached, nil
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, msgUserNotFound)
	}
	s.cache.SetJSON(ctx, cache.Key("user", id), user, entityCacheTTL)
	return user, nil
}

func (s *userService) List(ctx context.Context) ([]model.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, errors.Storage(err)
	}
	return users, nil
}

// GetByEmail matches email exactly.
func (s *userService) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, lookupError(err, msgUserNotFound)
	}
	return user, nil
}

// Delete refuses to remove a user that borrowings still reference.
func (s *userService) Delete(ctx context.Context, id uint) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return lookupError(err, msgUserNotFound)
	}
	n, err := s.borrowings.CountByUser(ctx, id)
	if err != nil {
		return errors.Storage(err)
	}
	if n > 0 {
		return errors.Conflict(msgUserHasLoans)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return deleteError(err, msgUserNotFound, msgUserHasLoans)
	}
	_ = s.cache.Delete(ctx, cache.Key("user", id))
	return nil
}

func validEmail(email string) bool {
	return validate.Var(email, "required,email") == nil
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", errors.Validation("Password must be at most 72 bytes.")
	}
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}
