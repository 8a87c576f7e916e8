package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/MKhiriev/go-flock-keeper/models"
)

// UserService manages local operator accounts. Passwords are stored as
// bcrypt hashes in the secret PasswordHash field.
type UserService struct {
	*CollectionService[models.User]
}

// NewUserService wraps the users collection service.
func NewUserService(users *CollectionService[models.User]) *UserService {
	return &UserService{CollectionService: users}
}

// Register creates user with password.
func (s *UserService) Register(ctx context.Context, user models.User, password string) (models.User, error) {
	if password == "" {
		return models.User{}, fmt.Errorf("%w: %w", ErrValidation, ErrEmptyPassword)
	}
	if strings.TrimSpace(user.Username) == "" {
		return models.User{}, fmt.Errorf("%w: username is empty", ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = string(hash)

	return s.Create(ctx, user)
}

// Authenticate returns the user with username when password matches.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (models.User, error) {
	users, err := s.List(ctx)
	if err != nil {
		return models.User{}, err
	}

	for _, u := range users {
		if !strings.EqualFold(u.Username, username) {
			continue
		}
		err = bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) || errors.Is(err, bcrypt.ErrHashTooShort) {
			return models.User{}, ErrWrongPassword
		}
		if err != nil {
			return models.User{}, fmt.Errorf("compare password: %w", err)
		}
		return u, nil
	}

	return models.User{}, fmt.Errorf("%w: user %q", ErrRecordNotFound, username)
}
