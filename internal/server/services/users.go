package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/avoronov/storebox/internal/common"
	"github.com/avoronov/storebox/internal/logging"
	"github.com/avoronov/storebox/internal/server/models"
	"github.com/avoronov/storebox/internal/server/repositories/users"
)

// avatarPlaceholderURL is assigned to accounts registered without an avatar.
const avatarPlaceholderURL = "https://img.freepik.com/free-psd/3d-illustration-person-with-sunglasses_23-2149436188.jpg"

type UserService struct {
	users  users.Repository
	logger logging.Logger
}

func NewUserService(usersRepo users.Repository, logger logging.Logger) *UserService {
	return &UserService{users: usersRepo, logger: logger.With("module", "user_service")}
}

// Register creates the user record for an email unless one already exists,
// in which case the existing record is returned unchanged.
func (s *UserService) Register(ctx context.Context, fullName, email, accountID string) (*models.User, error) {
	existing, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		s.logger.Error(ctx, "user lookup failed", "op", "register", "email", email, "error", err)
		return nil, fmt.Errorf("error checking existing user: %w", err)
	}

	created, err := s.users.Create(ctx, &models.User{
		AccountID: accountID,
		FullName:  fullName,
		Email:     email,
		Avatar:    avatarPlaceholderURL,
	})
	if err != nil {
		s.logger.Error(ctx, "user creation failed", "op", "register", "email", email, "error", err)
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return created, nil
}

// CurrentUser resolves the request principal to its user record. It tries
// the user id first and falls back to the account namespace.
func (s *UserService) CurrentUser(ctx context.Context, principal models.Principal) (*models.User, error) {
	if err := requirePrincipal(principal); err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, principal.ID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("error resolving current user: %w", err)
	}

	user, err = s.users.FindByAccountID(ctx, principal.AccountID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnauthorized
		}
		return nil, fmt.Errorf("error resolving current user: %w", err)
	}
	return user, nil
}
