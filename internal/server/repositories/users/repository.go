package users

import (
	"context"

	"github.com/avoronov/storebox/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByAccountID(ctx context.Context, accountID string) (*models.User, error)
}
