package files

import (
	"context"

	"github.com/avoronov/storebox/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, file *models.File) (*models.File, error)
	GetByID(ctx context.Context, id string) (*models.File, error)
	List(ctx context.Context, principal models.Principal, opts ListOptions) ([]*models.File, error)
	UpdateName(ctx context.Context, id string, name string) (*models.File, error)
	UpdateUsers(ctx context.Context, id string, emails []string) (*models.File, error)
	Delete(ctx context.Context, id string) error
}
