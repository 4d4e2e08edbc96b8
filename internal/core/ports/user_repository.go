package ports

import (
	"context"

	"github.com/davinci-it/expense-tracker/internal/core/domain"
)

// UserRepository defines persistence for user accounts, including the
// per-threshold alert flags the alert machine writes back.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	// Update persists the full user document, alert flags included.
	Update(ctx context.Context, user *domain.User) error
	SetVerified(ctx context.Context, id string) error
	SetPasswordHash(ctx context.Context, id, passwordHash string) error
}
