package repository

import (
	"context"
	"time"

	"github.com/reelcart/storefront/internal/domain/entity"
)

type CreateUserParams struct {
	Email        string
	PasswordHash string
	Role         entity.Role
}

// UserRepository persists users and their embedded carts. Cart mutations
// are atomic single-document updates, never read-modify-write, so
// concurrent requests for the same user cannot lose updates.
type UserRepository interface {
	Create(ctx context.Context, params CreateUserParams) (string, error)
	GetByID(ctx context.Context, userID string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)

	SetResetToken(ctx context.Context, userID, token string, expiresAt time.Time) error
	// GetByResetToken only matches a token whose expiry is after now;
	// expired tokens behave as if they do not exist.
	GetByResetToken(ctx context.Context, token string, now time.Time) (*entity.User, error)
	// UpdatePassword replaces the password hash and clears any pending
	// reset token in the same update.
	UpdatePassword(ctx context.Context, userID, passwordHash string) error

	AddCartItem(ctx context.Context, userID, productID string, quantity int) error
	RemoveCartItem(ctx context.Context, userID, productID string) error
	ClearCart(ctx context.Context, userID string) error
}
