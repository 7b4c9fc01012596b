package repository

import (
	"context"

	"github.com/reelcart/storefront/internal/domain/entity"
)

type OrderRepository interface {
	// Create returns ErrAlreadyExists when an order with the same
	// checkout session ID is already stored.
	Create(ctx context.Context, order *entity.Order) (string, error)
	GetByID(ctx context.Context, orderID string) (*entity.Order, error)
	ListByUser(ctx context.Context, userID string) ([]entity.Order, error)
}
