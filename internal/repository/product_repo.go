package repository

import (
	"context"

	"github.com/reelcart/storefront/internal/domain/entity"
)

type CreateProductParams struct {
	Title       string
	Description string
	Price       float64
	ImageURL    string
	UserID      string
}

type UpdateProductParams struct {
	ProductID   string
	Title       string
	Description string
	Price       float64
	// ImageURL left empty keeps the stored image reference.
	ImageURL string
}

type ListProductsParams struct {
	// Query is matched case-insensitively against title and description.
	Query   string
	Page    int
	PerPage int
}

type ListProductsResult struct {
	Products    []entity.Product
	TotalCount  int64
	CurrentPage int
	PerPage     int
	LastPage    int
}

type ProductRepository interface {
	Create(ctx context.Context, params CreateProductParams) (string, error)
	GetByID(ctx context.Context, productID string) (*entity.Product, error)
	// ListAll returns the whole catalog sorted by title.
	ListAll(ctx context.Context) ([]entity.Product, error)
	ListByOwner(ctx context.Context, userID string) ([]entity.Product, error)
	List(ctx context.Context, params ListProductsParams) (*ListProductsResult, error)
	Update(ctx context.Context, params UpdateProductParams) error
	Delete(ctx context.Context, productID string) error
}
