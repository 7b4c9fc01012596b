package http

import (
	"context"

	"github.com/reelcart/storefront/internal/domain/entity"
	"github.com/reelcart/storefront/internal/repository"
	"github.com/reelcart/storefront/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) Index(ctx context.Context, page int) (*repository.ListProductsResult, error) {
	args := m.Called(ctx, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.ListProductsResult), args.Error(1)
}

func (m *MockCatalogService) ListCatalog(ctx context.Context) ([]entity.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Product), args.Error(1)
}

func (m *MockCatalogService) GetProduct(ctx context.Context, productID string) (*entity.Product, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Product), args.Error(1)
}

func (m *MockCatalogService) Search(ctx context.Context, query string, page int) (*repository.ListProductsResult, error) {
	args := m.Called(ctx, query, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.ListProductsResult), args.Error(1)
}

func (m *MockCatalogService) ListByOwner(ctx context.Context, userID string) ([]entity.Product, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Product), args.Error(1)
}

func (m *MockCatalogService) CreateProduct(ctx context.Context, userID string, input service.ProductInput) (string, map[string]string, error) {
	args := m.Called(ctx, userID, input)
	var fields map[string]string
	if args.Get(1) != nil {
		fields = args.Get(1).(map[string]string)
	}
	return args.String(0), fields, args.Error(2)
}

func (m *MockCatalogService) UpdateProduct(ctx context.Context, productID string, input service.ProductInput) (map[string]string, error) {
	args := m.Called(ctx, productID, input)
	var fields map[string]string
	if args.Get(0) != nil {
		fields = args.Get(0).(map[string]string)
	}
	return fields, args.Error(1)
}

func (m *MockCatalogService) DeleteProduct(ctx context.Context, productID string) error {
	args := m.Called(ctx, productID)
	return args.Error(0)
}
