package service

import (
	"context"
	"testing"

	"github.com/reelcart/storefront/internal/domain/entity"
	"github.com/reelcart/storefront/internal/platform/logger"
	"github.com/reelcart/storefront/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestAddItemRequiresExistingProduct(t *testing.T) {
	userRepo := new(MockUserRepository)
	productRepo := new(MockProductRepository)
	productRepo.On("GetByID", mock.Anything, "ghost").Return(nil, repository.ErrNotFound)

	svc := NewCartService(userRepo, productRepo, logger.NopLogger{})
	err := svc.AddItem(context.Background(), "u1", "ghost")

	assert.ErrorIs(t, err, repository.ErrNotFound)
	userRepo.AssertNotCalled(t, "AddCartItem", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAddItemAddsOneUnit(t *testing.T) {
	userRepo := new(MockUserRepository)
	userRepo.On("AddCartItem", mock.Anything, "u1", "p1", 1).Return(nil)

	productRepo := new(MockProductRepository)
	productRepo.On("GetByID", mock.Anything, "p1").Return(&entity.Product{ID: "p1"}, nil)

	svc := NewCartService(userRepo, productRepo, logger.NopLogger{})
	err := svc.AddItem(context.Background(), "u1", "p1")

	assert.NoError(t, err)
	userRepo.AssertExpectations(t)
}

func TestGetCartPopulatesProducts(t *testing.T) {
	user := &entity.User{
		ID: "u1",
		Cart: entity.Cart{Items: []entity.CartItem{
			{ProductID: "p1", Quantity: 2},
			{ProductID: "p2", Quantity: 1},
		}},
	}

	userRepo := new(MockUserRepository)
	userRepo.On("GetByID", mock.Anything, "u1").Return(user, nil)

	productRepo := new(MockProductRepository)
	productRepo.On("GetByID", mock.Anything, "p1").Return(&entity.Product{ID: "p1", Title: "Alpha", Price: 100}, nil)
	productRepo.On("GetByID", mock.Anything, "p2").Return(&entity.Product{ID: "p2", Title: "Beta", Price: 50}, nil)

	svc := NewCartService(userRepo, productRepo, logger.NopLogger{})
	cart, err := svc.GetCart(context.Background(), "u1")

	assert.NoError(t, err)
	assert.Len(t, cart.Lines, 2)
	assert.Equal(t, 200.0, cart.Lines[0].Subtotal)
	assert.Equal(t, 250.0, cart.Total)
}

func TestGetCartDropsStaleLines(t *testing.T) {
	user := &entity.User{
		ID: "u1",
		Cart: entity.Cart{Items: []entity.CartItem{
			{ProductID: "deleted", Quantity: 3},
			{ProductID: "p2", Quantity: 1},
		}},
	}

	userRepo := new(MockUserRepository)
	userRepo.On("GetByID", mock.Anything, "u1").Return(user, nil)

	productRepo := new(MockProductRepository)
	productRepo.On("GetByID", mock.Anything, "deleted").Return(nil, repository.ErrNotFound)
	productRepo.On("GetByID", mock.Anything, "p2").Return(&entity.Product{ID: "p2", Price: 50}, nil)

	svc := NewCartService(userRepo, productRepo, logger.NopLogger{})
	cart, err := svc.GetCart(context.Background(), "u1")

	assert.NoError(t, err)
	assert.Len(t, cart.Lines, 1)
	assert.Equal(t, 50.0, cart.Total)
}

func TestRemoveItemDelegates(t *testing.T) {
	userRepo := new(MockUserRepository)
	userRepo.On("RemoveCartItem", mock.Anything, "u1", "p1").Return(nil)

	svc := NewCartService(userRepo, new(MockProductRepository), logger.NopLogger{})
	err := svc.RemoveItem(context.Background(), "u1", "p1")

	assert.NoError(t, err)
	userRepo.AssertExpectations(t)
}
