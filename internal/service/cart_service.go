package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/reelcart/storefront/internal/domain/entity"
	"github.com/reelcart/storefront/internal/platform/logger"
	"github.com/reelcart/storefront/internal/repository"
)

// CartLine is a cart item joined against the current product document.
type CartLine struct {
	Product  entity.Product
	Quantity int
	Subtotal float64
}

type CartView struct {
	Lines []CartLine
	Total float64
}

func (v *CartView) IsEmpty() bool {
	return len(v.Lines) == 0
}

type CartService interface {
	// AddItem adds one unit of the product to the user's cart, or bumps
	// the quantity when the product is already there.
	AddItem(ctx context.Context, userID, productID string) error
	// RemoveItem drops the whole cart line. Absent products are a no-op.
	RemoveItem(ctx context.Context, userID, productID string) error
	// GetCart returns the cart with product details populated. Lines whose
	// product no longer exists are dropped from the view.
	GetCart(ctx context.Context, userID string) (*CartView, error)
}

type cartService struct {
	userRepo    repository.UserRepository
	productRepo repository.ProductRepository
	log         logger.Logger
}

func NewCartService(userRepo repository.UserRepository, productRepo repository.ProductRepository, log logger.Logger) CartService {
	return &cartService{
		userRepo:    userRepo,
		productRepo: productRepo,
		log:         log,
	}
}

func (s *cartService) AddItem(ctx context.Context, userID, productID string) error {
	// The product must exist right now; the cart stores only a reference.
	_, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return err
	}
	return s.userRepo.AddCartItem(ctx, userID, productID, 1)
}

func (s *cartService) RemoveItem(ctx context.Context, userID, productID string) error {
	return s.userRepo.RemoveCartItem(ctx, userID, productID)
}

func (s *cartService) GetCart(ctx context.Context, userID string) (*CartView, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user for cart: %w", err)
	}

	view := &CartView{Lines: make([]CartLine, 0, len(user.Cart.Items))}
	for _, item := range user.Cart.Items {
		product, err := s.productRepo.GetByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				// The product was deleted after it was carted.
				s.log.Debugf("Dropping stale cart line %s for user %s", item.ProductID, userID)
				continue
			}
			return nil, fmt.Errorf("failed to load cart product %s: %w", item.ProductID, err)
		}
		view.Lines = append(view.Lines, CartLine{
			Product:  *product,
			Quantity: item.Quantity,
			Subtotal: float64(item.Quantity) * product.Price,
		})
		view.Total += float64(item.Quantity) * product.Price
	}
	return view, nil
}
