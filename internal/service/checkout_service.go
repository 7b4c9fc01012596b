package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/reelcart/storefront/internal/adapter/nats"
	"github.com/reelcart/storefront/internal/adapter/payment"
	"github.com/reelcart/storefront/internal/domain/entity"
	"github.com/reelcart/storefront/internal/platform/logger"
	"github.com/reelcart/storefront/internal/repository"
)

const natsSubjectOrderCreated = "order.created"

// OrderCreatedEvent is published after an order is stored.
type OrderCreatedEvent struct {
	OrderID   string    `json:"order_id"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Total     float64   `json:"total"`
	CreatedAt time.Time `json:"created_at"`
}

type CheckoutService interface {
	// StartCheckout creates a hosted payment session from the current cart
	// contents and returns it together with the cart view for rendering.
	StartCheckout(ctx context.Context, userID string) (*payment.CheckoutSession, *CartView, error)
	// PlaceOrder snapshots the cart into an immutable order. A checkout
	// session that already produced an order is a no-op.
	PlaceOrder(ctx context.Context, userID, checkoutSessionID string) (string, error)
	ListOrders(ctx context.Context, userID string) ([]entity.Order, error)
	// GetOrderForUser returns ErrForbidden when the order belongs to
	// someone else.
	GetOrderForUser(ctx context.Context, orderID, userID string) (*entity.Order, error)
}

type checkoutService struct {
	orderRepo   repository.OrderRepository
	userRepo    repository.UserRepository
	cartService CartService
	provider    payment.CheckoutProvider
	publisher   nats.MessagePublisher
	baseURL     string
	log         logger.Logger
}

func NewCheckoutService(
	orderRepo repository.OrderRepository,
	userRepo repository.UserRepository,
	cartService CartService,
	provider payment.CheckoutProvider,
	publisher nats.MessagePublisher,
	baseURL string,
	log logger.Logger,
) CheckoutService {
	return &checkoutService{
		orderRepo:   orderRepo,
		userRepo:    userRepo,
		cartService: cartService,
		provider:    provider,
		publisher:   publisher,
		baseURL:     baseURL,
		log:         log,
	}
}

func (s *checkoutService) StartCheckout(ctx context.Context, userID string) (*payment.CheckoutSession, *CartView, error) {
	cart, err := s.cartService.GetCart(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	if cart.IsEmpty() {
		return nil, nil, ErrEmptyCart
	}

	items := make([]payment.LineItem, 0, len(cart.Lines))
	for _, line := range cart.Lines {
		items = append(items, payment.LineItem{
			Name:        line.Product.Title,
			Description: line.Product.Description,
			UnitPrice:   line.Product.Price,
			Quantity:    line.Quantity,
		})
	}

	// The provider substitutes its session ID into the success URL, which
	// carries it back as the order idempotency key.
	successURL := s.baseURL + "/checkout/success?session_id={CHECKOUT_SESSION_ID}"
	cancelURL := s.baseURL + "/checkout/cancel"

	session, err := s.provider.CreateSession(ctx, items, successURL, cancelURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create checkout session: %w", err)
	}
	return session, cart, nil
}

func (s *checkoutService) PlaceOrder(ctx context.Context, userID, checkoutSessionID string) (string, error) {
	// The session ID is the idempotency key; an order stored without one
	// would slip past the unique index and could be placed twice.
	if checkoutSessionID == "" {
		return "", ErrMissingCheckoutSession
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to load user for order: %w", err)
	}

	cart, err := s.cartService.GetCart(ctx, userID)
	if err != nil {
		return "", err
	}
	if cart.IsEmpty() {
		return "", ErrEmptyCart
	}

	items := make([]entity.OrderItem, 0, len(cart.Lines))
	for _, line := range cart.Lines {
		item, err := entity.NewOrderItem(line.Quantity, &line.Product)
		if err != nil {
			return "", fmt.Errorf("failed to build order item: %w", err)
		}
		items = append(items, *item)
	}

	order, err := entity.NewOrder(entity.OrderUser{Email: user.Email, UserID: user.ID}, items, checkoutSessionID)
	if err != nil {
		return "", fmt.Errorf("failed to build order: %w", err)
	}

	orderID, err := s.orderRepo.Create(ctx, order)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			// A retried success redirect for a session that already
			// produced an order. Nothing left to do.
			s.log.Infof("Order for checkout session %s already placed", checkoutSessionID)
			return "", nil
		}
		return "", fmt.Errorf("failed to store order: %w", err)
	}

	s.clearCart(ctx, userID, orderID)
	s.publishOrderCreated(ctx, orderID, order)

	s.log.Infof("Order placed: %s for user %s (total %.2f)", orderID, userID, order.Total)
	return orderID, nil
}

// clearCart empties the cart after a successful order. The order is already
// durable at this point, so a failed clear is retried once and otherwise
// only logged; the user must not lose the order over it.
func (s *checkoutService) clearCart(ctx context.Context, userID, orderID string) {
	err := s.userRepo.ClearCart(ctx, userID)
	if err == nil {
		return
	}
	s.log.Warnf("Failed to clear cart for user %s after order %s, retrying: %v", userID, orderID, err)
	if err := s.userRepo.ClearCart(ctx, userID); err != nil {
		s.log.Errorf("Failed to clear cart for user %s after order %s: %v", userID, orderID, err)
	}
}

func (s *checkoutService) publishOrderCreated(ctx context.Context, orderID string, order *entity.Order) {
	event := OrderCreatedEvent{
		OrderID:   orderID,
		UserID:    order.User.UserID,
		Email:     order.User.Email,
		Total:     order.Total,
		CreatedAt: order.CreatedAt,
	}
	if err := s.publisher.Publish(ctx, natsSubjectOrderCreated, event); err != nil {
		s.log.Warnf("Failed to publish %s event for order %s: %v", natsSubjectOrderCreated, orderID, err)
	}
}

func (s *checkoutService) ListOrders(ctx context.Context, userID string) ([]entity.Order, error) {
	return s.orderRepo.ListByUser(ctx, userID)
}

func (s *checkoutService) GetOrderForUser(ctx context.Context, orderID, userID string) (*entity.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.User.UserID != userID {
		return nil, ErrForbidden
	}
	return order, nil
}
