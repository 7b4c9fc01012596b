package entity

import (
	"errors"
	"time"
)

// OrderUser is the identity snapshot stored on an order.
type OrderUser struct {
	Email  string
	UserID string
}

// ProductSnapshot is a full copy of the product at order-creation time.
// Orders stay intact when the source product is later edited or deleted.
type ProductSnapshot struct {
	ProductID   string
	Title       string
	Description string
	Price       float64
	ImageURL    string
}

type OrderItem struct {
	Quantity int
	Product  ProductSnapshot
}

func NewOrderItem(quantity int, p *Product) (*OrderItem, error) {
	if p == nil {
		return nil, errors.New("product cannot be nil")
	}
	if quantity <= 0 {
		return nil, errors.New("quantity must be positive")
	}
	return &OrderItem{
		Quantity: quantity,
		Product: ProductSnapshot{
			ProductID:   p.ID,
			Title:       p.Title,
			Description: p.Description,
			Price:       p.Price,
			ImageURL:    p.ImageURL,
		},
	}, nil
}

type Order struct {
	ID string
	// CheckoutSessionID makes order placement idempotent: the orders
	// collection carries a unique sparse index on it, so retrying a
	// confirmed checkout can never materialize a second order.
	CheckoutSessionID string
	User              OrderUser
	Items             []OrderItem
	Total             float64
	CreatedAt         time.Time
}

func NewOrder(user OrderUser, items []OrderItem, checkoutSessionID string) (*Order, error) {
	if user.UserID == "" {
		return nil, errors.New("user ID cannot be empty")
	}
	if len(items) == 0 {
		return nil, errors.New("order must contain at least one item")
	}

	order := &Order{
		CheckoutSessionID: checkoutSessionID,
		User:              user,
		Items:             items,
		CreatedAt:         time.Now().UTC(),
	}
	order.CalculateTotal()
	return order, nil
}

func (o *Order) CalculateTotal() {
	var total float64
	for _, item := range o.Items {
		total += float64(item.Quantity) * item.Product.Price
	}
	o.Total = total
}
