package entity

import (
	"strings"
	"time"
)

const (
	TitleMinLen       = 3
	DescriptionMaxLen = 512
)

type Product struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	ImageURL    string    `json:"image_url"`
	UserID      string    `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ValidateProductInput returns field-level validation errors for a product
// form. An empty map means the input is valid.
func ValidateProductInput(title, description string, price float64) map[string]string {
	fields := make(map[string]string)
	if len(strings.TrimSpace(title)) < TitleMinLen {
		fields["title"] = "title must be at least 3 characters"
	}
	if price < 0 {
		fields["price"] = "price cannot be negative"
	}
	if len(description) > DescriptionMaxLen {
		fields["description"] = "description must be at most 512 characters"
	}
	return fields
}
