package entity

import (
	"regexp"
	"time"
)

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

type CartItem struct {
	ProductID string
	Quantity  int
}

// Cart is a value snapshot of the user's stored cart. Mutations never go
// through it; they are atomic single-document updates in the repository.
type Cart struct {
	Items []CartItem
}

func NewCart() Cart {
	return Cart{Items: make([]CartItem, 0)}
}

type User struct {
	ID                  string
	Email               string
	PasswordHash        string
	Role                Role
	ResetToken          string
	ResetTokenExpiresAt *time.Time
	Cart                Cart
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// HasValidResetToken reports whether a reset token is pending and not yet
// expired. Expiry is checked against the supplied time on every call, never
// cached.
func (u *User) HasValidResetToken(now time.Time) bool {
	if u.ResetToken == "" || u.ResetTokenExpiresAt == nil {
		return false
	}
	return u.ResetTokenExpiresAt.After(now)
}

var emailRX = regexp.MustCompile(`^[a-zA-Z0-9.!#$%&'*+/=?^_` + "`" + `{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$`)

const PasswordMinLen = 5

// ValidateSignupInput returns field-level validation errors for a signup
// form. An empty map means the input is valid.
func ValidateSignupInput(email, password, confirmPassword string, role Role) map[string]string {
	fields := make(map[string]string)
	if !emailRX.MatchString(email) {
		fields["email"] = "invalid email"
	}
	if len(password) < PasswordMinLen {
		fields["password"] = "password length should be at least 5"
	}
	if confirmPassword != password {
		fields["confirmPassword"] = "passwords do not match"
	}
	if role != RoleAdmin && role != RoleUser {
		fields["role"] = "role must be admin or user"
	}
	return fields
}
