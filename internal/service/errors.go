package service

import "errors"

var (
	// ErrInvalidCredentials covers both an unknown email and a wrong
	// password so login failures do not reveal which one it was.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrInvalidResetToken covers unknown, expired and already-used
	// password reset tokens.
	ErrInvalidResetToken = errors.New("password reset token is invalid or expired")

	// ErrForbidden means the acting user is not allowed to see or change
	// the resource.
	ErrForbidden = errors.New("access to this resource is forbidden")

	// ErrEmptyCart means checkout was attempted with nothing in the cart.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrMissingCheckoutSession means order placement was attempted without
	// a checkout session ID. Without it the idempotency guard cannot hold.
	ErrMissingCheckoutSession = errors.New("checkout session id is required")
)
