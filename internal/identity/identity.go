package identity

import (
	"context"
	"errors"
)

var (
	ErrEmailInUse        = errors.New("email already in use")
	ErrInvalidCredential = errors.New("invalid credential")
	ErrWeakPassword      = errors.New("weak password")
	ErrInvalidEmail      = errors.New("invalid email")
	ErrUserNotFound      = errors.New("user not found")
)

const MinPasswordLength = 6

// Identity is a signed in user. UserID is stable for the lifetime of the account.
type Identity struct {
	UserID string
	Email  string
}

// Provider signs users up, in and out, and tells listeners about every
// change of the signed in identity (nil once signed out).
type Provider interface {
	SignUp(ctx context.Context, email, password string) (Identity, error)
	SignIn(ctx context.Context, email, password string) error
	SignOut(ctx context.Context) error
	OnIdentityChange(listener func(*Identity)) (cancel func())
}

// Message maps a provider error to what the user is shown.
func Message(err error) string {
	switch {
	case errors.Is(err, ErrInvalidCredential):
		return "Invalid email or password."
	case errors.Is(err, ErrEmailInUse):
		return "This email is already in use."
	case errors.Is(err, ErrWeakPassword):
		return "Password must have at least 6 characters."
	case errors.Is(err, ErrInvalidEmail):
		return "Please enter a valid email."
	default:
		return "Something went wrong. Check your connection and try again."
	}
}
