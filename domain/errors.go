package domain

import "errors"

var (
	// OAuth flow errors
	ErrMissingState   = errors.New("missing state parameter")
	ErrInvalidState   = errors.New("invalid or expired state parameter")
	ErrTokenExchange  = errors.New("token exchange failed")
	ErrMalformedToken = errors.New("malformed identity token")
	ErrReconciliation = errors.New("failed to reconcile user from claims")

	// Local account errors
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
)
