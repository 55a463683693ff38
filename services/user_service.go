// Package services holds the application services sitting between the HTTP
// boundary and the persistence layer.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"oauth-backend/domain"
)

// PasswordHasher hashes and verifies local account passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hashedPassword, password string) error
}

// UserService implements local account management and OAuth user
// reconciliation on top of a UserRepository.
type UserService struct {
	users        domain.UserRepository
	hasher       PasswordHasher
	providerName string
}

// NewUserService creates a UserService. providerName is recorded as the
// AuthProvider of users reconciled from the external identity provider.
func NewUserService(users domain.UserRepository, hasher PasswordHasher, providerName string) *UserService {
	return &UserService{
		users:        users,
		hasher:       hasher,
		providerName: providerName,
	}
}

// Register creates a local account. The plaintext password is hashed and
// discarded; it is never stored or returned.
func (s *UserService) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	if existing, err := s.users.GetUserByEmail(ctx, email); err == nil && existing != nil {
		return nil, domain.ErrDuplicateEmail
	} else if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("checking existing email: %w", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		AuthProvider: domain.AuthProviderLocal,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		// The repository may race us to the duplicate check.
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}

	log.Info().Str("user_id", user.ID).Msg("registered local user")

	return user, nil
}

// Authenticate verifies a local account's credentials. Unknown email and
// wrong password both fail with ErrInvalidCredentials so responses cannot be
// used to enumerate accounts.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	if user.PasswordHash == "" {
		// OAuth-provenance account, no local credential to match.
		return nil, domain.ErrInvalidCredentials
	}
	if err := s.hasher.Verify(user.PasswordHash, password); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}

// ReconcileOAuthUser maps decoded identity claims onto a local user record,
// creating it on first login and refreshing the mutable display fields on
// subsequent logins. No password is ever set on this path.
func (s *UserService) ReconcileOAuthUser(ctx context.Context, name, email, externalID string) (*domain.User, error) {
	if externalID == "" {
		return nil, fmt.Errorf("%w: identity token carried no subject", domain.ErrReconciliation)
	}

	user, err := s.users.GetUserByExternalID(ctx, externalID)
	if errors.Is(err, domain.ErrUserNotFound) && email != "" {
		user, err = s.users.GetUserByEmail(ctx, email)
	}
	switch {
	case err == nil:
		user.Name = name
		user.Email = email
		user.UpdatedAt = time.Now().UTC()
		if user.ExternalID == "" {
			user.ExternalID = externalID
			user.AuthProvider = s.providerName
		}
		if err := s.users.UpdateUser(ctx, user); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrReconciliation, err)
		}
		return user, nil

	case errors.Is(err, domain.ErrUserNotFound):
		now := time.Now().UTC()
		user = &domain.User{
			ID:           uuid.NewString(),
			Name:         name,
			Email:        email,
			AuthProvider: s.providerName,
			ExternalID:   externalID,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := s.users.CreateUser(ctx, user); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrReconciliation, err)
		}
		log.Info().
			Str("user_id", user.ID).
			Str("provider", s.providerName).
			Msg("created user from identity claims")
		return user, nil

	default:
		return nil, fmt.Errorf("%w: %v", domain.ErrReconciliation, err)
	}
}

// GetUserByID fetches a user by its id.
func (s *UserService) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	return s.users.GetUserByID(ctx, id)
}

// GetUserByEmail fetches a user by email.
func (s *UserService) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.users.GetUserByEmail(ctx, email)
}
