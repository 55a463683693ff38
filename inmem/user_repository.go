// Package inmem provides an in-memory UserRepository for development and
// tests. Like the CSRF state store, its contents do not survive a restart.
package inmem

import (
	"context"
	"sync"

	"oauth-backend/domain"
)

// UserRepository stores users in process memory, indexed by id, email and
// external id.
type UserRepository struct {
	mu           sync.RWMutex
	byID         map[string]*domain.User
	byEmail      map[string]*domain.User
	byExternalID map[string]*domain.User
}

// NewUserRepository creates an empty in-memory user repository.
func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:         make(map[string]*domain.User),
		byEmail:      make(map[string]*domain.User),
		byExternalID: make(map[string]*domain.User),
	}
}

// CreateUser implements domain.UserRepository.
func (r *UserRepository) CreateUser(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[user.Email]; exists {
		return domain.ErrDuplicateEmail
	}

	stored := *user
	r.byID[stored.ID] = &stored
	r.byEmail[stored.Email] = &stored
	if stored.ExternalID != "" {
		r.byExternalID[stored.ExternalID] = &stored
	}
	return nil
}

// GetUserByID implements domain.UserRepository.
func (r *UserRepository) GetUserByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return copyOf(r.byID[id])
}

// GetUserByEmail implements domain.UserRepository.
func (r *UserRepository) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return copyOf(r.byEmail[email])
}

// GetUserByExternalID implements domain.UserRepository.
func (r *UserRepository) GetUserByExternalID(_ context.Context, externalID string) (*domain.User, error) {
	if externalID == "" {
		return nil, domain.ErrUserNotFound
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return copyOf(r.byExternalID[externalID])
}

// UpdateUser implements domain.UserRepository.
func (r *UserRepository) UpdateUser(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.byID[user.ID]
	if !ok {
		return domain.ErrUserNotFound
	}

	delete(r.byEmail, existing.Email)
	if existing.ExternalID != "" {
		delete(r.byExternalID, existing.ExternalID)
	}

	stored := *user
	r.byID[stored.ID] = &stored
	r.byEmail[stored.Email] = &stored
	if stored.ExternalID != "" {
		r.byExternalID[stored.ExternalID] = &stored
	}
	return nil
}

func copyOf(user *domain.User) (*domain.User, error) {
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	u := *user
	return &u, nil
}
