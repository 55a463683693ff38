package domain

import "time"

// AuthProviderLocal marks users created through the local register endpoint.
// OAuth-originated users carry the external provider's name instead.
const AuthProviderLocal = "local"

// User represents a user account, either locally registered or reconciled
// from an external identity provider.
type User struct {
	ID           string    `json:"id" bson:"_id,omitempty"`
	Name         string    `json:"name" bson:"name"`
	Email        string    `json:"email" bson:"email"`
	AuthProvider string    `json:"authProvider" bson:"auth_provider"`
	ExternalID   string    `json:"-" bson:"external_id,omitempty"`
	PasswordHash string    `json:"-" bson:"password_hash,omitempty"`
	CreatedAt    time.Time `json:"-" bson:"created_at"`
	UpdatedAt    time.Time `json:"-" bson:"updated_at"`
}

// IsOAuthUser reports whether the user was provisioned from an external
// identity provider rather than local registration.
func (u *User) IsOAuthUser() bool {
	return u.AuthProvider != "" && u.AuthProvider != AuthProviderLocal
}
