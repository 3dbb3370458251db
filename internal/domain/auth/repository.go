// Package auth provides authentication and authorization domain logic.
package auth

import (
	"context"

	"stockerp/internal/core/id"
)

// UserRepository defines user storage operations. Deletes are soft:
// removed users stay in the table but disappear from every lookup.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, userID id.ID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, user *User) error
	Delete(ctx context.Context, userID id.ID) error

	// List returns the matching page plus the unpaginated total.
	List(ctx context.Context, filter UserFilter) ([]User, int, error)

	// LoadRoles and LoadPermissions hydrate the relations the row scan
	// leaves empty. Permissions come back flattened across all roles.
	LoadRoles(ctx context.Context, userID id.ID) ([]Role, error)
	LoadPermissions(ctx context.Context, userID id.ID) ([]string, error)

	// AssignRole is idempotent; grantedBy may be the zero ID for
	// system-initiated grants.
	AssignRole(ctx context.Context, userID, roleID id.ID, grantedBy id.ID) error
	RevokeRole(ctx context.Context, userID, roleID id.ID) error

	// Exists checks whether an account with the email exists.
	Exists(ctx context.Context, email string) (bool, error)
}

// RoleRepository defines role storage operations. System roles cannot be
// deleted.
type RoleRepository interface {
	Create(ctx context.Context, role *Role) error
	GetByID(ctx context.Context, roleID id.ID) (*Role, error)
	GetByCode(ctx context.Context, code string) (*Role, error)
	Update(ctx context.Context, role *Role) error
	Delete(ctx context.Context, roleID id.ID) error
	List(ctx context.Context) ([]Role, error)

	LoadPermissions(ctx context.Context, roleID id.ID) ([]Permission, error)
	AssignPermission(ctx context.Context, roleID, permissionID id.ID) error
	RevokePermission(ctx context.Context, roleID, permissionID id.ID) error
}

// PermissionRepository reads the seeded permission catalog.
type PermissionRepository interface {
	GetByCode(ctx context.Context, code string) (*Permission, error)
	List(ctx context.Context) ([]Permission, error)
	ListByResource(ctx context.Context, resource string) ([]Permission, error)
}

// TokenRepository stores refresh token hashes.
type TokenRepository interface {
	SaveRefreshToken(ctx context.Context, token *RefreshToken) error

	// GetRefreshToken looks a token up by its SHA-256 hash. Revoked tokens
	// are returned too; callers decide what revocation means.
	GetRefreshToken(ctx context.Context, tokenHash string) (*RefreshToken, error)

	RevokeRefreshToken(ctx context.Context, tokenID id.ID, reason string) error
	RevokeAllUserTokens(ctx context.Context, userID id.ID, reason string) error

	// CleanupExpiredTokens removes dead tokens, returning how many.
	CleanupExpiredTokens(ctx context.Context) (int, error)
}

// UserFilter for listing users.
type UserFilter struct {
	Search   string
	IsActive *bool
	RoleCode string
	Limit    int
	Offset   int
}
