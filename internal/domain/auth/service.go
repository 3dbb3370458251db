// Package auth provides authentication and authorization domain logic.
package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"stockerp/internal/core/apperror"
	appctx "stockerp/internal/core/context"
	"stockerp/internal/core/id"
	"stockerp/internal/core/tx"
	"stockerp/pkg/logger"
)

// ServiceConfig holds auth service configuration.
type ServiceConfig struct {
	MaxLoginAttempts   int
	LockDuration       time.Duration
	PasswordMinLength  int
	RefreshTokenExpiry time.Duration
}

// DefaultServiceConfig returns default configuration.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		MaxLoginAttempts:   5,
		LockDuration:       15 * time.Minute,
		PasswordMinLength:  8,
		RefreshTokenExpiry: 7 * 24 * time.Hour,
	}
}

// Deps bundles the repositories and collaborators the service needs.
type Deps struct {
	Users     UserRepository
	Roles     RoleRepository
	Perms     PermissionRepository
	Tokens    TokenRepository
	TxManager tx.Manager
	JWT       *JWTService
}

// Service implements registration, login, token rotation and role management.
type Service struct {
	deps   Deps
	config ServiceConfig
}

// NewService creates a new auth service.
func NewService(deps Deps, config ServiceConfig) *Service {
	return &Service{deps: deps, config: config}
}

// Register creates a new user account and grants the default "user" role
// when one is configured.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	if err := s.validateRegistration(ctx, req); err != nil {
		return nil, err
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := NewUser(req.Email, string(passwordHash))
	user.FirstName = req.FirstName
	user.LastName = req.LastName

	err = s.deps.TxManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.deps.Users.Create(ctx, user); err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		s.grantDefaultRole(ctx, user)
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "user registered", "user_id", user.ID, "email", user.Email)
	return user, nil
}

func (s *Service) validateRegistration(ctx context.Context, req RegisterRequest) error {
	if req.Email == "" {
		return apperror.NewValidation("email is required").WithDetail("field", "email")
	}
	if len(req.Password) < s.config.PasswordMinLength {
		return apperror.NewValidation(
			fmt.Sprintf("password must be at least %d characters", s.config.PasswordMinLength),
		).WithDetail("field", "password")
	}

	exists, err := s.deps.Users.Exists(ctx, req.Email)
	if err != nil {
		return fmt.Errorf("check email exists: %w", err)
	}
	if exists {
		return apperror.NewConflict("email already registered").WithDetail("email", req.Email)
	}
	return nil
}

// grantDefaultRole assigns the "user" role when it exists. A missing role
// is not an error, the account just starts bare.
func (s *Service) grantDefaultRole(ctx context.Context, user *User) {
	defaultRole, err := s.deps.Roles.GetByCode(ctx, "user")
	if err != nil || defaultRole == nil {
		return
	}
	if err := s.deps.Users.AssignRole(ctx, user.ID, defaultRole.ID, id.Nil()); err != nil {
		logger.Warn(ctx, "failed to assign default role", "error", err)
	}
}

// Login verifies credentials and issues a token pair. Failed attempts count
// toward the lockout threshold; the error message never reveals whether the
// email or the password was wrong.
func (s *Service) Login(ctx context.Context, creds Credentials) (*TokenPair, *User, error) {
	user, err := s.deps.Users.GetByEmail(ctx, creds.Email)
	if err != nil {
		return nil, nil, apperror.NewUnauthorized("invalid credentials")
	}
	if err := user.CanLogin(); err != nil {
		return nil, nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)) != nil {
		user.RecordFailedLogin(s.config.MaxLoginAttempts, s.config.LockDuration)
		_ = s.deps.Users.Update(ctx, user)
		return nil, nil, apperror.NewUnauthorized("invalid credentials")
	}

	if err := s.loadAuthz(ctx, user); err != nil {
		return nil, nil, err
	}

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, fmt.Errorf("generate tokens: %w", err)
	}

	user.RecordSuccessfulLogin()
	_ = s.deps.Users.Update(ctx, user)

	logger.Info(ctx, "user logged in", "user_id", user.ID, "email", user.Email)
	return tokens, user, nil
}

// RefreshToken rotates a refresh token: the presented token is revoked and a
// fresh pair is issued.
func (s *Service) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	token, err := s.deps.Tokens.GetRefreshToken(ctx, hashToken(refreshToken))
	if err != nil {
		return nil, apperror.NewUnauthorized("invalid refresh token")
	}
	if !token.IsValid() {
		return nil, apperror.NewUnauthorized("refresh token expired or revoked")
	}

	user, err := s.deps.Users.GetByID(ctx, token.UserID)
	if err != nil {
		return nil, apperror.NewUnauthorized("user not found")
	}
	if err := user.CanLogin(); err != nil {
		return nil, err
	}
	if err := s.loadAuthz(ctx, user); err != nil {
		return nil, err
	}

	_ = s.deps.Tokens.RevokeRefreshToken(ctx, token.ID, "refreshed")

	return s.issueTokens(ctx, user)
}

// Logout revokes all of the user's refresh tokens.
func (s *Service) Logout(ctx context.Context, userID id.ID) error {
	return s.deps.Tokens.RevokeAllUserTokens(ctx, userID, "logout")
}

// GetUserByID retrieves a user with roles and permissions loaded.
func (s *Service) GetUserByID(ctx context.Context, userID id.ID) (*User, error) {
	user, err := s.deps.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, apperror.NewNotFound("user", userID.String())
	}
	if err := s.loadAuthz(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ListUsers lists users with filtering.
func (s *Service) ListUsers(ctx context.Context, filter UserFilter) ([]User, int, error) {
	return s.deps.Users.List(ctx, filter)
}

// AssignRole grants a role to a user, recording who granted it.
func (s *Service) AssignRole(ctx context.Context, userID id.ID, roleCode string) error {
	role, err := s.resolveUserAndRole(ctx, userID, roleCode)
	if err != nil {
		return err
	}

	var grantedBy id.ID
	if current := appctx.GetUser(ctx); current != nil {
		grantedBy, _ = id.Parse(current.UserID)
	}

	if err := s.deps.Users.AssignRole(ctx, userID, role.ID, grantedBy); err != nil {
		return fmt.Errorf("assign role: %w", err)
	}

	logger.Info(ctx, "role assigned", "user_id", userID, "role", roleCode, "granted_by", grantedBy)
	return nil
}

// RevokeRole removes a role from a user.
func (s *Service) RevokeRole(ctx context.Context, userID id.ID, roleCode string) error {
	role, err := s.resolveUserAndRole(ctx, userID, roleCode)
	if err != nil {
		return err
	}
	return s.deps.Users.RevokeRole(ctx, userID, role.ID)
}

func (s *Service) resolveUserAndRole(ctx context.Context, userID id.ID, roleCode string) (*Role, error) {
	if _, err := s.deps.Users.GetByID(ctx, userID); err != nil {
		return nil, apperror.NewNotFound("user", userID.String())
	}
	role, err := s.deps.Roles.GetByCode(ctx, roleCode)
	if err != nil {
		return nil, apperror.NewNotFound("role", roleCode)
	}
	return role, nil
}

// CreateRole creates a new role.
func (s *Service) CreateRole(ctx context.Context, code, name, description string) (*Role, error) {
	role := NewRole(code, name)
	role.Description = description

	if err := s.deps.Roles.Create(ctx, role); err != nil {
		return nil, fmt.Errorf("create role: %w", err)
	}
	return role, nil
}

// ListRoles lists all roles.
func (s *Service) ListRoles(ctx context.Context) ([]Role, error) {
	return s.deps.Roles.List(ctx)
}

// ListPermissions lists all permissions.
func (s *Service) ListPermissions(ctx context.Context) ([]Permission, error) {
	return s.deps.Perms.List(ctx)
}

// loadAuthz populates the user's roles and effective permissions.
func (s *Service) loadAuthz(ctx context.Context, user *User) error {
	roles, err := s.deps.Users.LoadRoles(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("load roles: %w", err)
	}
	permissions, err := s.deps.Users.LoadPermissions(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("load permissions: %w", err)
	}

	user.Roles = roles
	user.Permissions = permissions
	return nil
}

// issueTokens creates an access token with embedded claims and persists a
// hashed refresh token. Only the hash is stored; the raw value goes to the
// client once.
func (s *Service) issueTokens(ctx context.Context, user *User) (*TokenPair, error) {
	roleCodes := make([]string, len(user.Roles))
	for i, r := range user.Roles {
		roleCodes[i] = r.Code
	}

	accessToken, expiresAt, err := s.deps.JWT.GenerateAccessToken(
		user.ID.String(), user.Email, roleCodes, user.Permissions, user.IsAdmin)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	raw, err := randomToken(32)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	refreshToken := &RefreshToken{
		ID:        id.New(),
		UserID:    user.ID,
		TokenHash: hashToken(raw),
		ExpiresAt: time.Now().Add(s.config.RefreshTokenExpiry),
		CreatedAt: time.Now(),
	}
	if err := s.deps.Tokens.SaveRefreshToken(ctx, refreshToken); err != nil {
		return nil, fmt.Errorf("save refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: raw,
		ExpiresAt:    expiresAt,
		TokenType:    "Bearer",
	}, nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func randomToken(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
