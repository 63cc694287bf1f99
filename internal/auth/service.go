package auth

import (
	"context"
	"fmt"

	"github.com/jorik41/plctester/internal/config"
	"github.com/jorik41/plctester/internal/storage"
)

type Role string

const (
	RoleOperator Role = "operator"
	RoleAdmin    Role = "admin"
)

// AuthService authenticates operators against the users table and issues
// short-lived access tokens for the REST and websocket surfaces.
type AuthService struct {
	storage        *storage.PostgresClient
	jwtHandler     *JWTHandler
	passwordHasher *PasswordHasher
}

func NewAuthService(store *storage.PostgresClient, cfg config.AuthConfig) *AuthService {
	return &AuthService{
		storage:        store,
		jwtHandler:     NewJWTHandler(cfg.GetJWTSecret(), cfg.AccessTokenTTL),
		passwordHasher: NewPasswordHasher(),
	}
}

// Login verifies credentials and returns an access token.
func (a *AuthService) Login(ctx context.Context, username, password string) (string, *storage.User, error) {
	user, err := a.storage.GetUserByUsername(ctx, username)
	if err != nil {
		return "", nil, fmt.Errorf("invalid credentials")
	}

	valid, err := a.passwordHasher.VerifyPassword(password, user.PasswordHash)
	if err != nil || !valid {
		return "", nil, fmt.Errorf("invalid credentials")
	}

	token, err := a.jwtHandler.GenerateAccessToken(user.ID, user.Username, user.Role)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	return token, user, nil
}

// ValidateToken parses and checks an access token.
func (a *AuthService) ValidateToken(token string) (*JWTClaims, error) {
	return a.jwtHandler.ValidateAccessToken(token)
}

// roleAllows reports whether the holder role satisfies the required role.
// Admins may do everything operators may.
func roleAllows(holder, required Role) bool {
	if holder == RoleAdmin {
		return true
	}
	return holder == required
}
