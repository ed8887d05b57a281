package service

import (
	"time"

	"github.com/spec-kit/org-service/internal/auth"
	"github.com/spec-kit/org-service/internal/config"
	apperrors "github.com/spec-kit/org-service/pkg/util"
)

// AuthService issues tokens to the configured service client. The platform's
// end-user authentication lives in the external identity provider; this only
// guards the org administration surface.
type AuthService struct {
	tokens     *auth.TokenManager
	clientID   string
	secretHash string
}

// NewAuthService constructs the service.
func NewAuthService(cfg config.AuthConfig) *AuthService {
	return &AuthService{
		tokens:     auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes),
		clientID:   cfg.ClientID,
		secretHash: cfg.ClientSecretHash,
	}
}

// TokenManager exposes the underlying manager for middleware wiring.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokens
}

// LoginClient verifies the client credential and issues a bearer token.
func (s *AuthService) LoginClient(clientID, secret string) (string, time.Time, error) {
	if s.secretHash == "" {
		return "", time.Time{}, apperrors.NewUnauthorized("client authentication not configured")
	}
	if clientID != s.clientID {
		return "", time.Time{}, apperrors.NewUnauthorized("unknown client")
	}
	if err := auth.CompareSecret(s.secretHash, secret); err != nil {
		return "", time.Time{}, apperrors.NewUnauthorized("invalid client secret")
	}

	token, expiresAt, err := s.tokens.GenerateToken(clientID, []string{auth.RoleOrgAdmin})
	if err != nil {
		return "", time.Time{}, apperrors.NewInternalError(err)
	}
	return token, expiresAt, nil
}
