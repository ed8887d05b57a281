package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/org-service/internal/api/dto"
	"github.com/spec-kit/org-service/internal/service"
	apperrors "github.com/spec-kit/org-service/pkg/util"
)

// AuthHandler issues tokens to service clients.
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Token handles POST /auth/token.
func (h *AuthHandler) Token(c *fiber.Ctx) error {
	var req dto.ClientLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.ClientID == "" || req.ClientSecret == "" {
		return apperrors.NewValidationError("client_id and client_secret required", nil)
	}

	token, expiresAt, err := h.authService.LoginClient(req.ClientID, req.ClientSecret)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.AuthResponse{Token: token, ExpiresAt: expiresAt}})
}
