package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/token-auth-service/internal/api/dto"
	"github.com/spec-kit/token-auth-service/internal/domain"
	"github.com/spec-kit/token-auth-service/internal/service"
	apperrors "github.com/spec-kit/token-auth-service/pkg/util/errorutil"
)

// TokenHandler exposes token issuance and revocation.
type TokenHandler struct {
	tokens *service.TokenService
}

// NewTokenHandler constructs handler.
func NewTokenHandler(tokens *service.TokenService) *TokenHandler {
	return &TokenHandler{tokens: tokens}
}

// Issue handles POST /api/v1/oauth/token.
func (h *TokenHandler) Issue(c *fiber.Ctx) error {
	var req dto.TokenRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload()
	}

	token, err := h.tokens.Issue(c.UserContext(), service.GrantRequest{
		GrantType: req.GrantType,
		LoginName: req.LoginName,
		Password:  req.Password,
	})
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.JSON(fiber.Map{"data": dto.NewAuthorizationToken(token)})
}

// Revoke handles POST /api/v1/oauth/revoke.
func (h *TokenHandler) Revoke(c *fiber.Ctx) error {
	var req dto.RevokeRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload()
	}

	err := h.tokens.Revoke(c.UserContext(), service.RevokeRequest{
		TokenType: domain.TokenType(req.TokenType),
		Token:     req.Token,
		Principal: domain.Principal(req.Principal),
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"data": fiber.Map{"status": "revoked"}})
}

func invalidPayload() error {
	return apperrors.NewValidationError("body", "invalid payload")
}
