package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/token-auth-service/internal/api/dto"
	"github.com/spec-kit/token-auth-service/internal/domain"
	"github.com/spec-kit/token-auth-service/internal/service"
)

// RegistrationHandler exposes sign-up endpoints for users and customers.
type RegistrationHandler struct {
	registration *service.RegistrationService
}

// NewRegistrationHandler constructs handler.
func NewRegistrationHandler(registration *service.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{registration: registration}
}

// RegisterUser handles POST /api/v1/users/register.
func (h *RegistrationHandler) RegisterUser(c *fiber.Ctx) error {
	return h.register(c, domain.PrincipalTypeUser)
}

// RegisterCustomer handles POST /api/v1/customers/register.
func (h *RegistrationHandler) RegisterCustomer(c *fiber.Ctx) error {
	return h.register(c, domain.PrincipalTypeCustomer)
}

func (h *RegistrationHandler) register(c *fiber.Ctx, principalType domain.PrincipalType) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload()
	}

	reg, err := h.registration.Register(c.UserContext(), service.RegisterRequest{
		LoginName: req.LoginName,
		Email:     req.Email,
		Phone:     req.Phone,
		Password:  req.Password,
	}, principalType)
	if err != nil {
		return err
	}

	body := fiber.Map{"principal": dto.NewAccountResponse(reg.Account)}
	if reg.Token != nil {
		body["auth"] = dto.NewAuthenticationToken(reg.Token)
	}
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": body})
}
