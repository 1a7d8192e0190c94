package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/token-auth-service/internal/api/dto"
	"github.com/spec-kit/token-auth-service/internal/auth"
	apperrors "github.com/spec-kit/token-auth-service/pkg/util/errorutil"
)

// SubjectHandler reports the identity resolved for the caller.
type SubjectHandler struct{}

// NewSubjectHandler constructs handler.
func NewSubjectHandler() *SubjectHandler {
	return &SubjectHandler{}
}

// Current handles GET /api/v1/subject and its per-type variants.
func (h *SubjectHandler) Current(c *fiber.Ctx) error {
	subject, ok := auth.SubjectFromContext(c)
	if !ok {
		return apperrors.NewMissingAuthorization()
	}
	return c.JSON(fiber.Map{"data": dto.NewSubjectResponse(subject)})
}
