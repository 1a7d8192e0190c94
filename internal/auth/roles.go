package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/token-auth-service/internal/domain"
	apperrors "github.com/spec-kit/token-auth-service/pkg/util/errorutil"
)

// RequireSubject ensures the middleware attached a subject.
func RequireSubject() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := SubjectFromContext(c); !ok {
			return apperrors.NewMissingAuthorization()
		}
		return c.Next()
	}
}

// RequirePrincipalType ensures the subject is one of the allowed principal types.
func RequirePrincipalType(allowed ...domain.PrincipalType) fiber.Handler {
	allowedSet := make(map[domain.PrincipalType]struct{}, len(allowed))
	for _, t := range allowed {
		allowedSet[t] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		subject, ok := SubjectFromContext(c)
		if !ok {
			return apperrors.NewMissingAuthorization()
		}
		if _, exists := allowedSet[subject.PrincipalType]; !exists {
			return apperrors.NewAccessDenied()
		}
		return c.Next()
	}
}
