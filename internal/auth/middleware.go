package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/token-auth-service/internal/domain"
)

const subjectKey = "auth_subject"

// Middleware authenticates requests except those on a static allow-list.
type Middleware struct {
	authenticator *Authenticator
	public        map[string]struct{}
}

// NewMiddleware constructs middleware; publicPaths never require a token.
func NewMiddleware(authenticator *Authenticator, publicPaths ...string) *Middleware {
	public := make(map[string]struct{}, len(publicPaths))
	for _, p := range publicPaths {
		public[p] = struct{}{}
	}
	return &Middleware{authenticator: authenticator, public: public}
}

// Handle enforces authentication for protected routes.
func (m *Middleware) Handle(c *fiber.Ctx) error {
	if _, ok := m.public[c.Path()]; ok {
		return c.Next()
	}

	subject, err := m.authenticator.Authenticate(c.UserContext(), c.Get(fiber.HeaderAuthorization))
	if err != nil {
		return err
	}

	c.Locals(subjectKey, subject)
	return c.Next()
}

// SubjectFromContext retrieves the authenticated subject.
func SubjectFromContext(c *fiber.Ctx) (*domain.Subject, bool) {
	val := c.Locals(subjectKey)
	if val == nil {
		return nil, false
	}
	subject, ok := val.(*domain.Subject)
	return subject, ok
}
