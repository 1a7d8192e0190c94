package auth

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/token-auth-service/internal/domain"
	apperrors "github.com/spec-kit/token-auth-service/pkg/util/errorutil"
)

func newMiddlewareApp(t *testing.T, routeGuards ...fiber.Handler) *fiber.App {
	t.Helper()
	a := newTestAuthenticator(t,
		accessToken("user-tok", 1, domain.PrincipalTypeUser, testNow.Add(time.Hour)),
		accessToken("cust-tok", 2, domain.PrincipalTypeCustomer, testNow.Add(time.Hour)),
	)
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			de := apperrors.ToDomainError(err)
			return c.Status(de.HTTPStatus).SendString(de.Code)
		},
	})
	app.Use(NewMiddleware(a, "/open").Handle)
	app.Get("/open", func(c *fiber.Ctx) error { return c.SendString("open") })

	handlers := append(routeGuards, func(c *fiber.Ctx) error {
		subject, ok := SubjectFromContext(c)
		if !ok {
			return c.SendString("none")
		}
		return c.SendString(subject.Principal.String() + " " + string(subject.PrincipalType))
	})
	app.Get("/private", handlers...)
	return app
}

func doGet(t *testing.T, app *fiber.App, path, header string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	res, err := app.Test(req)
	require.NoError(t, err)
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res.StatusCode, string(body)
}

func TestMiddlewareAllowListBypassesAuthentication(t *testing.T) {
	app := newMiddlewareApp(t)
	status, body := doGet(t, app, "/open", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "open", body)
}

func TestMiddlewareRejectsMissingHeader(t *testing.T) {
	app := newMiddlewareApp(t)
	status, body := doGet(t, app, "/private", "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, apperrors.CodeMissingAuthorization, body)
}

func TestMiddlewareStoresSubject(t *testing.T) {
	app := newMiddlewareApp(t, RequireSubject())
	status, body := doGet(t, app, "/private", EncodeBearer(1, "user-tok"))
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "1 USER", body)
}

func TestRequirePrincipalType(t *testing.T) {
	app := newMiddlewareApp(t, RequirePrincipalType(domain.PrincipalTypeCustomer))

	status, body := doGet(t, app, "/private", EncodeBearer(2, "cust-tok"))
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "2 CUSTOMER", body)

	status, body = doGet(t, app, "/private", EncodeBearer(1, "user-tok"))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, apperrors.CodeAccessDenied, body)
}
