package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTenantChecker struct {
	active bool
	err    error
}

func (s stubTenantChecker) IsActive(context.Context, string) (bool, error) {
	return s.active, s.err
}

func tenantApp(checker tenantChecker, tenantID string) *fiber.App {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		c.Locals(LocalTenantID, tenantID)
		return c.Next()
	}, RequireActiveTenant(checker), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	return app
}

func TestRequireActiveTenant(t *testing.T) {
	cases := []struct {
		name    string
		checker stubTenantChecker
		tenant  string
		status  int
	}{
		{"activo", stubTenantChecker{active: true}, "t1", http.StatusOK},
		{"suspendido", stubTenantChecker{active: false}, "t1", http.StatusForbidden},
		{"falla DB", stubTenantChecker{err: errors.New("db down")}, "t1", http.StatusServiceUnavailable},
		{"sin tenant", stubTenantChecker{active: true}, "", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := tenantApp(tc.checker, tc.tenant).Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
			require.NoError(t, err)
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}
}
