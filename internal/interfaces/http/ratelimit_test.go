package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLimiter_FormatoInvalido(t *testing.T) {
	_, err := NewLimiter("muchas", nil)
	assert.Error(t, err)
}

func TestRateLimit_BloqueaAlSuperarElLimite(t *testing.T) {
	l, err := NewLimiter("2-M", nil)
	require.NoError(t, err)

	app := fiber.New()
	app.Get("/", RateLimit(l), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })

	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		assert.Equal(t, "2", resp.Header.Get("X-RateLimit-Limit"))
	}

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "0", resp.Header.Get("X-RateLimit-Remaining"))
}

func TestRateLimit_ContadorPorUsuario(t *testing.T) {
	l, err := NewLimiter("1-M", nil)
	require.NoError(t, err)

	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		c.Locals(LocalTenantID, "t1")
		c.Locals(LocalUserID, c.Get("X-User"))
		return c.Next()
	}, RateLimit(l), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })

	get := func(user string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-User", user)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		return resp.StatusCode
	}
	assert.Equal(t, http.StatusNoContent, get("u1"))
	assert.Equal(t, http.StatusNoContent, get("u2"))
	assert.Equal(t, http.StatusTooManyRequests, get("u1"))
}
