package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/municipal-ops-api/internal/application/dto"
)

func roleApp() *fiber.App {
	app := fiber.New()
	app.Post("/roles", func(c *fiber.Ctx) error {
		var in dto.CreateRoleRequest
		if !bind(c, &in) {
			return nil
		}
		return c.Status(fiber.StatusCreated).JSON(in)
	})
	return app
}

func postJSON(t *testing.T, app *fiber.App, path, body string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestBind_CuerpoValido(t *testing.T) {
	resp := postJSON(t, roleApp(), "/roles", `{"name":"bodega","permissions":["requests:approve","units:*"]}`)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestBind_JSONMalformado(t *testing.T) {
	resp := postJSON(t, roleApp(), "/roles", `{"name":`)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var body dto.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "INVALID_BODY", body.Code)
}

func TestBind_ReportaCamposConNombreJSON(t *testing.T) {
	resp := postJSON(t, roleApp(), "/roles", `{"name":"x","permissions":["requests:approve","NoValido"]}`)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var body dto.ValidationErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "VALIDATION", body.Code)
	assert.ElementsMatch(t, []dto.FieldError{
		{Field: "name", Rule: "min"},
		{Field: "permissions[1]", Rule: "permission"},
	}, body.Fields)
}
