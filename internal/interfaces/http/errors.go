package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/municipal-ops-api/internal/application/dto"
	"github.com/jhoicas/municipal-ops-api/internal/domain"
)

type errorMapping struct {
	err    error
	status int
	code   string
}

// Orden: los errores más específicos primero.
var errorMappings = []errorMapping{
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN"},
	{domain.ErrUserNotFound, fiber.StatusNotFound, "USER_NOT_FOUND"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrEmailAlreadyExists, fiber.StatusConflict, "EMAIL_EXISTS"},
	{domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE"},
	{domain.ErrInsufficientStock, fiber.StatusConflict, "INSUFFICIENT_STOCK"},
	{domain.ErrSignatureLockExpired, fiber.StatusConflict, "SIGNATURE_LOCK_EXPIRED"},
	{domain.ErrSignatureLockHeld, fiber.StatusConflict, "SIGNATURE_LOCK_HELD"},
	{domain.ErrIdempotencyKeyReused, fiber.StatusConflict, "IDEMPOTENCY_KEY_REUSED"},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT"},
}

// localInternalError guarda el error no mapeado para que RequestLogger lo registre.
const localInternalError = "internal_error"

const internalMessage = "error interno"

// fail traduce un error de caso de uso a la respuesta HTTP. Un error sin mapeo
// responde 500 con mensaje genérico; el detalle solo va al log.
func fail(c *fiber.Ctx, err error) error {
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			return c.Status(m.status).JSON(dto.ErrorResponse{Code: m.code, Message: m.err.Error()})
		}
	}
	c.Locals(localInternalError, err)
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: internalMessage})
}

func badRequest(c *fiber.Ctx, code, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: code, Message: msg})
}
