package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/municipal-ops-api/pkg/logger"
)

// RequestLogger registra cada petición: método, ruta, estado, latencia y tenant.
func RequestLogger(log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		logged := err
		if ie, ok := c.Locals(localInternalError).(error); ok && logged == nil {
			logged = ie
		}
		ev := log.Info()
		switch {
		case status >= 500:
			ev = log.Error().Err(logged)
		case status >= 400:
			ev = log.Warn()
		}
		ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("tenant", GetTenantID(c)).
			Str("request_id", c.GetRespHeader(fiber.HeaderXRequestID)).
			Msg("http")
		return err
	}
}
