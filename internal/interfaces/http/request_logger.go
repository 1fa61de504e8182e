package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/obrasoft/gestion-api/pkg/logger"
)

// RequestLogger registra cada petición con método, ruta, estado y duración.
// Los errores ya viajan como JSON al cliente; aquí solo queda la traza.
func RequestLogger(log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		ev := log.Info()
		status := c.Response().StatusCode()
		if status >= fiber.StatusInternalServerError {
			ev = log.Error()
		} else if status >= fiber.StatusBadRequest {
			ev = log.Warn()
		}
		ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("duration", time.Since(start)).
			Msg("request")
		return err
	}
}
