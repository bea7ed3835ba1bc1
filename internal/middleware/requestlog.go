package middleware

import (
	"time"

	"github.com/Varun5711/todocal/internal/enrichment"
	"github.com/Varun5711/todocal/internal/logger"
	"github.com/gofiber/fiber/v2"
)

// RequestLogger logs one line per request once the handler chain returns.
func RequestLogger(log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		chainErr := c.Next()

		// Errors are rendered by the app's error handler after this returns,
		// so the status is taken from the error itself.
		status := c.Response().StatusCode()
		if chainErr != nil {
			status = statusOf(chainErr)
		}

		client := enrichment.ParseUserAgent(c.Get(fiber.HeaderUserAgent))
		line := "%s %s %d %s ip=%s client=%s"
		args := []interface{}{c.Method(), c.OriginalURL(), status, time.Since(start).Round(time.Microsecond), c.IP(), client}

		switch {
		case status >= fiber.StatusInternalServerError:
			log.Error(line, args...)
		case status >= fiber.StatusBadRequest:
			log.Warn(line, args...)
		default:
			log.Info(line, args...)
		}

		return chainErr
	}
}
