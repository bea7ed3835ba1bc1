package middleware

import (
	"errors"

	"github.com/Varun5711/todocal/internal/apperr"
	"github.com/Varun5711/todocal/internal/logger"
	"github.com/gofiber/fiber/v2"
)

const msgInternal = "Internal Server Error"

type ErrorBody struct {
	Message string              `json:"message"`
	Status  int                 `json:"status"`
	Details []apperr.FieldError `json:"details,omitempty"`
}

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorHandler renders every failure as {"error": {...}}. Internal errors
// are logged and their cause is not sent to the client.
func ErrorHandler(log *logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		body := ErrorBody{Status: fiber.StatusInternalServerError, Message: msgInternal}

		var fiberErr *fiber.Error
		if appErr, ok := apperr.As(err); ok {
			body.Status = appErr.Status()
			body.Message = appErr.Message
			body.Details = appErr.Details
			if appErr.Kind == apperr.KindInternal {
				log.Error("%s %s: %v", c.Method(), c.Path(), err)
			} else {
				log.Debug("%s %s: %s: %s", c.Method(), c.Path(), appErr.Kind, appErr.Message)
			}
		} else if errors.As(err, &fiberErr) {
			body.Status = fiberErr.Code
			body.Message = fiberErr.Message
		} else {
			log.Error("%s %s: %v", c.Method(), c.Path(), err)
		}

		return c.Status(body.Status).JSON(ErrorResponse{Error: body})
	}
}
