package middleware

import (
	"errors"

	"github.com/Varun5711/todocal/internal/apperr"
	"github.com/gofiber/fiber/v2"
)

func statusOf(err error) int {
	if appErr, ok := apperr.As(err); ok {
		return appErr.Status()
	}
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr.Code
	}
	return fiber.StatusInternalServerError
}
