package handlers

import (
	"encoding/json"

	"github.com/Varun5711/todocal/internal/apperr"
	usermodel "github.com/Varun5711/todocal/internal/models/user"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Success bool             `json:"success"`
	Token   string           `json:"token"`
	User    usermodel.Public `json:"user"`
}

type MeResponse struct {
	Success bool             `json:"success"`
	User    usermodel.Public `json:"user"`
}

type DeleteResponse struct {
	Message string      `json:"message"`
	Todo    interface{} `json:"todo"`
}

type HealthResponse struct {
	Status      string `json:"status"`
	Environment string `json:"environment"`
	Timestamp   string `json:"timestamp"`
}

// decodeBody reads a JSON body into dest. An empty body leaves dest untouched.
func decodeBody(c *fiber.Ctx, dest interface{}) error {
	body := c.Body()
	if len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return apperr.Validation("Invalid request body")
	}
	return nil
}

// todoID returns the :id path parameter once it is a well-formed id.
func todoID(c *fiber.Ctx) (string, error) {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", apperr.Validation("Validation failed", apperr.FieldError{
			Field:    "id",
			Message:  "Invalid todo ID",
			Value:    id,
			Location: "params",
		})
	}
	return id, nil
}
