package middleware

import (
	"context"
	"strings"

	usermodel "github.com/Varun5711/todocal/internal/models/user"
	"github.com/gofiber/fiber/v2"
)

// UserKey is the fiber Locals key holding the authenticated *usermodel.User.
const UserKey = "user"

const bearerPrefix = "Bearer "

// Authenticator resolves a bearer token to a user. An empty token means the
// request had no usable Authorization header.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*usermodel.User, error)
}

// AuthMiddleware rejects requests without a valid bearer token. Failures
// are returned to the app's error handler.
func AuthMiddleware(authenticator Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := authenticator.Authenticate(c.UserContext(), bearerToken(c.Get(fiber.HeaderAuthorization)))
		if err != nil {
			return err
		}

		c.Locals(UserKey, user)
		return c.Next()
	}
}

func bearerToken(header string) string {
	if !strings.HasPrefix(header, bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(header[len(bearerPrefix):])
}

// CurrentUser returns the user stored by AuthMiddleware, or nil.
func CurrentUser(c *fiber.Ctx) *usermodel.User {
	user, _ := c.Locals(UserKey).(*usermodel.User)
	return user
}
