package middleware

import (
	"strings"

	"microblog/internal/models"
	"microblog/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	// UserIDCookie and RememberTokenCookie hold a remember-me session.
	UserIDCookie        = "user_id"
	RememberTokenCookie = "remember_token"

	currentUserKey = "current_user"
)

// LoadUser resolves the current user from a "Bearer <token>" Authorization header
// or, failing that, from the remember-me cookies. Requests without credentials
// pass through anonymously; a malformed or invalid bearer token is rejected.
func LoadUser(authService *services.AuthService, logger *zap.Logger) fiber.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *fiber.Ctx) error {
		if authHeader := c.Get(fiber.HeaderAuthorization); authHeader != "" {
			// Expected format: "Bearer <token>"
			parts := strings.SplitN(authHeader, " ", 2)
			if !(len(parts) == 2 && parts[0] == "Bearer") {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"message": "Authorization header format must be 'Bearer <token>'",
				})
			}

			user, err := authService.UserFromToken(parts[1])
			if err != nil {
				logger.Debug("session token rejected", zap.Error(err))
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"message": "Invalid or expired token",
				})
			}
			c.Locals(currentUserKey, user)
			return c.Next()
		}

		user, err := authService.UserFromRememberToken(c.Cookies(UserIDCookie), c.Cookies(RememberTokenCookie))
		if err != nil {
			logger.Error("failed to resolve remembered user", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Could not resolve session",
			})
		}
		if user != nil {
			c.Locals(currentUserKey, user)
		}
		return c.Next()
	}
}

// AuthRequired rejects requests that LoadUser did not attach a user to.
func AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if CurrentUser(c) == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Please log in.",
			})
		}
		return c.Next()
	}
}

// CurrentUser returns the logged in user, or nil for anonymous requests.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(currentUserKey).(*models.User)
	return user
}
