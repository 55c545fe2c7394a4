package handlers

import (
	"errors"

	"microblog/internal/models"
	"microblog/internal/repositories"
	"microblog/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// respondError maps service and store errors to a JSON error response.
func respondError(c *fiber.Ctx, logger *zap.Logger, message string, err error) error {
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  verr.Fields,
		})
	}

	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, repositories.ErrNotFound), errors.Is(err, services.ErrEmailNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, services.ErrInvalidCredentials), errors.Is(err, services.ErrInvalidToken):
		status = fiber.StatusUnauthorized
	case errors.Is(err, services.ErrAccountNotActivated), errors.Is(err, services.ErrMicropostForbidden):
		status = fiber.StatusForbidden
	case errors.Is(err, services.ErrInvalidActivationLink), errors.Is(err, services.ErrInvalidResetLink):
		status = fiber.StatusBadRequest
	case errors.Is(err, services.ErrPasswordResetExpired):
		status = fiber.StatusGone
	case errors.Is(err, services.ErrCannotFollowSelf):
		status = fiber.StatusUnprocessableEntity
	}

	if status == fiber.StatusInternalServerError {
		logger.Error(message, zap.String("path", c.Path()), zap.Error(err))
		return c.Status(status).JSON(fiber.Map{
			"message": message,
		})
	}
	return c.Status(status).JSON(fiber.Map{
		"message": message,
		"error":   err.Error(),
	})
}

func invalidBody(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Invalid request body",
		"error":   err.Error(),
	})
}

// pageFromQuery reads the 1-based ?page= parameter.
func pageFromQuery(c *fiber.Ctx, perPage int) models.Page {
	return models.Page{Number: c.QueryInt("page", 1), PerPage: perPage}.Normalize()
}

func userView(user *models.User, stats services.FollowStats) fiber.Map {
	return fiber.Map{
		"id":         user.ID,
		"name":       user.Name,
		"activated":  user.Activated,
		"created_at": user.CreatedAt,
		"following":  stats.Following,
		"followers":  stats.Followers,
	}
}
