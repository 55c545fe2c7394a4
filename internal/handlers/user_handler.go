package handlers

import (
	"microblog/internal/middleware"
	"microblog/internal/models"
	"microblog/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// UserHandler handles HTTP requests for user profiles.
type UserHandler struct {
	users         *services.UserService
	relationships *services.RelationshipService
	microposts    *services.MicropostService
	logger        *zap.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users *services.UserService, relationships *services.RelationshipService, microposts *services.MicropostService, logger *zap.Logger) *UserHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserHandler{
		users:         users,
		relationships: relationships,
		microposts:    microposts,
		logger:        logger,
	}
}

// RegisterRoutes registers the user routes with the Fiber app.
func (h *UserHandler) RegisterRoutes(router fiber.Router) {
	userRoutes := router.Group("/users")
	userRoutes.Get("/:id", h.HandleShow)
	userRoutes.Patch("/:id", middleware.AuthRequired(), h.correctUser, h.HandleUpdate)
	userRoutes.Delete("/:id", middleware.AuthRequired(), h.correctUser, h.HandleDelete)
}

// HandleShow returns an activated user's profile with one page of their posts.
func (h *UserHandler) HandleShow(c *fiber.Ctx) error {
	user, err := h.users.GetUser(c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, "Could not retrieve user", err)
	}
	if !user.Activated {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "User not found",
		})
	}

	stats, err := h.relationships.Stats(user.ID)
	if err != nil {
		return respondError(c, h.logger, "Could not retrieve user", err)
	}
	page := pageFromQuery(c, models.DefaultPerPage)
	posts, err := h.microposts.UserMicroposts(user.ID, page)
	if err != nil {
		return respondError(c, h.logger, "Could not retrieve microposts", err)
	}

	view := userView(user, stats)
	if current := middleware.CurrentUser(c); current != nil && current.ID != user.ID {
		following, err := h.relationships.IsFollowing(current.ID, user.ID)
		if err != nil {
			return respondError(c, h.logger, "Could not retrieve user", err)
		}
		view["followed_by_you"] = following
	}
	return c.JSON(fiber.Map{
		"user":       view,
		"microposts": posts,
		"page":       page.Number,
	})
}

// HandleUpdate edits the current user's profile.
func (h *UserHandler) HandleUpdate(c *fiber.Ctx) error {
	var in services.UpdateUserInput
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c, err)
	}

	user, err := h.users.UpdateUser(c.Params("id"), in)
	if err != nil {
		return respondError(c, h.logger, "Could not update user", err)
	}
	return c.JSON(fiber.Map{
		"message": "Profile updated",
		"user":    user,
	})
}

// HandleDelete removes the current user's account with its posts and relationships.
func (h *UserHandler) HandleDelete(c *fiber.Ctx) error {
	if err := h.users.DeleteUser(c.Params("id")); err != nil {
		return respondError(c, h.logger, "Could not delete user", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *UserHandler) correctUser(c *fiber.Ctx) error {
	if middleware.CurrentUser(c).ID != c.Params("id") {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message": "You can only change your own account",
		})
	}
	return c.Next()
}
