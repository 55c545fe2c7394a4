package handlers

import (
	"microblog/internal/middleware"
	"microblog/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// RelationshipHandler handles HTTP requests for the follow graph.
type RelationshipHandler struct {
	service *services.RelationshipService
	logger  *zap.Logger
}

// NewRelationshipHandler creates a new RelationshipHandler.
func NewRelationshipHandler(service *services.RelationshipService, logger *zap.Logger) *RelationshipHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RelationshipHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the relationship routes with the Fiber app.
func (h *RelationshipHandler) RegisterRoutes(router fiber.Router) {
	relationshipRoutes := router.Group("/relationships", middleware.AuthRequired())
	relationshipRoutes.Post("/", h.HandleFollow)
	relationshipRoutes.Delete("/:followed_id", h.HandleUnfollow)

	router.Get("/users/:id/following", h.HandleFollowing)
	router.Get("/users/:id/followers", h.HandleFollowers)
}

type followRequest struct {
	FollowedID string `json:"followed_id"`
}

// HandleFollow makes the current user follow followed_id.
func (h *RelationshipHandler) HandleFollow(c *fiber.Ctx) error {
	var req followRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, err)
	}
	if req.FollowedID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "followed_id is required",
		})
	}

	current := middleware.CurrentUser(c)
	if err := h.service.Follow(current.ID, req.FollowedID); err != nil {
		return respondError(c, h.logger, "Could not follow user", err)
	}
	return h.respondStats(c, current.ID, req.FollowedID, fiber.StatusCreated)
}

// HandleUnfollow removes the current user's edge to :followed_id.
func (h *RelationshipHandler) HandleUnfollow(c *fiber.Ctx) error {
	current := middleware.CurrentUser(c)
	followedID := c.Params("followed_id")
	if err := h.service.Unfollow(current.ID, followedID); err != nil {
		return respondError(c, h.logger, "Could not unfollow user", err)
	}
	return h.respondStats(c, current.ID, followedID, fiber.StatusOK)
}

// HandleFollowing lists the users :id follows.
func (h *RelationshipHandler) HandleFollowing(c *fiber.Ctx) error {
	users, err := h.service.Following(c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, "Could not retrieve following", err)
	}
	return c.JSON(fiber.Map{
		"title": "Following",
		"users": users,
	})
}

// HandleFollowers lists the users following :id.
func (h *RelationshipHandler) HandleFollowers(c *fiber.Ctx) error {
	users, err := h.service.Followers(c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, "Could not retrieve followers", err)
	}
	return c.JSON(fiber.Map{
		"title": "Followers",
		"users": users,
	})
}

func (h *RelationshipHandler) respondStats(c *fiber.Ctx, followerID, followedID string, status int) error {
	following, err := h.service.IsFollowing(followerID, followedID)
	if err != nil {
		return respondError(c, h.logger, "Could not load relationship", err)
	}
	stats, err := h.service.Stats(followedID)
	if err != nil {
		return respondError(c, h.logger, "Could not load relationship", err)
	}
	return c.Status(status).JSON(fiber.Map{
		"following": following,
		"followers": stats.Followers,
	})
}
