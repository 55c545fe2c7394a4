package handlers

import (
	"microblog/internal/middleware"
	"microblog/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// MicropostHandler handles HTTP requests for microposts.
type MicropostHandler struct {
	service *services.MicropostService
	logger  *zap.Logger
}

// NewMicropostHandler creates a new MicropostHandler.
func NewMicropostHandler(service *services.MicropostService, logger *zap.Logger) *MicropostHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MicropostHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the micropost routes with the Fiber app.
func (h *MicropostHandler) RegisterRoutes(router fiber.Router) {
	micropostRoutes := router.Group("/microposts", middleware.AuthRequired())
	micropostRoutes.Post("/", h.HandleCreate)
	micropostRoutes.Delete("/:id", h.HandleDelete)
}

type micropostRequest struct {
	Content string `json:"content"`
}

// HandleCreate posts a micropost as the current user.
func (h *MicropostHandler) HandleCreate(c *fiber.Ctx) error {
	var req micropostRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, err)
	}

	post, err := h.service.CreateMicropost(middleware.CurrentUser(c).ID, req.Content)
	if err != nil {
		return respondError(c, h.logger, "Could not create micropost", err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// HandleDelete deletes one of the current user's microposts.
func (h *MicropostHandler) HandleDelete(c *fiber.Ctx) error {
	if err := h.service.DeleteMicropost(middleware.CurrentUser(c).ID, c.Params("id")); err != nil {
		return respondError(c, h.logger, "Could not delete micropost", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
