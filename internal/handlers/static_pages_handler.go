package handlers

import (
	"microblog/internal/middleware"
	"microblog/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// StaticPagesHandler serves the home page and the informational pages.
type StaticPagesHandler struct {
	relationships *services.RelationshipService
	microposts    *services.MicropostService
	perPage       int
	logger        *zap.Logger
}

// NewStaticPagesHandler creates a new StaticPagesHandler. The home feed shows
// perPage posts per page.
func NewStaticPagesHandler(relationships *services.RelationshipService, microposts *services.MicropostService, perPage int, logger *zap.Logger) *StaticPagesHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StaticPagesHandler{
		relationships: relationships,
		microposts:    microposts,
		perPage:       perPage,
		logger:        logger,
	}
}

// RegisterRoutes registers the static page routes with the Fiber app.
func (h *StaticPagesHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/", h.HandleHome)
	router.Get("/help", h.page("Help"))
	router.Get("/about", h.page("About"))
	router.Get("/contact", h.page("Contact"))
}

// HandleHome shows a welcome for visitors and the feed for logged in users.
func (h *StaticPagesHandler) HandleHome(c *fiber.Ctx) error {
	current := middleware.CurrentUser(c)
	if current == nil {
		return c.JSON(fiber.Map{
			"title":   "Home",
			"message": "Welcome to the Sample App",
		})
	}

	stats, err := h.relationships.Stats(current.ID)
	if err != nil {
		return respondError(c, h.logger, "Could not load feed", err)
	}
	page := pageFromQuery(c, h.perPage)
	feed, err := h.microposts.Feed(current.ID, page)
	if err != nil {
		return respondError(c, h.logger, "Could not load feed", err)
	}
	return c.JSON(fiber.Map{
		"title":         "Home",
		"user":          userView(current, stats),
		"feed":          feed,
		"page":          page.Number,
		"per_page":      page.PerPage,
		"new_micropost": fiber.Map{"content": ""},
	})
}

func (h *StaticPagesHandler) page(title string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"title": title,
		})
	}
}
