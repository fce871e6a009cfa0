package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/algotutor-api/internal/dto"
	"github.com/noah-isme/algotutor-api/internal/middleware"
	"github.com/noah-isme/algotutor-api/internal/service"
	"github.com/noah-isme/algotutor-api/internal/utils"
)

// NewsHandler serves news articles.
type NewsHandler struct {
	news    service.NewsService
	locales *LocaleResolver
	logger  zerolog.Logger
}

// NewNewsHandler constructs the handler.
func NewNewsHandler(news service.NewsService, locales *LocaleResolver, logger zerolog.Logger) *NewsHandler {
	return &NewsHandler{
		news:    news,
		locales: locales,
		logger:  logger.With().Str("component", "news_handler").Logger(),
	}
}

// Register wires news routes. Reads are public; writes need staff.
func (h *NewsHandler) Register(router fiber.Router, protect fiber.Handler) {
	staff := middleware.AuthOptions{Role: middleware.AuthRoleStaff}

	router.Get("", h.list)
	router.Get("/:slug", h.get)
	router.Post("", protect, middleware.WithAuth(h.create, staff))
	router.Patch("/:id", protect, middleware.WithAuth(h.update, staff))
	router.Delete("/:id", protect, middleware.WithAuth(h.remove, staff))
}

func (h *NewsHandler) list(c *fiber.Ctx) error {
	items := h.news.List()
	return utils.OK(c, dto.NewNewsResponseSlice(items), "news", fiber.Map{"total": len(items)})
}

func (h *NewsHandler) get(c *fiber.Ctx) error {
	article, ok := h.news.Get(c.Params("slug"))
	if !ok {
		return utils.SendError(c, fiber.StatusNotFound, "article not found")
	}
	return utils.SendSuccess(c, "article", dto.NewNewsResponse(article))
}

func (h *NewsHandler) create(c *fiber.Ctx) error {
	var payload dto.NewsCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	article, err := h.news.Create(c.UserContext(), currentPrincipal(c), payload)
	if err != nil {
		return sendServiceError(c, h.logger, h.locales, err, "failed to publish article")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "article published", dto.NewNewsResponse(article))
}

func (h *NewsHandler) update(c *fiber.Ctx) error {
	var payload dto.NewsUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	article, applied, err := h.news.Update(c.UserContext(), currentPrincipal(c), c.Params("id"), payload)
	if err != nil {
		return sendServiceError(c, h.logger, h.locales, err, "failed to update article")
	}
	return sendMutation(c, "article updated", dto.NewNewsResponse(article), applied)
}

func (h *NewsHandler) remove(c *fiber.Ctx) error {
	if err := h.news.Delete(c.UserContext(), currentPrincipal(c), c.Params("id")); err != nil {
		return sendServiceError(c, h.logger, h.locales, err, "failed to delete article")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
