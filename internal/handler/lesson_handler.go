package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/algotutor-api/internal/dto"
	"github.com/noah-isme/algotutor-api/internal/middleware"
	"github.com/noah-isme/algotutor-api/internal/models"
	"github.com/noah-isme/algotutor-api/internal/service"
	"github.com/noah-isme/algotutor-api/internal/utils"
)

// LessonHandler serves lessons resolved for the request locale.
type LessonHandler struct {
	lessons service.LessonService
	locales *LocaleResolver
	logger  zerolog.Logger
}

// NewLessonHandler constructs the handler.
func NewLessonHandler(lessons service.LessonService, locales *LocaleResolver, logger zerolog.Logger) *LessonHandler {
	return &LessonHandler{
		lessons: lessons,
		locales: locales,
		logger:  logger.With().Str("component", "lesson_handler").Logger(),
	}
}

// Register wires lesson routes. Reads are public; writes need staff.
func (h *LessonHandler) Register(router fiber.Router, protect fiber.Handler) {
	staff := middleware.AuthOptions{Role: middleware.AuthRoleStaff}

	router.Get("", h.list)
	router.Get("/:slug", h.get)
	router.Post("", protect, middleware.WithAuth(h.create, staff))
	router.Patch("/:id", protect, middleware.WithAuth(h.update, staff))
	router.Delete("/:id", protect, middleware.WithAuth(h.remove, staff))
}

func (h *LessonHandler) list(c *fiber.Ctx) error {
	locale := h.locales.Locale(c)
	items := h.lessons.List(locale, c.Query("grade"))
	return utils.OK(c, items, "lessons", fiber.Map{"locale": locale, "total": len(items)})
}

func (h *LessonHandler) get(c *fiber.Ctx) error {
	lesson, ok := h.lessons.Get(h.locales.Locale(c), c.Params("slug"))
	if !ok {
		return utils.SendError(c, fiber.StatusNotFound, "lesson not found")
	}
	return utils.SendSuccess(c, "lesson", lesson)
}

func (h *LessonHandler) create(c *fiber.Ctx) error {
	var payload dto.LessonCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	lesson, err := h.lessons.Create(c.UserContext(), currentPrincipal(c), payload)
	if err != nil {
		return sendServiceError(c, h.logger, h.locales, err, "failed to create lesson")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "lesson created", h.resolved(c, lesson))
}

func (h *LessonHandler) update(c *fiber.Ctx) error {
	var payload dto.LessonUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	lesson, applied, err := h.lessons.Update(c.UserContext(), currentPrincipal(c), c.Params("id"), payload)
	if err != nil {
		return sendServiceError(c, h.logger, h.locales, err, "failed to update lesson")
	}
	if !applied {
		return sendMutation(c, "", nil, false)
	}
	return sendMutation(c, "lesson updated", h.resolved(c, lesson), true)
}

func (h *LessonHandler) remove(c *fiber.Ctx) error {
	if err := h.lessons.Delete(c.UserContext(), currentPrincipal(c), c.Params("id")); err != nil {
		return sendServiceError(c, h.logger, h.locales, err, "failed to delete lesson")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *LessonHandler) resolved(c *fiber.Ctx, lesson models.Lesson) dto.LessonResponse {
	if resolved, ok := h.lessons.Get(h.locales.Locale(c), lesson.Slug); ok {
		return resolved
	}
	return dto.NewLessonResponse(lesson, string(h.locales.Locale(c)), func(s string) string { return s })
}
