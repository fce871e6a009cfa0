package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/algotutor-api/internal/dto"
	"github.com/noah-isme/algotutor-api/internal/middleware"
	"github.com/noah-isme/algotutor-api/internal/service"
	"github.com/noah-isme/algotutor-api/internal/utils"
)

// UploadHandler files teaching documents.
type UploadHandler struct {
	service service.UploadService
	locales *LocaleResolver
	logger  zerolog.Logger
}

// NewUploadHandler constructs an upload handler.
func NewUploadHandler(service service.UploadService, locales *LocaleResolver, logger zerolog.Logger) *UploadHandler {
	return &UploadHandler{
		service: service,
		locales: locales,
		logger:  logger.With().Str("component", "upload_handler").Logger(),
	}
}

// Register wires upload routes. The listing is public; everything else
// needs an approved teacher or an administrator.
func (h *UploadHandler) Register(router fiber.Router, protect fiber.Handler) {
	staff := middleware.AuthOptions{Role: middleware.AuthRoleStaff}

	router.Get("", h.list)
	router.Get("/mine", protect, middleware.WithAuth(h.mine, staff))
	router.Post("", protect, middleware.WithAuth(h.upload, staff))
	router.Put("/:id/file", protect, middleware.WithAuth(h.replace, staff))
	router.Patch("/:id", protect, middleware.WithAuth(h.update, staff))
	router.Delete("/:id", protect, middleware.WithAuth(h.remove, staff))
}

func (h *UploadHandler) list(c *fiber.Ctx) error {
	semester, err := parseQueryInt(c, "semester")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid semester")
	}

	filter := dto.UploadFilter{
		GradeID:    strings.TrimSpace(c.Query("grade_id")),
		CategoryID: strings.TrimSpace(c.Query("category_id")),
		TeacherID:  strings.TrimSpace(c.Query("teacher_id")),
		Semester:   semester,
	}
	items := h.service.List(filter)
	return utils.OK(c, dto.NewUploadResponseSlice(items), "uploads", fiber.Map{"total": len(items)})
}

func (h *UploadHandler) mine(c *fiber.Ctx) error {
	items, err := h.service.ListForActor(currentPrincipal(c))
	if err != nil {
		return sendServiceError(c, h.logger, h.locales, err, "failed to list uploads")
	}
	return utils.OK(c, dto.NewUploadResponseSlice(items), "uploads", fiber.Map{"total": len(items)})
}

func (h *UploadHandler) upload(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return sendServiceError(c, h.logger, h.locales, service.ErrFileRequired, "upload failed")
	}

	var meta dto.UploadMetadataRequest
	if err := c.BodyParser(&meta); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	record, err := h.service.Upload(c.UserContext(), currentPrincipal(c), file, meta)
	if err != nil {
		return sendServiceError(c, h.logger, h.locales, err, "upload failed")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "upload successful", dto.NewUploadResponse(record))
}

func (h *UploadHandler) replace(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return sendServiceError(c, h.logger, h.locales, service.ErrFileRequired, "upload failed")
	}

	var payload dto.UploadUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	record, applied, err := h.service.Replace(c.UserContext(), currentPrincipal(c), c.Params("id"), file, payload)
	if err != nil {
		return sendServiceError(c, h.logger, h.locales, err, "upload failed")
	}
	return sendMutation(c, "file replaced", dto.NewUploadResponse(record), applied)
}

func (h *UploadHandler) update(c *fiber.Ctx) error {
	var payload dto.UploadUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	record, applied, err := h.service.UpdateMetadata(c.UserContext(), currentPrincipal(c), c.Params("id"), payload)
	if err != nil {
		return sendServiceError(c, h.logger, h.locales, err, "failed to update upload")
	}
	return sendMutation(c, "upload updated", dto.NewUploadResponse(record), applied)
}

func (h *UploadHandler) remove(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), currentPrincipal(c), c.Params("id")); err != nil {
		return sendServiceError(c, h.logger, h.locales, err, "failed to delete upload")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
