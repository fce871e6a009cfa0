package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/algotutor-api/internal/dto"
	"github.com/noah-isme/algotutor-api/internal/middleware"
	"github.com/noah-isme/algotutor-api/internal/service"
	"github.com/noah-isme/algotutor-api/internal/utils"
)

// DirectoryHandler serves the public teacher list, profile edits and the
// administrator directory.
type DirectoryHandler struct {
	directory service.DirectoryService
	locales   *LocaleResolver
	logger    zerolog.Logger
}

// NewDirectoryHandler constructs the handler.
func NewDirectoryHandler(directory service.DirectoryService, locales *LocaleResolver, logger zerolog.Logger) *DirectoryHandler {
	return &DirectoryHandler{
		directory: directory,
		locales:   locales,
		logger:    logger.With().Str("component", "directory_handler").Logger(),
	}
}

// RegisterPublic wires the public and self-service routes.
func (h *DirectoryHandler) RegisterPublic(router fiber.Router, protect fiber.Handler) {
	router.Get("/teachers", h.teachers)
	router.Patch("/principals/:id", protect, middleware.WithAuth(h.update, middleware.AuthOptions{}))
	router.Post("/profile/avatar", protect, middleware.WithAuth(h.avatar, middleware.AuthOptions{}))
}

// RegisterAdmin wires the administrator routes. The group must already be
// protected.
func (h *DirectoryHandler) RegisterAdmin(router fiber.Router) {
	admin := middleware.AuthOptions{Role: middleware.AuthRoleAdmin}
	router.Get("/principals", middleware.WithAuth(h.list, admin))
	router.Post("/teachers", middleware.WithAuth(h.addTeacher, admin))
	router.Put("/principals/:id/approval", middleware.WithAuth(h.approval, admin))
	router.Delete("/principals/:id", middleware.WithAuth(h.remove, admin))
}

func (h *DirectoryHandler) teachers(c *fiber.Ctx) error {
	return utils.SendSuccess(c, "teachers", dto.NewTeacherCardSlice(h.directory.ListApproved()))
}

func (h *DirectoryHandler) list(c *fiber.Ctx) error {
	items, err := h.directory.List(currentPrincipal(c))
	if err != nil {
		return sendServiceError(c, h.logger, h.locales, err, "failed to list principals")
	}
	return utils.OK(c, dto.NewPrincipalResponseSlice(items), "principals", fiber.Map{"total": len(items)})
}

func (h *DirectoryHandler) addTeacher(c *fiber.Ctx) error {
	var payload dto.AddTeacherRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	principal, err := h.directory.AddTeacher(c.UserContext(), currentPrincipal(c), h.locales.Locale(c), payload)
	if err != nil {
		return sendServiceError(c, h.logger, h.locales, err, "failed to add teacher")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "teacher added", dto.NewPrincipalResponse(principal))
}

func (h *DirectoryHandler) approval(c *fiber.Ctx) error {
	var payload dto.ApprovalRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	if payload.Approved == nil {
		return utils.Fail(c, fiber.StatusBadRequest, "validation failed", []fieldError{{Field: "Approved", Rule: "required"}})
	}

	principal, applied, err := h.directory.SetApproval(c.UserContext(), currentPrincipal(c), c.Params("id"), *payload.Approved)
	if err != nil {
		return sendServiceError(c, h.logger, h.locales, err, "failed to update approval")
	}
	return sendMutation(c, "approval updated", dto.NewPrincipalResponse(principal), applied)
}

func (h *DirectoryHandler) remove(c *fiber.Ctx) error {
	if err := h.directory.Remove(c.UserContext(), currentPrincipal(c), c.Params("id")); err != nil {
		return sendServiceError(c, h.logger, h.locales, err, "failed to remove principal")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *DirectoryHandler) update(c *fiber.Ctx) error {
	var payload dto.ProfileUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	principal, applied, err := h.directory.Update(c.UserContext(), currentPrincipal(c), c.Params("id"), payload)
	if err != nil {
		return sendServiceError(c, h.logger, h.locales, err, "failed to update profile")
	}
	return sendMutation(c, "profile updated", dto.NewPrincipalResponse(principal), applied)
}

func (h *DirectoryHandler) avatar(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return sendServiceError(c, h.logger, h.locales, service.ErrFileRequired, "failed to upload avatar")
	}

	principal, err := h.directory.UploadAvatar(c.UserContext(), currentPrincipal(c), file)
	if err != nil {
		return sendServiceError(c, h.logger, h.locales, err, "failed to upload avatar")
	}
	return utils.SendSuccess(c, "avatar updated", dto.NewPrincipalResponse(principal))
}
