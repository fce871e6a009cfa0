package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/algotutor-api/internal/dto"
	"github.com/noah-isme/algotutor-api/internal/middleware"
	"github.com/noah-isme/algotutor-api/internal/service"
	"github.com/noah-isme/algotutor-api/internal/utils"
)

// AuthHandler exposes registration and session endpoints.
type AuthHandler struct {
	auth      service.AuthService
	directory service.DirectoryService
	locales   *LocaleResolver
	logger    zerolog.Logger
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(auth service.AuthService, directory service.DirectoryService, locales *LocaleResolver, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:      auth,
		directory: directory,
		locales:   locales,
		logger:    logger.With().Str("component", "auth_handler").Logger(),
	}
}

// Register wires the auth routes. Credential endpoints are rate limited.
func (h *AuthHandler) Register(router fiber.Router, protect fiber.Handler) {
	limited := middleware.RateLimit("auth", 10, time.Minute)

	router.Post("/register", limited, h.register)
	router.Post("/login", limited, h.login)
	router.Post("/logout", protect, h.logout)
	router.Get("/me", protect, h.me)
}

func (h *AuthHandler) register(c *fiber.Ctx) error {
	var payload dto.RegisterRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	principal, err := h.directory.Register(c.UserContext(), h.locales.Locale(c), payload)
	if err != nil {
		return sendServiceError(c, h.logger, h.locales, err, "failed to register")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "registration received", dto.NewPrincipalResponse(principal))
}

func (h *AuthHandler) login(c *fiber.Ctx) error {
	var payload dto.LoginRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.auth.Login(c.UserContext(), payload)
	if err != nil {
		return sendServiceError(c, h.logger, h.locales, err, "failed to sign in")
	}

	return utils.SendSuccess(c, "signed in", response)
}

func (h *AuthHandler) logout(c *fiber.Ctx) error {
	response, err := h.auth.Logout(c.UserContext(), middleware.SessionIDFrom(c))
	if err != nil {
		return sendServiceError(c, h.logger, h.locales, err, "failed to sign out")
	}
	return utils.SendSuccess(c, "signed out", response)
}

func (h *AuthHandler) me(c *fiber.Ctx) error {
	return utils.SendSuccess(c, "current principal", dto.NewPrincipalResponse(currentPrincipal(c)))
}
