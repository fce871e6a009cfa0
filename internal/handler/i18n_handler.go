package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/algotutor-api/internal/dto"
	"github.com/noah-isme/algotutor-api/internal/service"
	"github.com/noah-isme/algotutor-api/internal/utils"
)

// paramPrefix marks query arguments that fill "{name}" placeholders, as in
// ?key=lessonContents.loops.title&param.n=10.
const paramPrefix = "param."

// I18nHandler serves translations, the upload catalogue and per-client
// locale preferences.
type I18nHandler struct {
	translations service.TranslationService
	preferences  service.PreferenceService
	locales      *LocaleResolver
	logger       zerolog.Logger
}

// NewI18nHandler constructs the handler.
func NewI18nHandler(translations service.TranslationService, preferences service.PreferenceService, locales *LocaleResolver, logger zerolog.Logger) *I18nHandler {
	return &I18nHandler{
		translations: translations,
		preferences:  preferences,
		locales:      locales,
		logger:       logger.With().Str("component", "i18n_handler").Logger(),
	}
}

// Register wires the public locale routes.
func (h *I18nHandler) Register(router fiber.Router) {
	router.Get("/i18n/resolve", h.resolve)
	router.Get("/i18n/:locale", h.tree)
	router.Get("/catalogue", h.catalogue)
	router.Get("/preferences/locale", h.getLocale)
	router.Put("/preferences/locale", h.setLocale)
}

func (h *I18nHandler) resolve(c *fiber.Ctx) error {
	key := strings.TrimSpace(c.Query("key"))
	if key == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "key is required")
	}

	params := map[string]any{}
	for name, value := range c.Queries() {
		if strings.HasPrefix(name, paramPrefix) {
			params[strings.TrimPrefix(name, paramPrefix)] = value
		}
	}

	response, err := h.translations.Resolve(string(h.locales.Locale(c)), key, params)
	if err != nil {
		return sendServiceError(c, h.logger, h.locales, err, "failed to resolve key")
	}
	return utils.SendSuccess(c, "translation", response)
}

func (h *I18nHandler) tree(c *fiber.Ctx) error {
	tree, err := h.translations.Tree(c.Params("locale"))
	if err != nil {
		return sendServiceError(c, h.logger, h.locales, err, "failed to load locale")
	}
	return utils.SendSuccess(c, "translations", tree)
}

func (h *I18nHandler) catalogue(c *fiber.Ctx) error {
	return utils.SendSuccess(c, "catalogue", h.translations.Catalogue(h.locales.Locale(c)))
}

func (h *I18nHandler) getLocale(c *fiber.Ctx) error {
	clientID := strings.TrimSpace(c.Get(ClientIDHeader))
	if clientID == "" {
		return sendServiceError(c, h.logger, h.locales, service.ErrClientIDRequired, "failed to read preference")
	}

	locale := h.preferences.Locale(c.UserContext(), clientID)
	return utils.SendSuccess(c, "locale preference", dto.LocaleResponse{ClientID: clientID, Locale: string(locale)})
}

func (h *I18nHandler) setLocale(c *fiber.Ctx) error {
	var payload dto.LocaleRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	clientID := strings.TrimSpace(c.Get(ClientIDHeader))
	locale, err := h.preferences.SetLocale(c.UserContext(), clientID, payload.Locale)
	if err != nil {
		return sendServiceError(c, h.logger, h.locales, err, "failed to store preference")
	}
	return utils.SendSuccess(c, "locale preference saved", dto.LocaleResponse{ClientID: clientID, Locale: string(locale)})
}
