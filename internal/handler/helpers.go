package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/algotutor-api/internal/i18n"
	"github.com/noah-isme/algotutor-api/internal/middleware"
	"github.com/noah-isme/algotutor-api/internal/models"
	"github.com/noah-isme/algotutor-api/internal/service"
	"github.com/noah-isme/algotutor-api/internal/utils"
)

// ClientIDHeader identifies an anonymous browser for locale preferences.
const ClientIDHeader = "X-Client-ID"

// LocaleResolver picks the locale of a request: an explicit ?locale= wins,
// then the preference stored for X-Client-ID, then the configured default.
type LocaleResolver struct {
	preferences service.PreferenceService
	catalog     *i18n.Catalog
}

// NewLocaleResolver constructs a resolver. A nil preference service skips
// the stored lookup.
func NewLocaleResolver(preferences service.PreferenceService, catalog *i18n.Catalog) *LocaleResolver {
	return &LocaleResolver{preferences: preferences, catalog: catalog}
}

// Locale resolves the active locale for c.
func (r *LocaleResolver) Locale(c *fiber.Ctx) i18n.Locale {
	if locale, ok := i18n.ParseLocale(c.Query("locale")); ok {
		return locale
	}
	if r != nil && r.preferences != nil {
		return r.preferences.Locale(c.UserContext(), c.Get(ClientIDHeader))
	}
	return i18n.DefaultLocale
}

// Translate resolves key in the request locale.
func (r *LocaleResolver) Translate(c *fiber.Ctx, key string) string {
	if r == nil || r.catalog == nil {
		return key
	}
	return r.catalog.Resolve(r.Locale(c), key, nil)
}

func parseQueryInt(c *fiber.Ctx, key string) (int, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	return strconv.Atoi(value)
}

func currentPrincipal(c *fiber.Ctx) models.Principal {
	principal, _ := middleware.PrincipalFrom(c)
	return principal
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}

func isValidationError(err error) bool {
	var validationErrors validator.ValidationErrors
	return errors.As(err, &validationErrors)
}

// fieldError is one failed validation rule.
type fieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

func validationDetails(err error) []fieldError {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil
	}
	details := make([]fieldError, 0, len(validationErrors))
	for _, fe := range validationErrors {
		details = append(details, fieldError{Field: fe.Field(), Rule: fe.Tag(), Param: fe.Param()})
	}
	return details
}

// sendServiceError maps service errors onto HTTP statuses. Login failures
// carry a localized message.
func sendServiceError(c *fiber.Ctx, logger zerolog.Logger, locales *LocaleResolver, err error, fallback string) error {
	switch {
	case isValidationError(err):
		return utils.Fail(c, fiber.StatusBadRequest, "validation failed", validationDetails(err))
	case errors.Is(err, service.ErrPermissionDenied):
		return utils.Fail(c, fiber.StatusForbidden, err.Error(), nil)
	case errors.Is(err, service.ErrSlugTaken), errors.Is(err, service.ErrEmailTaken):
		return utils.Fail(c, fiber.StatusConflict, err.Error(), nil)
	case errors.Is(err, service.ErrUnknownEmail):
		return utils.Fail(c, fiber.StatusUnauthorized, locales.Translate(c, "login.emailIncorrect"), nil)
	case errors.Is(err, service.ErrPasswordIncorrect):
		return utils.Fail(c, fiber.StatusUnauthorized, locales.Translate(c, "login.passwordIncorrect"), nil)
	case errors.Is(err, service.ErrPendingApproval):
		return utils.Fail(c, fiber.StatusForbidden, locales.Translate(c, "login.pendingApproval"), nil)
	case errors.Is(err, service.ErrUnknownTeacher):
		return utils.Fail(c, fiber.StatusUnprocessableEntity, err.Error(), nil)
	case errors.Is(err, service.ErrQuestionNotAnswered):
		return utils.Fail(c, fiber.StatusConflict, err.Error(), nil)
	case errors.Is(err, service.ErrSessionUnavailable):
		return utils.Fail(c, fiber.StatusServiceUnavailable, err.Error(), nil)
	case errors.Is(err, service.ErrUnsupportedLocale),
		errors.Is(err, service.ErrInvalidCatalogue),
		errors.Is(err, service.ErrFileRequired),
		errors.Is(err, service.ErrClientIDRequired),
		errors.Is(err, service.ErrQuestionEmpty),
		errors.Is(err, service.ErrAnswerEmpty),
		errors.Is(err, service.ErrUploadScanFailed):
		return utils.Fail(c, fiber.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, service.ErrUploadTooLarge):
		return utils.Fail(c, fiber.StatusRequestEntityTooLarge, err.Error(), nil)
	case errors.Is(err, service.ErrUploadTypeNotAllowed):
		return utils.Fail(c, fiber.StatusUnsupportedMediaType, err.Error(), nil)
	case errors.Is(err, service.ErrUploadFailed):
		requestLogger(logger, c).Error().Err(err).Msg("blob storage rejected upload")
		return utils.Fail(c, fiber.StatusBadGateway, err.Error(), nil)
	default:
		requestLogger(logger, c).Error().Err(err).Msg(fallback)
		return utils.Fail(c, fiber.StatusInternalServerError, fallback, nil)
	}
}

// sendMutation answers an update: unknown ids are a no-op reported with
// applied=false.
func sendMutation(c *fiber.Ctx, message string, data interface{}, applied bool) error {
	if !applied {
		return utils.OK(c, nil, "no matching record", fiber.Map{"applied": false})
	}
	return utils.OK(c, data, message, fiber.Map{"applied": true})
}
