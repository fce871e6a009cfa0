package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/noah-isme/algotutor-api/internal/i18n"
	"github.com/noah-isme/algotutor-api/internal/repository"
)

// PreferenceService keeps the durable per-client locale. Storage problems
// never surface: reads fall back to the default locale and writes are
// dropped.
type PreferenceService interface {
	Locale(ctx context.Context, clientID string) i18n.Locale
	SetLocale(ctx context.Context, clientID, locale string) (i18n.Locale, error)
}

type preferenceService struct {
	repo     repository.PreferenceRepository
	fallback i18n.Locale
	logger   zerolog.Logger
}

// NewPreferenceService constructs the preference service.
func NewPreferenceService(repo repository.PreferenceRepository, fallback i18n.Locale, logger zerolog.Logger) PreferenceService {
	if _, ok := i18n.ParseLocale(string(fallback)); !ok {
		fallback = i18n.DefaultLocale
	}
	return &preferenceService{
		repo:     repo,
		fallback: fallback,
		logger:   logger.With().Str("component", "preference_service").Logger(),
	}
}

func (s *preferenceService) Locale(ctx context.Context, clientID string) i18n.Locale {
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return s.fallback
	}

	stored, err := s.repo.Locale(ctx, clientID)
	if err != nil {
		if !errors.Is(err, repository.ErrKeyNotFound) {
			s.logger.Warn().Err(err).Str("client_id", clientID).Msg("failed to read locale preference")
		}
		return s.fallback
	}

	locale, ok := i18n.ParseLocale(stored)
	if !ok {
		s.logger.Warn().Str("client_id", clientID).Str("stored", stored).Msg("ignoring unsupported stored locale")
		return s.fallback
	}
	return locale
}

func (s *preferenceService) SetLocale(ctx context.Context, clientID, value string) (i18n.Locale, error) {
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return "", ErrClientIDRequired
	}
	locale, ok := i18n.ParseLocale(value)
	if !ok {
		return "", ErrUnsupportedLocale
	}

	if err := s.repo.SetLocale(ctx, clientID, string(locale)); err != nil {
		s.logger.Warn().Err(err).Str("client_id", clientID).Msg("failed to persist locale preference")
	}
	return locale, nil
}
