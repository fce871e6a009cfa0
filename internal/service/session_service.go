package service

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/algotutor-api/internal/models"
	"github.com/noah-isme/algotutor-api/internal/observability"
	"github.com/noah-isme/algotutor-api/internal/repository"
)

// Routes returned by session transitions.
const (
	RoutePublicHome  = "/"
	RouteAdminHome   = "/admin"
	RouteTeacherHome = "/teacher"
)

// SessionService keeps the principal of each browsing session in
// session-scoped storage.
type SessionService interface {
	Login(ctx context.Context, sessionID string, principal models.Principal) (string, error)
	Logout(ctx context.Context, sessionID string) (string, error)
	Restore(ctx context.Context, sessionID string) (models.Principal, bool)
	Sync(ctx context.Context, principal models.Principal)
	Revoke(ctx context.Context, principalID string)
}

type sessionService struct {
	repo   repository.SessionRepository
	logger zerolog.Logger
	tracer trace.Tracer
}

// NewSessionService constructs the session service.
func NewSessionService(repo repository.SessionRepository, logger zerolog.Logger) SessionService {
	return &sessionService{
		repo:   repo,
		logger: logger.With().Str("component", "session_service").Logger(),
		tracer: otel.Tracer("github.com/noah-isme/algotutor-api/internal/service/session"),
	}
}

// HomeRoute is the landing route for a principal's role.
func HomeRoute(principal models.Principal) string {
	if principal.IsAdmin() {
		return RouteAdminHome
	}
	return RouteTeacherHome
}

func (s *sessionService) Login(ctx context.Context, sessionID string, principal models.Principal) (string, error) {
	ctx, span := s.tracer.Start(ctx, "session.login", trace.WithAttributes(attribute.String("principal.role", string(principal.Role))))
	defer span.End()

	record, err := json.Marshal(principal.Public())
	if err == nil {
		err = s.repo.Save(ctx, sessionID, principal.ID, record)
	}
	if err != nil {
		s.logger.Error().Err(err).Str("principal_id", principal.ID).Msg("failed to persist session")
		// Nothing half-written may survive a failed login.
		_ = s.repo.Delete(ctx, sessionID)
		observability.SessionOperations().WithLabelValues("login", "storage_error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "storage failed")
		return "", ErrSessionUnavailable
	}

	observability.SessionOperations().WithLabelValues("login", "ok").Inc()
	return HomeRoute(principal), nil
}

func (s *sessionService) Logout(ctx context.Context, sessionID string) (string, error) {
	ctx, span := s.tracer.Start(ctx, "session.logout")
	defer span.End()

	if principal, ok := s.Restore(ctx, sessionID); ok {
		if err := s.repo.Forget(ctx, principal.ID, sessionID); err != nil {
			s.logger.Warn().Err(err).Msg("failed to unindex session")
		}
	}

	if err := s.repo.Delete(ctx, sessionID); err != nil {
		s.logger.Error().Err(err).Msg("failed to remove session")
		observability.SessionOperations().WithLabelValues("logout", "storage_error").Inc()
		span.RecordError(err)
		return RoutePublicHome, ErrSessionUnavailable
	}

	observability.SessionOperations().WithLabelValues("logout", "ok").Inc()
	return RoutePublicHome, nil
}

func (s *sessionService) Restore(ctx context.Context, sessionID string) (models.Principal, bool) {
	if sessionID == "" {
		return models.Principal{}, false
	}

	raw, err := s.repo.Load(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, repository.ErrKeyNotFound) {
			s.logger.Warn().Err(err).Msg("failed to read session")
			observability.SessionOperations().WithLabelValues("restore", "storage_error").Inc()
		}
		return models.Principal{}, false
	}

	var principal models.Principal
	if err := json.Unmarshal(raw, &principal); err != nil || principal.ID == "" {
		s.logger.Warn().Err(err).Msg("discarding malformed session record")
		_ = s.repo.Delete(ctx, sessionID)
		observability.SessionOperations().WithLabelValues("restore", "corrupt").Inc()
		return models.Principal{}, false
	}

	return principal, true
}

func (s *sessionService) Sync(ctx context.Context, principal models.Principal) {
	sessions, err := s.repo.SessionsOf(ctx, principal.ID)
	if err != nil {
		s.logger.Warn().Err(err).Str("principal_id", principal.ID).Msg("failed to list sessions")
		return
	}

	record, err := json.Marshal(principal.Public())
	if err != nil {
		return
	}

	for _, sessionID := range sessions {
		live, err := s.repo.Refresh(ctx, sessionID, record)
		if err != nil {
			s.logger.Warn().Err(err).Str("principal_id", principal.ID).Msg("failed to refresh session")
			continue
		}
		if !live {
			// Expired or logged out: drop it from the index.
			_ = s.repo.Forget(ctx, principal.ID, sessionID)
		}
	}
}

func (s *sessionService) Revoke(ctx context.Context, principalID string) {
	sessions, err := s.repo.SessionsOf(ctx, principalID)
	if err != nil {
		s.logger.Warn().Err(err).Str("principal_id", principalID).Msg("failed to list sessions")
		return
	}
	for _, sessionID := range sessions {
		if err := s.repo.Delete(ctx, sessionID); err != nil {
			s.logger.Warn().Err(err).Msg("failed to revoke session")
		}
	}
	if err := s.repo.Forget(ctx, principalID, sessions...); err != nil {
		s.logger.Warn().Err(err).Msg("failed to clear session index")
	}
}
