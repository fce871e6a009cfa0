package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/noah-isme/algotutor-api/internal/dto"
	"github.com/noah-isme/algotutor-api/internal/models"
	"github.com/noah-isme/algotutor-api/internal/repository"
)

// ErrActivityIncomplete rejects entries missing an action or entity type.
var ErrActivityIncomplete = errors.New("activity entry needs an action and an entity type")

// maskedMetadata lists substrings of metadata keys whose values never reach
// the audit table.
var maskedMetadata = []string{"email", "password", "token", "secret"}

const (
	maskedValue = "***"
	systemActor = "system"
)

// ActivityEntry is one audited mutation.
type ActivityEntry struct {
	ActorID    string
	ActorRole  string
	Action     string
	EntityType string
	EntityID   string
	Metadata   map[string]interface{}
}

func (e ActivityEntry) model() (models.ActivityLog, error) {
	action := strings.ToLower(strings.TrimSpace(e.Action))
	entityType := strings.ToLower(strings.TrimSpace(e.EntityType))
	if action == "" || entityType == "" {
		return models.ActivityLog{}, ErrActivityIncomplete
	}

	role := strings.ToLower(strings.TrimSpace(e.ActorRole))
	if role == "" {
		role = systemActor
	}

	metadata := make(datatypes.JSONMap, len(e.Metadata))
	for key, value := range e.Metadata {
		if isMaskedKey(key) {
			value = maskedValue
		}
		metadata[key] = value
	}

	return models.ActivityLog{
		ActorID:    strings.TrimSpace(e.ActorID),
		ActorRole:  role,
		Action:     action,
		EntityType: entityType,
		EntityID:   strings.TrimSpace(e.EntityID),
		Metadata:   metadata,
	}, nil
}

func isMaskedKey(key string) bool {
	key = strings.ToLower(key)
	for _, fragment := range maskedMetadata {
		if strings.Contains(key, fragment) {
			return true
		}
	}
	return false
}

// ActivityRecorder persists audit entries.
type ActivityRecorder interface {
	Record(ctx context.Context, entry ActivityEntry) (dto.ActivityResponse, error)
}

// ActivityService records and pages through the audit trail.
type ActivityService interface {
	ActivityRecorder
	List(ctx context.Context, req dto.ActivityListRequest) (dto.ActivityListResponse, error)
}

type activityService struct {
	repo   repository.ActivityLogRepository
	logger zerolog.Logger
}

// NewActivityService constructs the activity log service.
func NewActivityService(repo repository.ActivityLogRepository, logger zerolog.Logger) ActivityService {
	return &activityService{
		repo:   repo,
		logger: logger.With().Str("component", "activity_service").Logger(),
	}
}

func (s *activityService) Record(ctx context.Context, entry ActivityEntry) (dto.ActivityResponse, error) {
	model, err := entry.model()
	if err != nil {
		return dto.ActivityResponse{}, err
	}

	if err := s.repo.Create(ctx, &model); err != nil {
		s.logger.Error().Err(err).Str("action", model.Action).Msg("failed to persist activity log")
		return dto.ActivityResponse{}, err
	}
	return dto.NewActivityResponse(model), nil
}

func (s *activityService) List(ctx context.Context, req dto.ActivityListRequest) (dto.ActivityListResponse, error) {
	entries, total, err := s.repo.List(ctx, repository.ActivityLogFilter{
		Page:       req.Page,
		PageSize:   req.PageSize,
		ActorID:    strings.TrimSpace(req.ActorID),
		Action:     strings.ToLower(strings.TrimSpace(req.Action)),
		EntityType: strings.ToLower(strings.TrimSpace(req.EntityType)),
		EntityID:   strings.TrimSpace(req.EntityID),
		Since:      req.Since,
	})
	if err != nil {
		return dto.ActivityListResponse{}, err
	}

	items := make([]dto.ActivityResponse, len(entries))
	for i, entry := range entries {
		items[i] = dto.NewActivityResponse(entry)
	}

	return dto.ActivityListResponse{
		Items:      items,
		Pagination: paginate(req.Page, req.PageSize, total),
	}, nil
}

func paginate(page, pageSize int, total int64) dto.PaginationMeta {
	if page < 1 {
		page = 1
	}
	pages := 1
	if pageSize > 0 {
		pages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return dto.PaginationMeta{Page: page, PageSize: pageSize, TotalItems: total, TotalPages: pages}
}
