package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/noah-isme/algotutor-api/internal/dto"
	"github.com/noah-isme/algotutor-api/internal/i18n"
	"github.com/noah-isme/algotutor-api/internal/models"
	"github.com/noah-isme/algotutor-api/internal/policy"
	"github.com/noah-isme/algotutor-api/internal/store"
)

// LessonService manages lessons. Stored text stays raw; reads resolve it
// for the requested locale.
type LessonService interface {
	Create(ctx context.Context, actor models.Principal, req dto.LessonCreateRequest) (models.Lesson, error)
	Update(ctx context.Context, actor models.Principal, id string, req dto.LessonUpdateRequest) (models.Lesson, bool, error)
	Delete(ctx context.Context, actor models.Principal, id string) error
	List(locale i18n.Locale, grade string) []dto.LessonResponse
	Get(locale i18n.Locale, slug string) (dto.LessonResponse, bool)
	Seed(ctx context.Context, lessons []models.Lesson) int
}

type lessonService struct {
	state     *store.State
	catalog   *i18n.Catalog
	validator *validator.Validate
	changes   changeNotifier
}

// NewLessonService constructs the lesson service.
func NewLessonService(state *store.State, catalog *i18n.Catalog, validate *validator.Validate, events EventPublisher, activity ActivityRecorder, logger zerolog.Logger) LessonService {
	logger = logger.With().Str("component", "lesson_service").Logger()
	return &lessonService{
		state:     state,
		catalog:   catalog,
		validator: validate,
		changes:   newChangeNotifier(events, activity, logger),
	}
}

func (s *lessonService) Create(ctx context.Context, actor models.Principal, req dto.LessonCreateRequest) (models.Lesson, error) {
	if !policy.CanManageContent(actor) {
		s.changes.outcome(collectionLessons, "created", resultDenied)
		return models.Lesson{}, denied("create lesson")
	}
	if err := s.validator.Struct(req); err != nil {
		return models.Lesson{}, err
	}

	grade, _ := models.ParseGrade(req.Grade)
	lesson := models.Lesson{
		ID:          uuid.NewString(),
		Slug:        lessonSlug(req.Slug, req.Title),
		Grade:       grade,
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Content:     req.Content,
		Example:     req.Example,
		Exercise:    models.Exercise{Question: req.Exercise.Question, Solution: req.Exercise.Solution},
		Params:      req.Params,
	}
	if lesson.Slug == "" {
		lesson.Slug = lesson.ID
	}

	err := s.state.Lessons.Transact(func(items []models.Lesson) ([]models.Lesson, error) {
		if lessonSlugInUse(items, lesson.Slug, "") {
			return nil, ErrSlugTaken
		}
		return append(items, lesson), nil
	})
	if err != nil {
		s.changes.outcome(collectionLessons, "created", resultRejected)
		return models.Lesson{}, err
	}

	s.changes.applied(ctx, actor, collectionLessons, "created", lesson.ID, lesson, map[string]interface{}{"slug": lesson.Slug})
	return lesson, nil
}

func (s *lessonService) Update(ctx context.Context, actor models.Principal, id string, req dto.LessonUpdateRequest) (models.Lesson, bool, error) {
	if !policy.CanManageContent(actor) {
		s.changes.outcome(collectionLessons, "updated", resultDenied)
		return models.Lesson{}, false, denied("update lesson")
	}
	if err := s.validator.Struct(req); err != nil {
		return models.Lesson{}, false, err
	}

	changes := models.LessonChanges{
		Title:       trimmedPtr(req.Title),
		Description: trimmedPtr(req.Description),
		Content:     req.Content,
		Example:     req.Example,
		Params:      req.Params,
	}
	if req.Slug != nil {
		if slug := lessonSlug(*req.Slug, ""); slug != "" {
			changes.Slug = &slug
		}
	}
	if req.Grade != nil {
		grade, _ := models.ParseGrade(*req.Grade)
		changes.Grade = &grade
	}
	if req.Exercise != nil {
		changes.Exercise = &models.Exercise{Question: req.Exercise.Question, Solution: req.Exercise.Solution}
	}

	var (
		updated models.Lesson
		applied bool
	)
	err := s.state.Lessons.Transact(func(items []models.Lesson) ([]models.Lesson, error) {
		for i := range items {
			if items[i].ID != id {
				continue
			}
			if changes.Slug != nil && lessonSlugInUse(items, *changes.Slug, id) {
				return nil, ErrSlugTaken
			}
			changes.Apply(&items[i])
			updated, applied = items[i], true
			break
		}
		return items, nil
	})
	switch {
	case err != nil:
		s.changes.outcome(collectionLessons, "updated", resultRejected)
		return models.Lesson{}, false, err
	case !applied:
		s.changes.outcome(collectionLessons, "updated", resultNoop)
		return models.Lesson{}, false, nil
	}

	s.changes.applied(ctx, actor, collectionLessons, "updated", id, updated, map[string]interface{}{"slug": updated.Slug})
	return updated, true, nil
}

func (s *lessonService) Delete(ctx context.Context, actor models.Principal, id string) error {
	if !policy.CanManageContent(actor) {
		s.changes.outcome(collectionLessons, "deleted", resultDenied)
		return denied("delete lesson")
	}

	removed, ok := s.state.Lessons.Remove(id)
	if !ok {
		s.changes.outcome(collectionLessons, "deleted", resultNoop)
		return nil
	}

	s.changes.applied(ctx, actor, collectionLessons, "deleted", id, nil, map[string]interface{}{"slug": removed.Slug})
	return nil
}

func (s *lessonService) List(locale i18n.Locale, grade string) []dto.LessonResponse {
	var lessons []models.Lesson
	if wanted, ok := models.ParseGrade(grade); ok {
		lessons = s.state.Lessons.Filter(func(l models.Lesson) bool { return l.Grade == wanted })
	} else {
		lessons = s.state.Lessons.All()
	}

	out := make([]dto.LessonResponse, 0, len(lessons))
	for _, lesson := range lessons {
		out = append(out, dto.NewLessonResponse(lesson, string(locale), s.resolver(locale, lesson.Params)))
	}
	return out
}

func (s *lessonService) Get(locale i18n.Locale, slug string) (dto.LessonResponse, bool) {
	lesson, ok := s.state.Lessons.FindBy(func(l models.Lesson) bool { return l.Slug == slug })
	if !ok {
		return dto.LessonResponse{}, false
	}
	return dto.NewLessonResponse(lesson, string(locale), s.resolver(locale, lesson.Params)), true
}

// Seed inserts lessons whose slug is not present yet.
func (s *lessonService) Seed(ctx context.Context, lessons []models.Lesson) int {
	inserted := []models.Lesson{}
	_ = s.state.Lessons.Transact(func(items []models.Lesson) ([]models.Lesson, error) {
		for _, lesson := range lessons {
			if lessonSlugInUse(items, lesson.Slug, "") {
				continue
			}
			if lesson.ID == "" {
				lesson.ID = uuid.NewString()
			}
			items = append(items, lesson)
			inserted = append(inserted, lesson)
		}
		return items, nil
	})

	for _, lesson := range inserted {
		s.changes.applied(ctx, models.Principal{}, collectionLessons, "created", lesson.ID, lesson, map[string]interface{}{"slug": lesson.Slug, "seed": true})
	}
	return len(inserted)
}

// resolver passes every field through the catalog. Plain text that is not a
// key comes back unchanged.
func (s *lessonService) resolver(locale i18n.Locale, params map[string]string) func(string) string {
	var substitutions map[string]any
	if len(params) > 0 {
		substitutions = make(map[string]any, len(params))
		for name, value := range params {
			substitutions[name] = value
		}
	}
	return func(text string) string {
		if text == "" {
			return ""
		}
		return s.catalog.Resolve(locale, text, substitutions)
	}
}

func lessonSlug(supplied, title string) string {
	if slug := models.Slugify(strings.TrimSpace(supplied)); slug != "" {
		return slug
	}
	return models.Slugify(strings.TrimSpace(title))
}

func lessonSlugInUse(items []models.Lesson, slug, exceptID string) bool {
	for _, item := range items {
		if item.ID != exceptID && item.Slug == slug {
			return true
		}
	}
	return false
}

func trimmedPtr(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	return &trimmed
}
