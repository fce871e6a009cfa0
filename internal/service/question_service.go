package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/noah-isme/algotutor-api/internal/dto"
	"github.com/noah-isme/algotutor-api/internal/models"
	"github.com/noah-isme/algotutor-api/internal/policy"
	"github.com/noah-isme/algotutor-api/internal/store"
)

// QuestionService runs the student question board.
type QuestionService interface {
	Submit(ctx context.Context, req dto.QuestionSubmitRequest) (models.Question, error)
	Answer(ctx context.Context, actor models.Principal, id string, req dto.AnswerRequest) (models.Question, bool, error)
	TogglePin(ctx context.Context, actor models.Principal, id string) (models.Question, bool, error)
	Pending(actor models.Principal) ([]models.Question, error)
	Answered(actor models.Principal) ([]models.Question, error)
	Pinned() []models.Question
}

type questionService struct {
	state     *store.State
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	changes   changeNotifier
	now       func() time.Time
}

// NewQuestionService constructs the question service.
func NewQuestionService(state *store.State, validate *validator.Validate, events EventPublisher, activity ActivityRecorder, logger zerolog.Logger) QuestionService {
	logger = logger.With().Str("component", "question_service").Logger()
	return &questionService{
		state:     state,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		changes:   newChangeNotifier(events, activity, logger),
		now:       time.Now,
	}
}

// Submit files a question for an approved teacher. The newest question
// comes first.
func (s *questionService) Submit(ctx context.Context, req dto.QuestionSubmitRequest) (models.Question, error) {
	if err := s.validator.Struct(req); err != nil {
		return models.Question{}, err
	}

	teacher, ok := s.state.Principals.Find(strings.TrimSpace(req.TeacherID))
	if !ok || teacher.IsAdmin() || !teacher.IsApproved {
		s.changes.outcome(collectionQuestions, "submitted", resultRejected)
		return models.Question{}, ErrUnknownTeacher
	}

	text := plainText(s.sanitizer, req.QuestionText)
	if text == "" {
		s.changes.outcome(collectionQuestions, "submitted", resultRejected)
		return models.Question{}, ErrQuestionEmpty
	}

	email := strings.TrimSpace(req.StudentEmail)
	question := models.Question{
		ID:           uuid.NewString(),
		TeacherID:    teacher.ID,
		StudentName:  models.StudentNameFromEmail(email),
		StudentEmail: email,
		QuestionText: text,
		Status:       models.QuestionPending,
		AskedAt:      s.now().UTC(),
	}
	s.state.Questions.Prepend(question)

	s.changes.appliedFor(ctx, models.Principal{}, teacher.ID, collectionQuestions, "submitted", question.ID, dto.NewQuestionResponse(question), map[string]interface{}{"teacher_id": teacher.ID, "student_email": email})
	return question, nil
}

// Answer records or overwrites the answer. Answered questions never return
// to pending.
func (s *questionService) Answer(ctx context.Context, actor models.Principal, id string, req dto.AnswerRequest) (models.Question, bool, error) {
	existing, ok := s.state.Questions.Find(id)
	if !ok {
		s.changes.outcome(collectionQuestions, "answered", resultNoop)
		return models.Question{}, false, nil
	}
	if !policy.CanAnswerQuestion(actor, existing) {
		s.changes.outcome(collectionQuestions, "answered", resultDenied)
		return models.Question{}, false, denied("answer question")
	}
	if err := s.validator.Struct(req); err != nil {
		return models.Question{}, false, err
	}

	answer := plainText(s.sanitizer, req.AnswerText)
	if answer == "" {
		s.changes.outcome(collectionQuestions, "answered", resultRejected)
		return models.Question{}, false, ErrAnswerEmpty
	}

	answeredAt := s.now().UTC()
	updated, ok := s.state.Questions.Update(id, func(q *models.Question) {
		q.AnswerText = answer
		q.Status = models.QuestionAnswered
		q.AnsweredAt = &answeredAt
	})
	if !ok {
		s.changes.outcome(collectionQuestions, "answered", resultNoop)
		return models.Question{}, false, nil
	}

	s.changes.applied(ctx, actor, collectionQuestions, "answered", id, publicQuestion(updated), nil)
	return updated, true, nil
}

// TogglePin flips the pin. Only answered questions can be pinned; unpinning
// is always allowed.
func (s *questionService) TogglePin(ctx context.Context, actor models.Principal, id string) (models.Question, bool, error) {
	existing, ok := s.state.Questions.Find(id)
	if !ok {
		s.changes.outcome(collectionQuestions, "pinned", resultNoop)
		return models.Question{}, false, nil
	}
	if !policy.CanAnswerQuestion(actor, existing) {
		s.changes.outcome(collectionQuestions, "pinned", resultDenied)
		return models.Question{}, false, denied("pin question")
	}

	var rejected bool
	updated, ok := s.state.Questions.Update(id, func(q *models.Question) {
		if !q.IsPinned && !q.IsAnswered() {
			rejected = true
			return
		}
		q.IsPinned = !q.IsPinned
	})
	if !ok {
		s.changes.outcome(collectionQuestions, "pinned", resultNoop)
		return models.Question{}, false, nil
	}
	if rejected {
		s.changes.outcome(collectionQuestions, "pinned", resultRejected)
		return models.Question{}, false, ErrQuestionNotAnswered
	}

	action := "pinned"
	if !updated.IsPinned {
		action = "unpinned"
	}
	s.changes.applied(ctx, actor, collectionQuestions, action, id, publicQuestion(updated), nil)
	return updated, true, nil
}

func (s *questionService) Pending(actor models.Principal) ([]models.Question, error) {
	return s.staffView(actor, func(q models.Question) bool { return !q.IsAnswered() })
}

func (s *questionService) Answered(actor models.Principal) ([]models.Question, error) {
	return s.staffView(actor, models.Question.IsAnswered)
}

func (s *questionService) Pinned() []models.Question {
	return s.state.Questions.Filter(func(q models.Question) bool {
		return q.IsPinned && q.IsAnswered()
	})
}

// staffView lists everything for admins and only their own questions for
// teachers.
func (s *questionService) staffView(actor models.Principal, match func(models.Question) bool) ([]models.Question, error) {
	if actor.ID == "" {
		return nil, denied("view questions")
	}
	return s.state.Questions.Filter(func(q models.Question) bool {
		if !actor.IsAdmin() && q.TeacherID != actor.ID {
			return false
		}
		return match(q)
	}), nil
}

func publicQuestion(q models.Question) dto.PublicQuestionResponse {
	return dto.NewPublicQuestionResponseSlice([]models.Question{q})[0]
}
