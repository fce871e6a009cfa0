package dto

import (
	"time"

	"github.com/noah-isme/algotutor-api/internal/models"
)

// QuestionSubmitRequest is the public question form.
type QuestionSubmitRequest struct {
	TeacherID    string `json:"teacher_id" validate:"required"`
	StudentEmail string `json:"student_email" validate:"required,email,max=254"`
	QuestionText string `json:"question_text" validate:"required,min=3,max=2000"`
}

// AnswerRequest submits or overwrites an answer.
type AnswerRequest struct {
	AnswerText string `json:"answer_text" validate:"required,min=1,max=5000"`
}

// QuestionResponse is the staff view of a question.
type QuestionResponse struct {
	ID           string     `json:"id"`
	TeacherID    string     `json:"teacher_id"`
	StudentName  string     `json:"student_name"`
	StudentEmail string     `json:"student_email"`
	QuestionText string     `json:"question_text"`
	AnswerText   string     `json:"answer_text,omitempty"`
	Status       string     `json:"status"`
	IsPinned     bool       `json:"is_pinned"`
	AskedAt      time.Time  `json:"asked_at"`
	AnsweredAt   *time.Time `json:"answered_at,omitempty"`
}

// PublicQuestionResponse is the public Q&A card; it omits the student email.
type PublicQuestionResponse struct {
	ID           string     `json:"id"`
	TeacherID    string     `json:"teacher_id"`
	StudentName  string     `json:"student_name"`
	QuestionText string     `json:"question_text"`
	AnswerText   string     `json:"answer_text"`
	AnsweredAt   *time.Time `json:"answered_at,omitempty"`
}

// NewQuestionResponse converts a question.
func NewQuestionResponse(q models.Question) QuestionResponse {
	return QuestionResponse{
		ID:           q.ID,
		TeacherID:    q.TeacherID,
		StudentName:  q.StudentName,
		StudentEmail: q.StudentEmail,
		QuestionText: q.QuestionText,
		AnswerText:   q.AnswerText,
		Status:       string(q.Status),
		IsPinned:     q.IsPinned,
		AskedAt:      q.AskedAt,
		AnsweredAt:   q.AnsweredAt,
	}
}

// NewQuestionResponseSlice converts questions keeping their order.
func NewQuestionResponseSlice(items []models.Question) []QuestionResponse {
	out := make([]QuestionResponse, 0, len(items))
	for _, item := range items {
		out = append(out, NewQuestionResponse(item))
	}
	return out
}

// NewPublicQuestionResponseSlice converts questions for the public board.
func NewPublicQuestionResponseSlice(items []models.Question) []PublicQuestionResponse {
	out := make([]PublicQuestionResponse, 0, len(items))
	for _, q := range items {
		out = append(out, PublicQuestionResponse{
			ID:           q.ID,
			TeacherID:    q.TeacherID,
			StudentName:  q.StudentName,
			QuestionText: q.QuestionText,
			AnswerText:   q.AnswerText,
			AnsweredAt:   q.AnsweredAt,
		})
	}
	return out
}
