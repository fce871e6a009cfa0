package models

import (
	"strings"
	"time"
)

// QuestionStatus tracks the one-way pending -> answered lifecycle.
type QuestionStatus string

const (
	QuestionPending  QuestionStatus = "pending"
	QuestionAnswered QuestionStatus = "answered"
)

// AnonymousStudent labels questions whose email has an empty local part.
const AnonymousStudent = "Anonymous"

// Question is a student question addressed to one teacher.
type Question struct {
	ID           string         `json:"id"`
	TeacherID    string         `json:"teacher_id"`
	StudentName  string         `json:"student_name"`
	StudentEmail string         `json:"student_email"`
	QuestionText string         `json:"question_text"`
	AnswerText   string         `json:"answer_text,omitempty"`
	Status       QuestionStatus `json:"status"`
	IsPinned     bool           `json:"is_pinned"`
	AskedAt      time.Time      `json:"asked_at"`
	AnsweredAt   *time.Time     `json:"answered_at,omitempty"`
}

// IsAnswered reports whether an answer has been submitted.
func (q Question) IsAnswered() bool {
	return q.Status == QuestionAnswered
}

// StudentNameFromEmail returns the local part of the address.
func StudentNameFromEmail(email string) string {
	local, _, _ := strings.Cut(strings.TrimSpace(email), "@")
	if local == "" {
		return AnonymousStudent
	}
	return local
}
