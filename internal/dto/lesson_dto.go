package dto

import "github.com/noah-isme/algotutor-api/internal/models"

// ExercisePayload is the practice task attached to a lesson.
type ExercisePayload struct {
	Question string `json:"question" validate:"max=5000"`
	Solution string `json:"solution" validate:"max=10000"`
}

// LessonCreateRequest creates a lesson. Text fields may be translation keys.
type LessonCreateRequest struct {
	Slug        string            `json:"slug" validate:"omitempty,max=120"`
	Grade       string            `json:"grade" validate:"required,oneof=Beginner Intermediate Advanced"`
	Title       string            `json:"title" validate:"required,max=200"`
	Description string            `json:"description" validate:"max=1000"`
	Content     string            `json:"content" validate:"required"`
	Example     string            `json:"example"`
	Exercise    ExercisePayload   `json:"exercise"`
	Params      map[string]string `json:"params"`
}

// LessonUpdateRequest merges lesson fields.
type LessonUpdateRequest struct {
	Slug        *string            `json:"slug" validate:"omitempty,min=1,max=120"`
	Grade       *string            `json:"grade" validate:"omitempty,oneof=Beginner Intermediate Advanced"`
	Title       *string            `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string            `json:"description" validate:"omitempty,max=1000"`
	Content     *string            `json:"content" validate:"omitempty,min=1"`
	Example     *string            `json:"example"`
	Exercise    *ExercisePayload   `json:"exercise"`
	Params      *map[string]string `json:"params"`
}

// LessonResponse is a lesson with every text field resolved for one locale.
type LessonResponse struct {
	ID          string          `json:"id"`
	Slug        string          `json:"slug"`
	Grade       string          `json:"grade"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Content     string          `json:"content"`
	Example     string          `json:"example"`
	Exercise    ExercisePayload `json:"exercise"`
	Locale      string          `json:"locale"`
}

// NewLessonResponse resolves lesson text through resolve.
func NewLessonResponse(lesson models.Lesson, locale string, resolve func(string) string) LessonResponse {
	return LessonResponse{
		ID:          lesson.ID,
		Slug:        lesson.Slug,
		Grade:       string(lesson.Grade),
		Title:       resolve(lesson.Title),
		Description: resolve(lesson.Description),
		Content:     resolve(lesson.Content),
		Example:     resolve(lesson.Example),
		Exercise: ExercisePayload{
			Question: resolve(lesson.Exercise.Question),
			Solution: resolve(lesson.Exercise.Solution),
		},
		Locale: locale,
	}
}
