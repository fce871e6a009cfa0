package models

import (
	"maps"
	"strings"
)

// Grade is the difficulty tier of a lesson.
type Grade string

const (
	GradeBeginner     Grade = "Beginner"
	GradeIntermediate Grade = "Intermediate"
	GradeAdvanced     Grade = "Advanced"
)

// Grades lists the tiers in display order.
var Grades = []Grade{GradeBeginner, GradeIntermediate, GradeAdvanced}

// ParseGrade matches a tier case-insensitively.
func ParseGrade(value string) (Grade, bool) {
	for _, grade := range Grades {
		if strings.EqualFold(string(grade), strings.TrimSpace(value)) {
			return grade, true
		}
	}
	return "", false
}

// Exercise is the practice task embedded in a lesson.
type Exercise struct {
	Question string `json:"question"`
	Solution string `json:"solution"`
}

// Lesson stores raw lesson text. Text fields may hold translation keys
// (e.g. "lessonContents.loops.title") which are resolved on read, with
// Params substituted into their placeholders.
type Lesson struct {
	ID          string            `json:"id"`
	Slug        string            `json:"slug"`
	Grade       Grade             `json:"grade"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Content     string            `json:"content"`
	Example     string            `json:"example"`
	Exercise    Exercise          `json:"exercise"`
	Params      map[string]string `json:"params,omitempty"`
}

// LessonChanges carries mergeable lesson fields.
type LessonChanges struct {
	Slug        *string
	Grade       *Grade
	Title       *string
	Description *string
	Content     *string
	Example     *string
	Exercise    *Exercise
	Params      *map[string]string
}

// Apply merges the non-nil fields into the lesson. Params replaces the whole
// parameter set.
func (c LessonChanges) Apply(l *Lesson) {
	if c.Slug != nil {
		l.Slug = *c.Slug
	}
	if c.Grade != nil {
		l.Grade = *c.Grade
	}
	if c.Title != nil {
		l.Title = *c.Title
	}
	if c.Description != nil {
		l.Description = *c.Description
	}
	if c.Content != nil {
		l.Content = *c.Content
	}
	if c.Example != nil {
		l.Example = *c.Example
	}
	if c.Exercise != nil {
		l.Exercise = *c.Exercise
	}
	if c.Params != nil {
		l.Params = maps.Clone(*c.Params)
	}
}
