package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/algotutor-api/internal/dto"
	"github.com/noah-isme/algotutor-api/internal/i18n"
	"github.com/noah-isme/algotutor-api/internal/models"
	"github.com/noah-isme/algotutor-api/internal/store"
)

func newLessonHarness(t *testing.T) (LessonService, *store.State, *recordedEvents) {
	t.Helper()
	state := store.New()
	events := &recordedEvents{}
	svc := NewLessonService(state, testCatalog(t), testValidator(), events, NewActivityService(&memoryActivityRepo{}, testLogger()), testLogger())
	return svc, state, events
}

func TestLessonCreateRequiresStaff(t *testing.T) {
	svc, state, _ := newLessonHarness(t)
	req := dto.LessonCreateRequest{Grade: "Beginner", Title: "Variables", Content: "x := 1"}

	for _, actor := range []models.Principal{{}, testPending} {
		_, err := svc.Create(context.Background(), actor, req)
		require.ErrorIs(t, err, ErrPermissionDenied)
	}
	require.Zero(t, state.Lessons.Len())

	lesson, err := svc.Create(context.Background(), testTeacher, req)
	require.NoError(t, err)
	require.Equal(t, "variables", lesson.Slug)
	require.Equal(t, models.GradeBeginner, lesson.Grade)
}

func TestLessonSlugUniqueness(t *testing.T) {
	svc, state, _ := newLessonHarness(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, testAdmin, dto.LessonCreateRequest{Slug: "loops", Grade: "Beginner", Title: "Loops", Content: "for"})
	require.NoError(t, err)
	second, err := svc.Create(ctx, testAdmin, dto.LessonCreateRequest{Grade: "Intermediate", Title: "Arrays", Content: "[]"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, testAdmin, dto.LessonCreateRequest{Slug: "loops", Grade: "Advanced", Title: "Loops again", Content: "while"})
	require.ErrorIs(t, err, ErrSlugTaken)
	require.Equal(t, 2, state.Lessons.Len())

	taken := first.Slug
	_, _, err = svc.Update(ctx, testAdmin, second.ID, dto.LessonUpdateRequest{Slug: &taken})
	require.ErrorIs(t, err, ErrSlugTaken)

	same := second.Slug
	_, applied, err := svc.Update(ctx, testAdmin, second.ID, dto.LessonUpdateRequest{Slug: &same})
	require.NoError(t, err)
	require.True(t, applied)
}

func TestLessonCreateValidatesGrade(t *testing.T) {
	svc, _, _ := newLessonHarness(t)
	_, err := svc.Create(context.Background(), testAdmin, dto.LessonCreateRequest{Grade: "Expert", Title: "X", Content: "y"})
	require.True(t, isValidation(err))
}

func TestLessonUpdateAndDeleteUnknownIDAreNoops(t *testing.T) {
	svc, _, events := newLessonHarness(t)
	title := "New"

	_, applied, err := svc.Update(context.Background(), testTeacher, "missing", dto.LessonUpdateRequest{Title: &title})
	require.NoError(t, err)
	require.False(t, applied)
	require.NoError(t, svc.Delete(context.Background(), testTeacher, "missing"))
	require.Empty(t, events.actions())
}

func TestLessonReadViewResolvesTranslations(t *testing.T) {
	svc, state, _ := newLessonHarness(t)
	seeded := svc.Seed(context.Background(), []models.Lesson{{
		Slug:        "loops",
		Grade:       models.GradeBeginner,
		Title:       "lessonContents.loops.title",
		Description: "lessonContents.loops.description",
		Content:     "lessonContents.loops.content",
		Example:     "for i := 0; i < 3; i++ {}",
		Exercise:    models.Exercise{Question: "lessonContents.loops.exercise.question", Solution: "sum := 55"},
		Params:      map[string]string{"n": "10"},
	}})
	require.Equal(t, 1, seeded)

	french, ok := svc.Get(i18n.French, "loops")
	require.True(t, ok)
	require.Equal(t, "Boucles", french.Title)
	require.Equal(t, "fr", french.Locale)
	require.Equal(t, "for i := 0; i < 3; i++ {}", french.Example)
	require.Equal(t, "Affichez la somme des entiers de 1 à 10.", french.Exercise.Question)

	english, ok := svc.Get(i18n.English, "loops")
	require.True(t, ok)
	require.Equal(t, "Loops", english.Title)

	stored := state.Lessons.All()[0]
	require.Equal(t, "lessonContents.loops.title", stored.Title)

	require.Equal(t, 0, svc.Seed(context.Background(), []models.Lesson{{Slug: "loops"}}))
}

func TestLessonListFiltersByGrade(t *testing.T) {
	svc, _, _ := newLessonHarness(t)
	ctx := context.Background()
	_, err := svc.Create(ctx, testAdmin, dto.LessonCreateRequest{Grade: "Beginner", Title: "Variables", Content: "a"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, testAdmin, dto.LessonCreateRequest{Grade: "Advanced", Title: "Recursion", Content: "b"})
	require.NoError(t, err)

	require.Len(t, svc.List(i18n.English, ""), 2)
	advanced := svc.List(i18n.English, "advanced")
	require.Len(t, advanced, 1)
	require.Equal(t, "recursion", advanced[0].Slug)
}

func TestLessonDeleteTwice(t *testing.T) {
	svc, state, events := newLessonHarness(t)
	lesson, err := svc.Create(context.Background(), testAdmin, dto.LessonCreateRequest{Grade: "Beginner", Title: "Arrays", Content: "a"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), testAdmin, lesson.ID))
	require.NoError(t, svc.Delete(context.Background(), testAdmin, lesson.ID))
	require.Zero(t, state.Lessons.Len())
	require.Equal(t, []string{"lessons.created", "lessons.deleted"}, events.actions())
}

func TestLessonUpdateReplacesParams(t *testing.T) {
	svc, state, _ := newLessonHarness(t)
	created, err := svc.Create(context.Background(), testTeacher, dto.LessonCreateRequest{
		Slug:     "loops",
		Grade:    "Beginner",
		Title:    "lessonContents.loops.title",
		Content:  "lessonContents.loops.content",
		Exercise: dto.ExercisePayload{Question: "lessonContents.loops.exercise.question"},
		Params:   map[string]string{"n": "10"},
	})
	require.NoError(t, err)

	_, ok, err := svc.Update(context.Background(), testTeacher, created.ID, dto.LessonUpdateRequest{
		Params: &map[string]string{"n": "20"},
	})
	require.NoError(t, err)
	require.True(t, ok)

	stored, found := state.Lessons.Find(created.ID)
	require.True(t, found)
	require.Equal(t, map[string]string{"n": "20"}, stored.Params)

	view, found := svc.Get(i18n.French, "loops")
	require.True(t, found)
	require.Equal(t, "Affichez la somme des entiers de 1 à 20.", view.Exercise.Question)

	title := "lessonContents.loops.title"
	_, ok, err = svc.Update(context.Background(), testTeacher, created.ID, dto.LessonUpdateRequest{Title: &title})
	require.NoError(t, err)
	require.True(t, ok)
	stored, _ = state.Lessons.Find(created.ID)
	require.Equal(t, map[string]string{"n": "20"}, stored.Params)
}
