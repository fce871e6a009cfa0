package store

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/algotutor-api/internal/models"
)

func TestCollectionPreservesInsertionOrder(t *testing.T) {
	state := New()
	state.Principals.Append(models.Principal{ID: "a"})
	state.Principals.Append(models.Principal{ID: "b"})
	state.Principals.Prepend(models.Principal{ID: "c"})

	ids := []string{}
	for _, p := range state.Principals.All() {
		ids = append(ids, p.ID)
	}
	require.Equal(t, []string{"c", "a", "b"}, ids)
}

func TestCollectionSnapshotsAreDetached(t *testing.T) {
	state := New()
	state.Lessons.Append(models.Lesson{ID: "l1", Title: "Loops"})

	snapshot := state.Lessons.All()
	snapshot[0].Title = "changed"

	stored, ok := state.Lessons.Find("l1")
	require.True(t, ok)
	require.Equal(t, "Loops", stored.Title)
}

func TestCollectionUpdateUnknownIDIsNoop(t *testing.T) {
	state := New()
	state.News.Append(models.NewsArticle{ID: "n1", Title: "One"})

	_, ok := state.News.Update("missing", func(a *models.NewsArticle) { a.Title = "x" })
	require.False(t, ok)
	require.Equal(t, []models.NewsArticle{{ID: "n1", Title: "One"}}, state.News.All())
}

func TestCollectionRemoveTwiceIsNoop(t *testing.T) {
	state := New()
	state.Uploads.Append(models.UploadedFile{ID: "u1"})
	state.Uploads.Append(models.UploadedFile{ID: "u2"})

	_, ok := state.Uploads.Remove("u1")
	require.True(t, ok)
	afterFirst := state.Uploads.All()

	_, ok = state.Uploads.Remove("u1")
	require.False(t, ok)
	require.Equal(t, afterFirst, state.Uploads.All())
}

func TestCollectionTransactRollsBackOnError(t *testing.T) {
	state := New()
	state.Questions.Append(models.Question{ID: "q1"})

	err := state.Questions.Transact(func(items []models.Question) ([]models.Question, error) {
		items[0].AnswerText = "mutated"
		return nil, errors.New("abort")
	})
	require.Error(t, err)

	stored, _ := state.Questions.Find("q1")
	require.Empty(t, stored.AnswerText)
}

func TestCollectionConcurrentAppends(t *testing.T) {
	state := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			state.Questions.Prepend(models.Question{ID: string(rune('A' + i))})
		}(i)
	}
	wg.Wait()
	require.Equal(t, 50, state.Questions.Len())
}
