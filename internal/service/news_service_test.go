package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/algotutor-api/internal/dto"
	"github.com/noah-isme/algotutor-api/internal/models"
	"github.com/noah-isme/algotutor-api/internal/store"
)

func newNewsHarness(t *testing.T) (*newsService, *store.State, *time.Time) {
	t.Helper()
	state := store.New()
	svc := NewNewsService(state, testCatalog(t), testValidator(), &recordedEvents{}, nil, testLogger()).(*newsService)
	clock := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return clock }
	return svc, state, &clock
}

func TestNewsSlugDerivation(t *testing.T) {
	require.Equal(t, "hello-world", models.Slugify("Hello, World!"))
	require.Equal(t, "go-122-released", models.Slugify("Go  1.22   released"))
}

func TestNewsCreateDefaults(t *testing.T) {
	svc, _, _ := newNewsHarness(t)

	article, err := svc.Create(context.Background(), testTeacher, dto.NewsCreateRequest{
		Title:   "Hello, World!",
		Summary: "First post",
		Content: `<p>Welcome</p><script>alert(1)</script>`,
	})
	require.NoError(t, err)
	require.Equal(t, "hello-world", article.Slug)
	require.Equal(t, testTeacher.Name, article.Author)
	require.Equal(t, "<p>Welcome</p>", article.Content)
	require.Equal(t, "https://picsum.photos/seed/hello-world/800/400", article.ImageURL)
	require.Equal(t, time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC), article.PublishedAt)
}

func TestNewsSlugCollisionsAreDisambiguated(t *testing.T) {
	svc, _, _ := newNewsHarness(t)
	ctx := context.Background()
	req := dto.NewsCreateRequest{Title: "Exam dates", Summary: "s", Content: "c"}

	slugs := []string{}
	for i := 0; i < 3; i++ {
		article, err := svc.Create(ctx, testAdmin, req)
		require.NoError(t, err)
		slugs = append(slugs, article.Slug)
	}
	require.Equal(t, []string{"exam-dates", "exam-dates-2", "exam-dates-3"}, slugs)
}

func TestNewsListSortedByPublishedDescending(t *testing.T) {
	svc, state, clock := newNewsHarness(t)
	ctx := context.Background()

	for i, title := range []string{"Old", "Newest", "Middle"} {
		*clock = time.Date(2024, 1, []int{1, 20, 10}[i], 0, 0, 0, 0, time.UTC)
		_, err := svc.Create(ctx, testAdmin, dto.NewsCreateRequest{Title: title, Summary: "s", Content: "c"})
		require.NoError(t, err)
	}

	titles := []string{}
	for _, article := range svc.List() {
		titles = append(titles, article.Title)
	}
	require.Equal(t, []string{"Newest", "Middle", "Old"}, titles)

	stored := []string{}
	for _, article := range state.News.All() {
		stored = append(stored, article.Title)
	}
	require.Equal(t, []string{"Middle", "Newest", "Old"}, stored)
}

func TestNewsListTiesShowLatestCreatedFirst(t *testing.T) {
	svc, _, _ := newNewsHarness(t)
	ctx := context.Background()

	for _, title := range []string{"First", "Second"} {
		_, err := svc.Create(ctx, testAdmin, dto.NewsCreateRequest{Title: title, Summary: "s", Content: "c"})
		require.NoError(t, err)
	}

	list := svc.List()
	require.Equal(t, "Second", list[0].Title)
	require.Equal(t, "First", list[1].Title)
}

func TestNewsPlainTextIsStoredAsTyped(t *testing.T) {
	svc, _, _ := newNewsHarness(t)
	ctx := context.Background()

	article, err := svc.Create(ctx, testAdmin, dto.NewsCreateRequest{
		Title:   "Don't Panic & Relax",
		Summary: "Tips for <b>exam</b> week & beyond",
		Content: "c",
		Author:  "Conan O'Brien",
	})
	require.NoError(t, err)
	require.Equal(t, "dont-panic--relax", article.Slug)
	require.Equal(t, models.Slugify("Don't Panic & Relax"), article.Slug)
	require.Equal(t, "Don't Panic & Relax", article.Title)
	require.Equal(t, "Tips for exam week & beyond", article.Summary)
	require.Equal(t, "Conan O'Brien", article.Author)

	summary := "i < n && j > 0"
	updated, applied, err := svc.Update(ctx, testAdmin, article.ID, dto.NewsUpdateRequest{Summary: &summary})
	require.NoError(t, err)
	require.True(t, applied)
	require.Equal(t, summary, updated.Summary)
}

func TestNewsUpdateKeepsSlug(t *testing.T) {
	svc, _, _ := newNewsHarness(t)
	ctx := context.Background()
	article, err := svc.Create(ctx, testAdmin, dto.NewsCreateRequest{Title: "Original", Summary: "s", Content: "c"})
	require.NoError(t, err)

	title := "Renamed"
	updated, applied, err := svc.Update(ctx, testTeacher, article.ID, dto.NewsUpdateRequest{Title: &title})
	require.NoError(t, err)
	require.True(t, applied)
	require.Equal(t, "Renamed", updated.Title)
	require.Equal(t, "original", updated.Slug)

	_, applied, err = svc.Update(ctx, testTeacher, "missing", dto.NewsUpdateRequest{Title: &title})
	require.NoError(t, err)
	require.False(t, applied)
}

func TestNewsMutationsRequireStaff(t *testing.T) {
	svc, _, _ := newNewsHarness(t)
	_, err := svc.Create(context.Background(), testPending, dto.NewsCreateRequest{Title: "x", Summary: "s", Content: "c"})
	require.ErrorIs(t, err, ErrPermissionDenied)
	require.ErrorIs(t, svc.Delete(context.Background(), models.Principal{}, "id"), ErrPermissionDenied)
}

func TestNewsSeedUsesDefaultAuthor(t *testing.T) {
	svc, _, _ := newNewsHarness(t)
	count := svc.Seed(context.Background(), []models.NewsArticle{{Title: "Welcome", Summary: "s", Content: "c"}})
	require.Equal(t, 1, count)

	article, ok := svc.Get("welcome")
	require.True(t, ok)
	require.Equal(t, "Algo Tutor Team", article.Author)
	require.Equal(t, 0, svc.Seed(context.Background(), []models.NewsArticle{{Title: "Welcome"}}))
}
