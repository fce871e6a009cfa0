package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/noah-isme/algotutor-api/internal/dto"
	"github.com/noah-isme/algotutor-api/internal/i18n"
	"github.com/noah-isme/algotutor-api/internal/models"
	"github.com/noah-isme/algotutor-api/internal/policy"
	"github.com/noah-isme/algotutor-api/internal/store"
)

// NewsService manages news articles.
type NewsService interface {
	Create(ctx context.Context, actor models.Principal, req dto.NewsCreateRequest) (models.NewsArticle, error)
	Update(ctx context.Context, actor models.Principal, id string, req dto.NewsUpdateRequest) (models.NewsArticle, bool, error)
	Delete(ctx context.Context, actor models.Principal, id string) error
	List() []models.NewsArticle
	Get(slug string) (models.NewsArticle, bool)
	Seed(ctx context.Context, articles []models.NewsArticle) int
}

type newsService struct {
	state     *store.State
	catalog   *i18n.Catalog
	validator *validator.Validate
	content   *bluemonday.Policy
	plain     *bluemonday.Policy
	changes   changeNotifier
	now       func() time.Time
}

// NewNewsService constructs the news service.
func NewNewsService(state *store.State, catalog *i18n.Catalog, validate *validator.Validate, events EventPublisher, activity ActivityRecorder, logger zerolog.Logger) NewsService {
	logger = logger.With().Str("component", "news_service").Logger()
	return &newsService{
		state:     state,
		catalog:   catalog,
		validator: validate,
		content:   bluemonday.UGCPolicy(),
		plain:     bluemonday.StrictPolicy(),
		changes:   newChangeNotifier(events, activity, logger),
		now:       time.Now,
	}
}

func (s *newsService) Create(ctx context.Context, actor models.Principal, req dto.NewsCreateRequest) (models.NewsArticle, error) {
	if !policy.CanManageContent(actor) {
		s.changes.outcome(collectionNews, "created", resultDenied)
		return models.NewsArticle{}, denied("create news")
	}
	if err := s.validator.Struct(req); err != nil {
		return models.NewsArticle{}, err
	}

	article := models.NewsArticle{
		ID:          uuid.NewString(),
		Title:       plainText(s.plain, req.Title),
		Summary:     plainText(s.plain, req.Summary),
		Content:     s.content.Sanitize(req.Content),
		Author:      s.author(req.Author, actor),
		AuthorID:    actor.ID,
		PublishedAt: s.now().UTC(),
		ImageURL:    strings.TrimSpace(req.ImageURL),
	}

	_ = s.state.News.Transact(func(items []models.NewsArticle) ([]models.NewsArticle, error) {
		article.Slug = uniqueNewsSlug(items, models.Slugify(strings.TrimSpace(req.Title)))
		if article.ImageURL == "" {
			article.ImageURL = newsImagePlaceholder(article.Slug)
		}
		return append([]models.NewsArticle{article}, items...), nil
	})

	s.changes.applied(ctx, actor, collectionNews, "created", article.ID, dto.NewNewsResponse(article), map[string]interface{}{"slug": article.Slug})
	return article, nil
}

func (s *newsService) Update(ctx context.Context, actor models.Principal, id string, req dto.NewsUpdateRequest) (models.NewsArticle, bool, error) {
	if !policy.CanManageContent(actor) {
		s.changes.outcome(collectionNews, "updated", resultDenied)
		return models.NewsArticle{}, false, denied("update news")
	}
	if err := s.validator.Struct(req); err != nil {
		return models.NewsArticle{}, false, err
	}

	changes := models.NewsChanges{ImageURL: trimmedPtr(req.ImageURL)}
	if req.Title != nil {
		title := plainText(s.plain, *req.Title)
		changes.Title = &title
	}
	if req.Summary != nil {
		summary := plainText(s.plain, *req.Summary)
		changes.Summary = &summary
	}
	if req.Content != nil {
		content := s.content.Sanitize(*req.Content)
		changes.Content = &content
	}

	updated, ok := s.state.News.Update(id, func(a *models.NewsArticle) {
		changes.Apply(a)
	})
	if !ok {
		s.changes.outcome(collectionNews, "updated", resultNoop)
		return models.NewsArticle{}, false, nil
	}

	s.changes.applied(ctx, actor, collectionNews, "updated", id, dto.NewNewsResponse(updated), map[string]interface{}{"slug": updated.Slug})
	return updated, true, nil
}

func (s *newsService) Delete(ctx context.Context, actor models.Principal, id string) error {
	if !policy.CanManageContent(actor) {
		s.changes.outcome(collectionNews, "deleted", resultDenied)
		return denied("delete news")
	}

	removed, ok := s.state.News.Remove(id)
	if !ok {
		s.changes.outcome(collectionNews, "deleted", resultNoop)
		return nil
	}

	s.changes.applied(ctx, actor, collectionNews, "deleted", id, nil, map[string]interface{}{"slug": removed.Slug})
	return nil
}

// List is recomputed on every read: newest first, stored order for ties.
func (s *newsService) List() []models.NewsArticle {
	return models.SortNewsByPublishedDesc(s.state.News.All())
}

func (s *newsService) Get(slug string) (models.NewsArticle, bool) {
	return s.state.News.FindBy(func(a models.NewsArticle) bool { return a.Slug == slug })
}

// Seed inserts articles whose slug is not present yet.
func (s *newsService) Seed(ctx context.Context, articles []models.NewsArticle) int {
	inserted := []models.NewsArticle{}
	_ = s.state.News.Transact(func(items []models.NewsArticle) ([]models.NewsArticle, error) {
		for _, article := range articles {
			if article.Slug == "" {
				article.Slug = models.Slugify(article.Title)
			}
			if newsSlugInUse(items, article.Slug) {
				continue
			}
			if article.ID == "" {
				article.ID = uuid.NewString()
			}
			if article.PublishedAt.IsZero() {
				article.PublishedAt = s.now().UTC()
			}
			if article.Author == "" {
				article.Author = s.catalog.Resolve(i18n.DefaultLocale, "news.defaultAuthor", nil)
			}
			if article.ImageURL == "" {
				article.ImageURL = newsImagePlaceholder(article.Slug)
			}
			items = append(items, article)
			inserted = append(inserted, article)
		}
		return items, nil
	})

	for _, article := range inserted {
		s.changes.applied(ctx, models.Principal{}, collectionNews, "created", article.ID, dto.NewNewsResponse(article), map[string]interface{}{"slug": article.Slug, "seed": true})
	}
	return len(inserted)
}

func (s *newsService) author(requested string, actor models.Principal) string {
	if author := plainText(s.plain, requested); author != "" {
		return author
	}
	if actor.Name != "" {
		return actor.Name
	}
	return s.catalog.Resolve(i18n.DefaultLocale, "news.defaultAuthor", nil)
}

// uniqueNewsSlug appends -2, -3, ... until the slug is free.
func uniqueNewsSlug(items []models.NewsArticle, base string) string {
	if base == "" {
		base = "news"
	}
	slug := base
	for n := 2; newsSlugInUse(items, slug); n++ {
		slug = fmt.Sprintf("%s-%d", base, n)
	}
	return slug
}

func newsSlugInUse(items []models.NewsArticle, slug string) bool {
	for _, item := range items {
		if item.Slug == slug {
			return true
		}
	}
	return false
}

func newsImagePlaceholder(seed string) string {
	return fmt.Sprintf("https://picsum.photos/seed/%s/800/400", seed)
}
