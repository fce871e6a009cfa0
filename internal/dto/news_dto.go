package dto

import (
	"time"

	"github.com/noah-isme/algotutor-api/internal/models"
)

// NewsCreateRequest publishes an article.
type NewsCreateRequest struct {
	Title    string `json:"title" validate:"required,max=200"`
	Summary  string `json:"summary" validate:"required,max=500"`
	Content  string `json:"content" validate:"required"`
	Author   string `json:"author" validate:"omitempty,max=120"`
	ImageURL string `json:"image_url" validate:"omitempty,url"`
}

// NewsUpdateRequest merges article fields. The slug is kept.
type NewsUpdateRequest struct {
	Title    *string `json:"title" validate:"omitempty,min=1,max=200"`
	Summary  *string `json:"summary" validate:"omitempty,min=1,max=500"`
	Content  *string `json:"content" validate:"omitempty,min=1"`
	ImageURL *string `json:"image_url" validate:"omitempty,url"`
}

// NewsResponse serializes an article.
type NewsResponse struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Summary     string    `json:"summary"`
	Content     string    `json:"content"`
	Author      string    `json:"author"`
	PublishedAt time.Time `json:"published_at"`
	ImageURL    string    `json:"image_url"`
}

// NewNewsResponse converts an article.
func NewNewsResponse(a models.NewsArticle) NewsResponse {
	return NewsResponse{
		ID:          a.ID,
		Slug:        a.Slug,
		Title:       a.Title,
		Summary:     a.Summary,
		Content:     a.Content,
		Author:      a.Author,
		PublishedAt: a.PublishedAt.UTC(),
		ImageURL:    a.ImageURL,
	}
}

// NewNewsResponseSlice converts articles keeping their order.
func NewNewsResponseSlice(items []models.NewsArticle) []NewsResponse {
	out := make([]NewsResponse, 0, len(items))
	for _, item := range items {
		out = append(out, NewNewsResponse(item))
	}
	return out
}
