package models

import (
	"regexp"
	"sort"
	"strings"
	"time"
)

// NewsArticle is a published news entry.
type NewsArticle struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Summary     string    `json:"summary"`
	Content     string    `json:"content"`
	Author      string    `json:"author"`
	AuthorID    string    `json:"author_id,omitempty"`
	PublishedAt time.Time `json:"published_at"`
	ImageURL    string    `json:"image_url"`
}

// NewsChanges carries mergeable article fields.
type NewsChanges struct {
	Title    *string
	Summary  *string
	Content  *string
	ImageURL *string
}

// Apply merges the non-nil fields into the article.
func (c NewsChanges) Apply(a *NewsArticle) {
	if c.Title != nil {
		a.Title = *c.Title
	}
	if c.Summary != nil {
		a.Summary = *c.Summary
	}
	if c.Content != nil {
		a.Content = *c.Content
	}
	if c.ImageURL != nil {
		a.ImageURL = *c.ImageURL
	}
}

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	nonSlugChars  = regexp.MustCompile(`[^\w-]+`)
)

// Slugify lower-cases the title, turns whitespace runs into hyphens and strips
// everything that is not a word character or a hyphen.
func Slugify(title string) string {
	slug := strings.ToLower(title)
	slug = whitespaceRun.ReplaceAllString(slug, "-")
	return nonSlugChars.ReplaceAllString(slug, "")
}

// SortNewsByPublishedDesc returns a copy ordered newest first. Ties keep the
// stored order.
func SortNewsByPublishedDesc(items []NewsArticle) []NewsArticle {
	sorted := make([]NewsArticle, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PublishedAt.After(sorted[j].PublishedAt)
	})
	return sorted
}
