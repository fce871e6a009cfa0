package service

import (
	"context"
	"crypto/subtle"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/noah-isme/algotutor-api/internal/dto"
	"github.com/noah-isme/algotutor-api/internal/models"
)

var (
	// ErrSeedDisabled indicates the seeding tools are disabled by configuration.
	ErrSeedDisabled = errors.New("seeding is disabled")
	// ErrSeedUnauthorized indicates the provided token is invalid.
	ErrSeedUnauthorized = errors.New("invalid seed token")
)

//go:embed seeddata/*.json
var seedFS embed.FS

// SeedConfig controls bootstrap seeding.
type SeedConfig struct {
	Enabled       bool
	Token         string
	AdminName     string
	AdminEmail    string
	AdminPassword string
}

// SeedService loads the bootstrap administrator and the sample content.
type SeedService interface {
	Bootstrap(ctx context.Context) (dto.SeedResult, error)
	SeedContent(ctx context.Context, token string) (dto.SeedResult, error)
}

type seedService struct {
	directory DirectoryService
	lessons   LessonService
	news      NewsService
	cfg       SeedConfig
	logger    zerolog.Logger
}

// NewSeedService constructs a seeding service.
func NewSeedService(directory DirectoryService, lessons LessonService, news NewsService, cfg SeedConfig, logger zerolog.Logger) SeedService {
	return &seedService{
		directory: directory,
		lessons:   lessons,
		news:      news,
		cfg:       cfg,
		logger:    logger.With().Str("component", "seed_service").Logger(),
	}
}

// Bootstrap ensures the configured administrator exists and, when seeding
// is enabled, loads the sample content. Records already present are kept.
func (s *seedService) Bootstrap(ctx context.Context) (dto.SeedResult, error) {
	var result dto.SeedResult

	if strings.TrimSpace(s.cfg.AdminEmail) != "" {
		created, err := s.directory.EnsureAdmin(ctx, s.cfg.AdminName, s.cfg.AdminEmail, s.cfg.AdminPassword)
		if err != nil {
			return result, fmt.Errorf("ensure admin: %w", err)
		}
		result.AdminCreated = created
	}

	if !s.cfg.Enabled {
		return result, nil
	}

	content, err := s.seed(ctx)
	if err != nil {
		return result, err
	}
	result.Lessons = content.Lessons
	result.News = content.News
	return result, nil
}

func (s *seedService) SeedContent(ctx context.Context, token string) (dto.SeedResult, error) {
	if !s.cfg.Enabled {
		return dto.SeedResult{}, ErrSeedDisabled
	}
	if !s.validateToken(token) {
		return dto.SeedResult{}, ErrSeedUnauthorized
	}
	return s.seed(ctx)
}

func (s *seedService) seed(ctx context.Context) (dto.SeedResult, error) {
	var lessons []models.Lesson
	if err := readSeed("seeddata/lessons.json", &lessons); err != nil {
		return dto.SeedResult{}, err
	}
	var articles []models.NewsArticle
	if err := readSeed("seeddata/news.json", &articles); err != nil {
		return dto.SeedResult{}, err
	}

	result := dto.SeedResult{
		Lessons: s.lessons.Seed(ctx, lessons),
		News:    s.news.Seed(ctx, articles),
	}
	s.logger.Info().Int("lessons", result.Lessons).Int("news", result.News).Msg("sample content seeded")
	return result, nil
}

func (s *seedService) validateToken(token string) bool {
	expected := strings.TrimSpace(s.cfg.Token)
	if expected == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(strings.TrimSpace(token))) == 1
}

func readSeed(name string, target interface{}) error {
	raw, err := seedFS.ReadFile(name)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}
