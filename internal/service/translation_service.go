package service

import (
	"strings"

	"github.com/noah-isme/algotutor-api/internal/dto"
	"github.com/noah-isme/algotutor-api/internal/i18n"
	"github.com/noah-isme/algotutor-api/internal/models"
)

// TranslationService exposes the locale trees and the upload catalogue.
type TranslationService interface {
	Resolve(locale, key string, params map[string]any) (dto.ResolveResponse, error)
	Tree(locale string) (map[string]any, error)
	Catalogue(locale i18n.Locale) dto.CatalogueResponse
}

type translationService struct {
	catalog *i18n.Catalog
}

// NewTranslationService constructs the translation service.
func NewTranslationService(catalog *i18n.Catalog) TranslationService {
	return &translationService{catalog: catalog}
}

func (s *translationService) Resolve(value, key string, params map[string]any) (dto.ResolveResponse, error) {
	locale, ok := i18n.ParseLocale(value)
	if !ok {
		return dto.ResolveResponse{}, ErrUnsupportedLocale
	}
	key = strings.TrimSpace(key)
	return dto.ResolveResponse{
		Key:    key,
		Locale: string(locale),
		Value:  s.catalog.Resolve(locale, key, params),
	}, nil
}

func (s *translationService) Tree(value string) (map[string]any, error) {
	locale, ok := i18n.ParseLocale(value)
	if !ok {
		return nil, ErrUnsupportedLocale
	}
	tree, ok := s.catalog.Tree(locale)
	if !ok {
		return nil, ErrUnsupportedLocale
	}
	return tree, nil
}

// Catalogue lists grades, file categories and semesters with labels in the
// requested locale.
func (s *translationService) Catalogue(locale i18n.Locale) dto.CatalogueResponse {
	t := s.catalog.For(locale)

	grades := make([]dto.CatalogueEntry, 0, len(models.SchoolGrades))
	for _, grade := range models.SchoolGrades {
		grades = append(grades, dto.CatalogueEntry{ID: grade.ID, Name: t("grades."+grade.ID, nil)})
	}

	categories := make([]dto.CatalogueEntry, 0, len(models.FileCategories))
	for _, category := range models.FileCategories {
		categories = append(categories, dto.CatalogueEntry{
			ID:          category.ID,
			Name:        t("fileCategories."+category.ID+".name", nil),
			Description: t("fileCategories."+category.ID+".description", nil),
		})
	}

	semesters := make([]int, len(models.Semesters))
	copy(semesters, models.Semesters)

	return dto.CatalogueResponse{
		Locale:     string(locale),
		Grades:     grades,
		Categories: categories,
		Semesters:  semesters,
	}
}
