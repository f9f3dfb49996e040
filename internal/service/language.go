package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/wabain/codekeeper/internal/apperror"
	"github.com/wabain/codekeeper/internal/dto"
	"github.com/wabain/codekeeper/internal/model"
	"github.com/wabain/codekeeper/internal/repository"
)

// LanguageService handles languages. Like tags the names are unique,
// but deletion is stricter: a language still referenced by snippets
// stays put (ErrConflict).
type LanguageService struct {
	languages repository.LanguageRepository
	logger    *slog.Logger
}

func NewLanguageService(languages repository.LanguageRepository, logger *slog.Logger) *LanguageService {
	return &LanguageService{languages: languages, logger: logger}
}

func (s *LanguageService) Create(ctx context.Context, input dto.LanguageInput) (*dto.LanguageRepr, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := dto.Validate(input); err != nil {
		return nil, err
	}

	language := &model.Language{Name: input.Name}
	if err := s.languages.Create(ctx, language); err != nil {
		return nil, err
	}

	s.logger.Info("language created",
		slog.String("id", language.ID),
		slog.String("name", language.Name),
	)
	return dto.NewLanguageRepr(language)
}

func (s *LanguageService) Get(ctx context.Context, id string) (*dto.LanguageRepr, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "language ID is required")
	}
	language, err := s.languages.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewLanguageRepr(language)
}

func (s *LanguageService) List(ctx context.Context, limit, offset int) ([]dto.LanguageRepr, error) {
	limit, offset = clampPage(limit, offset)
	languages, err := s.languages.List(ctx, repository.ListOptions{Limit: limit, Offset: offset})
	if err != nil {
		s.logger.Error("failed to list languages", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing languages: %w", err)
	}
	return dto.NewLanguageReprs(languages)
}

func (s *LanguageService) Update(ctx context.Context, id string, input dto.LanguageInput) (*dto.LanguageRepr, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "language ID is required")
	}
	language, err := s.languages.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	input.Name = strings.TrimSpace(input.Name)
	if err := dto.Validate(input); err != nil {
		return nil, err
	}

	language.Name = input.Name
	if err := s.languages.Update(ctx, language); err != nil {
		return nil, err
	}

	s.logger.Info("language updated", slog.String("id", id), slog.String("name", language.Name))

	updated, err := s.languages.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewLanguageRepr(updated)
}

func (s *LanguageService) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.ValidationFailed("id", "language ID is required")
	}
	if err := s.languages.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("language deleted", slog.String("id", id))
	return nil
}

func (s *LanguageService) Count(ctx context.Context) (int64, error) {
	return s.languages.Count(ctx)
}
