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

// TagService handles tags. Names are required and unique; a duplicate
// surfaces as ErrConflict from the repository. Deleting a tag just
// detaches it from its snippets.
type TagService struct {
	tags   repository.TagRepository
	logger *slog.Logger
}

func NewTagService(tags repository.TagRepository, logger *slog.Logger) *TagService {
	return &TagService{tags: tags, logger: logger}
}

func (s *TagService) Create(ctx context.Context, input dto.TagInput) (*dto.TagRepr, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := dto.Validate(input); err != nil {
		return nil, err
	}

	tag := &model.Tag{Name: input.Name}
	if err := s.tags.Create(ctx, tag); err != nil {
		return nil, err
	}

	s.logger.Info("tag created",
		slog.String("id", tag.ID),
		slog.String("name", tag.Name),
	)
	return dto.NewTagRepr(tag)
}

func (s *TagService) Get(ctx context.Context, id string) (*dto.TagRepr, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "tag ID is required")
	}
	tag, err := s.tags.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewTagRepr(tag)
}

func (s *TagService) List(ctx context.Context, limit, offset int) ([]dto.TagRepr, error) {
	limit, offset = clampPage(limit, offset)
	tags, err := s.tags.List(ctx, repository.ListOptions{Limit: limit, Offset: offset})
	if err != nil {
		s.logger.Error("failed to list tags", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	return dto.NewTagReprs(tags)
}

func (s *TagService) Update(ctx context.Context, id string, input dto.TagInput) (*dto.TagRepr, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "tag ID is required")
	}
	tag, err := s.tags.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	input.Name = strings.TrimSpace(input.Name)
	if err := dto.Validate(input); err != nil {
		return nil, err
	}

	tag.Name = input.Name
	if err := s.tags.Update(ctx, tag); err != nil {
		return nil, err
	}

	s.logger.Info("tag updated", slog.String("id", id), slog.String("name", tag.Name))

	updated, err := s.tags.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewTagRepr(updated)
}

func (s *TagService) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.ValidationFailed("id", "tag ID is required")
	}
	if err := s.tags.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("tag deleted", slog.String("id", id))
	return nil
}

func (s *TagService) Count(ctx context.Context) (int64, error) {
	return s.tags.Count(ctx)
}
