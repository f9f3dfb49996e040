// Package service contains the business logic layer.
//
// The layering is: handlers parse HTTP and write responses, services
// enforce the rules and orchestrate, repositories talk to the
// database. Services depend on the repository interfaces, never on
// gormdb, so tests swap in the in-memory mocks from the _test files.
//
// Services accept the dto input types and return the dto
// representations; models never cross the handler boundary.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/wabain/codekeeper/internal/apperror"
	"github.com/wabain/codekeeper/internal/dto"
	"github.com/wabain/codekeeper/internal/model"
	"github.com/wabain/codekeeper/internal/repository"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// clampPage keeps limit and offset in a sane range no matter what the
// query string said.
func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// SnippetService handles the snippet rules: titles are required,
// referenced people, languages, and tags must exist, and the tag set
// on update is a full replacement.
type SnippetService struct {
	snippets  repository.SnippetRepository
	people    repository.PersonRepository
	tags      repository.TagRepository
	languages repository.LanguageRepository
	logger    *slog.Logger
}

func NewSnippetService(
	snippets repository.SnippetRepository,
	people repository.PersonRepository,
	tags repository.TagRepository,
	languages repository.LanguageRepository,
	logger *slog.Logger,
) *SnippetService {
	return &SnippetService{
		snippets:  snippets,
		people:    people,
		tags:      tags,
		languages: languages,
		logger:    logger,
	}
}

// snippetRelations holds the records a snippet payload references.
type snippetRelations struct {
	creator  *model.Person
	language *model.Language
	tags     []model.Tag
}

// resolveRelations turns the referenced IDs into records. A reference
// to a record that does not exist is a validation failure on the field
// that carried it, not a 404: the snippet URL was fine, the payload
// was not.
func (s *SnippetService) resolveRelations(ctx context.Context, input dto.SnippetInput) (*snippetRelations, error) {
	creator, err := s.people.GetByID(ctx, input.CreatorID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.ValidationFailed("creator_id",
				fmt.Sprintf("unknown person %q", input.CreatorID))
		}
		return nil, err
	}

	language, err := s.languages.GetByID(ctx, input.LanguageID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.ValidationFailed("language_id",
				fmt.Sprintf("unknown language %q", input.LanguageID))
		}
		return nil, err
	}

	tagIDs := dedupe(input.TagIDs)
	tags, err := s.tags.GetByIDs(ctx, tagIDs)
	if err != nil {
		return nil, err
	}
	if len(tags) != len(tagIDs) {
		return nil, apperror.ValidationFailed("tag_ids",
			fmt.Sprintf("unknown tag %q", firstMissingTagID(tagIDs, tags)))
	}

	return &snippetRelations{creator: creator, language: language, tags: tags}, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func firstMissingTagID(ids []string, tags []model.Tag) string {
	found := make(map[string]bool, len(tags))
	for _, t := range tags {
		found[t.ID] = true
	}
	for _, id := range ids {
		if !found[id] {
			return id
		}
	}
	return ""
}

// Create validates the payload, resolves its references, and saves a
// new snippet. The returned representation embeds the full related
// records.
func (s *SnippetService) Create(ctx context.Context, input dto.SnippetInput) (*dto.SnippetRepr, error) {
	input.Title = strings.TrimSpace(input.Title)
	if err := dto.Validate(input); err != nil {
		return nil, err
	}

	rel, err := s.resolveRelations(ctx, input)
	if err != nil {
		return nil, err
	}

	snippet := &model.Snippet{
		Title:      input.Title,
		Content:    input.Content,
		CreatorID:  rel.creator.ID,
		LanguageID: rel.language.ID,
		Tags:       rel.tags,
	}
	if err := s.snippets.Create(ctx, snippet); err != nil {
		s.logger.Error("failed to create snippet",
			slog.String("title", input.Title),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating snippet: %w", err)
	}

	s.logger.Info("snippet created",
		slog.String("id", snippet.ID),
		slog.String("title", snippet.Title),
	)

	// The relations were just resolved; no need to read them back.
	snippet.Creator = *rel.creator
	snippet.Language = *rel.language
	return dto.NewSnippetRepr(snippet)
}

// Get retrieves one snippet with its relations embedded.
func (s *SnippetService) Get(ctx context.Context, id string) (*dto.SnippetRepr, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "snippet ID is required")
	}
	snippet, err := s.snippets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewSnippetRepr(snippet)
}

// List returns a page of snippets, newest first. A non-empty search
// narrows the page to titles containing the term.
func (s *SnippetService) List(ctx context.Context, limit, offset int, search string) ([]dto.SnippetRepr, error) {
	limit, offset = clampPage(limit, offset)
	snippets, err := s.snippets.List(ctx, repository.ListOptions{
		Limit:  limit,
		Offset: offset,
		Search: strings.TrimSpace(search),
	})
	if err != nil {
		s.logger.Error("failed to list snippets", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing snippets: %w", err)
	}
	return dto.NewSnippetReprs(snippets)
}

// ListByCreator returns a page of one person's snippets.
func (s *SnippetService) ListByCreator(ctx context.Context, creatorID string, limit, offset int) ([]dto.SnippetRepr, error) {
	limit, offset = clampPage(limit, offset)
	snippets, err := s.snippets.List(ctx, repository.ListOptions{
		Limit:     limit,
		Offset:    offset,
		CreatorID: creatorID,
	})
	if err != nil {
		s.logger.Error("failed to list snippets by creator",
			slog.String("creator_id", creatorID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing snippets by creator: %w", err)
	}
	return dto.NewSnippetReprs(snippets)
}

// Update is a full update: every field of the payload lands in the
// record, and the tag set is replaced outright.
func (s *SnippetService) Update(ctx context.Context, id string, input dto.SnippetInput) (*dto.SnippetRepr, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "snippet ID is required")
	}

	// Existence first: a bad URL beats a bad payload.
	snippet, err := s.snippets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	input.Title = strings.TrimSpace(input.Title)
	if err := dto.Validate(input); err != nil {
		return nil, err
	}

	rel, err := s.resolveRelations(ctx, input)
	if err != nil {
		return nil, err
	}

	snippet.Title = input.Title
	snippet.Content = input.Content
	snippet.CreatorID = rel.creator.ID
	snippet.LanguageID = rel.language.ID
	snippet.Tags = rel.tags

	if err := s.snippets.Update(ctx, snippet); err != nil {
		s.logger.Error("failed to update snippet",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating snippet: %w", err)
	}

	s.logger.Info("snippet updated",
		slog.String("id", snippet.ID),
		slog.String("title", snippet.Title),
	)

	// Re-read for the fresh updated timestamp and preloaded relations.
	updated, err := s.snippets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewSnippetRepr(updated)
}

// Delete removes a snippet. Its tags, language, and creator stay.
func (s *SnippetService) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.ValidationFailed("id", "snippet ID is required")
	}
	if err := s.snippets.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("snippet deleted", slog.String("id", id))
	return nil
}

func (s *SnippetService) Count(ctx context.Context) (int64, error) {
	return s.snippets.Count(ctx)
}
