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

// PersonService handles people. Both name fields are optional; the
// only hard rule is that a person referenced by snippets cannot be
// deleted, which the repository reports as ErrConflict.
type PersonService struct {
	people repository.PersonRepository
	logger *slog.Logger
}

func NewPersonService(people repository.PersonRepository, logger *slog.Logger) *PersonService {
	return &PersonService{people: people, logger: logger}
}

func (s *PersonService) Create(ctx context.Context, input dto.PersonInput) (*dto.PersonRepr, error) {
	input.FirstName = strings.TrimSpace(input.FirstName)
	input.LastName = strings.TrimSpace(input.LastName)
	if err := dto.Validate(input); err != nil {
		return nil, err
	}

	person := &model.Person{
		FirstName: input.FirstName,
		LastName:  input.LastName,
	}
	if err := s.people.Create(ctx, person); err != nil {
		s.logger.Error("failed to create person", slog.String("error", err.Error()))
		return nil, fmt.Errorf("creating person: %w", err)
	}

	s.logger.Info("person created", slog.String("id", person.ID))
	return dto.NewPersonRepr(person)
}

func (s *PersonService) Get(ctx context.Context, id string) (*dto.PersonRepr, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "person ID is required")
	}
	person, err := s.people.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewPersonRepr(person)
}

func (s *PersonService) List(ctx context.Context, limit, offset int) ([]dto.PersonRepr, error) {
	limit, offset = clampPage(limit, offset)
	people, err := s.people.List(ctx, repository.ListOptions{Limit: limit, Offset: offset})
	if err != nil {
		s.logger.Error("failed to list people", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing people: %w", err)
	}
	return dto.NewPersonReprs(people)
}

func (s *PersonService) Update(ctx context.Context, id string, input dto.PersonInput) (*dto.PersonRepr, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "person ID is required")
	}
	person, err := s.people.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	input.FirstName = strings.TrimSpace(input.FirstName)
	input.LastName = strings.TrimSpace(input.LastName)
	if err := dto.Validate(input); err != nil {
		return nil, err
	}

	person.FirstName = input.FirstName
	person.LastName = input.LastName
	if err := s.people.Update(ctx, person); err != nil {
		s.logger.Error("failed to update person",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating person: %w", err)
	}

	s.logger.Info("person updated", slog.String("id", id))

	updated, err := s.people.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewPersonRepr(updated)
}

func (s *PersonService) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.ValidationFailed("id", "person ID is required")
	}
	if err := s.people.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("person deleted", slog.String("id", id))
	return nil
}

func (s *PersonService) Count(ctx context.Context) (int64, error) {
	return s.people.Count(ctx)
}
