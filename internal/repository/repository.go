// Package repository declares the storage interfaces the services depend on.
// Implementations live in subpackages (gormdb); services and handlers only
// ever see these interfaces, which keeps them testable with in-memory fakes.
package repository

import (
	"context"

	"github.com/wabain/codekeeper/internal/model"
)

// ListOptions controls pagination and filtering for List calls.
// Search and CreatorID only apply to snippets; other repositories
// ignore them.
type ListOptions struct {
	Limit     int
	Offset    int
	Search    string
	CreatorID string
}

// SnippetRepository persists snippets together with their relations.
// GetByID and List return snippets with Creator, Language, and Tags
// populated. Update replaces the tag set with snippet.Tags.
type SnippetRepository interface {
	Create(ctx context.Context, snippet *model.Snippet) error
	GetByID(ctx context.Context, id string) (*model.Snippet, error)
	List(ctx context.Context, opts ListOptions) ([]model.Snippet, error)
	Update(ctx context.Context, snippet *model.Snippet) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

// PersonRepository persists people. Delete refuses to remove a person
// who still has snippets.
type PersonRepository interface {
	Create(ctx context.Context, person *model.Person) error
	GetByID(ctx context.Context, id string) (*model.Person, error)
	List(ctx context.Context, opts ListOptions) ([]model.Person, error)
	Update(ctx context.Context, person *model.Person) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

// TagRepository persists tags. GetByIDs returns only the tags that
// exist; callers detect unknown IDs by comparing lengths.
type TagRepository interface {
	Create(ctx context.Context, tag *model.Tag) error
	GetByID(ctx context.Context, id string) (*model.Tag, error)
	GetByIDs(ctx context.Context, ids []string) ([]model.Tag, error)
	List(ctx context.Context, opts ListOptions) ([]model.Tag, error)
	Update(ctx context.Context, tag *model.Tag) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

// LanguageRepository persists languages. Delete refuses to remove a
// language that snippets still reference.
type LanguageRepository interface {
	Create(ctx context.Context, language *model.Language) error
	GetByID(ctx context.Context, id string) (*model.Language, error)
	List(ctx context.Context, opts ListOptions) ([]model.Language, error)
	Update(ctx context.Context, language *model.Language) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

// UserRepository persists admin accounts.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByUsername(ctx context.Context, username string) (*model.User, error)
}
