package gormdb

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/wabain/codekeeper/internal/apperror"
	"github.com/wabain/codekeeper/internal/model"
	"github.com/wabain/codekeeper/internal/repository"
)

// Compile-time check that *SnippetRepo implements the interface.
// `var _ X = (*Y)(nil)` fails the build the moment a method is missing.
var _ repository.SnippetRepository = (*SnippetRepo)(nil)

// SnippetRepo persists snippets and their relations.
type SnippetRepo struct {
	db *gorm.DB
}

func NewSnippetRepo(db *DB) *SnippetRepo {
	return &SnippetRepo{db: db.conn}
}

// preloadRelations attaches the Creator, Language, and Tags loads every
// read path needs. Tags come back sorted so output is deterministic.
func preloadRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Creator").
		Preload("Language").
		Preload("Tags", func(db *gorm.DB) *gorm.DB {
			return db.Order("tags.name")
		})
}

// Create inserts the snippet. When snippet.Tags carry IDs the join rows
// are written in the same operation; related records themselves are
// never modified.
func (r *SnippetRepo) Create(ctx context.Context, snippet *model.Snippet) error {
	if err := r.db.WithContext(ctx).Create(snippet).Error; err != nil {
		return fmt.Errorf("gormdb: creating snippet: %w", err)
	}
	return nil
}

func (r *SnippetRepo) GetByID(ctx context.Context, id string) (*model.Snippet, error) {
	var snippet model.Snippet
	err := preloadRelations(r.db.WithContext(ctx)).First(&snippet, "id = ?", id).Error
	if err != nil {
		// gorm.ErrRecordNotFound is the miss path, not a failure.
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("snippet", id)
		}
		return nil, fmt.Errorf("gormdb: getting snippet %s: %w", id, err)
	}
	return &snippet, nil
}

func (r *SnippetRepo) List(ctx context.Context, opts repository.ListOptions) ([]model.Snippet, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	q := preloadRelations(r.db.WithContext(ctx)).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset)
	if opts.Search != "" {
		q = q.Where("title LIKE ?", "%"+opts.Search+"%")
	}
	if opts.CreatorID != "" {
		q = q.Where("creator_id = ?", opts.CreatorID)
	}

	snippets := make([]model.Snippet, 0, limit)
	if err := q.Find(&snippets).Error; err != nil {
		return nil, fmt.Errorf("gormdb: listing snippets: %w", err)
	}
	return snippets, nil
}

// Update writes the scalar columns and replaces the tag set with
// snippet.Tags. The column map is explicit because a full update must
// be able to write empty strings, which GORM skips for struct updates.
func (r *SnippetRepo) Update(ctx context.Context, snippet *model.Snippet) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Snippet{}).Where("id = ?", snippet.ID).Updates(map[string]interface{}{
			"title":       snippet.Title,
			"content":     snippet.Content,
			"creator_id":  snippet.CreatorID,
			"language_id": snippet.LanguageID,
		})
		if res.Error != nil {
			return fmt.Errorf("gormdb: updating snippet %s: %w", snippet.ID, res.Error)
		}
		if res.RowsAffected == 0 {
			return apperror.NotFound("snippet", snippet.ID)
		}

		// Replace, not append: the incoming tag set is the whole truth.
		assoc := tx.Model(&model.Snippet{ID: snippet.ID}).Association("Tags")
		if len(snippet.Tags) == 0 {
			if err := assoc.Clear(); err != nil {
				return fmt.Errorf("gormdb: clearing snippet %s tags: %w", snippet.ID, err)
			}
			return nil
		}
		if err := assoc.Replace(snippet.Tags); err != nil {
			return fmt.Errorf("gormdb: replacing snippet %s tags: %w", snippet.ID, err)
		}
		return nil
	})
}

// Delete removes the snippet and its join-table rows. Related people,
// languages, and tags are untouched.
func (r *SnippetRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Snippet{ID: id}).Association("Tags").Clear(); err != nil {
			return fmt.Errorf("gormdb: clearing snippet %s tags: %w", id, err)
		}
		res := tx.Delete(&model.Snippet{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("gormdb: deleting snippet %s: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return apperror.NotFound("snippet", id)
		}
		return nil
	})
}

func (r *SnippetRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.Snippet{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("gormdb: counting snippets: %w", err)
	}
	return n, nil
}
