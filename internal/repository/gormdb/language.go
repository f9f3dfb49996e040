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

var _ repository.LanguageRepository = (*LanguageRepo)(nil)

// LanguageRepo persists languages.
type LanguageRepo struct {
	db *gorm.DB
}

func NewLanguageRepo(db *DB) *LanguageRepo {
	return &LanguageRepo{db: db.conn}
}

func (r *LanguageRepo) Create(ctx context.Context, language *model.Language) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&model.Language{}).Where("name = ?", language.Name).Count(&existing).Error; err != nil {
			return fmt.Errorf("gormdb: checking language name %q: %w", language.Name, err)
		}
		if existing > 0 {
			return apperror.Conflict("language", fmt.Sprintf("name %q already exists", language.Name))
		}
		if err := tx.Create(language).Error; err != nil {
			return fmt.Errorf("gormdb: creating language: %w", err)
		}
		return nil
	})
}

func (r *LanguageRepo) GetByID(ctx context.Context, id string) (*model.Language, error) {
	var language model.Language
	err := r.db.WithContext(ctx).First(&language, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("language", id)
		}
		return nil, fmt.Errorf("gormdb: getting language %s: %w", id, err)
	}
	return &language, nil
}

func (r *LanguageRepo) List(ctx context.Context, opts repository.ListOptions) ([]model.Language, error) {
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

	languages := make([]model.Language, 0, limit)
	err := r.db.WithContext(ctx).
		Order("name").
		Limit(limit).
		Offset(offset).
		Find(&languages).Error
	if err != nil {
		return nil, fmt.Errorf("gormdb: listing languages: %w", err)
	}
	return languages, nil
}

func (r *LanguageRepo) Update(ctx context.Context, language *model.Language) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var taken int64
		err := tx.Model(&model.Language{}).
			Where("name = ? AND id <> ?", language.Name, language.ID).
			Count(&taken).Error
		if err != nil {
			return fmt.Errorf("gormdb: checking language name %q: %w", language.Name, err)
		}
		if taken > 0 {
			return apperror.Conflict("language", fmt.Sprintf("name %q already exists", language.Name))
		}

		res := tx.Model(&model.Language{}).Where("id = ?", language.ID).Update("name", language.Name)
		if res.Error != nil {
			return fmt.Errorf("gormdb: updating language %s: %w", language.ID, res.Error)
		}
		if res.RowsAffected == 0 {
			return apperror.NotFound("language", language.ID)
		}
		return nil
	})
}

// Delete refuses to remove a language while snippets still use it.
func (r *LanguageRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var refs int64
		if err := tx.Model(&model.Snippet{}).Where("language_id = ?", id).Count(&refs).Error; err != nil {
			return fmt.Errorf("gormdb: counting snippets for language %s: %w", id, err)
		}
		if refs > 0 {
			return apperror.Conflict("language", fmt.Sprintf("still referenced by %d snippets", refs))
		}
		res := tx.Delete(&model.Language{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("gormdb: deleting language %s: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return apperror.NotFound("language", id)
		}
		return nil
	})
}

func (r *LanguageRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.Language{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("gormdb: counting languages: %w", err)
	}
	return n, nil
}
