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

var _ repository.TagRepository = (*TagRepo)(nil)

// TagRepo persists tags.
type TagRepo struct {
	db *gorm.DB
}

func NewTagRepo(db *DB) *TagRepo {
	return &TagRepo{db: db.conn}
}

// Create inserts the tag. Names are unique, and the explicit lookup
// turns a duplicate into ErrConflict rather than a bare driver error.
func (r *TagRepo) Create(ctx context.Context, tag *model.Tag) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&model.Tag{}).Where("name = ?", tag.Name).Count(&existing).Error; err != nil {
			return fmt.Errorf("gormdb: checking tag name %q: %w", tag.Name, err)
		}
		if existing > 0 {
			return apperror.Conflict("tag", fmt.Sprintf("name %q already exists", tag.Name))
		}
		if err := tx.Create(tag).Error; err != nil {
			return fmt.Errorf("gormdb: creating tag: %w", err)
		}
		return nil
	})
}

func (r *TagRepo) GetByID(ctx context.Context, id string) (*model.Tag, error) {
	var tag model.Tag
	err := r.db.WithContext(ctx).First(&tag, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("tag", id)
		}
		return nil, fmt.Errorf("gormdb: getting tag %s: %w", id, err)
	}
	return &tag, nil
}

// GetByIDs returns the tags whose IDs exist, in name order. Missing
// IDs are not an error here; the caller compares lengths.
func (r *TagRepo) GetByIDs(ctx context.Context, ids []string) ([]model.Tag, error) {
	if len(ids) == 0 {
		return []model.Tag{}, nil
	}
	var tags []model.Tag
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Order("name").
		Find(&tags).Error
	if err != nil {
		return nil, fmt.Errorf("gormdb: getting tags by ids: %w", err)
	}
	return tags, nil
}

func (r *TagRepo) List(ctx context.Context, opts repository.ListOptions) ([]model.Tag, error) {
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

	tags := make([]model.Tag, 0, limit)
	err := r.db.WithContext(ctx).
		Order("name").
		Limit(limit).
		Offset(offset).
		Find(&tags).Error
	if err != nil {
		return nil, fmt.Errorf("gormdb: listing tags: %w", err)
	}
	return tags, nil
}

func (r *TagRepo) Update(ctx context.Context, tag *model.Tag) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var taken int64
		err := tx.Model(&model.Tag{}).
			Where("name = ? AND id <> ?", tag.Name, tag.ID).
			Count(&taken).Error
		if err != nil {
			return fmt.Errorf("gormdb: checking tag name %q: %w", tag.Name, err)
		}
		if taken > 0 {
			return apperror.Conflict("tag", fmt.Sprintf("name %q already exists", tag.Name))
		}

		res := tx.Model(&model.Tag{}).Where("id = ?", tag.ID).Update("name", tag.Name)
		if res.Error != nil {
			return fmt.Errorf("gormdb: updating tag %s: %w", tag.ID, res.Error)
		}
		if res.RowsAffected == 0 {
			return apperror.NotFound("tag", tag.ID)
		}
		return nil
	})
}

// Delete removes the tag and detaches it from every snippet. Snippets
// themselves are untouched, so no conflict semantics here.
func (r *TagRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Tag{ID: id}).Association("Snippets").Clear(); err != nil {
			return fmt.Errorf("gormdb: detaching tag %s: %w", id, err)
		}
		res := tx.Delete(&model.Tag{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("gormdb: deleting tag %s: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return apperror.NotFound("tag", id)
		}
		return nil
	})
}

func (r *TagRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.Tag{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("gormdb: counting tags: %w", err)
	}
	return n, nil
}
