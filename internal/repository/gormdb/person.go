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

var _ repository.PersonRepository = (*PersonRepo)(nil)

// PersonRepo persists people.
type PersonRepo struct {
	db *gorm.DB
}

func NewPersonRepo(db *DB) *PersonRepo {
	return &PersonRepo{db: db.conn}
}

func (r *PersonRepo) Create(ctx context.Context, person *model.Person) error {
	if err := r.db.WithContext(ctx).Create(person).Error; err != nil {
		return fmt.Errorf("gormdb: creating person: %w", err)
	}
	return nil
}

func (r *PersonRepo) GetByID(ctx context.Context, id string) (*model.Person, error) {
	var person model.Person
	err := r.db.WithContext(ctx).First(&person, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("person", id)
		}
		return nil, fmt.Errorf("gormdb: getting person %s: %w", id, err)
	}
	return &person, nil
}

func (r *PersonRepo) List(ctx context.Context, opts repository.ListOptions) ([]model.Person, error) {
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

	people := make([]model.Person, 0, limit)
	err := r.db.WithContext(ctx).
		Order("last_name, first_name").
		Limit(limit).
		Offset(offset).
		Find(&people).Error
	if err != nil {
		return nil, fmt.Errorf("gormdb: listing people: %w", err)
	}
	return people, nil
}

// Update writes both name columns unconditionally. A full update must
// be able to blank a name, so the column map bypasses GORM's
// zero-value skipping.
func (r *PersonRepo) Update(ctx context.Context, person *model.Person) error {
	res := r.db.WithContext(ctx).Model(&model.Person{}).Where("id = ?", person.ID).Updates(map[string]interface{}{
		"first_name": person.FirstName,
		"last_name":  person.LastName,
	})
	if res.Error != nil {
		return fmt.Errorf("gormdb: updating person %s: %w", person.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("person", person.ID)
	}
	return nil
}

// Delete removes the person unless snippets still name them as
// creator. That returns ErrConflict so the handler can answer 409
// instead of silently orphaning rows.
func (r *PersonRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var refs int64
		if err := tx.Model(&model.Snippet{}).Where("creator_id = ?", id).Count(&refs).Error; err != nil {
			return fmt.Errorf("gormdb: counting snippets for person %s: %w", id, err)
		}
		if refs > 0 {
			return apperror.Conflict("person", fmt.Sprintf("still referenced by %d snippets", refs))
		}
		res := tx.Delete(&model.Person{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("gormdb: deleting person %s: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return apperror.NotFound("person", id)
		}
		return nil
	})
}

func (r *PersonRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.Person{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("gormdb: counting people: %w", err)
	}
	return n, nil
}
