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

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo persists admin accounts. There is no public signup path;
// rows are written by the seed command only.
type UserRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *DB) *UserRepo {
	return &UserRepo{db: db.conn}
}

func (r *UserRepo) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&model.User{}).Where("username = ?", user.Username).Count(&existing).Error; err != nil {
			return fmt.Errorf("gormdb: checking username %q: %w", user.Username, err)
		}
		if existing > 0 {
			return apperror.Conflict("user", fmt.Sprintf("username %q already exists", user.Username))
		}
		if err := tx.Create(user).Error; err != nil {
			return fmt.Errorf("gormdb: creating user: %w", err)
		}
		return nil
	})
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).First(&user, "username = ?", username).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("user", username)
		}
		return nil, fmt.Errorf("gormdb: getting user %s: %w", username, err)
	}
	return &user, nil
}
