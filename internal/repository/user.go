package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/roamline/travelcompanion-back/internal/db"
)

// UserRepository provides access to user rows. Users are created at
// registration and never updated or deleted afterwards.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *db.User) error {
	res := r.db.WithContext(ctx).Create(user)
	return translate(res.Error)
}

func (r *UserRepository) GetByID(ctx context.Context, id uint64) (*db.User, error) {
	user := db.User{}
	res := r.db.WithContext(ctx).First(&user, id)
	if res.Error != nil {
		return nil, translate(res.Error)
	}
	return &user, nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*db.User, error) {
	user := db.User{}
	res := r.db.WithContext(ctx).Where("username = ?", username).First(&user)
	if res.Error != nil {
		return nil, translate(res.Error)
	}
	return &user, nil
}
