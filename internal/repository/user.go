// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"

	"sociopedia/internal/cache"
	"sociopedia/internal/models"
	"sociopedia/internal/observability"

	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// GetByID returns the public user record with its friend ids. The password
// hash is never returned from this path.
func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	defer observability.TrackQuery("get_by_id", "users")()

	var user models.User
	err := cache.Aside(ctx, cache.UserKey(id), &user, cache.UserTTL, func() error {
		if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("User", id)
			}
			return models.NewInternalError(err)
		}
		ids, err := friendIDs(ctx, r.db, id)
		if err != nil {
			return models.NewInternalError(err)
		}
		user.Friends = ids
		return nil
	})
	if err != nil {
		return nil, err
	}

	user.Password = ""
	if user.Friends == nil {
		user.Friends = []uint{}
	}
	return &user, nil
}

// GetByEmail returns the user with the stored hash, or nil, nil when absent.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	defer observability.TrackQuery("get_by_email", "users")()

	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	ids, err := friendIDs(ctx, r.db, user.ID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	user.Friends = ids
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	defer observability.TrackQuery("create", "users")()

	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("User already exists", err)
		}
		return models.NewInternalError(err)
	}
	if user.Friends == nil {
		user.Friends = []uint{}
	}
	return nil
}

// Update persists the profile fields of user. Credentials and counters are not touched.
func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	defer observability.TrackQuery("update", "users")()

	res := r.db.WithContext(ctx).Model(user).
		Select("first_name", "last_name", "location", "occupation", "picture_path", "updated_at").
		Updates(user)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("User", user.ID)
	}
	cache.InvalidateUser(ctx, user.ID)
	return nil
}

func friendIDs(ctx context.Context, db *gorm.DB, userID uint) ([]uint, error) {
	ids := []uint{}
	err := db.WithContext(ctx).Model(&models.Friendship{}).
		Where("user_id = ?", userID).
		Order("friend_id ASC").
		Pluck("friend_id", &ids).Error
	if ids == nil {
		ids = []uint{}
	}
	return ids, err
}
