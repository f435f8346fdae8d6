package repository

import (
	"context"
	"time"

	"sociopedia/internal/cache"
	"sociopedia/internal/models"
	"sociopedia/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FriendRepository defines persistence operations for the symmetric friend relation.
type FriendRepository interface {
	// Toggle adds the edge between userID and otherID when absent and removes it
	// when present. Both directions change in one transaction.
	Toggle(ctx context.Context, userID, otherID uint) (added bool, err error)
	ListFriends(ctx context.Context, userID uint) ([]models.User, error)
	FriendIDs(ctx context.Context, userID uint) ([]uint, error)
}

type friendRepository struct {
	db *gorm.DB
}

// NewFriendRepository returns a new FriendRepository implementation.
func NewFriendRepository(db *gorm.DB) FriendRepository {
	return &friendRepository{db: db}
}

func (r *friendRepository) Toggle(ctx context.Context, userID, otherID uint) (bool, error) {
	defer observability.TrackQuery("toggle", "friendships")()

	if userID == otherID {
		return false, models.NewValidationError("Cannot befriend yourself")
	}

	var added bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockUsers(tx, userID, otherID); err != nil {
			return err
		}

		var existing int64
		if err := tx.Model(&models.Friendship{}).
			Where("user_id = ? AND friend_id = ?", userID, otherID).
			Count(&existing).Error; err != nil {
			return err
		}

		if existing > 0 {
			if err := tx.Where("(user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?)",
				userID, otherID, otherID, userID).
				Delete(&models.Friendship{}).Error; err != nil {
				return err
			}
			added = false
		} else {
			edges := []models.Friendship{
				{UserID: userID, FriendID: otherID},
				{UserID: otherID, FriendID: userID},
			}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&edges).Error; err != nil {
				return err
			}
			added = true
		}

		return tx.Model(&models.User{}).
			Where("id IN ?", []uint{userID, otherID}).
			Update("updated_at", time.Now()).Error
	})
	if err != nil {
		return false, asAppError(err)
	}

	cache.InvalidateUser(ctx, userID, otherID)
	return added, nil
}

// lockUsers verifies both users exist. On postgres the rows are held FOR UPDATE
// in id order so concurrent toggles of the same pair serialize.
func lockUsers(tx *gorm.DB, a, b uint) error {
	q := tx.Model(&models.User{}).Where("id IN ?", []uint{a, b}).Order("id ASC")
	if tx.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var ids []uint
	if err := q.Pluck("id", &ids).Error; err != nil {
		return err
	}

	found := make(map[uint]bool, len(ids))
	for _, id := range ids {
		found[id] = true
	}
	for _, id := range []uint{a, b} {
		if !found[id] {
			return models.NewNotFoundError("User", id)
		}
	}
	return nil
}

// ListFriends returns the friends of userID ordered by id.
func (r *friendRepository) ListFriends(ctx context.Context, userID uint) ([]models.User, error) {
	defer observability.TrackQuery("list_friends", "friendships")()

	var friends []models.User
	err := r.db.WithContext(ctx).
		Joins("JOIN friendships ON friendships.friend_id = users.id").
		Where("friendships.user_id = ?", userID).
		Order("friendships.friend_id ASC").
		Find(&friends).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if friends == nil {
		friends = []models.User{}
	}
	return friends, nil
}

func (r *friendRepository) FriendIDs(ctx context.Context, userID uint) ([]uint, error) {
	ids, err := friendIDs(ctx, r.db, userID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}
