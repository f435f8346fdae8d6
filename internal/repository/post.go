package repository

import (
	"context"
	"errors"
	"time"

	"sociopedia/internal/models"
	"sociopedia/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostRepository defines persistence operations for posts, likes and comments.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	List(ctx context.Context) ([]*models.Post, error)
	ListByUser(ctx context.Context, userID uint) ([]*models.Post, error)
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	// ToggleLike removes the (post, user) like when present and adds it otherwise.
	ToggleLike(ctx context.Context, postID, userID uint) (liked bool, err error)
	AppendComment(ctx context.Context, comment *models.Comment) error
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository returns a new PostRepository implementation.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// withRelations preloads likes and comments. Comments keep insertion order.
func withRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("LikeRows", func(db *gorm.DB) *gorm.DB {
			return db.Order("likes.id ASC")
		}).
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("comments.id ASC")
		})
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	defer observability.TrackQuery("create", "posts")()

	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	post.HydrateLikes()
	return nil
}

func (r *postRepository) List(ctx context.Context) ([]*models.Post, error) {
	defer observability.TrackQuery("list", "posts")()

	var posts []*models.Post
	if err := withRelations(r.db.WithContext(ctx)).Order("posts.id ASC").Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return hydrated(posts), nil
}

func (r *postRepository) ListByUser(ctx context.Context, userID uint) ([]*models.Post, error) {
	defer observability.TrackQuery("list_by_user", "posts")()

	var posts []*models.Post
	if err := withRelations(r.db.WithContext(ctx)).
		Where("user_id = ?", userID).
		Order("posts.id ASC").
		Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return hydrated(posts), nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	defer observability.TrackQuery("get_by_id", "posts")()

	var post models.Post
	if err := withRelations(r.db.WithContext(ctx)).First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}
	post.HydrateLikes()
	return &post, nil
}

func (r *postRepository) ToggleLike(ctx context.Context, postID, userID uint) (bool, error) {
	defer observability.TrackQuery("toggle_like", "likes")()

	var liked bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensurePost(tx, postID); err != nil {
			return err
		}

		res := tx.Where("post_id = ? AND user_id = ?", postID, userID).Delete(&models.Like{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			liked = false
		} else {
			like := models.Like{PostID: postID, UserID: userID}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&like).Error; err != nil {
				return err
			}
			liked = true
		}

		return tx.Model(&models.Post{}).Where("id = ?", postID).Update("updated_at", time.Now()).Error
	})
	if err != nil {
		return false, asAppError(err)
	}
	return liked, nil
}

func (r *postRepository) AppendComment(ctx context.Context, comment *models.Comment) error {
	defer observability.TrackQuery("append_comment", "comments")()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensurePost(tx, comment.PostID); err != nil {
			return err
		}
		if err := tx.Create(comment).Error; err != nil {
			return err
		}
		return tx.Model(&models.Post{}).Where("id = ?", comment.PostID).Update("updated_at", time.Now()).Error
	})
	return asAppError(err)
}

func ensurePost(tx *gorm.DB, postID uint) error {
	var count int64
	if err := tx.Model(&models.Post{}).Where("id = ?", postID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return models.NewNotFoundError("Post", postID)
	}
	return nil
}

func hydrated(posts []*models.Post) []*models.Post {
	if posts == nil {
		return []*models.Post{}
	}
	for _, p := range posts {
		p.HydrateLikes()
	}
	return posts
}
