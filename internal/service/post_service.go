package service

import (
	"context"
	"strings"

	"sociopedia/internal/models"
	"sociopedia/internal/observability"
	"sociopedia/internal/repository"
	"sociopedia/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

// CreatePostInput is the payload for CreatePost. PicturePath names an
// already-stored upload, if any.
type CreatePostInput struct {
	UserID      uint
	Description string
	PicturePath string
}

// PostService provides posts, likes and comments.
type PostService struct {
	postRepo repository.PostRepository
	userRepo repository.UserRepository
}

// NewPostService returns a new PostService.
func NewPostService(postRepo repository.PostRepository, userRepo repository.UserRepository) *PostService {
	return &PostService{
		postRepo: postRepo,
		userRepo: userRepo,
	}
}

// CreatePost stores a post carrying a snapshot of the author's display fields
// and returns the whole feed.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (posts []*models.Post, err error) {
	ctx, span := observability.StartSpan(ctx, "PostService", "CreatePost", attribute.Int64("user.id", int64(in.UserID)))
	defer func() { observability.EndSpan(span, err) }()

	description := strings.TrimSpace(in.Description)
	if description == "" && in.PicturePath == "" {
		return nil, models.NewValidationError("Post requires a description or a picture")
	}
	if err := validation.ValidateDescription(description); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	author, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		UserID:          author.ID,
		FirstName:       author.FirstName,
		LastName:        author.LastName,
		Location:        author.Location,
		UserPicturePath: author.PicturePath,
		Description:     description,
		PicturePath:     in.PicturePath,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, models.NewConflictError("Could not create post", err)
	}

	return s.postRepo.List(ctx)
}

// ListFeed returns every post in creation order.
func (s *PostService) ListFeed(ctx context.Context) ([]*models.Post, error) {
	return s.postRepo.List(ctx)
}

// ListByAuthor returns the posts of authorID in creation order.
func (s *PostService) ListByAuthor(ctx context.Context, authorID uint) ([]*models.Post, error) {
	return s.postRepo.ListByUser(ctx, authorID)
}

// ToggleLike flips whether userID likes postID and returns the updated post.
func (s *PostService) ToggleLike(ctx context.Context, postID, userID uint) (post *models.Post, err error) {
	ctx, span := observability.StartSpan(ctx, "PostService", "ToggleLike",
		attribute.Int64("post.id", int64(postID)),
		attribute.Int64("user.id", int64(userID)),
	)
	defer func() { observability.EndSpan(span, err) }()

	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, err
	}
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	liked, err := s.postRepo.ToggleLike(ctx, postID, userID)
	if err != nil {
		return nil, err
	}
	observability.RecordLikeToggle(liked)

	return s.postRepo.GetByID(ctx, postID)
}

// AddComment appends a comment by userID to postID and returns the updated post.
func (s *PostService) AddComment(ctx context.Context, postID, userID uint, body string) (*models.Post, error) {
	if err := validation.ValidateComment(body); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, err
	}
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	comment := &models.Comment{PostID: postID, UserID: userID, Body: strings.TrimSpace(body)}
	if err := s.postRepo.AppendComment(ctx, comment); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, postID)
}
