package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"sociopedia/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func author() *models.User {
	return &models.User{ID: 1, FirstName: "Ada", LastName: "Lovelace", Location: "London", PicturePath: "ada.jpg"}
}

func TestPostService_CreatePost_Validation(t *testing.T) {
	svc := NewPostService(noopPostRepo(), noopUserRepo())
	ctx := context.Background()

	_, err := svc.CreatePost(ctx, CreatePostInput{UserID: 1})
	assertAppErrorCode(t, err, models.CodeValidation)

	_, err = svc.CreatePost(ctx, CreatePostInput{UserID: 1, Description: strings.Repeat("x", 5001)})
	assertAppErrorCode(t, err, models.CodeValidation)
}

func TestPostService_CreatePost_UnknownAuthor(t *testing.T) {
	users := noopUserRepo()
	users.getByIDFn = func(context.Context, uint) (*models.User, error) {
		return nil, models.NewNotFoundError("User", 77)
	}
	svc := NewPostService(noopPostRepo(), users)

	_, err := svc.CreatePost(context.Background(), CreatePostInput{UserID: 77, Description: "hi"})
	assertAppErrorCode(t, err, models.CodeNotFound)
}

func TestPostService_CreatePost_SnapshotsAuthor(t *testing.T) {
	users := noopUserRepo()
	users.getByIDFn = func(context.Context, uint) (*models.User, error) { return author(), nil }

	var stored *models.Post
	posts := noopPostRepo()
	posts.createFn = func(_ context.Context, p *models.Post) error {
		p.ID = 10
		stored = p
		return nil
	}
	posts.listFn = func(context.Context) ([]*models.Post, error) { return []*models.Post{stored}, nil }

	svc := NewPostService(posts, users)
	got, err := svc.CreatePost(context.Background(), CreatePostInput{UserID: 1, Description: "  hello  ", PicturePath: "p.jpg"})
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, "Ada", stored.FirstName)
	assert.Equal(t, "Lovelace", stored.LastName)
	assert.Equal(t, "London", stored.Location)
	assert.Equal(t, "ada.jpg", stored.UserPicturePath)
	assert.Equal(t, "hello", stored.Description)
	assert.Equal(t, "p.jpg", stored.PicturePath)
}

func TestPostService_CreatePost_WriteFailureIsConflict(t *testing.T) {
	users := noopUserRepo()
	users.getByIDFn = func(context.Context, uint) (*models.User, error) { return author(), nil }
	posts := noopPostRepo()
	posts.createFn = func(context.Context, *models.Post) error { return models.NewInternalError(errors.New("disk full")) }

	_, err := NewPostService(posts, users).CreatePost(context.Background(), CreatePostInput{UserID: 1, Description: "x"})
	assertAppErrorCode(t, err, models.CodeConflict)
}

func TestPostService_ToggleLike_MissingPost(t *testing.T) {
	posts := noopPostRepo()
	posts.getByIDFn = func(context.Context, uint) (*models.Post, error) { return nil, models.NewNotFoundError("Post", 3) }

	_, err := NewPostService(posts, noopUserRepo()).ToggleLike(context.Background(), 3, 1)
	assertAppErrorCode(t, err, models.CodeNotFound)
}

func TestPostService_ToggleLike_MissingUser(t *testing.T) {
	posts := noopPostRepo()
	posts.getByIDFn = func(context.Context, uint) (*models.Post, error) { return &models.Post{ID: 3}, nil }
	users := noopUserRepo()
	users.getByIDFn = func(context.Context, uint) (*models.User, error) { return nil, models.NewNotFoundError("User", 8) }

	_, err := NewPostService(posts, users).ToggleLike(context.Background(), 3, 8)
	assertAppErrorCode(t, err, models.CodeNotFound)
}

func TestPostService_AddComment_Validation(t *testing.T) {
	svc := NewPostService(noopPostRepo(), noopUserRepo())
	_, err := svc.AddComment(context.Background(), 1, 1, "   ")
	assertAppErrorCode(t, err, models.CodeValidation)
}
