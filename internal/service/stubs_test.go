package service

import (
	"context"
	"errors"
	"testing"

	"sociopedia/internal/models"

	"github.com/stretchr/testify/require"
)

type userRepoStub struct {
	getByIDFn    func(context.Context, uint) (*models.User, error)
	getByEmailFn func(context.Context, string) (*models.User, error)
	createFn     func(context.Context, *models.User) error
	updateFn     func(context.Context, *models.User) error
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}

type friendRepoStub struct {
	toggleFn      func(context.Context, uint, uint) (bool, error)
	listFriendsFn func(context.Context, uint) ([]models.User, error)
	friendIDsFn   func(context.Context, uint) ([]uint, error)
}

func (s *friendRepoStub) Toggle(ctx context.Context, userID, otherID uint) (bool, error) {
	return s.toggleFn(ctx, userID, otherID)
}
func (s *friendRepoStub) ListFriends(ctx context.Context, userID uint) ([]models.User, error) {
	return s.listFriendsFn(ctx, userID)
}
func (s *friendRepoStub) FriendIDs(ctx context.Context, userID uint) ([]uint, error) {
	return s.friendIDsFn(ctx, userID)
}

type postRepoStub struct {
	createFn        func(context.Context, *models.Post) error
	listFn          func(context.Context) ([]*models.Post, error)
	listByUserFn    func(context.Context, uint) ([]*models.Post, error)
	getByIDFn       func(context.Context, uint) (*models.Post, error)
	toggleLikeFn    func(context.Context, uint, uint) (bool, error)
	appendCommentFn func(context.Context, *models.Comment) error
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) List(ctx context.Context) ([]*models.Post, error) {
	return s.listFn(ctx)
}
func (s *postRepoStub) ListByUser(ctx context.Context, userID uint) ([]*models.Post, error) {
	return s.listByUserFn(ctx, userID)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) ToggleLike(ctx context.Context, postID, userID uint) (bool, error) {
	return s.toggleLikeFn(ctx, postID, userID)
}
func (s *postRepoStub) AppendComment(ctx context.Context, comment *models.Comment) error {
	return s.appendCommentFn(ctx, comment)
}

var errUnexpectedCall = errors.New("unexpected call")

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn:    func(context.Context, uint) (*models.User, error) { return nil, errUnexpectedCall },
		getByEmailFn: func(context.Context, string) (*models.User, error) { return nil, errUnexpectedCall },
		createFn:     func(context.Context, *models.User) error { return errUnexpectedCall },
		updateFn:     func(context.Context, *models.User) error { return errUnexpectedCall },
	}
}

func noopFriendRepo() *friendRepoStub {
	return &friendRepoStub{
		toggleFn:      func(context.Context, uint, uint) (bool, error) { return false, errUnexpectedCall },
		listFriendsFn: func(context.Context, uint) ([]models.User, error) { return nil, errUnexpectedCall },
		friendIDsFn:   func(context.Context, uint) ([]uint, error) { return nil, errUnexpectedCall },
	}
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn:        func(context.Context, *models.Post) error { return errUnexpectedCall },
		listFn:          func(context.Context) ([]*models.Post, error) { return nil, errUnexpectedCall },
		listByUserFn:    func(context.Context, uint) ([]*models.Post, error) { return nil, errUnexpectedCall },
		getByIDFn:       func(context.Context, uint) (*models.Post, error) { return nil, errUnexpectedCall },
		toggleLikeFn:    func(context.Context, uint, uint) (bool, error) { return false, errUnexpectedCall },
		appendCommentFn: func(context.Context, *models.Comment) error { return errUnexpectedCall },
	}
}

func assertAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	require.Equal(t, code, appErr.Code)
}
