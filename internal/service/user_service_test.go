package service

import (
	"context"
	"testing"

	"sociopedia/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestUserService_UpdateProfile(t *testing.T) {
	stored := &models.User{ID: 1, FirstName: "Ada", LastName: "Lovelace", Location: "London"}
	users := noopUserRepo()
	users.getByIDFn = func(context.Context, uint) (*models.User, error) {
		cp := *stored
		return &cp, nil
	}
	users.updateFn = func(_ context.Context, u *models.User) error {
		stored = u
		return nil
	}
	svc := NewUserService(users)

	got, err := svc.UpdateProfile(context.Background(), UpdateProfileInput{
		UserID:     1,
		Location:   strPtr(" Paris "),
		Occupation: strPtr("Mathematician"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Paris", got.Location)
	assert.Equal(t, "Mathematician", got.Occupation)
	assert.Equal(t, "Ada", got.FirstName, "nil fields are unchanged")

	_, err = svc.UpdateProfile(context.Background(), UpdateProfileInput{UserID: 1, FirstName: strPtr("A")})
	assertAppErrorCode(t, err, models.CodeValidation)
}

func TestUserService_GetUser_NotFound(t *testing.T) {
	users := noopUserRepo()
	users.getByIDFn = func(context.Context, uint) (*models.User, error) { return nil, models.NewNotFoundError("User", 2) }

	_, err := NewUserService(users).GetUser(context.Background(), 2)
	assertAppErrorCode(t, err, models.CodeNotFound)
}
