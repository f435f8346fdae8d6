package service

import (
	"context"
	"strings"

	"sociopedia/internal/models"
	"sociopedia/internal/repository"
	"sociopedia/internal/validation"
)

// UpdateProfileInput carries a partial profile update. Nil fields are left unchanged.
type UpdateProfileInput struct {
	UserID      uint
	FirstName   *string
	LastName    *string
	Location    *string
	Occupation  *string
	PicturePath *string
}

// UserService provides profile reads and updates.
type UserService struct {
	userRepo repository.UserRepository
}

// NewUserService returns a new UserService.
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// GetUser returns the public record of id.
func (s *UserService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// UpdateProfile applies in to the stored user. Existing posts keep their
// snapshot of the old display fields.
func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	if in.FirstName != nil {
		v := strings.TrimSpace(*in.FirstName)
		if err := validation.ValidateName("firstName", v); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		user.FirstName = v
	}
	if in.LastName != nil {
		v := strings.TrimSpace(*in.LastName)
		if err := validation.ValidateName("lastName", v); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		user.LastName = v
	}
	if in.Location != nil {
		v := strings.TrimSpace(*in.Location)
		if err := validation.ValidateProfileText("location", v); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		user.Location = v
	}
	if in.Occupation != nil {
		v := strings.TrimSpace(*in.Occupation)
		if err := validation.ValidateProfileText("occupation", v); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		user.Occupation = v
	}
	if in.PicturePath != nil {
		user.PicturePath = *in.PicturePath
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(ctx, in.UserID)
}
