package service

import (
	"context"

	"sociopedia/internal/models"
	"sociopedia/internal/observability"
	"sociopedia/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// FriendService provides the symmetric friend toggle and listings.
type FriendService struct {
	friendRepo repository.FriendRepository
	userRepo   repository.UserRepository
}

// NewFriendService returns a new FriendService.
func NewFriendService(friendRepo repository.FriendRepository, userRepo repository.UserRepository) *FriendService {
	return &FriendService{
		friendRepo: friendRepo,
		userRepo:   userRepo,
	}
}

// ToggleFriend adds or removes the friendship between userID and otherID and
// returns userID's friends afterwards.
func (s *FriendService) ToggleFriend(ctx context.Context, userID, otherID uint) (friends []models.FriendSummary, err error) {
	ctx, span := observability.StartSpan(ctx, "FriendService", "ToggleFriend",
		attribute.Int64("user.id", int64(userID)),
		attribute.Int64("friend.id", int64(otherID)),
	)
	defer func() { observability.EndSpan(span, err) }()

	if userID == otherID {
		return nil, models.NewValidationError("Cannot befriend yourself")
	}

	added, err := s.friendRepo.Toggle(ctx, userID, otherID)
	if err != nil {
		return nil, err
	}
	observability.RecordFriendToggle(added)
	span.SetAttributes(attribute.Bool("friend.added", added))

	return s.listFriends(ctx, userID)
}

// GetFriends returns the friends of userID.
func (s *FriendService) GetFriends(ctx context.Context, userID uint) ([]models.FriendSummary, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.listFriends(ctx, userID)
}

func (s *FriendService) listFriends(ctx context.Context, userID uint) ([]models.FriendSummary, error) {
	users, err := s.friendRepo.ListFriends(ctx, userID)
	if err != nil {
		return nil, err
	}
	return models.Summaries(users), nil
}
