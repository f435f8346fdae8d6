// Package service contains business logic for the application.
package service

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"strings"

	"sociopedia/internal/middleware"
	"sociopedia/internal/models"
	"sociopedia/internal/observability"
	"sociopedia/internal/repository"
	"sociopedia/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// TokenIssuer signs a token for an authenticated user.
type TokenIssuer interface {
	Issue(userID uint) (string, error)
}

// RegisterInput is the validated-on-entry payload of a registration.
// PicturePath is the stored name of an already-saved upload, if any.
type RegisterInput struct {
	FirstName   string
	LastName    string
	Email       string
	Password    string
	PicturePath string
	Location    string
	Occupation  string
}

// AuthService registers users and exchanges credentials for tokens.
type AuthService struct {
	userRepo   repository.UserRepository
	tokens     TokenIssuer
	bcryptCost int
	counter    func() int
}

// NewAuthService returns a new AuthService. A zero bcryptCost uses bcrypt.DefaultCost.
func NewAuthService(userRepo repository.UserRepository, tokens TokenIssuer, bcryptCost int) *AuthService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{
		userRepo:   userRepo,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		counter:    func() int { return rand.IntN(10000) },
	}
}

// Register creates a user. The raw password is hashed and then discarded.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	ctx, span := observability.StartSpan(ctx, "AuthService", "Register")
	user, err := s.register(ctx, in)
	observability.EndSpan(span, err)

	result := "ok"
	if err != nil {
		result = strings.ToLower(models.ErrorCode(err))
	}
	observability.AuthAttempts.WithLabelValues("register", result).Inc()
	return user, err
}

func (s *AuthService) register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = validation.NormalizeEmail(in.Email)

	if err := validation.ValidateName("firstName", in.FirstName); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateName("lastName", in.LastName); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateProfileText("location", in.Location); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateProfileText("occupation", in.Occupation); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	existing, err := s.userRepo.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewConflictError("User already exists", nil)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, models.NewValidationError(err.Error())
	}
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		FirstName:     in.FirstName,
		LastName:      in.LastName,
		Email:         in.Email,
		Password:      string(hash),
		PicturePath:   in.PicturePath,
		Friends:       []uint{},
		Location:      strings.TrimSpace(in.Location),
		Occupation:    strings.TrimSpace(in.Occupation),
		ViewedProfile: s.counter(),
		Impressions:   s.counter(),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if models.ErrorCode(err) == models.CodeConflict {
			return nil, err
		}
		return nil, models.NewConflictError("Could not register user", err)
	}

	middleware.Logger.InfoContext(ctx, "user registered", slog.Uint64("new_user_id", uint64(user.ID)))
	return user, nil
}

// Login verifies credentials and returns a signed token with the user.
// Unknown email and wrong password fail identically.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	ctx, span := observability.StartSpan(ctx, "AuthService", "Login")
	token, user, err := s.login(ctx, email, password)
	observability.EndSpan(span, err)

	result := "ok"
	if err != nil {
		result = strings.ToLower(models.ErrorCode(err))
	}
	observability.AuthAttempts.WithLabelValues("login", result).Inc()
	return token, user, err
}

func (s *AuthService) login(ctx context.Context, email, password string) (string, *models.User, error) {
	email = validation.NormalizeEmail(email)
	if email == "" || password == "" {
		return "", nil, models.NewValidationError("Email and password are required")
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return "", nil, err
	}
	if user == nil {
		middleware.Logger.DebugContext(ctx, "login rejected", slog.String("reason", "unknown_email"))
		return "", nil, models.NewUnauthorizedError("Invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		middleware.Logger.DebugContext(ctx, "login rejected",
			slog.String("reason", "password_mismatch"),
			slog.Uint64("target_user_id", uint64(user.ID)),
		)
		return "", nil, models.NewUnauthorizedError("Invalid credentials")
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", nil, models.NewInternalError(err)
	}

	user.Password = ""
	return token, user, nil
}
