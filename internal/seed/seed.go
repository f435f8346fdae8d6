// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"sociopedia/internal/middleware"
	"sociopedia/internal/models"
	"sociopedia/internal/service"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// DefaultPassword is the password every seeded user logs in with.
const DefaultPassword = "password123"

// Options configuration for the seeder
type Options struct {
	NumUsers int
	NumPosts int
	// FriendsPerUser is the number of friend toggles attempted per user.
	FriendsPerUser int
	// LikesPerPost is the upper bound of likes given to each post.
	LikesPerPost int
	// Seed makes the generated data reproducible when non-zero.
	Seed int64
}

// Result summarizes what a run created.
type Result struct {
	Users       []*models.User
	Posts       int
	Friendships int
	Likes       int
	Comments    int
}

// Seeder fills the store through the service layer, so seeded data obeys the
// same rules as data created over HTTP.
type Seeder struct {
	auth    *service.AuthService
	friends *service.FriendService
	posts   *service.PostService
}

// NewSeeder returns a Seeder using the given services.
func NewSeeder(auth *service.AuthService, friends *service.FriendService, posts *service.PostService) *Seeder {
	return &Seeder{auth: auth, friends: friends, posts: posts}
}

// Run creates users, friendships, posts, likes and comments.
func (s *Seeder) Run(ctx context.Context, opts Options) (*Result, error) {
	faker := gofakeit.New(opts.Seed)
	res := &Result{}

	middleware.Logger.InfoContext(ctx, "seeding started",
		slog.Int("users", opts.NumUsers),
		slog.Int("posts", opts.NumPosts),
	)

	for i := 0; i < opts.NumUsers; i++ {
		first, last := faker.FirstName(), faker.LastName()
		user, err := s.auth.Register(ctx, service.RegisterInput{
			FirstName:  first,
			LastName:   last,
			Email:      fmt.Sprintf("%s.%s.%d@example.com", emailPart(first), emailPart(last), i+1),
			Password:   DefaultPassword,
			Location:   faker.City(),
			Occupation: faker.JobTitle(),
		})
		if err != nil {
			return nil, fmt.Errorf("create user %d: %w", i+1, err)
		}
		res.Users = append(res.Users, user)
	}

	if len(res.Users) < 2 {
		opts.FriendsPerUser = 0
	}
	pairs := make(map[[2]uint]bool)
	for _, u := range res.Users {
		for j := 0; j < opts.FriendsPerUser; j++ {
			other := res.Users[faker.Number(0, len(res.Users)-1)]
			if other.ID == u.ID {
				continue
			}
			key := pairKey(u.ID, other.ID)
			if pairs[key] {
				continue
			}
			if _, err := s.friends.ToggleFriend(ctx, u.ID, other.ID); err != nil {
				return nil, fmt.Errorf("befriend %d and %d: %w", u.ID, other.ID, err)
			}
			pairs[key] = true
			res.Friendships++
		}
	}

	if len(res.Users) == 0 {
		return res, nil
	}
	for i := 0; i < opts.NumPosts; i++ {
		author := res.Users[faker.Number(0, len(res.Users)-1)]
		posts, err := s.posts.CreatePost(ctx, service.CreatePostInput{
			UserID:      author.ID,
			Description: faker.Sentence(faker.Number(6, 18)),
		})
		if err != nil {
			return nil, fmt.Errorf("create post %d: %w", i+1, err)
		}
		post := posts[len(posts)-1]
		res.Posts++

		liked := make(map[uint]bool)
		for j := faker.Number(0, opts.LikesPerPost); j > 0; j-- {
			fan := res.Users[faker.Number(0, len(res.Users)-1)]
			if liked[fan.ID] {
				continue
			}
			if _, err := s.posts.ToggleLike(ctx, post.ID, fan.ID); err != nil {
				return nil, fmt.Errorf("like post %d: %w", post.ID, err)
			}
			liked[fan.ID] = true
			res.Likes++
		}

		if faker.Bool() {
			commenter := res.Users[faker.Number(0, len(res.Users)-1)]
			if _, err := s.posts.AddComment(ctx, post.ID, commenter.ID, faker.Sentence(8)); err != nil {
				return nil, fmt.Errorf("comment on post %d: %w", post.ID, err)
			}
			res.Comments++
		}
	}

	middleware.Logger.InfoContext(ctx, "seeding finished",
		slog.Int("users", len(res.Users)),
		slog.Int("posts", res.Posts),
		slog.Int("friendships", res.Friendships),
		slog.Int("likes", res.Likes),
		slog.Int("comments", res.Comments),
	)
	return res, nil
}

// ClearAll deletes every row of every table, children first.
func ClearAll(db *gorm.DB) error {
	tables := []interface{}{
		&models.Comment{},
		&models.Like{},
		&models.Post{},
		&models.Friendship{},
		&models.User{},
	}
	for _, t := range tables {
		if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(t).Error; err != nil {
			return fmt.Errorf("clear %T: %w", t, err)
		}
	}
	return nil
}

func pairKey(a, b uint) [2]uint {
	if a > b {
		a, b = b, a
	}
	return [2]uint{a, b}
}

// emailPart keeps up to 12 ASCII letters of a name, lower-cased.
func emailPart(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if b.Len() == 12 {
			break
		}
		if r < unicode.MaxASCII && unicode.IsLetter(r) {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "user"
	}
	return b.String()
}
