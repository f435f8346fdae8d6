// Command main runs the database seeder for Sociopedia.
package main

import (
	"context"
	"flag"
	"log"

	"sociopedia/internal/auth"
	"sociopedia/internal/bootstrap"
	"sociopedia/internal/cache"
	"sociopedia/internal/config"
	"sociopedia/internal/repository"
	"sociopedia/internal/seed"
	"sociopedia/internal/service"
)

func main() {
	numUsers := flag.Int("users", 20, "Number of users to create")
	numPosts := flag.Int("posts", 60, "Number of posts to create")
	friends := flag.Int("friends", 4, "Friend toggles attempted per user")
	likes := flag.Int("likes", 5, "Maximum likes per post")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	randSeed := flag.Int64("seed", 0, "Random seed (0 picks one)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	rt, err := bootstrap.InitRuntime(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}
	ctx := context.Background()
	defer func() { _ = rt.Close(ctx) }()

	if *shouldClean {
		if err := seed.ClearAll(rt.DB); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
		if rt.Redis != nil {
			_ = rt.Redis.FlushDB(ctx).Err()
		}
	}

	userRepo := repository.NewUserRepository(rt.DB)
	var revoked auth.RevocationStore
	if rt.Redis != nil {
		revoked = cache.NewRevocationStore()
	}
	tokens := auth.NewTokens(auth.Config{
		Secret:   cfg.JWTSecret,
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
		TTL:      cfg.TokenTTL(),
	}, revoked)

	seeder := seed.NewSeeder(
		service.NewAuthService(userRepo, tokens, cfg.BcryptCost),
		service.NewFriendService(repository.NewFriendRepository(rt.DB), userRepo),
		service.NewPostService(repository.NewPostRepository(rt.DB), userRepo),
	)

	res, err := seeder.Run(ctx, seed.Options{
		NumUsers:       *numUsers,
		NumPosts:       *numPosts,
		FriendsPerUser: *friends,
		LikesPerPost:   *likes,
		Seed:           *randSeed,
	})
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Seeded %d users, %d posts, %d friendships, %d likes, %d comments",
		len(res.Users), res.Posts, res.Friendships, res.Likes, res.Comments)
	log.Printf("All seeded users have the password: %s", seed.DefaultPassword)
}
