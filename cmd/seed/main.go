// Command seed fills the configured database with demo data.
package main

import (
	"context"
	"flag"
	"log"

	"blog/internal/cache"
	"blog/internal/config"
	"blog/internal/database"
	"blog/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 10, "Number of users to create")
	numPosts := flag.Int("posts", 20, "Number of posts to create")
	maxComments := flag.Int("comments", 5, "Maximum comments per post")
	shouldClean := flag.Bool("clean", false, "Delete existing users, posts and comments first")
	randSeed := flag.Int64("seed", 0, "Random seed for reproducible content (0 = random)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	res, err := seed.Seed(context.Background(), db, seed.Options{
		NumUsers:    *numUsers,
		NumPosts:    *numPosts,
		MaxComments: *maxComments,
		ShouldClean: *shouldClean,
		Seed:        *randSeed,
		Cache:       cache.New(cache.Connect(cfg.RedisURL)),
	})
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Seeded %d users, %d posts and %d comments (password %q)",
		len(res.Users), len(res.Posts), res.Comments, seed.DemoPassword)
}
