// Command importfeed copies the remote JSON feed into the database.
package main

import (
	"context"
	"flag"
	"log"
	"strconv"
	"strings"
	"time"

	"blog/internal/cache"
	"blog/internal/config"
	"blog/internal/database"
	"blog/internal/feed"
	"blog/internal/models"
	"blog/internal/repository"
)

func main() {
	author := flag.String("author", "", "Email or numeric id of the user the posts are credited to")
	url := flag.String("url", "", "Feed URL (defaults to FEED_URL)")
	flag.Parse()

	if *author == "" {
		log.Fatal("-author is required")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *url == "" {
		*url = cfg.FeedURL
	}
	if *url == "" {
		log.Fatal("no feed URL: pass -url or set FEED_URL")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	user, err := resolveAuthor(ctx, repository.NewUserRepository(db), *author)
	if err != nil {
		log.Fatalf("Failed to find author %q: %v", *author, err)
	}

	entries, err := feed.Fetch(ctx, *url)
	if err != nil {
		log.Fatalf("Failed to fetch feed: %v", err)
	}

	// Creating through a cached repository drops the running server's post list.
	posts := repository.NewPostRepository(db, cache.New(cache.Connect(cfg.RedisURL)))
	res, err := feed.Import(ctx, posts, entries, user.ID)
	if err != nil {
		log.Fatalf("Import failed after %d posts: %v", res.Created, err)
	}
	log.Printf("Imported %d posts for %s (%d already present)", res.Created, user.Email, res.Skipped)
}

func resolveAuthor(ctx context.Context, users repository.UserRepository, ref string) (*models.User, error) {
	if id, err := strconv.ParseUint(ref, 10, 64); err == nil {
		return users.GetByID(ctx, uint(id))
	}
	user, err := users.GetByEmail(ctx, strings.ToLower(ref))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundError("User", ref)
	}
	return user, nil
}
