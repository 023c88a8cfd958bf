// Package feed serves posts from a remote JSON document fetched once at startup.
package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"blog/internal/forms"
	"blog/internal/middleware"
	"blog/internal/models"

	"github.com/gofiber/fiber/v2"
)

const defaultTimeout = 10 * time.Second

// Entry is one element of the remote feed.
type Entry struct {
	ID       int    `json:"id"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Body     string `json:"body"`
	Author   string `json:"author"`
	Date     string `json:"date"`
	ImageURL string `json:"image_url"`
}

// Fetch downloads and decodes the feed at url. The fiber client takes no
// context, so only the deadline of ctx bounds the request; cancelling ctx
// without a deadline does not abort it.
func Fetch(ctx context.Context, url string) ([]Entry, error) {
	timeout := defaultTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}
	if timeout <= 0 {
		return nil, context.DeadlineExceeded
	}

	agent := fiber.Get(url).Timeout(timeout)
	if err := agent.Parse(); err != nil {
		return nil, fmt.Errorf("fetch feed %s: %w", url, err)
	}
	status, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return nil, fmt.Errorf("fetch feed %s: %w", url, errors.Join(errs...))
	}
	if status != fiber.StatusOK {
		return nil, fmt.Errorf("fetch feed %s: unexpected status %d", url, status)
	}

	var entries []Entry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("decode feed %s: %w", url, err)
	}
	middleware.Logger.InfoContext(ctx, "feed loaded", slog.String("url", url), slog.Int("posts", len(entries)))
	return entries, nil
}

// Source is an immutable snapshot of the feed. Posts are addressed by their
// 1-based position, which is also the ID the pages link to.
type Source struct {
	posts []*models.Post
}

// NewSource converts entries to posts.
func NewSource(entries []Entry) *Source {
	posts := make([]*models.Post, len(entries))
	for i, e := range entries {
		posts[i] = e.Post(uint(i + 1))
	}
	return &Source{posts: posts}
}

// Post converts the entry to a post with the given ID. The body is sanitised
// since pages render it as HTML.
func (e Entry) Post(id uint) *models.Post {
	return &models.Post{
		ID:       id,
		Title:    e.Title,
		Subtitle: e.Subtitle,
		Body:     forms.SanitizeHTML(e.Body),
		Date:     e.Date,
		ImgURL:   e.ImageURL,
		Author:   models.User{Name: e.Author},
	}
}

func (s *Source) ListPosts(_ context.Context) ([]*models.Post, error) {
	return s.posts, nil
}

// GetPost returns the post at position, counting from 1.
func (s *Source) GetPost(_ context.Context, position uint) (*models.Post, error) {
	if position < 1 || int(position) > len(s.posts) {
		return nil, models.NewNotFoundError("Post", position)
	}
	return s.posts[position-1], nil
}

// Len reports how many posts the feed holds.
func (s *Source) Len() int {
	return len(s.posts)
}

func (s *Source) CountPosts(_ context.Context) (int64, error) {
	return int64(s.Len()), nil
}
