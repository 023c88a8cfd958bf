// Package service holds the blog's business logic between the HTTP handlers
// and the repositories.
package service

import (
	"context"

	"blog/internal/models"
)

// PostSource is the read side of the blog. It is served by PostService from
// the database, or by feed.Source from a remote feed.
type PostSource interface {
	ListPosts(ctx context.Context) ([]*models.Post, error)
	GetPost(ctx context.Context, id uint) (*models.Post, error)
	CountPosts(ctx context.Context) (int64, error)
}
