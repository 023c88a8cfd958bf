package feed

import (
	"context"
	"errors"
	"log/slog"

	"blog/internal/middleware"
	"blog/internal/models"
	"blog/internal/repository"
)

// ImportResult reports the outcome of Import.
type ImportResult struct {
	Created int
	Skipped int
}

// Import stores entries as posts written by authorID. Entries whose title
// already exists are skipped; any other error stops the import.
func Import(ctx context.Context, posts repository.PostRepository, entries []Entry, authorID uint) (ImportResult, error) {
	var res ImportResult
	for _, e := range entries {
		post := e.Post(0)
		post.Author = models.User{}
		post.AuthorID = authorID

		err := posts.Create(ctx, post)
		var appErr *models.AppError
		switch {
		case err == nil:
			res.Created++
		case errors.As(err, &appErr) && appErr.Code == models.CodeConflict:
			res.Skipped++
			middleware.Logger.WarnContext(ctx, "feed post already imported", slog.String("title", e.Title))
		default:
			return res, err
		}
	}
	return res, nil
}
