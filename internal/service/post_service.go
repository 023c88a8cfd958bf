package service

import (
	"context"
	"time"

	"blog/internal/forms"
	"blog/internal/models"
	"blog/internal/observability"
	"blog/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

type PostService struct {
	posts repository.PostRepository
	now   func() time.Time
}

type CreatePostInput struct {
	AuthorID uint
	Title    string
	Subtitle string
	Body     string
	ImgURL   string
}

type UpdatePostInput struct {
	PostID   uint
	Title    string
	Subtitle string
	Body     string
	ImgURL   string
}

func NewPostService(posts repository.PostRepository) *PostService {
	return &PostService{posts: posts, now: time.Now}
}

func (s *PostService) ListPosts(ctx context.Context) ([]*models.Post, error) {
	return s.posts.List(ctx)
}

func (s *PostService) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	return s.posts.GetByID(ctx, id)
}

// CountPosts returns how many posts are stored.
func (s *PostService) CountPosts(ctx context.Context) (int64, error) {
	return s.posts.Count(ctx)
}

// CreatePost stores a post dated today. The body is sanitised rich text.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (post *models.Post, err error) {
	ctx, span := observability.StartSpan(ctx, "PostService.CreatePost", attribute.Int("author.id", int(in.AuthorID)))
	defer func() { observability.EndSpan(span, err) }()

	post = &models.Post{
		Title:    in.Title,
		Subtitle: in.Subtitle,
		Body:     forms.SanitizeHTML(in.Body),
		ImgURL:   in.ImgURL,
		Date:     s.now().Format(models.PostDateLayout),
		AuthorID: in.AuthorID,
	}
	if post.Body == "" {
		return nil, models.NewValidationError("Post body is empty")
	}
	if err = s.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	observability.PostEvents.WithLabelValues("created").Inc()
	return post, nil
}

// UpdatePost rewrites the editable fields. Author and date are kept.
func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}

	post.Title = in.Title
	post.Subtitle = in.Subtitle
	post.Body = forms.SanitizeHTML(in.Body)
	post.ImgURL = in.ImgURL
	if post.Body == "" {
		return nil, models.NewValidationError("Post body is empty")
	}

	if err := s.posts.Update(ctx, post); err != nil {
		return nil, err
	}
	observability.PostEvents.WithLabelValues("updated").Inc()
	return post, nil
}

// DeletePost removes the post and its comments.
func (s *PostService) DeletePost(ctx context.Context, id uint) error {
	if err := s.posts.Delete(ctx, id); err != nil {
		return err
	}
	observability.PostEvents.WithLabelValues("deleted").Inc()
	return nil
}
