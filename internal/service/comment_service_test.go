package service

import (
	"context"
	"testing"

	"blog/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentService_AddComment(t *testing.T) {
	comments := &commentRepoStub{}
	svc := NewCommentService(comments, noopPostRepo())
	ctx := context.Background()

	c, err := svc.AddComment(ctx, AddCommentInput{PostID: 3, AuthorID: 8, Text: `nice <img src=x onerror="steal()">`})
	require.NoError(t, err)
	require.Len(t, comments.created, 1)
	assert.Equal(t, uint(3), c.PostID)
	assert.Equal(t, uint(8), c.AuthorID)
	assert.NotContains(t, c.Text, "onerror")

	list, err := svc.ListComments(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestCommentService_AddComment_Rejections(t *testing.T) {
	posts := noopPostRepo()
	posts.getByIDFn = func(_ context.Context, id uint) (*models.Post, error) {
		if id == 1 {
			return &models.Post{ID: 1}, nil
		}
		return nil, models.NewNotFoundError("Post", id)
	}
	comments := &commentRepoStub{}
	svc := NewCommentService(comments, posts)
	ctx := context.Background()

	_, err := svc.AddComment(ctx, AddCommentInput{PostID: 1, Text: "anon"})
	assert.True(t, models.HasCode(err, models.CodeUnauthorized))

	_, err = svc.AddComment(ctx, AddCommentInput{PostID: 2, AuthorID: 1, Text: "hi"})
	assert.True(t, models.HasCode(err, models.CodeNotFound))

	_, err = svc.AddComment(ctx, AddCommentInput{PostID: 1, AuthorID: 1, Text: "<script>x</script>"})
	assert.True(t, models.HasCode(err, models.CodeValidation))

	assert.Empty(t, comments.created)
}
