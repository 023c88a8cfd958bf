package server

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"blog/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postFormValues(title string) url.Values {
	return url.Values{
		"title":    {title},
		"subtitle": {"Subtitle"},
		"img_url":  {"https://example.com/pic.jpg"},
		"body":     {"<p>Hello</p>"},
	}
}

func TestHomeAndShowPost(t *testing.T) {
	env := setupTestServer(t)
	client := newClient(t, env.app)
	require.Equal(t, http.StatusSeeOther, client.register("ada@example.com", "secret1", "Ada").StatusCode)
	post := createTestPost(t, env.db, 1, "The Life of Cactus")

	resp, body := client.get("/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "The Life of Cactus")
	assert.Contains(t, body, fmt.Sprintf(`href="/post/%d"`, post.ID))

	resp, body = client.get(fmt.Sprintf("/post/%d", post.ID))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "<p>Body of The Life of Cactus</p>")
	assert.Contains(t, body, "Posted by Ada")

	resp, _ = client.get("/post/999")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = client.get("/post/abc")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAdminRoutes_ForbiddenForOthers(t *testing.T) {
	env := setupTestServer(t, 1)
	admin := newClient(t, env.app)
	require.Equal(t, http.StatusSeeOther, admin.register("admin@example.com", "secret1", "Admin").StatusCode)
	post := createTestPost(t, env.db, 1, "Guarded")

	reader := newClient(t, env.app)
	require.Equal(t, http.StatusSeeOther, reader.register("reader@example.com", "secret1", "Reader").StatusCode)

	anonymous := newClient(t, env.app)

	paths := []string{"/new-post", fmt.Sprintf("/edit-post/%d", post.ID), fmt.Sprintf("/delete/%d", post.ID), "/admin/monitor"}
	for _, path := range paths {
		for name, client := range map[string]*testClient{"anonymous": anonymous, "reader": reader} {
			resp, _ := client.get(path)
			assert.Equal(t, http.StatusForbidden, resp.StatusCode, "%s GET %s", name, path)
		}
	}

	resp, body := reader.get("/new-post")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Contains(t, body, "You are not allowed to do that.")

	resp, _ = reader.postForm("/new-post", postFormValues("Sneaky"))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp, _ = anonymous.postForm(fmt.Sprintf("/edit-post/%d", post.ID), postFormValues("Sneaky"))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	var count int64
	env.db.Model(&models.Post{}).Count(&count)
	assert.Equal(t, int64(1), count)

	resp, body = admin.get("/new-post")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "New Post")
}

func TestDeletePost_RefusesCrossSiteRequests(t *testing.T) {
	env := setupTestServer(t, 1)
	admin := newClient(t, env.app)
	require.Equal(t, http.StatusSeeOther, admin.register("admin@example.com", "secret1", "Admin").StatusCode)
	post := createTestPost(t, env.db, 1, "Keep Me")

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/delete/%d", post.ID), nil)
	req.Header.Set("Sec-Fetch-Site", "cross-site")
	resp, _ := admin.do(req)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, fmt.Sprintf("/delete/%d", post.ID), nil)
	req.Header.Set(fiber.HeaderReferer, "https://evil.test/")
	resp, _ = admin.do(req)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	var count int64
	env.db.Model(&models.Post{}).Where("id = ?", post.ID).Count(&count)
	assert.Equal(t, int64(1), count)

	req = httptest.NewRequest(http.MethodGet, fmt.Sprintf("/delete/%d", post.ID), nil)
	req.Header.Set("Sec-Fetch-Site", "same-origin")
	resp, _ = admin.do(req)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
}

func TestCreateThenDeletePost_LeavesListLength(t *testing.T) {
	env := setupTestServer(t, 1)
	admin := newClient(t, env.app)
	require.Equal(t, http.StatusSeeOther, admin.register("admin@example.com", "secret1", "Admin").StatusCode)
	createTestPost(t, env.db, 1, "Existing")

	before, err := env.srv.postService.ListPosts(context.Background())
	require.NoError(t, err)

	resp, _ := admin.postForm("/new-post", postFormValues("Fresh Post"))
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	var created models.Post
	require.NoError(t, env.db.Where("title = ?", "Fresh Post").First(&created).Error)
	assert.Equal(t, uint(1), created.AuthorID)
	assert.NotEmpty(t, created.Date)

	resp, _ = admin.get(fmt.Sprintf("/delete/%d", created.ID))
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	after, err := env.srv.postService.ListPosts(context.Background())
	require.NoError(t, err)
	assert.Len(t, after, len(before))
}

func TestCreatePost_ValidationAndDuplicateTitle(t *testing.T) {
	env := setupTestServer(t, 1)
	admin := newClient(t, env.app)
	require.Equal(t, http.StatusSeeOther, admin.register("admin@example.com", "secret1", "Admin").StatusCode)
	createTestPost(t, env.db, 1, "Taken")

	values := postFormValues("")
	values.Set("img_url", "nope")
	resp, body := admin.postForm("/new-post", values)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body, "This field is required.")
	assert.Contains(t, body, "Invalid URL.")

	resp, body = admin.postForm("/new-post", postFormValues("Taken"))
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, body, "A post with that title already exists.")
}

func TestEditPost_KeepsAuthorAndDate(t *testing.T) {
	env := setupTestServer(t, 1)
	admin := newClient(t, env.app)
	require.Equal(t, http.StatusSeeOther, admin.register("admin@example.com", "secret1", "Admin").StatusCode)
	post := createTestPost(t, env.db, 1, "Draft")

	_, body := admin.get(fmt.Sprintf("/edit-post/%d", post.ID))
	assert.Contains(t, body, `value="Draft"`)
	assert.Contains(t, body, "Edit Post")

	resp, _ := admin.postForm(fmt.Sprintf("/edit-post/%d", post.ID), postFormValues("Final"))
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, fmt.Sprintf("/post/%d", post.ID), resp.Header.Get("Location"))

	var saved models.Post
	require.NoError(t, env.db.First(&saved, post.ID).Error)
	assert.Equal(t, "Final", saved.Title)
	assert.Equal(t, "August 24, 2026", saved.Date)
	assert.Equal(t, uint(1), saved.AuthorID)
}

func TestAddComment_AppendsExactlyOne(t *testing.T) {
	env := setupTestServer(t, 1)
	admin := newClient(t, env.app)
	require.Equal(t, http.StatusSeeOther, admin.register("admin@example.com", "secret1", "Admin").StatusCode)
	post := createTestPost(t, env.db, 1, "Discuss")
	other := createTestPost(t, env.db, 1, "Elsewhere")

	reader := newClient(t, env.app)
	require.Equal(t, http.StatusSeeOther, reader.register("reader@example.com", "secret1", "Reader").StatusCode)

	resp, _ := reader.postForm(fmt.Sprintf("/post/%d", post.ID), url.Values{"comment": {"Great post!"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, fmt.Sprintf("/post/%d", post.ID), resp.Header.Get("Location"))

	var comments []models.Comment
	require.NoError(t, env.db.Find(&comments).Error)
	require.Len(t, comments, 1)
	assert.Equal(t, "Great post!", comments[0].Text)
	assert.Equal(t, uint(2), comments[0].AuthorID)
	assert.Equal(t, post.ID, comments[0].PostID)
	assert.NotEqual(t, other.ID, comments[0].PostID)

	_, body := reader.get(fmt.Sprintf("/post/%d", post.ID))
	assert.Contains(t, body, "Great post!")
	assert.Contains(t, body, "Reader")
}

func TestAddComment_AnonymousIsSentToLogin(t *testing.T) {
	env := setupTestServer(t)
	author := &models.User{Email: "author@example.com", Password: "x", Name: "Author"}
	require.NoError(t, env.db.Create(author).Error)
	post := createTestPost(t, env.db, author.ID, "Open")

	client := newClient(t, env.app)
	resp, _ := client.postForm(fmt.Sprintf("/post/%d", post.ID), url.Values{"comment": {"hi"}})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	_, body := client.get("/login")
	assert.Contains(t, body, "You need to login or register to comment.")

	var count int64
	env.db.Model(&models.Comment{}).Count(&count)
	assert.Zero(t, count)
}

func TestAddComment_Validation(t *testing.T) {
	env := setupTestServer(t)
	client := newClient(t, env.app)
	require.Equal(t, http.StatusSeeOther, client.register("ada@example.com", "secret1", "Ada").StatusCode)
	post := createTestPost(t, env.db, 1, "Quiet")

	resp, body := client.postForm(fmt.Sprintf("/post/%d", post.ID), url.Values{"comment": {"  "}})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body, "This field is required.")
}
