package server

import (
	"fmt"

	"blog/internal/forms"
	"blog/internal/models"
	"blog/internal/service"

	"github.com/gofiber/fiber/v2"
)

const commentLoginMessage = "You need to login or register to comment."

func parsePostID(c *fiber.Ctx) (uint, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return 0, models.NewNotFoundError("Post", c.Params("id"))
	}
	return uint(id), nil
}

// Home lists every post.
func (s *Server) Home(c *fiber.Ctx) error {
	posts, err := s.source.ListPosts(c.UserContext())
	if err != nil {
		return err
	}
	return s.render(c, fiber.StatusOK, "index", fiber.Map{"Posts": posts})
}

// ShowPost renders a post with its comments and the comment form.
func (s *Server) ShowPost(c *fiber.Ctx) error {
	id, err := parsePostID(c)
	if err != nil {
		return err
	}
	post, err := s.source.GetPost(c.UserContext(), id)
	if err != nil {
		return err
	}
	return s.render(c, fiber.StatusOK, "post", fiber.Map{
		"Title": post.Title,
		"Post":  post,
		"Form":  &forms.CommentForm{},
	})
}

// AddComment posts a comment as the logged-in user.
func (s *Server) AddComment(c *fiber.Ctx) error {
	id, err := parsePostID(c)
	if err != nil {
		return err
	}

	user := currentUser(c)
	if user == nil {
		return s.flashRedirect(c, commentLoginMessage, "/login")
	}

	form := new(forms.CommentForm)
	if err := c.BodyParser(form); err != nil {
		return fiber.ErrBadRequest
	}
	if errs := forms.Validate(form); errs != nil {
		post, err := s.source.GetPost(c.UserContext(), id)
		if err != nil {
			return err
		}
		return s.render(c, fiber.StatusUnprocessableEntity, "post", fiber.Map{
			"Title":  post.Title,
			"Post":   post,
			"Form":   form,
			"Errors": errs,
		})
	}

	_, err = s.commentService.AddComment(c.UserContext(), service.AddCommentInput{
		PostID:   id,
		AuthorID: user.ID,
		Text:     form.Comment,
	})
	if err != nil {
		return err
	}
	return c.Redirect(fmt.Sprintf("/post/%d", id), fiber.StatusSeeOther)
}

// NewPost shows the empty post form.
func (s *Server) NewPost(c *fiber.Ctx) error {
	return s.renderPostForm(c, fiber.StatusOK, &forms.PostForm{}, nil, 0)
}

// CreatePost stores a post authored by the current admin.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	form := new(forms.PostForm)
	if err := c.BodyParser(form); err != nil {
		return fiber.ErrBadRequest
	}
	if errs := forms.Validate(form); errs != nil {
		return s.renderPostForm(c, fiber.StatusUnprocessableEntity, form, errs, 0)
	}

	_, err := s.postService.CreatePost(c.UserContext(), service.CreatePostInput{
		AuthorID: currentUser(c).ID,
		Title:    form.Title,
		Subtitle: form.Subtitle,
		Body:     form.Body,
		ImgURL:   form.ImgURL,
	})
	if handled, rerr := s.postFormError(c, err, form, 0); handled {
		return rerr
	}
	return c.Redirect("/", fiber.StatusSeeOther)
}

// EditPost shows the post form filled with the stored post.
func (s *Server) EditPost(c *fiber.Ctx) error {
	id, err := parsePostID(c)
	if err != nil {
		return err
	}
	post, err := s.postService.GetPost(c.UserContext(), id)
	if err != nil {
		return err
	}
	form := &forms.PostForm{
		Title:    post.Title,
		Subtitle: post.Subtitle,
		ImgURL:   post.ImgURL,
		Body:     post.Body,
	}
	return s.renderPostForm(c, fiber.StatusOK, form, nil, id)
}

// UpdatePost saves an edited post. Author and date are unchanged.
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	id, err := parsePostID(c)
	if err != nil {
		return err
	}
	form := new(forms.PostForm)
	if err := c.BodyParser(form); err != nil {
		return fiber.ErrBadRequest
	}
	if errs := forms.Validate(form); errs != nil {
		return s.renderPostForm(c, fiber.StatusUnprocessableEntity, form, errs, id)
	}

	_, err = s.postService.UpdatePost(c.UserContext(), service.UpdatePostInput{
		PostID:   id,
		Title:    form.Title,
		Subtitle: form.Subtitle,
		Body:     form.Body,
		ImgURL:   form.ImgURL,
	})
	if handled, rerr := s.postFormError(c, err, form, id); handled {
		return rerr
	}
	return c.Redirect(fmt.Sprintf("/post/%d", id), fiber.StatusSeeOther)
}

// DeletePost removes a post and its comments.
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := parsePostID(c)
	if err != nil {
		return err
	}
	if err := s.postService.DeletePost(c.UserContext(), id); err != nil {
		return err
	}
	return c.Redirect("/", fiber.StatusSeeOther)
}

func (s *Server) About(c *fiber.Ctx) error {
	return s.render(c, fiber.StatusOK, "about", fiber.Map{"Title": "About"})
}

// renderPostForm renders make-post; id 0 means a new post.
func (s *Server) renderPostForm(c *fiber.Ctx, status int, form *forms.PostForm, errs forms.Errors, id uint) error {
	data := fiber.Map{
		"Title":  "New Post",
		"Form":   form,
		"Errors": errs,
		"Action": "/new-post",
	}
	if id != 0 {
		data["Title"] = "Edit Post"
		data["Editing"] = true
		data["Action"] = fmt.Sprintf("/edit-post/%d", id)
	}
	return s.render(c, status, "make-post", data)
}

// postFormError re-renders the form for a duplicate title or a body that
// sanitised to nothing. Other errors are returned as they are.
func (s *Server) postFormError(c *fiber.Ctx, err error, form *forms.PostForm, id uint) (bool, error) {
	switch {
	case err == nil:
		return false, nil
	case models.HasCode(err, models.CodeConflict):
		errs := forms.Errors{}
		errs.Add("title", "A post with that title already exists.")
		return true, s.renderPostForm(c, fiber.StatusConflict, form, errs, id)
	case models.HasCode(err, models.CodeValidation):
		errs := forms.Errors{}
		errs.Add("body", "This field is required.")
		return true, s.renderPostForm(c, fiber.StatusUnprocessableEntity, form, errs, id)
	default:
		return true, err
	}
}
