package server

import (
	"errors"
	"strings"
	"time"

	"blog/internal/forms"
	"blog/internal/models"
	"blog/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Public JSON shapes. Author emails are not exposed.
type authorJSON struct {
	ID   uint   `json:"id,omitempty"`
	Name string `json:"name"`
}

type commentJSON struct {
	ID        uint       `json:"id"`
	Text      string     `json:"text"`
	PostID    uint       `json:"post_id"`
	Author    authorJSON `json:"author"`
	CreatedAt time.Time  `json:"created_at"`
}

type postJSON struct {
	ID       uint          `json:"id"`
	Title    string        `json:"title"`
	Subtitle string        `json:"subtitle"`
	Date     string        `json:"date"`
	Body     string        `json:"body"`
	ImgURL   string        `json:"img_url"`
	Author   authorJSON    `json:"author"`
	Comments []commentJSON `json:"comments,omitempty"`
}

func toCommentJSON(c *models.Comment) commentJSON {
	return commentJSON{
		ID:        c.ID,
		Text:      c.Text,
		PostID:    c.PostID,
		Author:    authorJSON{ID: c.Author.ID, Name: c.Author.Name},
		CreatedAt: c.CreatedAt,
	}
}

func toPostJSON(p *models.Post) postJSON {
	out := postJSON{
		ID:       p.ID,
		Title:    p.Title,
		Subtitle: p.Subtitle,
		Date:     p.Date,
		Body:     p.Body,
		ImgURL:   p.ImgURL,
		Author:   authorJSON{ID: p.Author.ID, Name: p.Author.Name},
	}
	for i := range p.Comments {
		out.Comments = append(out.Comments, toCommentJSON(&p.Comments[i]))
	}
	return out
}

type tokenRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type commentRequest struct {
	Text string `json:"text"`
}

// APIListPosts returns every post as JSON.
func (s *Server) APIListPosts(c *fiber.Ctx) error {
	posts, err := s.source.ListPosts(c.UserContext())
	if err != nil {
		return err
	}
	out := make([]postJSON, len(posts))
	for i, p := range posts {
		out[i] = toPostJSON(p)
	}
	return c.JSON(out)
}

// APIGetPost returns one post, with comments in database mode.
func (s *Server) APIGetPost(c *fiber.Ctx) error {
	id, err := parsePostID(c)
	if err != nil {
		return err
	}
	post, err := s.source.GetPost(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(toPostJSON(post))
}

// APIIssueToken exchanges credentials for a bearer token.
func (s *Server) APIIssueToken(c *fiber.Ctx) error {
	var req tokenRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.authService.Authenticate(c.UserContext(), req.Email, req.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		return models.RespondWithError(c, fiber.StatusUnauthorized, err)
	}
	if err != nil {
		return err
	}

	token, err := s.tokenService.Issue(user.ID)
	if err != nil {
		return models.NewInternalError(err)
	}
	return c.JSON(fiber.Map{
		"token":      token,
		"token_type": "Bearer",
		"expires_in": int(tokenTTL.Seconds()),
		"user":       authorJSON{ID: user.ID, Name: user.Name},
	})
}

// APIListComments returns a post's comments, oldest first.
func (s *Server) APIListComments(c *fiber.Ctx) error {
	id, err := parsePostID(c)
	if err != nil {
		return err
	}
	comments, err := s.commentService.ListComments(c.UserContext(), id)
	if err != nil {
		return err
	}
	out := make([]commentJSON, len(comments))
	for i, cm := range comments {
		out[i] = toCommentJSON(cm)
	}
	return c.JSON(out)
}

// APIAddComment adds a comment as the bearer-token user.
func (s *Server) APIAddComment(c *fiber.Ctx) error {
	id, err := parsePostID(c)
	if err != nil {
		return err
	}
	userID, _ := c.Locals("userID").(uint)

	var req commentRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	form := forms.CommentForm{Comment: req.Text}
	if errs := forms.Validate(&form); errs != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("text: "+strings.Join(errs.Field("comment"), " ")))
	}

	comment, err := s.commentService.AddComment(c.UserContext(), service.AddCommentInput{
		PostID:   id,
		AuthorID: userID,
		Text:     form.Comment,
	})
	if err != nil {
		return err
	}
	if author, err := s.authService.GetUser(c.UserContext(), userID); err == nil {
		comment.Author = *author
	}
	return c.Status(fiber.StatusCreated).JSON(toCommentJSON(comment))
}
