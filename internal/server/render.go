package server

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"blog/internal/middleware"
	"blog/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

// render executes a page template with the data every page expects.
func (s *Server) render(c *fiber.Ctx, status int, name string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}

	flashes, err := s.popFlashes(c)
	if err != nil {
		return err
	}

	user := currentUser(c)
	data["Year"] = time.Now().Year()
	data["CurrentUser"] = user
	data["IsAdmin"] = s.isAdmin(user)
	data["Flashes"] = flashes
	data["ReadOnly"] = s.readOnly
	if token, ok := c.Locals("csrf").(string); ok {
		data["CSRFToken"] = token
	}

	return c.Status(status).Render(name, data)
}

// ErrorHandler answers JSON on /api and renders the error page elsewhere.
func (s *Server) ErrorHandler(c *fiber.Ctx, err error) error {
	status := models.StatusFor(err)
	ctx := c.UserContext()

	if status >= fiber.StatusInternalServerError {
		middleware.Logger.ErrorContext(ctx, "request error",
			slog.Int("status", status),
			slog.String("path", c.Path()),
			slog.String("error", err.Error()),
		)
	}

	if strings.HasPrefix(c.Path(), "/api/") {
		return models.RespondWithError(c, status, err)
	}

	message := err.Error()
	var appErr *models.AppError
	switch {
	case errors.As(err, &appErr):
		message = appErr.Message
	case status == fiber.StatusInternalServerError:
		message = "Something went wrong."
	}

	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	renderErr := c.Status(status).Render("error", fiber.Map{
		"Title":    utils.StatusMessage(status),
		"Status":   status,
		"Message":  message,
		"Year":     time.Now().Year(),
		"ReadOnly": s.readOnly,
	})
	if renderErr != nil {
		middleware.Logger.ErrorContext(ctx, "error page failed", slog.String("error", renderErr.Error()))
		return c.Status(status).SendString(message)
	}
	return nil
}
