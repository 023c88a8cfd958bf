package server

import (
	"log/slog"

	"blog/internal/middleware"
	"blog/internal/models"

	"github.com/gofiber/fiber/v2"
)

const localsUser = "user"

// CurrentUser loads the session's user into the request locals. A session
// pointing at a deleted user is logged out.
func (s *Server) CurrentUser(c *fiber.Ctx) error {
	if s.authService == nil {
		return c.Next()
	}

	userID, err := s.sessionUserID(c)
	if err != nil {
		return err
	}
	if userID == 0 {
		return c.Next()
	}

	user, err := s.authService.GetUser(c.UserContext(), userID)
	switch {
	case models.HasCode(err, models.CodeNotFound):
		middleware.Logger.WarnContext(c.UserContext(), "session user no longer exists", slog.Uint64("user_id", uint64(userID)))
		if err := s.logOut(c); err != nil {
			return err
		}
		return c.Next()
	case err != nil:
		return err
	}

	c.Locals(localsUser, user)
	middleware.WithUserID(c, user.ID)
	return c.Next()
}

// currentUser returns the logged-in user, or nil.
func currentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(localsUser).(*models.User)
	return user
}

func (s *Server) isAdmin(user *models.User) bool {
	return user != nil && s.admins.Contains(user.ID)
}

// AdminOnly answers 403 unless the current user is on the allow-list.
func (s *Server) AdminOnly(c *fiber.Ctx) error {
	if !s.isAdmin(currentUser(c)) {
		return models.NewForbiddenError("You are not allowed to do that.")
	}
	return c.Next()
}
