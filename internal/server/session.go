package server

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

const (
	sessionUserKey  = "user_id"
	sessionFlashKey = "flashes"
)

func (s *Server) session(c *fiber.Ctx) (*session.Session, error) {
	return s.sessions.Get(c)
}

// logIn starts a fresh session for userID.
func (s *Server) logIn(c *fiber.Ctx, userID uint) error {
	sess, err := s.session(c)
	if err != nil {
		return err
	}
	if err := sess.Regenerate(); err != nil {
		return err
	}
	sess.Set(sessionUserKey, userID)
	return sess.Save()
}

func (s *Server) logOut(c *fiber.Ctx) error {
	sess, err := s.session(c)
	if err != nil {
		return err
	}
	return sess.Destroy()
}

// sessionUserID returns the logged-in user's ID, or 0.
func (s *Server) sessionUserID(c *fiber.Ctx) (uint, error) {
	sess, err := s.session(c)
	if err != nil {
		return 0, err
	}
	id, _ := sess.Get(sessionUserKey).(uint)
	return id, nil
}

// flash queues a message for the next rendered page.
func (s *Server) flash(c *fiber.Ctx, msg string) error {
	sess, err := s.session(c)
	if err != nil {
		return err
	}
	msgs, _ := sess.Get(sessionFlashKey).([]string)
	sess.Set(sessionFlashKey, append(msgs, msg))
	return sess.Save()
}

// popFlashes returns and clears the queued messages.
func (s *Server) popFlashes(c *fiber.Ctx) ([]string, error) {
	sess, err := s.session(c)
	if err != nil {
		return nil, err
	}
	msgs, _ := sess.Get(sessionFlashKey).([]string)
	if len(msgs) == 0 {
		return nil, nil
	}
	sess.Delete(sessionFlashKey)
	return msgs, sess.Save()
}

// flashRedirect queues msg and redirects to location.
func (s *Server) flashRedirect(c *fiber.Ctx, msg, location string) error {
	if err := s.flash(c, msg); err != nil {
		return err
	}
	return c.Redirect(location, fiber.StatusSeeOther)
}
