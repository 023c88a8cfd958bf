package server

import (
	"blog/internal/forms"
	"blog/internal/service"

	"github.com/gofiber/fiber/v2"
)

func (s *Server) Contact(c *fiber.Ctx) error {
	form := &forms.ContactForm{}
	if user := currentUser(c); user != nil {
		form.Name = user.Name
		form.Email = user.Email
	}
	return s.render(c, fiber.StatusOK, "contact", fiber.Map{
		"Title": "Contact",
		"Form":  form,
	})
}

// SendContact relays the message to the blog owner. Relay failures are
// not retried and surface as an error page.
func (s *Server) SendContact(c *fiber.Ctx) error {
	form := new(forms.ContactForm)
	if err := c.BodyParser(form); err != nil {
		return fiber.ErrBadRequest
	}
	if errs := forms.Validate(form); errs != nil {
		return s.render(c, fiber.StatusUnprocessableEntity, "contact", fiber.Map{
			"Title":  "Contact",
			"Form":   form,
			"Errors": errs,
		})
	}

	if s.contactService == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "Contact form is not available")
	}
	err := s.contactService.Send(c.UserContext(), service.ContactInput{
		Name:    form.Name,
		Email:   form.Email,
		Phone:   form.Phone,
		Message: form.Message,
	})
	if err != nil {
		return err
	}

	return s.render(c, fiber.StatusOK, "contact", fiber.Map{
		"Title": "Contact",
		"Sent":  true,
		"Form":  &forms.ContactForm{},
	})
}
