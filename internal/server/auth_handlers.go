package server

import (
	"errors"

	"blog/internal/forms"
	"blog/internal/service"

	"github.com/gofiber/fiber/v2"
)

func (s *Server) RegisterPage(c *fiber.Ctx) error {
	return s.render(c, fiber.StatusOK, "register", fiber.Map{
		"Title": "Register",
		"Form":  &forms.RegisterForm{},
	})
}

// Register signs the visitor up and logs them in. An email that already
// has an account is sent to the login page.
func (s *Server) Register(c *fiber.Ctx) error {
	form := new(forms.RegisterForm)
	if err := c.BodyParser(form); err != nil {
		return fiber.ErrBadRequest
	}
	if errs := forms.Validate(form); errs != nil {
		form.Password = ""
		return s.render(c, fiber.StatusUnprocessableEntity, "register", fiber.Map{
			"Title":  "Register",
			"Form":   form,
			"Errors": errs,
		})
	}

	user, err := s.authService.Register(c.UserContext(), service.RegisterInput{
		Email:    form.Email,
		Password: form.Password,
		Name:     form.Name,
	})
	if errors.Is(err, service.ErrEmailTaken) {
		return s.flashRedirect(c, service.ErrEmailTaken.Message, "/login")
	}
	if errors.Is(err, service.ErrPasswordTooLong) {
		form.Password = ""
		errs := forms.Errors{}
		errs.Add("password", service.ErrPasswordTooLong.Message)
		return s.render(c, fiber.StatusUnprocessableEntity, "register", fiber.Map{
			"Title":  "Register",
			"Form":   form,
			"Errors": errs,
		})
	}
	if err != nil {
		return err
	}

	if err := s.logIn(c, user.ID); err != nil {
		return err
	}
	return c.Redirect("/", fiber.StatusSeeOther)
}

func (s *Server) LoginPage(c *fiber.Ctx) error {
	return s.render(c, fiber.StatusOK, "login", fiber.Map{
		"Title": "Log In",
		"Form":  &forms.LoginForm{},
	})
}

// Login checks the credentials. Failures do not say which field was wrong.
func (s *Server) Login(c *fiber.Ctx) error {
	form := new(forms.LoginForm)
	if err := c.BodyParser(form); err != nil {
		return fiber.ErrBadRequest
	}
	if errs := forms.Validate(form); errs != nil {
		form.Password = ""
		return s.render(c, fiber.StatusUnprocessableEntity, "login", fiber.Map{
			"Title":  "Log In",
			"Form":   form,
			"Errors": errs,
		})
	}

	user, err := s.authService.Authenticate(c.UserContext(), form.Email, form.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		return s.flashRedirect(c, service.ErrInvalidCredentials.Message, "/login")
	}
	if err != nil {
		return err
	}

	if err := s.logIn(c, user.ID); err != nil {
		return err
	}
	return c.Redirect("/", fiber.StatusSeeOther)
}

func (s *Server) Logout(c *fiber.Ctx) error {
	if err := s.logOut(c); err != nil {
		return err
	}
	return c.Redirect("/", fiber.StatusSeeOther)
}
