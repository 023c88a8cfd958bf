// Package forms declares the HTML forms accepted by the blog and validates them.
package forms

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
)

// PostForm creates or edits a post.
type PostForm struct {
	Title    string `form:"title" validate:"required,max=50"`
	Subtitle string `form:"subtitle" validate:"required,max=100"`
	ImgURL   string `form:"img_url" validate:"required,url"`
	Body     string `form:"body" validate:"required"`
}

// RegisterForm signs a new user up.
type RegisterForm struct {
	Email    string `form:"email" validate:"required,email,max=100"`
	Password string `form:"password" validate:"required,min=6,maxbytes=72"`
	Name     string `form:"name" validate:"required,max=100"`
}

type LoginForm struct {
	Email    string `form:"email" validate:"required,email,max=100"`
	Password string `form:"password" validate:"required,min=6"`
}

type CommentForm struct {
	Comment string `form:"comment" validate:"required,max=400"`
}

// ContactForm is the public contact page form. Phone is optional.
type ContactForm struct {
	Name    string `form:"name" validate:"required,max=100"`
	Email   string `form:"email" validate:"required,email"`
	Phone   string `form:"phone" validate:"max=30"`
	Message string `form:"message" validate:"required,max=5000"`
}

// Errors maps a form field name to its messages.
type Errors map[string][]string

// Field returns the messages recorded for field.
func (e Errors) Field(field string) []string {
	return e[field]
}

func (e Errors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func instance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
			if name == "" || name == "-" {
				return fld.Name
			}
			return name
		})
		// bcrypt only accepts the first 72 bytes of a password.
		_ = validate.RegisterValidation("maxbytes", func(fl validator.FieldLevel) bool {
			limit, err := strconv.Atoi(fl.Param())
			return err == nil && len(fl.Field().String()) <= limit
		})
	})
	return validate
}

// Validate trims every string field of form (a pointer to a form struct)
// and checks its rules. It returns nil when the form is valid.
func Validate(form any) Errors {
	trimStrings(form)

	err := instance().Struct(form)
	if err == nil {
		return nil
	}

	out := Errors{}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		out.Add("form", err.Error())
		return out
	}
	for _, fe := range verrs {
		out.Add(fe.Field(), message(fe))
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Invalid email address."
	case "url":
		return "Invalid URL."
	case "max":
		return fmt.Sprintf("Field cannot be longer than %s characters.", fe.Param())
	case "maxbytes":
		return fmt.Sprintf("Field cannot be longer than %s bytes.", fe.Param())
	case "min":
		return fmt.Sprintf("Field must be at least %s characters long.", fe.Param())
	default:
		return "Invalid value."
	}
}

func trimStrings(form any) {
	v := reflect.ValueOf(form)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Struct {
		return
	}
	v = v.Elem()
	for i := 0; i < v.NumField(); i++ {
		f := v.Field(i)
		// Passwords keep their spaces.
		if f.Kind() == reflect.String && f.CanSet() && v.Type().Field(i).Name != "Password" {
			f.SetString(strings.TrimSpace(f.String()))
		}
	}
}

var ugc = bluemonday.UGCPolicy()

// SanitizeHTML strips scripts, handlers and other unsafe markup from
// user supplied rich text.
func SanitizeHTML(s string) string {
	return ugc.Sanitize(s)
}
