package service

import (
	"context"
	"errors"
	"strings"

	"blog/internal/models"
	"blog/internal/observability"
	"blog/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrEmailTaken is returned by Register when the email already has an account.
	ErrEmailTaken = &models.AppError{Code: models.CodeConflict, Message: "You've already signed up with that email, log in instead!"}
	// ErrInvalidCredentials hides whether the email or the password was wrong.
	ErrInvalidCredentials = &models.AppError{Code: models.CodeUnauthorized, Message: "Wrong password or email"}
	// ErrPasswordTooLong is returned for passwords bcrypt cannot hash.
	ErrPasswordTooLong = &models.AppError{Code: models.CodeValidation, Message: "Field cannot be longer than 72 bytes."}
)

type AuthService struct {
	users repository.UserRepository
	cost  int
}

type RegisterInput struct {
	Email    string
	Password string
	Name     string
}

// NewAuthService returns an AuthService hashing with bcrypt.DefaultCost.
func NewAuthService(users repository.UserRepository) *AuthService {
	return &AuthService{users: users, cost: bcrypt.DefaultCost}
}

// WithCost sets the bcrypt cost; tests use bcrypt.MinCost.
func (s *AuthService) WithCost(cost int) *AuthService {
	s.cost = cost
	return s
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an account with a salted password hash.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	email := normalizeEmail(in.Email)

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		observability.AuthEvents.WithLabelValues("register", "duplicate").Inc()
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, ErrPasswordTooLong
	}
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hash),
		Name:     strings.TrimSpace(in.Name),
	}
	if err := s.users.Create(ctx, user); err != nil {
		// Lost a race with a concurrent sign-up.
		if models.HasCode(err, models.CodeConflict) {
			observability.AuthEvents.WithLabelValues("register", "duplicate").Inc()
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	observability.AuthEvents.WithLabelValues("register", "success").Inc()
	return user, nil
}

// Authenticate returns the user whose email and password match.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		observability.AuthEvents.WithLabelValues("login", "failure").Inc()
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		observability.AuthEvents.WithLabelValues("login", "failure").Inc()
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrInvalidCredentials
		}
		return nil, models.NewInternalError(err)
	}

	observability.AuthEvents.WithLabelValues("login", "success").Inc()
	return user, nil
}

// GetUser loads a user by ID.
func (s *AuthService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	return s.users.GetByID(ctx, id)
}
