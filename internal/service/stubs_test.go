package service

import (
	"context"

	"blog/internal/mailer"
	"blog/internal/models"
)

// userRepoStub is an in-memory repository.UserRepository.
type userRepoStub struct {
	byEmail   map[string]*models.User
	nextID    uint
	createErr error
	lookupErr error
}

func newUserRepoStub() *userRepoStub {
	return &userRepoStub{byEmail: map[string]*models.User{}, nextID: 1}
}

func (s *userRepoStub) GetByID(_ context.Context, id uint) (*models.User, error) {
	for _, u := range s.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, models.NewNotFoundError("User", id)
}

func (s *userRepoStub) GetByEmail(_ context.Context, email string) (*models.User, error) {
	if s.lookupErr != nil {
		return nil, s.lookupErr
	}
	return s.byEmail[email], nil
}

func (s *userRepoStub) Create(_ context.Context, user *models.User) error {
	if s.createErr != nil {
		return s.createErr
	}
	user.ID = s.nextID
	s.nextID++
	s.byEmail[user.Email] = user
	return nil
}

func (s *userRepoStub) List(_ context.Context) ([]models.User, error) {
	var out []models.User
	for _, u := range s.byEmail {
		out = append(out, *u)
	}
	return out, nil
}

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	listFn    func(context.Context) ([]*models.Post, error)
	getByIDFn func(context.Context, uint) (*models.Post, error)
	createFn  func(context.Context, *models.Post) error
	updateFn  func(context.Context, *models.Post) error
	deleteFn  func(context.Context, uint) error
	countFn   func(context.Context) (int64, error)
}

func (s *postRepoStub) List(ctx context.Context) ([]*models.Post, error) { return s.listFn(ctx) }
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) Update(ctx context.Context, post *models.Post) error {
	return s.updateFn(ctx, post)
}
func (s *postRepoStub) Delete(ctx context.Context, id uint) error { return s.deleteFn(ctx, id) }
func (s *postRepoStub) Count(ctx context.Context) (int64, error)  { return s.countFn(ctx) }

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		listFn:    func(_ context.Context) ([]*models.Post, error) { return nil, nil },
		getByIDFn: func(_ context.Context, id uint) (*models.Post, error) { return &models.Post{ID: id}, nil },
		createFn:  func(_ context.Context, _ *models.Post) error { return nil },
		updateFn:  func(_ context.Context, _ *models.Post) error { return nil },
		deleteFn:  func(_ context.Context, _ uint) error { return nil },
		countFn:   func(_ context.Context) (int64, error) { return 0, nil },
	}
}

// commentRepoStub records created comments.
type commentRepoStub struct {
	created []*models.Comment
}

func (s *commentRepoStub) Create(_ context.Context, c *models.Comment) error {
	c.ID = uint(len(s.created) + 1)
	s.created = append(s.created, c)
	return nil
}

func (s *commentRepoStub) ListByPost(_ context.Context, postID uint) ([]*models.Comment, error) {
	var out []*models.Comment
	for _, c := range s.created {
		if c.PostID == postID {
			out = append(out, c)
		}
	}
	return out, nil
}

// mailerStub captures sent messages.
type mailerStub struct {
	sent []mailer.Message
	err  error
}

func (m *mailerStub) Send(_ context.Context, msg mailer.Message) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}
