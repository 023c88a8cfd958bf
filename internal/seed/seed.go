// Package seed fills the database with demo users, posts and comments.
// It is intended for development and tests only.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"blog/internal/cache"
	"blog/internal/middleware"
	"blog/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DemoPassword is the password given to every seeded user.
const DemoPassword = "password123"

// Options configures a seeding run.
type Options struct {
	NumUsers    int
	NumPosts    int
	MaxComments int
	ShouldClean bool
	// Cost is the bcrypt cost for seeded passwords; zero means bcrypt.DefaultCost.
	Cost int
	// Seed makes the generated content reproducible when non-zero.
	Seed int64
	// Cache, when set, has its cached posts dropped after the run.
	Cache *cache.Cache
}

// Result counts what a run created.
type Result struct {
	Users    []*models.User
	Posts    []*models.Post
	Comments int
}

// Seeder creates demo data through gorm.
type Seeder struct {
	db    *gorm.DB
	faker *gofakeit.Faker
}

// NewSeeder returns a Seeder bound to db. seed of zero picks a random seed.
func NewSeeder(db *gorm.DB, seed int64) *Seeder {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Seeder{db: db, faker: gofakeit.New(seed)}
}

// Seed runs a full seeding pass.
func Seed(ctx context.Context, db *gorm.DB, opts Options) (*Result, error) {
	s := NewSeeder(db, opts.Seed)
	middleware.Logger.Info("seeding database",
		slog.Int("users", opts.NumUsers),
		slog.Int("posts", opts.NumPosts),
		slog.Bool("clean", opts.ShouldClean))

	if opts.ShouldClean {
		if err := s.ClearAll(ctx); err != nil {
			return nil, fmt.Errorf("failed to clear data: %w", err)
		}
	}

	users, err := s.CreateUsers(ctx, opts.NumUsers, opts.Cost)
	if err != nil {
		return nil, fmt.Errorf("failed to create users: %w", err)
	}
	posts, err := s.CreatePosts(ctx, users, opts.NumPosts)
	if err != nil {
		return nil, fmt.Errorf("failed to create posts: %w", err)
	}
	comments, err := s.CreateComments(ctx, users, posts, opts.MaxComments)
	if err != nil {
		return nil, fmt.Errorf("failed to create comments: %w", err)
	}

	if err := opts.Cache.InvalidateAllPosts(ctx); err != nil {
		middleware.Logger.Warn("failed to invalidate post cache", slog.String("error", err.Error()))
	}

	middleware.Logger.Info("seeding complete",
		slog.Int("users", len(users)),
		slog.Int("posts", len(posts)),
		slog.Int("comments", comments))
	return &Result{Users: users, Posts: posts, Comments: comments}, nil
}

// ClearAll deletes comments, posts and users, in that order.
func (s *Seeder) ClearAll(ctx context.Context) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []any{&models.Comment{}, &models.Post{}, &models.User{}} {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// CreateUsers creates count users sharing DemoPassword.
func (s *Seeder) CreateUsers(ctx context.Context, count, cost int) ([]*models.User, error) {
	if count <= 0 {
		return nil, nil
	}
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), cost)
	if err != nil {
		return nil, err
	}

	users := make([]*models.User, 0, count)
	for i := 0; i < count; i++ {
		users = append(users, &models.User{
			// The index keeps emails unique even when the faker repeats itself.
			Email:    fmt.Sprintf("%d.%s", i+1, s.faker.Email()),
			Password: string(hash),
			Name:     s.faker.Name(),
		})
	}
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// CreatePosts creates count posts with authors drawn from users.
func (s *Seeder) CreatePosts(ctx context.Context, users []*models.User, count int) ([]*models.Post, error) {
	if count <= 0 || len(users) == 0 {
		return nil, nil
	}

	posts := make([]*models.Post, 0, count)
	for i := 0; i < count; i++ {
		author := users[s.faker.Number(0, len(users)-1)]
		published := s.faker.DateRange(time.Now().AddDate(0, 0, -90), time.Now())
		posts = append(posts, &models.Post{
			Title:    fmt.Sprintf("%s %d", truncate(s.faker.Sentence(4), 40), i+1),
			Subtitle: truncate(s.faker.Sentence(8), 100),
			Date:     published.Format(models.PostDateLayout),
			Body:     s.paragraphs(3),
			ImgURL:   fmt.Sprintf("https://picsum.photos/seed/%s/1200/600", s.faker.UUID()),
			AuthorID: author.ID,
		})
	}
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// CreateComments adds between zero and maxPerPost comments to each post.
func (s *Seeder) CreateComments(ctx context.Context, users []*models.User, posts []*models.Post, maxPerPost int) (int, error) {
	if maxPerPost <= 0 || len(users) == 0 || len(posts) == 0 {
		return 0, nil
	}

	var comments []*models.Comment
	for _, post := range posts {
		n := s.faker.Number(0, maxPerPost)
		for i := 0; i < n; i++ {
			comments = append(comments, &models.Comment{
				Text:     "<p>" + truncate(s.faker.Sentence(12), 390) + "</p>",
				AuthorID: users[s.faker.Number(0, len(users)-1)].ID,
				PostID:   post.ID,
			})
		}
	}
	if len(comments) == 0 {
		return 0, nil
	}
	if err := s.db.WithContext(ctx).Omit(clause.Associations).CreateInBatches(&comments, 100).Error; err != nil {
		return 0, err
	}
	return len(comments), nil
}

func (s *Seeder) paragraphs(n int) string {
	var body string
	for i := 0; i < n; i++ {
		body += "<p>" + s.faker.Paragraph(1, 4, 12, " ") + "</p>"
	}
	return body
}

func truncate(v string, max int) string {
	r := []rune(v)
	if len(r) <= max {
		return v
	}
	return string(r[:max])
}
