package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"testing"

	"blog/internal/admins"
	"blog/internal/config"
	"blog/internal/database"
	"blog/internal/mailer"
	"blog/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func testConfig() *config.Config {
	return &config.Config{
		Port:             "0",
		Env:              "test",
		DataSource:       config.DataSourceDatabase,
		SessionSecret:    "test-session-secret",
		JWTSecret:        "test-jwt-secret-with-at-least-32-bytes",
		ContactRecipient: "owner@example.com",
	}
}

// mailerStub records messages, or fails with err.
type mailerStub struct {
	mu   sync.Mutex
	sent []mailer.Message
	err  error
}

func (m *mailerStub) Send(_ context.Context, msg mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

type testEnv struct {
	srv  *Server
	app  *fiber.App
	db   *gorm.DB
	mail *mailerStub
}

// setupTestServer builds a database-backed server on SQLite in memory.
// adminIDs go on the allow-list.
func setupTestServer(t *testing.T, adminIDs ...uint) *testEnv {
	t.Helper()
	db, err := database.Connect(&config.Config{DBDriver: config.DriverSQLite, DBPath: ":memory:"})
	require.NoError(t, err)

	mail := &mailerStub{}
	srv := NewServerWithDeps(testConfig(), db, nil, admins.New(adminIDs...), mail)
	srv.authService.WithCost(bcrypt.MinCost)

	return &testEnv{srv: srv, app: srv.App(), db: db, mail: mail}
}

// testClient keeps cookies between requests like a browser.
type testClient struct {
	t       *testing.T
	app     *fiber.App
	cookies map[string]*http.Cookie
}

func newClient(t *testing.T, app *fiber.App) *testClient {
	return &testClient{t: t, app: app, cookies: map[string]*http.Cookie{}}
}

func (tc *testClient) do(req *http.Request) (*http.Response, string) {
	tc.t.Helper()
	for _, c := range tc.cookies {
		req.AddCookie(c)
	}
	resp, err := tc.app.Test(req, -1)
	require.NoError(tc.t, err)
	defer func() { _ = resp.Body.Close() }()

	for _, c := range resp.Cookies() {
		if c.MaxAge < 0 || c.Value == "" {
			delete(tc.cookies, c.Name)
			continue
		}
		tc.cookies[c.Name] = &http.Cookie{Name: c.Name, Value: c.Value}
	}

	body, err := io.ReadAll(resp.Body)
	require.NoError(tc.t, err)
	return resp, string(body)
}

func (tc *testClient) get(path string) (*http.Response, string) {
	return tc.do(httptest.NewRequest(http.MethodGet, path, nil))
}

var csrfInput = regexp.MustCompile(`name="csrf_token" value="([^"]+)"`)

// csrfToken loads a page with a form and returns its token.
func (tc *testClient) csrfToken() string {
	tc.t.Helper()
	_, body := tc.get("/contact")
	m := csrfInput.FindStringSubmatch(body)
	require.Len(tc.t, m, 2, "no csrf token on page")
	return m[1]
}

func (tc *testClient) postForm(path string, form url.Values) (*http.Response, string) {
	tc.t.Helper()
	if form == nil {
		form = url.Values{}
	}
	form.Set(csrfFormField, tc.csrfToken())
	return tc.do(newFormRequest(path, form))
}

func newFormRequest(path string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)
	return req
}

func (tc *testClient) register(email, password, name string) *http.Response {
	tc.t.Helper()
	resp, _ := tc.postForm("/register", url.Values{
		"email":    {email},
		"password": {password},
		"name":     {name},
	})
	return resp
}

func (tc *testClient) login(email, password string) *http.Response {
	tc.t.Helper()
	resp, _ := tc.postForm("/login", url.Values{
		"email":    {email},
		"password": {password},
	})
	return resp
}

func createTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	user := &models.User{Email: "author@example.com", Password: "x", Name: "Author"}
	require.NoError(t, db.Omit("Posts", "Comments").Create(user).Error)
	return user
}

func createTestPost(t *testing.T, db *gorm.DB, authorID uint, title string) *models.Post {
	t.Helper()
	post := &models.Post{
		Title:    title,
		Subtitle: "A subtitle",
		Date:     "August 24, 2026",
		Body:     "<p>Body of " + title + "</p>",
		ImgURL:   "https://example.com/img.jpg",
		AuthorID: authorID,
	}
	require.NoError(t, db.Omit("Author", "Comments").Create(post).Error)
	return post
}
