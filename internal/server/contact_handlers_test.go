package server

import (
	"errors"
	"net/http"
	"net/url"
	"testing"

	"blog/internal/admins"
	"blog/internal/config"
	"blog/internal/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contactValues() url.Values {
	return url.Values{
		"name":    {"Ada"},
		"email":   {"ada@example.com"},
		"phone":   {"555-0100"},
		"message": {"Loved the cactus post."},
	}
}

func TestSendContact(t *testing.T) {
	env := setupTestServer(t)
	client := newClient(t, env.app)

	resp, body := client.postForm("/contact", contactValues())
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Successfully sent your message")

	require.Len(t, env.mail.sent, 1)
	msg := env.mail.sent[0]
	assert.Equal(t, []string{"owner@example.com"}, msg.To)
	assert.Equal(t, "ada@example.com", msg.ReplyTo)
	assert.Contains(t, msg.Body, "Phone: 555-0100")
}

func TestSendContact_Validation(t *testing.T) {
	env := setupTestServer(t)
	client := newClient(t, env.app)

	values := contactValues()
	values.Set("email", "nope")
	resp, body := client.postForm("/contact", values)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body, "Invalid email address.")
	assert.Empty(t, env.mail.sent)
}

func TestSendContact_RelayFailure(t *testing.T) {
	env := setupTestServer(t)
	env.mail.err = errors.New("dial tcp: connection refused")
	client := newClient(t, env.app)

	resp, body := client.postForm("/contact", contactValues())
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Contains(t, body, "Could not send your message")
}

func TestContactPage_PrefillsLoggedInUser(t *testing.T) {
	env := setupTestServer(t)
	client := newClient(t, env.app)
	require.Equal(t, http.StatusSeeOther, client.register("ada@example.com", "secret1", "Ada").StatusCode)

	_, body := client.get("/contact")
	assert.Contains(t, body, `value="ada@example.com"`)
}

func TestSendContact_DisabledWithoutRecipient(t *testing.T) {
	db, err := database.Connect(&config.Config{DBDriver: config.DriverSQLite, DBPath: ":memory:"})
	require.NoError(t, err)

	cfg := testConfig()
	cfg.ContactRecipient = ""
	mail := &mailerStub{}
	srv := NewServerWithDeps(cfg, db, nil, admins.New(), mail)
	client := newClient(t, srv.App())

	resp, body := client.postForm("/contact", contactValues())
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Contains(t, body, "Contact form is not available")
	assert.Empty(t, mail.sent)
}

func TestSendContact_DisabledWithoutMailer(t *testing.T) {
	db, err := database.Connect(&config.Config{DBDriver: config.DriverSQLite, DBPath: ":memory:"})
	require.NoError(t, err)

	srv := NewServerWithDeps(testConfig(), db, nil, admins.New(), nil)
	client := newClient(t, srv.App())

	resp, _ := client.postForm("/contact", contactValues())
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
