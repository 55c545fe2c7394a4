package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"microblog/internal/auth"
	"microblog/internal/config"
	"microblog/internal/handlers"
	"microblog/internal/middleware"
	"microblog/internal/models"
	"microblog/internal/repositories"
	"microblog/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingMailer keeps the last mailed tokens per email address.
type recordingMailer struct {
	mu          sync.Mutex
	activations map[string]string
	resets      map[string]string
}

func newRecordingMailer() *recordingMailer {
	return &recordingMailer{activations: map[string]string{}, resets: map[string]string{}}
}

func (m *recordingMailer) SendActivationEmail(user *models.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.activations[user.Email] = user.ActivationToken
}

func (m *recordingMailer) SendPasswordResetEmail(user *models.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resets[user.Email] = user.ResetToken
}

func (m *recordingMailer) activationToken(email string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.activations[email]
}

func (m *recordingMailer) resetToken(email string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resets[email]
}

// setupApp sets up a Fiber app for testing with in-memory SQLite and all handlers/services.
func setupApp(t *testing.T) (*fiber.App, *recordingMailer) {
	t.Helper()

	db, err := repositories.OpenDatabase(config.DatabaseConfig{
		Driver: "sqlite",
		DSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	repos := repositories.NewGORMRepositories(db)

	mailer := newRecordingMailer()
	userService := services.NewUserService(repos.Users, auth.NewHasher(true), nil, services.UserServiceOptions{})
	authService := services.NewAuthService(userService, mailer, "test_jwt_secret", time.Hour, nil)
	relationshipService := services.NewRelationshipService(repos.Relationships, repos.Users, nil)
	micropostService := services.NewMicropostService(repos.Microposts, nil)

	app := fiber.New()
	app.Use(middleware.Recover(nil))
	apiV1 := app.Group("/api/v1", middleware.LoadUser(authService, nil))
	handlers.NewStaticPagesHandler(relationshipService, micropostService, 5, nil).RegisterRoutes(apiV1)
	handlers.NewAuthHandler(authService, nil).RegisterRoutes(apiV1)
	handlers.NewRelationshipHandler(relationshipService, nil).RegisterRoutes(apiV1)
	handlers.NewUserHandler(userService, relationshipService, micropostService, nil).RegisterRoutes(apiV1)
	handlers.NewMicropostHandler(micropostService, nil).RegisterRoutes(apiV1)

	return app, mailer
}

type request struct {
	method  string
	path    string
	body    any
	token   string
	cookies []*http.Cookie
}

func do(t *testing.T, app *fiber.App, r request) (*http.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	if r.body != nil {
		jsonBody, err := json.Marshal(r.body)
		require.NoError(t, err)
		reader = bytes.NewReader(jsonBody)
	}
	req := httptest.NewRequest(r.method, r.path, reader)
	req.Header.Set("Content-Type", "application/json")
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}
	for _, c := range r.cookies {
		req.AddCookie(c)
	}

	resp, err := app.Test(req, -1) // -1 for no timeout
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	payload := map[string]any{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &payload), string(raw))
	}
	return resp, payload
}

type session struct {
	id    string
	token string
}

// signupAndLogin registers, activates and logs in a user with password "foobar".
func signupAndLogin(t *testing.T, app *fiber.App, mailer *recordingMailer, name, email string) session {
	t.Helper()

	resp, body := do(t, app, request{method: http.MethodPost, path: "/api/v1/signup", body: map[string]string{
		"name": name, "email": email, "password": "foobar", "password_confirmation": "foobar",
	}})
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)

	resp, body = do(t, app, request{
		method: http.MethodGet,
		path:   fmt.Sprintf("/api/v1/account_activations/%s/edit?email=%s", mailer.activationToken(email), email),
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, body)

	resp, body = do(t, app, request{method: http.MethodPost, path: "/api/v1/login", body: map[string]string{
		"email": email, "password": "foobar",
	}})
	require.Equal(t, http.StatusOK, resp.StatusCode, body)

	user := body["user"].(map[string]any)
	return session{id: user["id"].(string), token: body["token"].(string)}
}

func cookieByName(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestSignupActivationAndLogin(t *testing.T) {
	app, mailer := setupApp(t)

	signup := map[string]string{"name": "Ann", "email": "ann@example.com", "password": "foobar"}
	resp, body := do(t, app, request{method: http.MethodPost, path: "/api/v1/signup", body: signup})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	user := body["user"].(map[string]any)
	assert.Equal(t, false, user["activated"])
	assert.NotContains(t, user, "password_digest")
	token := mailer.activationToken("ann@example.com")
	require.NotEmpty(t, token)

	// Duplicate registration
	resp, body = do(t, app, request{method: http.MethodPost, path: "/api/v1/signup", body: signup})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, []any{"has already been taken"}, body["errors"].(map[string]any)["email"])

	// Invalid input lists every field
	resp, body = do(t, app, request{method: http.MethodPost, path: "/api/v1/signup", body: map[string]string{"name": "", "email": "bad", "password": "x"}})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Len(t, body["errors"], 3)

	login := map[string]string{"email": "ann@example.com", "password": "foobar"}
	resp, _ = do(t, app, request{method: http.MethodPost, path: "/api/v1/login", body: login})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = do(t, app, request{method: http.MethodGet, path: "/api/v1/account_activations/wrong/edit?email=ann@example.com"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, app, request{method: http.MethodGet, path: "/api/v1/account_activations/" + token + "/edit?email=ann@example.com"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = do(t, app, request{method: http.MethodPost, path: "/api/v1/login", body: login})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, body["token"])
	if c := cookieByName(resp.Cookies(), middleware.RememberTokenCookie); c != nil {
		assert.Empty(t, c.Value)
	}

	resp, _ = do(t, app, request{method: http.MethodPost, path: "/api/v1/login", body: map[string]string{"email": "ann@example.com", "password": "wrong"}})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRememberMeCookies(t *testing.T) {
	app, mailer := setupApp(t)
	signupAndLogin(t, app, mailer, "Ann", "ann@example.com")

	resp, body := do(t, app, request{method: http.MethodPost, path: "/api/v1/login", body: map[string]any{
		"email": "ann@example.com", "password": "foobar", "remember_me": true,
	}})
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	userID := cookieByName(resp.Cookies(), middleware.UserIDCookie)
	remember := cookieByName(resp.Cookies(), middleware.RememberTokenCookie)
	require.NotNil(t, userID)
	require.NotNil(t, remember)
	assert.NotEmpty(t, remember.Value)
	cookies := []*http.Cookie{
		{Name: userID.Name, Value: userID.Value},
		{Name: remember.Name, Value: remember.Value},
	}

	resp, body = do(t, app, request{method: http.MethodGet, path: "/api/v1/", cookies: cookies})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "feed")

	resp, _ = do(t, app, request{method: http.MethodDelete, path: "/api/v1/logout", cookies: cookies})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// The old cookie pair no longer authenticates
	resp, body = do(t, app, request{method: http.MethodGet, path: "/api/v1/", cookies: cookies})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotContains(t, body, "feed")
	assert.Equal(t, "Welcome to the Sample App", body["message"])
}

func TestAuthRequired(t *testing.T) {
	app, _ := setupApp(t)

	resp, _ := do(t, app, request{method: http.MethodPost, path: "/api/v1/microposts", body: map[string]string{"content": "hi"}})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = do(t, app, request{method: http.MethodGet, path: "/api/v1/", token: "garbage"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body := do(t, app, request{method: http.MethodGet, path: "/api/v1/help"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Help", body["title"])
}

func TestFollowMicropostsAndFeed(t *testing.T) {
	app, mailer := setupApp(t)
	ann := signupAndLogin(t, app, mailer, "Ann", "ann@example.com")
	bob := signupAndLogin(t, app, mailer, "Bob", "bob@example.com")
	carol := signupAndLogin(t, app, mailer, "Carol", "carol@example.com")

	post := func(s session, content string) string {
		resp, body := do(t, app, request{method: http.MethodPost, path: "/api/v1/microposts", token: s.token, body: map[string]string{"content": content}})
		require.Equal(t, http.StatusCreated, resp.StatusCode, body)
		return body["id"].(string)
	}
	annPost := post(ann, "from ann")
	bobPost := post(bob, "from bob")
	post(carol, "from carol")

	resp, body := do(t, app, request{method: http.MethodPost, path: "/api/v1/relationships", token: ann.token, body: map[string]string{"followed_id": bob.id}})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, true, body["following"])
	assert.Equal(t, float64(1), body["followers"])

	resp, _ = do(t, app, request{method: http.MethodPost, path: "/api/v1/relationships", token: ann.token, body: map[string]string{"followed_id": ann.id}})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	feedIDs := func(s session) []string {
		resp, body := do(t, app, request{method: http.MethodGet, path: "/api/v1/?page=1", token: s.token})
		require.Equal(t, http.StatusOK, resp.StatusCode, body)
		ids := []string{}
		posts, _ := body["feed"].([]any)
		for _, p := range posts {
			ids = append(ids, p.(map[string]any)["id"].(string))
		}
		return ids
	}
	assert.ElementsMatch(t, []string{annPost, bobPost}, feedIDs(ann))
	assert.ElementsMatch(t, []string{bobPost}, feedIDs(bob))

	resp, body = do(t, app, request{method: http.MethodGet, path: "/api/v1/users/" + bob.id + "/followers"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["users"], 1)

	resp, body = do(t, app, request{method: http.MethodGet, path: "/api/v1/users/" + bob.id, token: ann.token})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["user"].(map[string]any)["followed_by_you"])

	// Only the owner may delete a post
	resp, _ = do(t, app, request{method: http.MethodDelete, path: "/api/v1/microposts/" + bobPost, token: ann.token})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = do(t, app, request{method: http.MethodDelete, path: "/api/v1/relationships/" + bob.id, token: ann.token})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{annPost}, feedIDs(ann))

	resp, _ = do(t, app, request{method: http.MethodDelete, path: "/api/v1/microposts/" + bobPost, token: bob.token})
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Empty(t, feedIDs(bob))
}

func TestFeedPagination(t *testing.T) {
	app, mailer := setupApp(t)
	ann := signupAndLogin(t, app, mailer, "Ann", "ann@example.com")

	for i := 0; i < 7; i++ {
		resp, _ := do(t, app, request{method: http.MethodPost, path: "/api/v1/microposts", token: ann.token, body: map[string]string{"content": fmt.Sprintf("post %d", i)}})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	_, body := do(t, app, request{method: http.MethodGet, path: "/api/v1/", token: ann.token})
	assert.Len(t, body["feed"], 5)
	assert.Equal(t, float64(5), body["per_page"])

	_, body = do(t, app, request{method: http.MethodGet, path: "/api/v1/?page=2", token: ann.token})
	assert.Len(t, body["feed"], 2)
}

func TestPageBeyondEnd(t *testing.T) {
	app, mailer := setupApp(t)
	ann := signupAndLogin(t, app, mailer, "Ann", "ann@example.com")
	resp, _ := do(t, app, request{method: http.MethodPost, path: "/api/v1/microposts", token: ann.token, body: map[string]string{"content": "hello"}})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := do(t, app, request{method: http.MethodGet, path: "/api/v1/users/" + ann.id + "?page=2305843009213693953"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, body["microposts"])

	resp, body = do(t, app, request{method: http.MethodGet, path: "/api/v1/?page=2305843009213693953", token: ann.token})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, body["feed"])
}

func TestPasswordReset(t *testing.T) {
	app, mailer := setupApp(t)
	signupAndLogin(t, app, mailer, "Ann", "ann@example.com")

	resp, _ := do(t, app, request{method: http.MethodPost, path: "/api/v1/password_resets", body: map[string]string{"email": "nobody@example.com"}})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = do(t, app, request{method: http.MethodPost, path: "/api/v1/password_resets", body: map[string]string{"email": "ANN@example.com"}})
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	token := mailer.resetToken("ann@example.com")
	require.NotEmpty(t, token)

	resp, _ = do(t, app, request{method: http.MethodGet, path: "/api/v1/password_resets/" + token + "/edit?email=ann@example.com"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := do(t, app, request{method: http.MethodPatch, path: "/api/v1/password_resets/" + token, body: map[string]string{
		"email": "ann@example.com", "password": "", "password_confirmation": "",
	}})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, []any{"can't be empty"}, body["errors"].(map[string]any)["password"])

	resp, _ = do(t, app, request{method: http.MethodPatch, path: "/api/v1/password_resets/" + token, body: map[string]string{
		"email": "ann@example.com", "password": "newpass", "password_confirmation": "newpass",
	}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = do(t, app, request{method: http.MethodPost, path: "/api/v1/login", body: map[string]string{"email": "ann@example.com", "password": "newpass"}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = do(t, app, request{method: http.MethodGet, path: "/api/v1/password_resets/" + token + "/edit?email=ann@example.com"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUpdateAndDeleteUser(t *testing.T) {
	app, mailer := setupApp(t)
	ann := signupAndLogin(t, app, mailer, "Ann", "ann@example.com")
	bob := signupAndLogin(t, app, mailer, "Bob", "bob@example.com")

	resp, _ := do(t, app, request{method: http.MethodPost, path: "/api/v1/relationships", token: bob.token, body: map[string]string{"followed_id": ann.id}})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp, _ = do(t, app, request{method: http.MethodPost, path: "/api/v1/microposts", token: ann.token, body: map[string]string{"content": "bye"}})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, _ = do(t, app, request{method: http.MethodPatch, path: "/api/v1/users/" + ann.id, token: bob.token, body: map[string]string{"name": "x", "email": "x@example.com"}})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body := do(t, app, request{method: http.MethodPatch, path: "/api/v1/users/" + ann.id, token: ann.token, body: map[string]string{"name": "Annie", "email": "annie@example.com"}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "annie@example.com", body["user"].(map[string]any)["email"])

	resp, _ = do(t, app, request{method: http.MethodDelete, path: "/api/v1/users/" + ann.id, token: bob.token})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = do(t, app, request{method: http.MethodDelete, path: "/api/v1/users/" + ann.id, token: ann.token})
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = do(t, app, request{method: http.MethodGet, path: "/api/v1/users/" + ann.id})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = do(t, app, request{method: http.MethodGet, path: "/api/v1/users/" + bob.id + "/following"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, body["users"])

	// Ann's session token no longer resolves to a user
	resp, _ = do(t, app, request{method: http.MethodGet, path: "/api/v1/", token: ann.token})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
