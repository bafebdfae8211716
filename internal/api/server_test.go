// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yamdb/internal/core/reference"
	"github.com/taibuivan/yamdb/internal/core/review"
	"github.com/taibuivan/yamdb/internal/core/title"
	"github.com/taibuivan/yamdb/internal/platform/apperr"
	"github.com/taibuivan/yamdb/internal/platform/constants"
	"github.com/taibuivan/yamdb/internal/platform/mailer"
	"github.com/taibuivan/yamdb/internal/platform/sec"
	"github.com/taibuivan/yamdb/internal/users/account"
	"github.com/taibuivan/yamdb/internal/users/auth"
)

// # In-memory Adapters

type memoryUsers struct {
	auth.UserRepository

	mu    sync.Mutex
	users map[string]*auth.User
}

func (store *memoryUsers) FindByID(_ context.Context, id string) (*auth.User, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if user, ok := store.users[id]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, apperr.NotFound("User")
}

func (store *memoryUsers) FindByUsername(_ context.Context, username string) (*auth.User, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	for _, user := range store.users {
		if user.Username == username {
			copied := *user
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (store *memoryUsers) ExistsByUsername(context context.Context, username string) (bool, error) {
	_, err := store.FindByUsername(context, username)
	return err == nil, nil
}

func (store *memoryUsers) ExistsByEmail(_ context.Context, email string) (bool, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	for _, user := range store.users {
		if strings.EqualFold(user.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (store *memoryUsers) Create(_ context.Context, user *auth.User) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	copied := *user
	store.users[user.ID] = &copied
	return nil
}

func (store *memoryUsers) Update(_ context.Context, user *auth.User) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	copied := *user
	store.users[user.ID] = &copied
	return nil
}

type memoryConfirmations struct {
	mu    sync.Mutex
	items []*auth.Confirmation
}

func (store *memoryConfirmations) Create(_ context.Context, confirmation *auth.Confirmation) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.items = append(store.items, confirmation)
	return nil
}

func (store *memoryConfirmations) Latest(_ context.Context, userID string) (*auth.Confirmation, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	for i := len(store.items) - 1; i >= 0; i-- {
		if store.items[i].UserID == userID {
			return store.items[i], nil
		}
	}
	return nil, apperr.NotFound("Confirmation")
}

func (store *memoryConfirmations) DigestExists(_ context.Context, digest string) (bool, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	for _, item := range store.items {
		if item.CodeDigest == digest {
			return true, nil
		}
	}
	return false, nil
}

func (store *memoryConfirmations) MarkUsed(_ context.Context, id string, usedAt time.Time) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	for _, item := range store.items {
		if item.ID == id && item.UsedAt == nil {
			item.UsedAt = &usedAt
		}
	}
	return nil
}

type noLimit struct{}

func (noLimit) Failures(context.Context, string) (int, time.Duration, error) { return 0, 0, nil }
func (noLimit) RecordFailure(context.Context, string, time.Duration) (int, error) {
	return 1, nil
}
func (noLimit) Reset(context.Context, string) error { return nil }

type inbox struct {
	mu   sync.Mutex
	sent []mailer.ConfirmationEmail
}

func (box *inbox) SendConfirmation(_ context.Context, email mailer.ConfirmationEmail) error {
	box.mu.Lock()
	defer box.mu.Unlock()
	box.sent = append(box.sent, email)
	return nil
}

// lastCode reads the code off the end of the most recent email body.
func (box *inbox) lastCode() string {
	box.mu.Lock()
	defer box.mu.Unlock()
	fields := strings.Fields(box.sent[len(box.sent)-1].Body)
	return fields[len(fields)-1]
}

type memoryTitles struct {
	title.Repository

	mu     sync.Mutex
	titles map[string]*title.Title
}

func (store *memoryTitles) FindByID(_ context.Context, id string) (*title.Title, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if found, ok := store.titles[id]; ok {
		copied := *found
		return &copied, nil
	}
	return nil, apperr.NotFound("Title")
}

func (store *memoryTitles) Create(_ context.Context, created *title.Title, _ []string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	copied := *created
	store.titles[created.ID] = &copied
	return nil
}

type memoryReviews struct {
	review.ReviewRepository
	titles *memoryTitles
}

func (store memoryReviews) TitleExists(context context.Context, titleID string) (bool, error) {
	_, err := store.titles.FindByID(context, titleID)
	return err == nil, nil
}

func (memoryReviews) List(context.Context, string, int, int) ([]*review.Review, int, error) {
	return nil, 0, nil
}

type staticCORS struct{}

func (staticCORS) IsDevelopment() bool { return true }
func (staticCORS) Origins() []string   { return nil }

// # Harness

type harness struct {
	router http.Handler
	inbox  *inbox
	tokens *sec.TokenService
	auth   *auth.Service
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	log := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	tokens := sec.NewTokenServiceFromKeys(key, &key.PublicKey, constants.AuthIssuer)

	users := &memoryUsers{users: map[string]*auth.User{}}
	box := &inbox{}

	authService := auth.NewService(users, &memoryConfirmations{}, noLimit{}, tokens, box, auth.Options{
		CodeSecret:    "test-secret",
		MailFrom:      "noreply@yamdb.local",
		TokenTTL:      time.Hour,
		MaxAttempts:   5,
		AttemptWindow: time.Minute,
	}, log)

	categories := reference.NewService(nil, reference.KindCategory, log)
	genres := reference.NewService(nil, reference.KindGenre, log)
	titles := &memoryTitles{titles: map[string]*title.Title{}}
	titleService := title.NewService(titles, categories, genres, log)
	reviewService := review.NewService(memoryReviews{titles: titles}, nil, log)

	liveness, readiness := NewHealthHandlers(log,
		HealthCheck{Name: "postgres", Check: func(context.Context) error { return nil }},
	)

	router := NewRouter(context.Background(), Options{
		CORS:     staticCORS{},
		Verifier: tokens,
		Loader:   authService,
	}, log, Handlers{
		Liveness:   liveness,
		Readiness:  readiness,
		Auth:       auth.NewHandler(authService),
		Account:    account.NewHandler(account.NewService(users, log)),
		Categories: reference.NewHandler(categories),
		Genres:     reference.NewHandler(genres),
		Titles:     title.NewHandler(titleService),
		Reviews:    review.NewHandler(reviewService),
	})

	return &harness{router: router, inbox: box, tokens: tokens, auth: authService}
}

func (h *harness) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	request := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		request.Header.Set(constants.HeaderAuthorization, "Bearer "+token)
	}
	recorder := httptest.NewRecorder()
	h.router.ServeHTTP(recorder, request)
	return recorder
}

// # Scenarios

func TestScenario_SignupExchangeAndCatalogWrite(t *testing.T) {
	h := newHarness(t)

	signup := h.do(t, http.MethodPost, "/api/v1/auth/signup/", "", `{"username":"alice","email":"a@x.com"}`)
	require.Equal(t, http.StatusOK, signup.Code, signup.Body.String())
	assert.JSONEq(t, `{"username":"alice","email":"a@x.com"}`, signup.Body.String())

	wrong := h.do(t, http.MethodPost, "/api/v1/auth/token/", "", `{"username":"alice","confirmation_code":"wrong"}`)
	assert.Equal(t, http.StatusBadRequest, wrong.Code, wrong.Body.String())

	exchange := h.do(t, http.MethodPost, "/api/v1/auth/token/", "",
		`{"username":"alice","confirmation_code":"`+h.inbox.lastCode()+`"}`)
	require.Equal(t, http.StatusOK, exchange.Code, exchange.Body.String())

	var tokenBody map[string]string
	require.NoError(t, json.Unmarshal(exchange.Body.Bytes(), &tokenBody))
	aliceToken := tokenBody[auth.FieldToken]
	require.NotEmpty(t, aliceToken)

	me := h.do(t, http.MethodGet, "/api/v1/users/me/", aliceToken, "")
	require.Equal(t, http.StatusOK, me.Code, me.Body.String())
	assert.Contains(t, me.Body.String(), `"role":"user"`)

	payload := `{"name":"Solaris","year":1972}`

	denied := h.do(t, http.MethodPost, "/api/v1/titles/", aliceToken, payload)
	assert.Equal(t, http.StatusForbidden, denied.Code, denied.Body.String())

	root, err := h.auth.EnsureSuperuser(context.Background(), "root", "root@x.com")
	require.NoError(t, err)
	adminToken, err := h.tokens.Issue(*root.Identity(), time.Hour)
	require.NoError(t, err)

	created := h.do(t, http.MethodPost, "/api/v1/titles/", adminToken, payload)
	require.Equal(t, http.StatusCreated, created.Code, created.Body.String())

	var createdBody map[string]any
	require.NoError(t, json.Unmarshal(created.Body.Bytes(), &createdBody))
	assert.Contains(t, createdBody, "rating")
	assert.Nil(t, createdBody["rating"])

	reviews := h.do(t, http.MethodGet, "/api/v1/titles/"+createdBody["id"].(string)+"/reviews/", "", "")
	assert.Equal(t, http.StatusOK, reviews.Code, reviews.Body.String())
}

func TestScenario_Authentication(t *testing.T) {
	h := newHarness(t)

	t.Run("malformed_header", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodGet, "/api/v1/users/me/", nil)
		request.Header.Set(constants.HeaderAuthorization, "Token abc")
		recorder := httptest.NewRecorder()
		h.router.ServeHTTP(recorder, request)
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("bad_token", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, h.do(t, http.MethodGet, "/api/v1/users/me/", "not-a-jwt", "").Code)
	})

	t.Run("anonymous_me", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, h.do(t, http.MethodGet, "/api/v1/users/me/", "", "").Code)
	})

	t.Run("deleted_account", func(t *testing.T) {
		ghost := sec.Identity{UserID: "u-gone", Username: "ghost", Role: sec.RoleAdmin}
		token, err := h.tokens.Issue(ghost, time.Hour)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, h.do(t, http.MethodGet, "/api/v1/users/me/", token, "").Code)
	})
}

func TestHealth(t *testing.T) {
	h := newHarness(t)

	live := h.do(t, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, live.Code)
	assert.Contains(t, live.Body.String(), constants.AppName)

	ready := h.do(t, http.MethodGet, "/ready", "", "")
	assert.Equal(t, http.StatusOK, ready.Code)
	assert.Contains(t, ready.Body.String(), `"ready"`)
}

func TestReadiness_Degraded(t *testing.T) {
	log := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	_, readiness := NewHealthHandlers(log,
		HealthCheck{Name: "postgres", Check: func(context.Context) error { return nil }},
		HealthCheck{Name: "redis", Check: func(context.Context) error { return errors.New("connection refused") }},
	)

	recorder := httptest.NewRecorder()
	readiness(recorder, httptest.NewRequest(http.MethodGet, "/ready", nil))

	assert.Equal(t, http.StatusServiceUnavailable, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "connection refused")
	assert.Contains(t, recorder.Body.String(), `"degraded"`)
}
