// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yamdb/internal/platform/apperr"
	"github.com/taibuivan/yamdb/internal/platform/mailer"
	"github.com/taibuivan/yamdb/internal/platform/sec"
)

// # Fakes

type memoryUsers struct {
	mu    sync.Mutex
	users map[string]*User
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{users: map[string]*User{}}
}

func (store *memoryUsers) FindByID(_ context.Context, id string) (*User, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if user, ok := store.users[id]; ok {
		clone := *user
		return &clone, nil
	}
	return nil, apperr.NotFound("User")
}

func (store *memoryUsers) FindByUsername(_ context.Context, username string) (*User, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	for _, user := range store.users {
		if user.Username == username {
			clone := *user
			return &clone, nil
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
		if user.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (store *memoryUsers) Create(_ context.Context, user *User) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	clone := *user
	store.users[user.ID] = &clone
	return nil
}

func (store *memoryUsers) Update(_ context.Context, user *User) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	if _, ok := store.users[user.ID]; !ok {
		return apperr.NotFound("User")
	}
	clone := *user
	store.users[user.ID] = &clone
	return nil
}

func (store *memoryUsers) Delete(_ context.Context, id string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	delete(store.users, id)
	return nil
}

func (store *memoryUsers) List(_ context.Context, _ UserFilter) ([]*User, int, error) {
	return nil, 0, nil
}

type memoryConfirmations struct {
	items []*Confirmation
}

func (store *memoryConfirmations) Create(_ context.Context, confirmation *Confirmation) error {
	clone := *confirmation
	store.items = append(store.items, &clone)
	return nil
}

func (store *memoryConfirmations) Latest(_ context.Context, userID string) (*Confirmation, error) {
	for i := len(store.items) - 1; i >= 0; i-- {
		if store.items[i].UserID == userID {
			return store.items[i], nil
		}
	}
	return nil, apperr.NotFound("Confirmation")
}

func (store *memoryConfirmations) DigestExists(_ context.Context, digest string) (bool, error) {
	for _, item := range store.items {
		if item.CodeDigest == digest {
			return true, nil
		}
	}
	return false, nil
}

func (store *memoryConfirmations) MarkUsed(_ context.Context, id string, usedAt time.Time) error {
	for _, item := range store.items {
		if item.ID == id && item.UsedAt == nil {
			item.UsedAt = &usedAt
		}
	}
	return nil
}

type memoryLimiter struct {
	counts map[string]int
}

func (limiter *memoryLimiter) Failures(_ context.Context, username string) (int, time.Duration, error) {
	return limiter.counts[username], time.Minute, nil
}

func (limiter *memoryLimiter) RecordFailure(_ context.Context, username string, _ time.Duration) (int, error) {
	limiter.counts[username]++
	return limiter.counts[username], nil
}

func (limiter *memoryLimiter) Reset(_ context.Context, username string) error {
	delete(limiter.counts, username)
	return nil
}

type mockMailer struct {
	mock.Mock
}

func (m *mockMailer) SendConfirmation(ctx context.Context, email mailer.ConfirmationEmail) error {
	return m.Called(ctx, email).Error(0)
}

type mockIssuer struct {
	mock.Mock
}

func (m *mockIssuer) Issue(identity sec.Identity, ttl time.Duration) (string, error) {
	args := m.Called(identity, ttl)
	return args.String(0), args.Error(1)
}

// # Fixture

type fixture struct {
	service       *Service
	users         *memoryUsers
	confirmations *memoryConfirmations
	limiter       *memoryLimiter
	mailer        *mockMailer
	issuer        *mockIssuer
}

func newFixture(codes ...string) *fixture {
	f := &fixture{
		users:         newMemoryUsers(),
		confirmations: &memoryConfirmations{},
		limiter:       &memoryLimiter{counts: map[string]int{}},
		mailer:        &mockMailer{},
		issuer:        &mockIssuer{},
	}

	f.service = NewService(f.users, f.confirmations, f.limiter, f.issuer, f.mailer, Options{
		CodeSecret:    "test-secret",
		MailFrom:      "noreply@yamdb.local",
		TokenTTL:      time.Hour,
		MaxAttempts:   3,
		AttemptWindow: time.Minute,
	}, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))

	if len(codes) > 0 {
		next := 0
		f.service.generateCode = func() (string, error) {
			code := codes[next%len(codes)]
			next++
			return code, nil
		}
	}

	return f
}

func fieldOf(t *testing.T, err error) string {
	t.Helper()
	ae := apperr.As(err)
	require.NotNil(t, ae, "expected an AppError, got %v", err)
	require.Equal(t, apperr.CodeValidation, ae.Code)
	require.NotEmpty(t, ae.Details)
	return ae.Details[0].Field
}

// # Signup

func TestRequestSignup_Success(t *testing.T) {
	f := newFixture("48213")
	f.mailer.On("SendConfirmation", mock.Anything, mock.MatchedBy(func(email mailer.ConfirmationEmail) bool {
		return email.To == "a@x.com" && email.Username == "alice"
	})).Return(nil).Once()

	user, err := f.service.RequestSignup(context.Background(), SignupInput{Username: "alice", Email: "a@x.com"})
	require.NoError(t, err)

	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, sec.RoleUser, user.Role)
	assert.False(t, user.IsStaff)

	require.Len(t, f.confirmations.items, 1)
	assert.Equal(t, sec.CodeDigest("test-secret", "48213"), f.confirmations.items[0].CodeDigest)
	assert.NotEqual(t, "48213", f.confirmations.items[0].CodeDigest)
	f.mailer.AssertExpectations(t)
}

func TestRequestSignup_Rejections(t *testing.T) {
	f := newFixture("11111")
	f.mailer.On("SendConfirmation", mock.Anything, mock.Anything).Return(nil)

	_, err := f.service.RequestSignup(context.Background(), SignupInput{Username: "alice", Email: "a@x.com"})
	require.NoError(t, err)

	tests := []struct {
		name  string
		input SignupInput
		field string
	}{
		{"taken_username", SignupInput{Username: "alice", Email: "other@x.com"}, FieldUsername},
		{"reserved_me", SignupInput{Username: "me", Email: "me@x.com"}, FieldUsername},
		{"taken_email", SignupInput{Username: "bob", Email: "a@x.com"}, FieldEmail},
		{"bad_username", SignupInput{Username: "bad name!", Email: "b@x.com"}, FieldUsername},
		{"bad_email", SignupInput{Username: "bob", Email: "not-an-email"}, FieldEmail},
		{"missing_email", SignupInput{Username: "bob"}, FieldEmail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.RequestSignup(context.Background(), tt.input)
			assert.Equal(t, tt.field, fieldOf(t, err))
		})
	}
}

func TestRequestSignup_RegeneratesOnCollision(t *testing.T) {
	f := newFixture("11111", "11111", "22222")
	f.mailer.On("SendConfirmation", mock.Anything, mock.Anything).Return(nil)

	_, err := f.service.RequestSignup(context.Background(), SignupInput{Username: "alice", Email: "a@x.com"})
	require.NoError(t, err)

	_, err = f.service.RequestSignup(context.Background(), SignupInput{Username: "bob", Email: "b@x.com"})
	require.NoError(t, err)

	require.Len(t, f.confirmations.items, 2)
	assert.Equal(t, sec.CodeDigest("test-secret", "22222"), f.confirmations.items[1].CodeDigest)
}

func TestRequestSignup_CodeSpaceExhausted(t *testing.T) {
	f := newFixture("11111")
	f.mailer.On("SendConfirmation", mock.Anything, mock.Anything).Return(nil)

	_, err := f.service.RequestSignup(context.Background(), SignupInput{Username: "alice", Email: "a@x.com"})
	require.NoError(t, err)

	_, err = f.service.RequestSignup(context.Background(), SignupInput{Username: "bob", Email: "b@x.com"})
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, apperr.CodeInternal, ae.Code)
}

func TestRequestSignup_MailerFailure(t *testing.T) {
	f := newFixture("48213")
	f.mailer.On("SendConfirmation", mock.Anything, mock.Anything).Return(errors.New("queue down"))

	_, err := f.service.RequestSignup(context.Background(), SignupInput{Username: "alice", Email: "a@x.com"})
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, apperr.CodeInternal, ae.Code)

	exists, err := f.users.ExistsByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRequestSignup_RetryAfterMailerFailure(t *testing.T) {
	f := newFixture("48213", "90317")
	f.mailer.On("SendConfirmation", mock.Anything, mock.Anything).Return(errors.New("queue down")).Once()
	f.mailer.On("SendConfirmation", mock.Anything, mock.Anything).Return(nil)

	_, err := f.service.RequestSignup(context.Background(), SignupInput{Username: "alice", Email: "a@x.com"})
	require.Error(t, err)

	user, err := f.service.RequestSignup(context.Background(), SignupInput{Username: "alice", Email: "a@x.com"})
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	f.mailer.AssertNumberOfCalls(t, "SendConfirmation", 2)
}

// # Exchange

func signedUp(t *testing.T, code string) *fixture {
	t.Helper()
	f := newFixture(code)
	f.mailer.On("SendConfirmation", mock.Anything, mock.Anything).Return(nil)
	_, err := f.service.RequestSignup(context.Background(), SignupInput{Username: "alice", Email: "a@x.com"})
	require.NoError(t, err)
	return f
}

func TestExchangeCode_Success(t *testing.T) {
	f := signedUp(t, "48213")
	f.issuer.On("Issue", mock.MatchedBy(func(identity sec.Identity) bool {
		return identity.Username == "alice" && identity.UserID != ""
	}), time.Hour).Return("signed-token", nil)

	token, err := f.service.ExchangeCode(context.Background(), ExchangeInput{Username: "alice", Code: "48213"})
	require.NoError(t, err)
	assert.Equal(t, "signed-token", token)
	assert.NotNil(t, f.confirmations.items[0].UsedAt)

	// The code is consumed, not invalidated.
	token, err = f.service.ExchangeCode(context.Background(), ExchangeInput{Username: "alice", Code: "48213"})
	require.NoError(t, err)
	assert.Equal(t, "signed-token", token)
}

func TestExchangeCode_Mismatch(t *testing.T) {
	f := signedUp(t, "48213")

	_, err := f.service.ExchangeCode(context.Background(), ExchangeInput{Username: "alice", Code: "00000"})
	assert.Equal(t, FieldConfirmationCode, fieldOf(t, err))
	assert.Equal(t, 1, f.limiter.counts["alice"])
}

func TestExchangeCode_UnknownUser(t *testing.T) {
	f := newFixture()

	_, err := f.service.ExchangeCode(context.Background(), ExchangeInput{Username: "ghost", Code: "12345"})
	assert.True(t, apperr.IsNotFound(err))
}

func TestExchangeCode_Validation(t *testing.T) {
	f := newFixture()

	_, err := f.service.ExchangeCode(context.Background(), ExchangeInput{Username: "alice"})
	assert.Equal(t, FieldConfirmationCode, fieldOf(t, err))

	_, err = f.service.ExchangeCode(context.Background(), ExchangeInput{Username: "alice", Code: "12345678901"})
	assert.Equal(t, FieldConfirmationCode, fieldOf(t, err))
}

func TestExchangeCode_RateLimited(t *testing.T) {
	f := signedUp(t, "48213")

	for range 3 {
		_, err := f.service.ExchangeCode(context.Background(), ExchangeInput{Username: "alice", Code: "00000"})
		require.Error(t, err)
	}

	_, err := f.service.ExchangeCode(context.Background(), ExchangeInput{Username: "alice", Code: "48213"})
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, apperr.CodeRateLimited, ae.Code)
	assert.Equal(t, 60, ae.RetryAfter)
}

func TestExchangeCode_SuccessResetsFailures(t *testing.T) {
	f := signedUp(t, "48213")
	f.issuer.On("Issue", mock.Anything, mock.Anything).Return("signed-token", nil)

	_, err := f.service.ExchangeCode(context.Background(), ExchangeInput{Username: "alice", Code: "00000"})
	require.Error(t, err)

	_, err = f.service.ExchangeCode(context.Background(), ExchangeInput{Username: "alice", Code: "48213"})
	require.NoError(t, err)
	assert.Zero(t, f.limiter.counts["alice"])
}

// # Bootstrap

func TestEnsureSuperuser(t *testing.T) {
	f := newFixture()

	user, err := f.service.EnsureSuperuser(context.Background(), "root", "root@x.com")
	require.NoError(t, err)
	assert.Equal(t, sec.RoleAdmin, user.Role)
	assert.True(t, user.IsStaff)

	again, err := f.service.EnsureSuperuser(context.Background(), "root", "root@x.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID)
	assert.Len(t, f.users.users, 1)
}

func TestEnsureSuperuser_PromotesExisting(t *testing.T) {
	f := signedUp(t, "48213")

	user, err := f.service.EnsureSuperuser(context.Background(), "alice", "ignored@x.com")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", user.Email)

	identity, err := f.service.LoadIdentity(context.Background(), user.ID)
	require.NoError(t, err)
	assert.True(t, identity.IsAdmin())
}
