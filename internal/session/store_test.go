package session_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/dayboard/internal/api"
	"github.com/nhle/dayboard/internal/credential"
	"github.com/nhle/dayboard/internal/model"
	"github.com/nhle/dayboard/internal/session"
	"github.com/nhle/dayboard/tests/testutil"
)

func newAuth(t *testing.T, b *testutil.Backend) api.AuthService {
	t.Helper()
	return api.NewServices(api.NewClient(api.Options{BaseURL: b.URL()})).Auth
}

func recv(t *testing.T, ch <-chan bool) bool {
	t.Helper()
	select {
	case v, ok := <-ch:
		require.True(t, ok, "channel closed")
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for session update")
		return false
	}
}

func TestDecode(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token := testutil.MintToken(t, exp, model.RoleUser, model.RoleAdmin)

	s, err := session.Decode(token)
	require.NoError(t, err)
	assert.True(t, s.ExpiresAt.Equal(exp))
	assert.Equal(t, []string{model.RoleUser, model.RoleAdmin}, s.Roles)
	assert.Equal(t, "user@example.com", s.Subject)
	assert.False(t, s.Expired(time.Now()))
	assert.True(t, s.Expired(exp))

	_, err = session.Decode("not-a-jwt")
	assert.Error(t, err)
}

func TestDecodeWithoutExpNeverExpires(t *testing.T) {
	token := testutil.MintToken(t, time.Time{}, model.RoleUser)

	s, ok := session.Valid(token, time.Now().AddDate(100, 0, 0))
	require.True(t, ok)
	assert.True(t, s.ExpiresAt.IsZero())
}

func TestInitialState(t *testing.T) {
	valid := testutil.MintToken(t, time.Now().Add(time.Hour))
	expired := testutil.MintToken(t, time.Now().Add(-time.Hour))

	tests := []struct {
		name  string
		token string
		want  bool
	}{
		{"no token", "", false},
		{"valid token", valid, true},
		{"expired token", expired, false},
		{"malformed token", "garbage", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := session.New(credential.NewMemoryStore(tt.token), nil)
			assert.Equal(t, tt.want, s.LoggedIn())
		})
	}
}

func TestLoginSuccess(t *testing.T) {
	b := testutil.NewBackend(t)
	token := testutil.MintToken(t, time.Now().Add(time.Hour), model.RoleUser)
	b.Seed(func(d *testutil.Data) {
		d.Credentials = model.Credentials{Email: "ada@x.io", Password: "secret"}
		d.Token = token
	})

	tokens := credential.NewMemoryStore("")
	s := session.New(tokens, newAuth(t, b))
	ch, cancel := s.Subscribe()
	defer cancel()
	assert.False(t, recv(t, ch))

	sess, err := s.Login(context.Background(), "ada@x.io", "secret")
	require.NoError(t, err)
	assert.Equal(t, token, sess.Token)
	assert.Equal(t, []string{model.RoleUser}, sess.Roles)

	assert.True(t, recv(t, ch))
	assert.True(t, s.LoggedIn())
	stored, ok := s.Token()
	require.True(t, ok)
	assert.Equal(t, token, stored)
}

func TestLoginInvalidCredentials(t *testing.T) {
	b := testutil.NewBackend(t)
	b.Seed(func(d *testutil.Data) {
		d.Credentials = model.Credentials{Email: "ada@x.io", Password: "secret"}
		d.Token = "t"
	})

	tokens := credential.NewMemoryStore("")
	s := session.New(tokens, newAuth(t, b))

	_, err := s.Login(context.Background(), "ada@x.io", "wrong")
	require.Error(t, err)
	assert.True(t, errors.Is(err, session.ErrInvalidCredentials))
	assert.True(t, api.IsUnauthorized(err))
	assert.False(t, s.LoggedIn())
	_, ok := credential.Lookup(tokens)
	assert.False(t, ok)
}

func TestLoginServerErrorPassesThrough(t *testing.T) {
	b := testutil.NewBackend(t)
	b.Fail(http.MethodPost, "/auth/login", http.StatusInternalServerError)

	s := session.New(credential.NewMemoryStore(""), newAuth(t, b))
	_, err := s.Login(context.Background(), "a", "b")
	require.Error(t, err)
	assert.False(t, errors.Is(err, session.ErrInvalidCredentials))
	assert.Equal(t, http.StatusInternalServerError, api.StatusCode(err))
}

func TestRegister(t *testing.T) {
	b := testutil.NewBackend(t)
	token := testutil.MintToken(t, time.Now().Add(time.Hour), model.RoleUser)
	b.Seed(func(d *testutil.Data) { d.Token = token })

	s := session.New(credential.NewMemoryStore(""), newAuth(t, b))
	_, err := s.Register(context.Background(), model.RegisterRequest{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@x.io",
		Password:  "secret",
	})
	require.NoError(t, err)
	assert.True(t, s.LoggedIn())
	assert.Equal(t, model.Credentials{Email: "ada@x.io", Password: "secret"}, b.State().Credentials)
}

func TestLogout(t *testing.T) {
	token := testutil.MintToken(t, time.Now().Add(time.Hour))
	tokens := credential.NewMemoryStore(token)
	s := session.New(tokens, nil)
	ch, cancel := s.Subscribe()
	defer cancel()
	assert.True(t, recv(t, ch))

	assert.Equal(t, "user@example.com", s.Account())

	s.Logout()
	assert.False(t, recv(t, ch))
	assert.Empty(t, s.Account())
	assert.False(t, s.LoggedIn())
	_, err := tokens.Get()
	assert.ErrorIs(t, err, credential.ErrNotFound)
}

func TestRoles(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name  string
		token string
		want  []string
	}{
		{"missing", "", nil},
		{"malformed", "x.y.z", nil},
		{"expired", testutil.MintToken(t, now.Add(-time.Minute), model.RoleAdmin), nil},
		{"admin", testutil.MintToken(t, now.Add(time.Hour), model.RoleAdmin), []string{model.RoleAdmin}},
		{"no roles claim", testutil.MintToken(t, now.Add(time.Hour)), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := session.New(credential.NewMemoryStore(tt.token), nil)
			assert.Equal(t, tt.want, s.Roles())
		})
	}
}

func TestCheckExpiryLogsOutExpiredToken(t *testing.T) {
	exp := time.Now().Add(time.Hour)
	now := time.Now()
	clock := func() time.Time { return now }

	tokens := credential.NewMemoryStore(testutil.MintToken(t, exp))
	s := session.New(tokens, nil, session.WithClock(clock))
	require.True(t, s.LoggedIn())

	assert.False(t, s.CheckExpiry())
	assert.True(t, s.LoggedIn())

	now = exp.Add(time.Second)
	assert.True(t, s.CheckExpiry())
	assert.False(t, s.LoggedIn())
	_, ok := credential.Lookup(tokens)
	assert.False(t, ok)

	// Nothing stored: nothing to do.
	assert.False(t, s.CheckExpiry())
}

func TestStartChecksImmediately(t *testing.T) {
	tokens := credential.NewMemoryStore("garbage")
	s := session.New(tokens, nil, session.WithExpiryCheck(time.Hour))
	ch, cancel := s.Subscribe()
	defer cancel()

	s.Start(context.Background())
	defer s.Close()

	assert.Eventually(t, func() bool {
		_, ok := credential.Lookup(tokens)
		return !ok
	}, 2*time.Second, 10*time.Millisecond)
	assert.False(t, recv(t, ch))
}

func TestStartPeriodicCheck(t *testing.T) {
	tokens := credential.NewMemoryStore(testutil.MintToken(t, time.Now().Add(time.Hour)))
	s := session.New(tokens, nil, session.WithExpiryCheck(20*time.Millisecond))
	ch, cancel := s.Subscribe()
	defer cancel()
	require.True(t, recv(t, ch))

	s.Start(context.Background())
	defer s.Close()

	// Replace the token with an expired one after the first check.
	require.NoError(t, tokens.Set(testutil.MintToken(t, time.Now().Add(-time.Minute))))
	assert.False(t, recv(t, ch))
}

func TestCloseClosesSubscribers(t *testing.T) {
	s := session.New(credential.NewMemoryStore(""), nil)
	ch, _ := s.Subscribe()
	<-ch

	s.Start(context.Background())
	s.Close()
	s.Close()

	_, ok := <-ch
	assert.False(t, ok)

	late, _ := s.Subscribe()
	_, ok = <-late
	assert.False(t, ok)
}

func TestSlowSubscriberSeesLatest(t *testing.T) {
	token := testutil.MintToken(t, time.Now().Add(time.Hour))
	tokens := credential.NewMemoryStore(token)
	s := session.New(tokens, nil)
	ch, cancel := s.Subscribe()
	defer cancel()

	s.Logout()
	require.NoError(t, tokens.Set(token))
	s.Logout()

	assert.False(t, recv(t, ch))
	select {
	case v := <-ch:
		t.Fatalf("unexpected extra value %v", v)
	default:
	}
}
