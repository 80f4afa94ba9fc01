package guard_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/dayboard/internal/credential"
	"github.com/nhle/dayboard/internal/guard"
	"github.com/nhle/dayboard/internal/model"
	"github.com/nhle/dayboard/tests/testutil"
)

type loginState bool

func (l loginState) LoggedIn() bool { return bool(l) }

func TestAuthGuard(t *testing.T) {
	assert.Equal(t, guard.Allow(), guard.AuthGuard{Session: loginState(true)}.CanActivate(guard.RouteTasks))
	assert.Equal(t,
		guard.RedirectTo(guard.RouteLogin),
		guard.AuthGuard{Session: loginState(false)}.CanActivate(guard.RouteTasks))
}

func TestAdminGuard(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name  string
		token string
		want  guard.Decision
	}{
		{"missing token", "", guard.RedirectTo(guard.RouteLogin)},
		{"expired admin", testutil.MintToken(t, now.Add(-time.Minute), model.RoleAdmin), guard.RedirectTo(guard.RouteLogin)},
		{"admin", testutil.MintToken(t, now.Add(time.Hour), model.RoleUser, model.RoleAdmin), guard.Allow()},
		{"admin without exp", testutil.MintToken(t, time.Time{}, model.RoleAdmin), guard.Allow()},
		{"plain user", testutil.MintToken(t, now.Add(time.Hour), model.RoleUser), guard.RedirectTo(guard.RouteRoot)},
		{"no roles claim", testutil.MintToken(t, now.Add(time.Hour)), guard.RedirectTo(guard.RouteRoot)},
		{"malformed", "not.a.token", guard.RedirectTo(guard.RouteRoot)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := guard.AdminGuard{Tokens: credential.NewMemoryStore(tt.token)}
			assert.Equal(t, tt.want, g.CanActivate(guard.RouteUsers))
		})
	}
}

func TestRouterResolve(t *testing.T) {
	adminToken := testutil.MintToken(t, time.Now().Add(time.Hour), model.RoleAdmin)
	userToken := testutil.MintToken(t, time.Now().Add(time.Hour), model.RoleUser)

	tests := []struct {
		name     string
		loggedIn bool
		token    string
		route    string
		want     string
	}{
		{"root goes to dashboard", true, userToken, "/", guard.RouteDashboard},
		{"unknown goes to dashboard", true, userToken, "/nope", guard.RouteDashboard},
		{"trailing slash", true, userToken, "/tasks/", guard.RouteTasks},
		{"logged out protected", false, "", guard.RouteHabits, guard.RouteLogin},
		{"logged out unknown", false, "", "/nope", guard.RouteLogin},
		{"logged out login page", false, "", guard.RouteLogin, guard.RouteLogin},
		{"register page", false, "", guard.RouteRegister, guard.RouteRegister},
		{"admin page for admin", true, adminToken, guard.RouteUsers, guard.RouteUsers},
		{"admin page for user", true, userToken, guard.RouteUsers, guard.RouteDashboard},
		{"admin page logged out", false, "", guard.RouteUsers, guard.RouteLogin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := guard.NewRouter(
				guard.AuthGuard{Session: loginState(tt.loggedIn)},
				guard.AdminGuard{Tokens: credential.NewMemoryStore(tt.token)},
			)
			got, err := r.Resolve(tt.route)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

type bounce string

func (b bounce) CanActivate(string) guard.Decision { return guard.RedirectTo(string(b)) }

func TestRouterRedirectLoop(t *testing.T) {
	r := guard.NewRouter(bounce(guard.RouteTasks), bounce(guard.RouteTasks))
	_, err := r.Resolve(guard.RouteTasks)
	assert.Error(t, err)
}
