// Package guard decides whether navigation into a view is allowed.
package guard

import (
	"time"

	"go.uber.org/zap"

	"github.com/nhle/dayboard/internal/credential"
	"github.com/nhle/dayboard/internal/model"
	"github.com/nhle/dayboard/internal/session"
)

// Decision is the outcome of a guard check. When Allow is false, Redirect
// names the route to navigate to instead.
type Decision struct {
	Allow    bool
	Redirect string
}

// Allow permits navigation.
func Allow() Decision { return Decision{Allow: true} }

// RedirectTo denies navigation and sends the user to route.
func RedirectTo(route string) Decision { return Decision{Redirect: route} }

// Guard checks whether a route may be activated.
type Guard interface {
	CanActivate(route string) Decision
}

// LoginState reports whether a user is signed in.
type LoginState interface {
	LoggedIn() bool
}

// AuthGuard allows navigation only while signed in.
type AuthGuard struct {
	Session LoginState
}

// CanActivate implements Guard.
func (g AuthGuard) CanActivate(string) Decision {
	if g.Session != nil && g.Session.LoggedIn() {
		return Allow()
	}
	return RedirectTo(RouteLogin)
}

// AdminGuard allows navigation only when the persisted token carries the
// admin role. It reads the token itself rather than trusting any cached
// signed-in flag.
type AdminGuard struct {
	Tokens credential.TokenStore
	Now    func() time.Time
	Log    *zap.Logger
}

// CanActivate implements Guard.
func (g AdminGuard) CanActivate(string) Decision {
	now := time.Now
	if g.Now != nil {
		now = g.Now
	}

	token, ok := credential.Lookup(g.Tokens)
	if !ok {
		return RedirectTo(RouteLogin)
	}

	sess, err := session.Decode(token)
	if err != nil {
		if g.Log != nil {
			g.Log.Warn("admin guard could not decode token", zap.Error(err))
		}
		return RedirectTo(RouteRoot)
	}
	if sess.Expired(now()) {
		return RedirectTo(RouteLogin)
	}
	if model.ContainsRole(sess.Roles, model.RoleAdmin) {
		return Allow()
	}
	return RedirectTo(RouteRoot)
}
