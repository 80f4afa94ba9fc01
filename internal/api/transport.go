package api

import (
	"net/http"
	"slices"
	"strings"
)

// TokenSource supplies the current bearer token.
type TokenSource interface {
	Token() (string, bool)
}

// publicPaths never carry the bearer token. They are relative to the API
// base path.
var publicPaths = []string{"/auth/login", "/auth/register"}

// AuthTransport adds "Authorization: Bearer <token>" to outgoing requests.
// Requests to the public auth endpoints, requests that already carry an
// Authorization header and requests made without a token pass through
// unchanged.
type AuthTransport struct {
	Base   http.RoundTripper
	Tokens TokenSource

	// BasePath is the path of the API base URL, e.g. "/api".
	BasePath string
}

// NewAuthTransport wraps base. A nil base uses http.DefaultTransport.
func NewAuthTransport(base http.RoundTripper, tokens TokenSource) *AuthTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &AuthTransport{Base: base, Tokens: tokens}
}

// RoundTrip implements http.RoundTripper.
func (t *AuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.Tokens == nil || req.Header.Get("Authorization") != "" || isPublic(t.BasePath, req.URL.Path) {
		return t.Base.RoundTrip(req)
	}

	token, ok := t.Tokens.Token()
	if !ok {
		return t.Base.RoundTrip(req)
	}

	// RoundTrippers must not modify the caller's request.
	clone := req.Clone(req.Context())
	clone.Header.Set("Authorization", "Bearer "+token)
	return t.Base.RoundTrip(clone)
}

func isPublic(basePath, path string) bool {
	rel, ok := strings.CutPrefix(path, strings.TrimRight(basePath, "/"))
	if !ok {
		return false
	}
	rel = "/" + strings.Trim(rel, "/")
	return slices.Contains(publicPaths, rel)
}
