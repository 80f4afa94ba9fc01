package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nhle/dayboard/internal/api"
	"github.com/nhle/dayboard/internal/credential"
	"github.com/nhle/dayboard/internal/model"
)

// ErrInvalidCredentials is returned by Login when the server rejects the
// email/password pair.
var ErrInvalidCredentials = errors.New("invalid email or password")

// DefaultExpiryCheck is how often Start re-checks token expiry.
const DefaultExpiryCheck = 60 * time.Second

// Authenticator exchanges credentials for a bearer token.
type Authenticator interface {
	Login(ctx context.Context, creds model.Credentials) (model.AuthResponse, error)
	Register(ctx context.Context, req model.RegisterRequest) (model.AuthResponse, error)
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(s *Store) { s.log = log }
}

// WithExpiryCheck sets the background expiry check interval.
func WithExpiryCheck(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Store holds the process-wide signed-in state. The token itself lives in a
// credential.TokenStore; Store derives the logged-in flag and roles from it
// and publishes every change to subscribers.
type Store struct {
	tokens   credential.TokenStore
	auth     Authenticator
	log      *zap.Logger
	interval time.Duration
	now      func() time.Time

	mu       sync.Mutex
	loggedIn bool
	subs     map[int]chan bool
	nextSub  int
	started  bool
	closed   bool
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// New creates a Store. The initial state is logged in when the persisted
// token decodes and has not expired.
func New(tokens credential.TokenStore, auth Authenticator, opts ...Option) *Store {
	s := &Store{
		tokens:   tokens,
		auth:     auth,
		log:      zap.NewNop(),
		interval: DefaultExpiryCheck,
		now:      time.Now,
		subs:     make(map[int]chan bool),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.Named("session")

	if token, ok := credential.Lookup(tokens); ok {
		_, s.loggedIn = Valid(token, s.now())
	}
	return s
}

// Login posts credentials to the server and persists the returned token.
// A 401 or 403 yields an error wrapping ErrInvalidCredentials; any other
// failure is returned unchanged.
func (s *Store) Login(ctx context.Context, email, password string) (Session, error) {
	resp, err := s.auth.Login(ctx, model.Credentials{Email: email, Password: password})
	if err != nil {
		s.log.Warn("login failed", zap.String("email", email), zap.Error(err))
		if api.IsUnauthorized(err) || api.IsForbidden(err) {
			return Session{}, fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
		}
		return Session{}, err
	}
	return s.establish(resp.Token)
}

// Register creates an account and signs it in.
func (s *Store) Register(ctx context.Context, req model.RegisterRequest) (Session, error) {
	resp, err := s.auth.Register(ctx, req)
	if err != nil {
		s.log.Warn("registration failed", zap.String("email", req.Email), zap.Error(err))
		return Session{}, err
	}
	return s.establish(resp.Token)
}

func (s *Store) establish(token string) (Session, error) {
	if token == "" {
		return Session{}, errors.New("server returned an empty token")
	}
	if err := s.tokens.Set(token); err != nil {
		return Session{}, fmt.Errorf("persisting token: %w", err)
	}
	s.setLoggedIn(true)

	sess, err := Decode(token)
	if err != nil {
		s.log.Debug("issued token does not decode", zap.Error(err))
		return Session{Token: token}, nil
	}
	return sess, nil
}

// Logout forgets the persisted token.
func (s *Store) Logout() {
	if err := s.tokens.Delete(); err != nil {
		s.log.Error("deleting token", zap.Error(err))
	}
	s.setLoggedIn(false)
}

// LoggedIn reports the current signed-in flag.
func (s *Store) LoggedIn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loggedIn
}

// Token returns the persisted token, if any. It implements api.TokenSource.
func (s *Store) Token() (string, bool) {
	return credential.Lookup(s.tokens)
}

// Current returns the decoded session when a valid token is stored.
func (s *Store) Current() (Session, bool) {
	token, ok := s.Token()
	if !ok {
		return Session{}, false
	}
	return Valid(token, s.now())
}

// Account returns the subject of the current valid session, or "".
func (s *Store) Account() string {
	sess, ok := s.Current()
	if !ok {
		return ""
	}
	return sess.Subject
}

// Roles returns the roles claim of a valid token. A missing, malformed or
// expired token has no roles.
func (s *Store) Roles() []string {
	token, ok := s.Token()
	if !ok {
		return nil
	}
	sess, err := Decode(token)
	if err != nil {
		s.log.Debug("failed to decode token", zap.Error(err))
		return nil
	}
	if sess.Expired(s.now()) {
		return nil
	}
	return append([]string(nil), sess.Roles...)
}

// HasRole reports whether the current token carries role.
func (s *Store) HasRole(role string) bool {
	return model.ContainsRole(s.Roles(), role)
}

// Subscribe returns a channel that first yields the current flag and then
// every change. Slow readers only see the latest value. The cancel func
// unsubscribes and closes the channel.
func (s *Store) Subscribe() (<-chan bool, func()) {
	ch := make(chan bool, 1)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	ch <- s.loggedIn
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if c, ok := s.subs[id]; ok {
				delete(s.subs, id)
				close(c)
			}
		})
	}
}

func (s *Store) setLoggedIn(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loggedIn == v {
		return
	}
	s.loggedIn = v
	for _, ch := range s.subs {
		offer(ch, v)
	}
}

// offer replaces any unread value in ch with v.
func offer(ch chan bool, v bool) {
	select {
	case ch <- v:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- v:
	default:
	}
}

// CheckExpiry logs out when a token is stored but is expired or does not
// decode. It reports whether it logged out.
func (s *Store) CheckExpiry() bool {
	token, ok := s.Token()
	if !ok {
		return false
	}
	if _, valid := Valid(token, s.now()); valid {
		return false
	}
	s.log.Info("token expired, logging out")
	s.Logout()
	return true
}

// Start runs CheckExpiry immediately and then on every interval until ctx
// is done or Close is called.
func (s *Store) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started || s.closed {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()

	go s.run(ctx)
}

func (s *Store) run(ctx context.Context) {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.CheckExpiry()
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.CheckExpiry()
		}
	}
}

// Close stops the expiry loop and closes every subscriber channel.
func (s *Store) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	started := s.started
	close(s.stopCh)
	s.mu.Unlock()

	if started {
		<-s.doneCh
	}

	s.mu.Lock()
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
	s.mu.Unlock()
}
