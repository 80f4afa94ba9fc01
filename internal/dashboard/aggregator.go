// Package dashboard loads today's snapshot and is the single place where
// dashboard state changes.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/nhle/dayboard/internal/api"
	"github.com/nhle/dayboard/internal/model"
	"github.com/nhle/dayboard/internal/store"
)

// Source fetches the pieces of a snapshot.
type Source interface {
	Summary(ctx context.Context) (model.DailySummary, error)
	Diary(ctx context.Context) ([]model.DiaryEntry, error)
	Profile(ctx context.Context) (model.User, error)
}

// APISource reads a snapshot from the REST backend.
type APISource struct {
	Services *api.Services
}

// Summary implements Source.
func (s APISource) Summary(ctx context.Context) (model.DailySummary, error) {
	return s.Services.Summary.Today(ctx)
}

// Diary implements Source.
func (s APISource) Diary(ctx context.Context) ([]model.DiaryEntry, error) {
	return s.Services.Diary.List(ctx)
}

// Profile implements Source.
func (s APISource) Profile(ctx context.Context) (model.User, error) {
	return s.Services.Users.Profile(ctx)
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(a *Aggregator) { a.log = log }
}

// WithCache persists every successful load under the account returned by
// account. An empty account disables caching for that call.
func WithCache(cache store.SnapshotStore, account func() string) Option {
	return func(a *Aggregator) {
		a.cache = cache
		a.account = account
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) { a.now = now }
}

// Aggregator owns the published dashboard snapshot. A snapshot is replaced
// as a whole, either by Load or by Patch; readers never observe a partial
// update.
type Aggregator struct {
	src     Source
	cache   store.SnapshotStore
	account func() string
	log     *zap.Logger
	now     func() time.Time
	loads   singleflight.Group
	saveMu  sync.Mutex // orders cache writes against Forget

	mu      sync.RWMutex
	snap    model.DashboardSnapshot
	loading bool
	gen     uint64 // bumped by Forget; loads from an older gen are dropped
	subs    map[int]chan model.DashboardSnapshot
	nextSub int
	closed  bool
}

// New creates an Aggregator. It reports IsLoading until the first load
// completes.
func New(src Source, opts ...Option) *Aggregator {
	a := &Aggregator{
		src:     src,
		log:     zap.NewNop(),
		now:     time.Now,
		loading: true,
		subs:    make(map[int]chan model.DashboardSnapshot),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.log = a.log.Named("dashboard")
	return a
}

// Load fetches every slice concurrently and publishes them together. On any
// failure nothing is replaced and the error is returned. Concurrent calls
// for the same account share one load. A load overtaken by Forget publishes
// nothing and caches nothing.
func (a *Aggregator) Load(ctx context.Context) error {
	account, gen := a.currentAccount(), a.generation()
	key := fmt.Sprintf("%s#%d", account, gen)
	_, err, _ := a.loads.Do(key, func() (any, error) {
		return nil, a.load(ctx, account, gen)
	})
	return err
}

func (a *Aggregator) currentAccount() string {
	if a.account == nil {
		return ""
	}
	return a.account()
}

func (a *Aggregator) generation() uint64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.gen
}

// current reports whether a load started for account in gen may still
// publish. Callers hold a.mu.
func (a *Aggregator) current(account string, gen uint64) bool {
	return a.gen == gen && a.currentAccount() == account
}

func (a *Aggregator) load(ctx context.Context, account string, gen uint64) error {
	a.mu.Lock()
	if a.gen == gen {
		a.loading = true
	}
	a.mu.Unlock()

	var (
		tasks  []model.Task
		goals  []model.Goal
		habits []model.Habit
		events []model.Event
		diary  []model.DiaryEntry
		user   model.User
	)

	g, gctx := errgroup.WithContext(ctx)

	// The four summary-backed legs share one request.
	summary := sync.OnceValues(func() (model.DailySummary, error) {
		return a.src.Summary(gctx)
	})

	g.Go(func() error {
		s, err := summary()
		if err != nil {
			return fmt.Errorf("loading tasks: %w", err)
		}
		tasks = s.TodayTasks
		return nil
	})
	g.Go(func() error {
		s, err := summary()
		if err != nil {
			return fmt.Errorf("loading goals: %w", err)
		}
		goals = s.ActiveGoals
		return nil
	})
	g.Go(func() error {
		s, err := summary()
		if err != nil {
			return fmt.Errorf("loading habits: %w", err)
		}
		habits = s.ActiveHabits
		return nil
	})
	g.Go(func() error {
		s, err := summary()
		if err != nil {
			return fmt.Errorf("loading events: %w", err)
		}
		events = s.UpcomingEvents
		return nil
	})
	g.Go(func() error {
		var err error
		if diary, err = a.src.Diary(gctx); err != nil {
			return fmt.Errorf("loading diary: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if user, err = a.src.Profile(gctx); err != nil {
			return fmt.Errorf("loading profile: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		a.log.Error("loading dashboard", zap.Error(err))
		a.mu.Lock()
		if a.gen == gen {
			a.loading = false
		}
		a.mu.Unlock()
		return err
	}

	snap := model.DashboardSnapshot{
		Tasks:     tasks,
		Goals:     goals,
		Habits:    model.Decorate(habits),
		Events:    events,
		Diary:     diary,
		User:      &user,
		FetchedAt: a.now(),
	}

	a.mu.Lock()
	if !a.current(account, gen) {
		a.mu.Unlock()
		a.log.Debug("dropping load overtaken by logout", zap.String("account", account))
		return nil
	}
	a.snap = snap
	a.loading = false
	a.broadcastLocked()
	a.mu.Unlock()

	a.save(ctx, account, gen, snap)
	return nil
}

func (a *Aggregator) save(ctx context.Context, account string, gen uint64, snap model.DashboardSnapshot) {
	if a.cache == nil || account == "" {
		return
	}
	a.saveMu.Lock()
	defer a.saveMu.Unlock()
	if a.generation() != gen {
		return
	}
	if err := a.cache.SaveSnapshot(ctx, account, snap); err != nil {
		a.log.Warn("caching snapshot", zap.Error(err))
	}
}

// Restore publishes the cached snapshot for the current account, marked
// stale. It reports whether anything was restored. Loading state is left
// untouched.
func (a *Aggregator) Restore(ctx context.Context) bool {
	if a.cache == nil || a.account == nil {
		return false
	}
	account := a.account()
	if account == "" {
		return false
	}

	snap, err := a.cache.LoadSnapshot(ctx, account)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			a.log.Warn("restoring snapshot", zap.Error(err))
		}
		return false
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	// A live load may already have landed.
	if !a.snap.FetchedAt.IsZero() && !a.snap.Stale {
		return false
	}
	a.snap = *snap
	a.broadcastLocked()
	return true
}

// Forget drops the cached snapshot for the current account and clears the
// published state. Used on logout.
func (a *Aggregator) Forget(ctx context.Context) {
	a.saveMu.Lock()
	defer a.saveMu.Unlock()

	a.mu.Lock()
	a.gen++
	a.snap = model.DashboardSnapshot{}
	a.loading = true
	a.broadcastLocked()
	a.mu.Unlock()

	if a.cache == nil {
		return
	}
	if account := a.currentAccount(); account != "" {
		if err := a.cache.DeleteSnapshot(ctx, account); err != nil {
			a.log.Warn("forgetting snapshot", zap.Error(err))
		}
	}
}

// Patch applies fn to a copy of the current snapshot and publishes the copy.
// It is the only way to change dashboard state outside Load.
func (a *Aggregator) Patch(fn func(s *model.DashboardSnapshot)) {
	a.mu.Lock()
	defer a.mu.Unlock()

	next := a.snap.Clone()
	fn(&next)
	a.snap = next
	a.broadcastLocked()
}

// IsLoading reports whether a load is in flight or none has completed yet.
func (a *Aggregator) IsLoading() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.loading
}

// Snapshot returns a copy of the published snapshot.
func (a *Aggregator) Snapshot() model.DashboardSnapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.snap.Clone()
}

// Tasks returns today's tasks.
func (a *Aggregator) Tasks() []model.Task { return a.Snapshot().Tasks }

// Goals returns the active goals.
func (a *Aggregator) Goals() []model.Goal { return a.Snapshot().Goals }

// Habits returns the active habits with today's local progress.
func (a *Aggregator) Habits() []model.DashboardHabit { return a.Snapshot().Habits }

// Events returns upcoming events.
func (a *Aggregator) Events() []model.Event { return a.Snapshot().Events }

// Diary returns diary entries.
func (a *Aggregator) Diary() []model.DiaryEntry { return a.Snapshot().Diary }

// User returns the signed-in user's profile, if loaded.
func (a *Aggregator) User() *model.User { return a.Snapshot().User }

// Subscribe returns a channel that yields the current snapshot and then each
// published one. Slow readers only see the latest.
func (a *Aggregator) Subscribe() (<-chan model.DashboardSnapshot, func()) {
	ch := make(chan model.DashboardSnapshot, 1)

	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	id := a.nextSub
	a.nextSub++
	a.subs[id] = ch
	ch <- a.snap.Clone()
	a.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			a.mu.Lock()
			defer a.mu.Unlock()
			if c, ok := a.subs[id]; ok {
				delete(a.subs, id)
				close(c)
			}
		})
	}
}

// Close closes every subscriber channel.
func (a *Aggregator) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}
	a.closed = true
	for id, ch := range a.subs {
		delete(a.subs, id)
		close(ch)
	}
}

func (a *Aggregator) broadcastLocked() {
	for _, ch := range a.subs {
		snap := a.snap.Clone()
		select {
		case ch <- snap:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
}
