// Package notify keeps a live copy of the user's notifications by polling
// the backend on a fixed interval.
package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"

	"github.com/nhle/dayboard/internal/model"
)

// FailurePolicy decides what a failed poll does to the current list.
type FailurePolicy string

const (
	// KeepOnFailure retains the last good list.
	KeepOnFailure FailurePolicy = "keep"
	// ResetOnFailure replaces the list with an empty one.
	ResetOnFailure FailurePolicy = "reset"
)

// Defaults used when Config leaves a field zero.
const (
	DefaultInterval = 30 * time.Second
	DefaultLimit    = 20
)

// fetchTimeout is the maximum time allowed for a single fetch operation.
const fetchTimeout = 30 * time.Second

// Source reads and acknowledges notifications.
type Source interface {
	List(ctx context.Context) ([]model.Notification, error)
	MarkAsRead(ctx context.Context, id int64) error
}

// Config configures a Poller.
type Config struct {
	Interval  time.Duration
	Limit     int
	OnFailure FailurePolicy
}

// UpdateMsg is a tea.Msg sent whenever the notification list changes or a
// poll fails.
type UpdateMsg struct {
	Notifications []model.Notification
	Unread        int
	Seq           uint64
	Err           error
}

// Poller re-fetches notifications on a fixed interval. Polls run one at a
// time on a single goroutine; each applied result carries a sequence number
// so an older result never overwrites a newer one.
type Poller struct {
	src    Source
	cfg    Config
	log    *zap.Logger
	nextSq uint64

	mu        sync.Mutex
	items     []model.Notification
	applied   uint64
	running   bool
	stopCh    chan struct{}
	doneCh    chan struct{}
	triggerCh chan struct{}
	resultCh  chan UpdateMsg
}

// New creates a Poller. Zero config fields fall back to the defaults.
func New(src Source, cfg Config, log *zap.Logger) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Limit <= 0 {
		cfg.Limit = DefaultLimit
	}
	if cfg.OnFailure != ResetOnFailure {
		cfg.OnFailure = KeepOnFailure
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Poller{
		src:       src,
		cfg:       cfg,
		log:       log.Named("notify"),
		triggerCh: make(chan struct{}, 1),
		resultCh:  make(chan UpdateMsg, 16),
	}
}

// Start launches the polling goroutine, which fetches immediately and then
// on every interval. The returned command delivers the first UpdateMsg; call
// WaitForNextUpdate after handling each one.
func (p *Poller) Start() tea.Cmd {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	stopCh, doneCh := p.stopCh, p.doneCh
	p.mu.Unlock()

	go p.loop(stopCh, doneCh)

	return p.waitForUpdate()
}

// Stop cancels polling and waits for an in-flight poll to finish.
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	close(p.stopCh)
	doneCh := p.doneCh
	p.mu.Unlock()

	<-doneCh
}

// Refresh requests an immediate poll. It is a no-op when one is already
// queued.
func (p *Poller) Refresh() {
	select {
	case p.triggerCh <- struct{}{}:
	default:
	}
}

func (p *Poller) loop(stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-stopCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	p.Poll(ctx)
	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			p.Poll(ctx)
		case <-p.triggerCh:
			p.Poll(ctx)
		}
	}
}

// Poll performs one fetch and applies it. Failures are logged and handled
// according to the failure policy; they never stop the poller.
func (p *Poller) Poll(ctx context.Context) {
	p.mu.Lock()
	p.nextSq++
	seq := p.nextSq
	p.mu.Unlock()

	fetchCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	list, err := p.src.List(fetchCtx)
	if err != nil {
		// Stopped mid-fetch.
		if ctx.Err() != nil {
			return
		}
		p.log.Warn("polling notifications", zap.Error(err))
		if p.cfg.OnFailure == ResetOnFailure {
			p.apply(seq, []model.Notification{}, err)
			return
		}
		p.sendResult(p.message(seq, err))
		return
	}

	if len(list) > p.cfg.Limit {
		list = list[:p.cfg.Limit]
	}
	p.apply(seq, list, nil)
}

func (p *Poller) apply(seq uint64, list []model.Notification, err error) {
	p.mu.Lock()
	if seq <= p.applied {
		p.mu.Unlock()
		return
	}
	p.applied = seq
	p.items = append([]model.Notification(nil), list...)
	msg := p.messageLocked(seq, err)
	p.mu.Unlock()

	p.sendResult(msg)
}

func (p *Poller) message(seq uint64, err error) UpdateMsg {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.messageLocked(seq, err)
}

func (p *Poller) messageLocked(seq uint64, err error) UpdateMsg {
	items := append([]model.Notification(nil), p.items...)
	return UpdateMsg{
		Notifications: items,
		Unread:        model.CountUnread(items),
		Seq:           seq,
		Err:           err,
	}
}

// publish emits the current list after a local change.
func (p *Poller) publish() {
	p.sendResult(p.message(p.currentSeq(), nil))
}

func (p *Poller) currentSeq() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.applied
}

// Notifications returns a copy of the current list.
func (p *Poller) Notifications() []model.Notification {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]model.Notification(nil), p.items...)
}

// UnreadCount returns how many notifications in the current list are unread.
func (p *Poller) UnreadCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return model.CountUnread(p.items)
}

// MarkAsRead acknowledges notification id on the server and then flips it
// locally. Unknown or already-read ids are a no-op.
func (p *Poller) MarkAsRead(ctx context.Context, id int64) error {
	if !p.isUnread(id) {
		return nil
	}

	if err := p.src.MarkAsRead(ctx, id); err != nil {
		p.log.Error("marking notification as read", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("marking notification %d as read: %w", id, err)
	}

	p.markLocal(map[int64]bool{id: true})
	p.publish()
	return nil
}

// MarkAllAsRead acknowledges every unread notification concurrently. Once
// all requests finish, only the acknowledged ones are flipped locally; the
// failures are returned together.
func (p *Poller) MarkAllAsRead(ctx context.Context) error {
	var unread []int64
	for _, n := range p.Notifications() {
		if !n.IsRead {
			unread = append(unread, n.ID)
		}
	}
	if len(unread) == 0 {
		return nil
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		confirmed = make(map[int64]bool, len(unread))
		errs      *multierror.Error
	)
	for _, id := range unread {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			err := p.src.MarkAsRead(ctx, id)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = multierror.Append(errs, fmt.Errorf("notification %d: %w", id, err))
				return
			}
			confirmed[id] = true
		}(id)
	}
	wg.Wait()

	if len(confirmed) > 0 {
		p.markLocal(confirmed)
		p.publish()
	}

	if err := errs.ErrorOrNil(); err != nil {
		p.log.Error("marking all notifications as read", zap.Error(err))
		return err
	}
	return nil
}

func (p *Poller) isUnread(id int64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, n := range p.items {
		if n.ID == id {
			return !n.IsRead
		}
	}
	return false
}

func (p *Poller) markLocal(ids map[int64]bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	items := append([]model.Notification(nil), p.items...)
	for i := range items {
		if ids[items[i].ID] {
			items[i].IsRead = true
		}
	}
	p.items = items
}

// Remove drops notification id from the local list without a server call.
func (p *Poller) Remove(id int64) {
	p.mu.Lock()
	items := make([]model.Notification, 0, len(p.items))
	for _, n := range p.items {
		if n.ID != id {
			items = append(items, n)
		}
	}
	p.items = items
	p.mu.Unlock()
	p.publish()
}

// Clear empties the local list without a server call.
func (p *Poller) Clear() {
	p.mu.Lock()
	p.items = []model.Notification{}
	p.mu.Unlock()
	p.publish()
}

// sendResult sends an UpdateMsg on the result channel without blocking.
func (p *Poller) sendResult(msg UpdateMsg) {
	select {
	case p.resultCh <- msg:
	default:
		// Drop if channel is full to avoid blocking the poller
	}
}

func (p *Poller) waitForUpdate() tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-p.resultCh
		if !ok {
			return nil
		}
		return msg
	}
}

// WaitForNextUpdate returns a tea.Cmd that waits for the next UpdateMsg.
// Call it after handling each UpdateMsg to keep listening.
func (p *Poller) WaitForNextUpdate() tea.Cmd {
	return p.waitForUpdate()
}
