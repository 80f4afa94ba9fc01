// Package focus implements the pomodoro timer and records finished phases
// as focus sessions.
package focus

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/nhle/dayboard/internal/model"
)

// Timer counts one pomodoro phase down. It is driven by Tick and never reads
// the clock itself. Operations that end a phase return the session to record.
type Timer struct {
	mode      model.TimerMode
	remaining time.Duration
	running   bool
	started   bool
	completed int

	startedAt time.Time
	lastTick  time.Time
}

// NewTimer returns a stopped timer in WORK mode.
func NewTimer() *Timer {
	t := &Timer{mode: model.TimerModeWork}
	t.remaining = t.mode.Duration()
	return t
}

// Mode returns the current phase.
func (t *Timer) Mode() model.TimerMode { return t.mode }

// Remaining returns the time left in the current phase.
func (t *Timer) Remaining() time.Duration { return t.remaining }

// Running reports whether the countdown is active.
func (t *Timer) Running() bool { return t.running }

// Started reports whether the current phase has been started at least once.
func (t *Timer) Started() bool { return t.started }

// Completed returns how many phases finished or were skipped.
func (t *Timer) Completed() int { return t.completed }

// Clock renders the remaining time as MM:SS.
func (t *Timer) Clock() string {
	secs := int(t.remaining.Round(time.Second) / time.Second)
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

// Start resumes or begins the countdown. The phase start time is taken from
// the first Start of the phase.
func (t *Timer) Start(now time.Time) {
	if t.running {
		return
	}
	t.running = true
	if !t.started {
		t.started = true
		t.startedAt = now
	}
	t.lastTick = now
}

// Pause stops the countdown, keeping the remaining time.
func (t *Timer) Pause(now time.Time) {
	if !t.running {
		return
	}
	t.advance(now)
	t.running = false
}

// Tick advances a running countdown to now. When the phase runs out it is
// completed and the session to record is returned.
func (t *Timer) Tick(now time.Time) (model.FocusSession, bool) {
	if !t.running {
		return model.FocusSession{}, false
	}
	t.advance(now)
	if t.remaining > 0 {
		return model.FocusSession{}, false
	}
	return t.complete(now), true
}

// Reset rewinds the phase to its full length. A running phase is recorded
// first.
func (t *Timer) Reset(now time.Time) (model.FocusSession, bool) {
	var (
		fs  model.FocusSession
		rec bool
	)
	if t.running {
		fs, rec = model.NewFocusSession(t.mode, t.startedAt, now), true
	}
	t.rewind()
	return fs, rec
}

// Skip ends a started phase early and counts it as completed.
func (t *Timer) Skip(now time.Time) (model.FocusSession, bool) {
	if !t.running && !t.started {
		return model.FocusSession{}, false
	}
	return t.complete(now), true
}

// SetMode switches to mode and resets, recording a running phase.
func (t *Timer) SetMode(mode model.TimerMode, now time.Time) (model.FocusSession, bool) {
	fs, rec := t.Reset(now)
	if mode.Valid() {
		t.mode = mode
		t.remaining = mode.Duration()
	}
	return fs, rec
}

func (t *Timer) advance(now time.Time) {
	if now.After(t.lastTick) {
		t.remaining -= now.Sub(t.lastTick)
		t.lastTick = now
	}
	if t.remaining < 0 {
		t.remaining = 0
	}
}

func (t *Timer) complete(now time.Time) model.FocusSession {
	fs := model.NewFocusSession(t.mode, t.startedAt, now)
	t.completed++
	t.rewind()
	return fs
}

func (t *Timer) rewind() {
	t.running = false
	t.started = false
	t.remaining = t.mode.Duration()
	t.startedAt = time.Time{}
	t.lastTick = time.Time{}
}

// SessionCreator stores focus sessions.
type SessionCreator interface {
	Create(ctx context.Context, fs model.FocusSession) (model.FocusSession, error)
}

// Recorder saves finished phases.
type Recorder struct {
	sessions SessionCreator
	log      *zap.Logger
}

// NewRecorder creates a Recorder backed by sessions.
func NewRecorder(sessions SessionCreator, log *zap.Logger) *Recorder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Recorder{sessions: sessions, log: log.Named("focus")}
}

// Save records fs.
func (r *Recorder) Save(ctx context.Context, fs model.FocusSession) error {
	if _, err := r.sessions.Create(ctx, fs); err != nil {
		r.log.Error("saving focus session", zap.String("mode", string(fs.TimerMode)), zap.Error(err))
		return fmt.Errorf("saving focus session: %w", err)
	}
	r.log.Debug("focus session saved",
		zap.String("mode", string(fs.TimerMode)),
		zap.String("start", fs.StartTime),
		zap.String("end", fs.EndTime))
	return nil
}
