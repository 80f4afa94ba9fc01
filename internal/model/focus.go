package model

import (
	"fmt"
	"time"
)

// TimerMode is a pomodoro phase.
type TimerMode string

const (
	TimerModeWork       TimerMode = "WORK"
	TimerModeShortBreak TimerMode = "SHORT_BREAK"
	TimerModeLongBreak  TimerMode = "LONG_BREAK"
)

// TimerModes returns every declared mode in cycle order.
func TimerModes() []TimerMode {
	return []TimerMode{TimerModeWork, TimerModeShortBreak, TimerModeLongBreak}
}

// Duration is the length of one phase in this mode.
func (m TimerMode) Duration() time.Duration {
	switch m {
	case TimerModeWork:
		return 35 * time.Minute
	case TimerModeShortBreak:
		return 5 * time.Minute
	case TimerModeLongBreak:
		return 15 * time.Minute
	}
	return 0
}

// Label returns the human-readable name of the mode.
func (m TimerMode) Label() string {
	switch m {
	case TimerModeWork:
		return "Work"
	case TimerModeShortBreak:
		return "Short Break"
	case TimerModeLongBreak:
		return "Long Break"
	}
	return ""
}

// Valid reports whether m is one of the declared modes.
func (m TimerMode) Valid() bool { return m.Label() != "" }

// UnmarshalText rejects modes the client does not know about. An empty
// value decodes as unset.
func (m *TimerMode) UnmarshalText(b []byte) error {
	v := TimerMode(b)
	if v == "" {
		*m = ""
		return nil
	}
	if !v.Valid() {
		return fmt.Errorf("unknown timer mode %q", string(b))
	}
	*m = v
	return nil
}

// FocusSession is one recorded pomodoro phase.
type FocusSession struct {
	SessionDate string    `json:"sessionDate"`
	StartTime   string    `json:"startTime"`
	EndTime     string    `json:"endTime"`
	TimerMode   TimerMode `json:"timerMode"`
}

// NewFocusSession builds the wire representation of a phase that ran from
// start to end.
func NewFocusSession(mode TimerMode, start, end time.Time) FocusSession {
	return FocusSession{
		SessionDate: start.Format(DateLayout),
		StartTime:   start.Format(TimeLayout),
		EndTime:     end.Format(TimeLayout),
		TimerMode:   mode,
	}
}
