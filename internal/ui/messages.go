package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// requestTimeout bounds a single user-triggered request.
const requestTimeout = 30 * time.Second

// ResultMsg reports the outcome of a user action. A non-nil Err is shown as
// an error toast; Info, when set, as a confirmation.
type ResultMsg struct {
	Info string
	Err  error
}

// NavigateMsg asks the app to open route through the guards.
type NavigateMsg struct {
	Route string
}

// Run executes fn in a command with a bounded context and reports the
// result as a ResultMsg carrying info on success.
func Run(info string, fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := RequestContext()
		defer cancel()
		if err := fn(ctx); err != nil {
			return ResultMsg{Err: err}
		}
		return ResultMsg{Info: info}
	}
}

// Navigate returns a command emitting NavigateMsg.
func Navigate(route string) tea.Cmd {
	return func() tea.Msg { return NavigateMsg{Route: route} }
}

// RequestContext returns the context used for one user-triggered request.
func RequestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), requestTimeout)
}
