package notify_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/dayboard/internal/api"
	"github.com/nhle/dayboard/internal/model"
	"github.com/nhle/dayboard/internal/notify"
	"github.com/nhle/dayboard/tests/testutil"
)

func notifications(n int) []model.Notification {
	out := make([]model.Notification, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, model.Notification{
			ID:     int64(i),
			Title:  fmt.Sprintf("n%d", i),
			Type:   model.NotificationTaskDue,
			SentAt: "2024-03-01T10:00:00",
			IsRead: i%2 == 0,
		})
	}
	return out
}

func newPoller(t *testing.T, b *testutil.Backend, cfg notify.Config) *notify.Poller {
	t.Helper()
	svc := api.NewServices(api.NewClient(api.Options{BaseURL: b.URL()}))
	p := notify.New(svc.Notifications, cfg, nil)
	t.Cleanup(p.Stop)
	return p
}

func TestPollKeepsLimit(t *testing.T) {
	b := testutil.NewBackend(t)
	b.Seed(func(d *testutil.Data) { d.Notifications = notifications(25) })
	p := newPoller(t, b, notify.Config{})

	p.Poll(context.Background())

	list := p.Notifications()
	require.Len(t, list, notify.DefaultLimit)
	assert.Equal(t, int64(1), list[0].ID)
	assert.Equal(t, int64(20), list[19].ID)
	assert.Equal(t, 10, p.UnreadCount())
}

func TestPollFailurePolicy(t *testing.T) {
	tests := []struct {
		name   string
		policy notify.FailurePolicy
		want   int
	}{
		{"keep retains last list", notify.KeepOnFailure, 3},
		{"reset empties list", notify.ResetOnFailure, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := testutil.NewBackend(t)
			b.Seed(func(d *testutil.Data) { d.Notifications = notifications(3) })
			p := newPoller(t, b, notify.Config{OnFailure: tt.policy})
			ctx := context.Background()

			p.Poll(ctx)
			require.Len(t, p.Notifications(), 3)

			b.Fail(http.MethodGet, "/notifications", http.StatusInternalServerError)
			p.Poll(ctx)
			assert.Len(t, p.Notifications(), tt.want)

			// The next successful tick recovers.
			b.Fail(http.MethodGet, "/notifications", 0)
			p.Poll(ctx)
			assert.Len(t, p.Notifications(), 3)
		})
	}
}

func TestStartFetchesImmediatelyAndStops(t *testing.T) {
	b := testutil.NewBackend(t)
	b.Seed(func(d *testutil.Data) { d.Notifications = notifications(4) })
	p := newPoller(t, b, notify.Config{Interval: time.Hour})

	cmd := p.Start()
	require.NotNil(t, cmd)
	assert.Nil(t, p.Start(), "second start is a no-op")

	msg, ok := cmd().(notify.UpdateMsg)
	require.True(t, ok)
	assert.NoError(t, msg.Err)
	assert.Len(t, msg.Notifications, 4)
	assert.Equal(t, 2, msg.Unread)
	assert.Equal(t, uint64(1), msg.Seq)

	p.Refresh()
	msg = p.WaitForNextUpdate()().(notify.UpdateMsg)
	assert.Equal(t, uint64(2), msg.Seq)

	p.Stop()
	hits := b.Hits(http.MethodGet, "/notifications")
	p.Refresh()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, hits, b.Hits(http.MethodGet, "/notifications"))
}

func TestMarkAsRead(t *testing.T) {
	b := testutil.NewBackend(t)
	b.Seed(func(d *testutil.Data) { d.Notifications = notifications(3) })
	p := newPoller(t, b, notify.Config{})
	ctx := context.Background()
	p.Poll(ctx)

	// Already read and unknown ids never reach the server.
	require.NoError(t, p.MarkAsRead(ctx, 2))
	require.NoError(t, p.MarkAsRead(ctx, 99))
	assert.Zero(t, b.Hits(http.MethodPatch, "/notifications/2/mark-as-read"))
	assert.Zero(t, b.Hits(http.MethodPatch, "/notifications/99/mark-as-read"))

	require.NoError(t, p.MarkAsRead(ctx, 1))
	assert.Equal(t, 1, b.Hits(http.MethodPatch, "/notifications/1/mark-as-read"))
	assert.Equal(t, 1, p.UnreadCount())

	b.Fail(http.MethodPatch, "/notifications/3/mark-as-read", http.StatusInternalServerError)
	err := p.MarkAsRead(ctx, 3)
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, api.StatusCode(err))
	assert.Equal(t, 1, p.UnreadCount())
}

func TestMarkAllAsReadFlipsOnlyConfirmed(t *testing.T) {
	b := testutil.NewBackend(t)
	b.Seed(func(d *testutil.Data) { d.Notifications = notifications(5) })
	p := newPoller(t, b, notify.Config{})
	ctx := context.Background()
	p.Poll(ctx)
	require.Equal(t, 3, p.UnreadCount())

	b.Fail(http.MethodPatch, "/notifications/3/mark-as-read", http.StatusBadGateway)
	err := p.MarkAllAsRead(ctx)
	require.Error(t, err)

	var merr *multierror.Error
	require.ErrorAs(t, err, &merr)
	assert.Len(t, merr.Errors, 1)

	for _, n := range p.Notifications() {
		if n.ID == 3 {
			assert.False(t, n.IsRead)
		} else {
			assert.True(t, n.IsRead, "notification %d", n.ID)
		}
	}
	assert.Equal(t, 1, p.UnreadCount())

	b.Fail(http.MethodPatch, "/notifications/3/mark-as-read", 0)
	require.NoError(t, p.MarkAllAsRead(ctx))
	assert.Zero(t, p.UnreadCount())
	require.NoError(t, p.MarkAllAsRead(ctx))
}

func TestRemoveAndClearAreLocal(t *testing.T) {
	b := testutil.NewBackend(t)
	b.Seed(func(d *testutil.Data) { d.Notifications = notifications(3) })
	p := newPoller(t, b, notify.Config{})
	p.Poll(context.Background())

	p.Remove(1)
	require.Len(t, p.Notifications(), 2)
	assert.Equal(t, int64(2), p.Notifications()[0].ID)

	p.Clear()
	assert.Empty(t, p.Notifications())
	assert.Zero(t, p.UnreadCount())
	assert.Len(t, b.State().Notifications, 3)
}
