package api_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/dayboard/internal/api"
	"github.com/nhle/dayboard/internal/model"
	"github.com/nhle/dayboard/tests/testutil"
)

type staticToken string

func (s staticToken) Token() (string, bool) { return string(s), s != "" }

func newServices(t *testing.T, b *testutil.Backend, token string) *api.Services {
	t.Helper()
	c := api.NewClient(api.Options{
		BaseURL: b.URL(),
		Timeout: 5 * time.Second,
		Tokens:  staticToken(token),
	})
	return api.NewServices(c)
}

func TestAuthHeaderInjection(t *testing.T) {
	b := testutil.NewBackend(t)
	b.Seed(func(d *testutil.Data) {
		d.Credentials = model.Credentials{Email: "a@b.c", Password: "pw"}
		d.Token = "issued"
	})
	svc := newServices(t, b, "tok-123")
	ctx := context.Background()

	_, err := svc.Tasks.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", b.AuthHeader(http.MethodGet, "/tasks"))

	_, err = svc.Auth.Login(ctx, model.Credentials{Email: "a@b.c", Password: "pw"})
	require.NoError(t, err)
	assert.Empty(t, b.AuthHeader(http.MethodPost, "/auth/login"))

	_, err = svc.Auth.Register(ctx, model.RegisterRequest{Email: "x@y.z", Password: "pw"})
	require.NoError(t, err)
	assert.Empty(t, b.AuthHeader(http.MethodPost, "/auth/register"))
}

func TestAuthHeaderOmittedWithoutToken(t *testing.T) {
	b := testutil.NewBackend(t)
	svc := newServices(t, b, "")

	_, err := svc.Goals.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, b.AuthHeader(http.MethodGet, "/goals"))
}

func TestAuthTransportKeepsExistingHeader(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
	}))
	t.Cleanup(srv.Close)

	client := &http.Client{Transport: api.NewAuthTransport(nil, staticToken("injected"))}
	req, err := http.NewRequest(http.MethodGet, srv.URL+"/tasks", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Basic abc")

	resp, err := client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "Basic abc", got)
	assert.Equal(t, "Basic abc", req.Header.Get("Authorization"))
}

func TestRequestHeaders(t *testing.T) {
	var ids []string
	var accept string
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		ids = append(ids, r.Header.Get("X-Request-ID"))
		accept = r.Header.Get("Accept")
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	t.Cleanup(srv.Close)

	svc := api.NewServices(api.NewClient(api.Options{BaseURL: srv.URL}))
	_, err := svc.Events.List(context.Background())
	require.NoError(t, err)
	_, err = svc.Events.List(context.Background())
	require.NoError(t, err)

	require.Len(t, ids, 2)
	assert.NotEmpty(t, ids[0])
	assert.NotEqual(t, ids[0], ids[1])
	assert.Equal(t, "application/json", accept)
}

func TestErrorStatus(t *testing.T) {
	b := testutil.NewBackend(t)
	b.Fail(http.MethodGet, "/diary", http.StatusUnauthorized)
	svc := newServices(t, b, "tok")

	_, err := svc.Diary.List(context.Background())
	require.Error(t, err)
	assert.True(t, api.IsUnauthorized(err))
	assert.Equal(t, http.StatusUnauthorized, api.StatusCode(err))

	// No retry.
	assert.Equal(t, 1, b.Hits(http.MethodGet, "/diary"))

	b.Fail(http.MethodGet, "/diary", http.StatusInternalServerError)
	_, err = svc.Diary.List(context.Background())
	require.Error(t, err)
	assert.False(t, api.IsUnauthorized(err))
	assert.Equal(t, 2, b.Hits(http.MethodGet, "/diary"))
}

func TestDiaryCreateThenList(t *testing.T) {
	b := testutil.NewBackend(t)
	svc := newServices(t, b, "tok")
	ctx := context.Background()

	created, err := svc.Diary.Create(ctx, model.DiaryEntryRequest{
		Title:     "Morning",
		Content:   "Slept well",
		EntryDate: "2024-03-01",
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	list, err := svc.Diary.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)
	assert.Equal(t, "Morning", list[0].Title)

	require.NoError(t, svc.Diary.Delete(ctx, created.ID))
	list, err = svc.Diary.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestTaskEndpoints(t *testing.T) {
	b := testutil.NewBackend(t)
	b.Seed(func(d *testutil.Data) {
		d.Tasks = []model.Task{
			{ID: 1, Title: "a", Type: model.TaskTypeWork, Status: model.TaskStatusPending, Priority: model.TaskPriorityLow},
			{ID: 2, Title: "b", Type: model.TaskTypeStudy, Status: model.TaskStatusCompleted, Priority: model.TaskPriorityHigh},
		}
	})
	svc := newServices(t, b, "tok")
	ctx := context.Background()

	study, err := svc.Tasks.ListByType(ctx, model.TaskTypeStudy)
	require.NoError(t, err)
	require.Len(t, study, 1)
	assert.Equal(t, int64(2), study[0].ID)

	board, err := svc.Tasks.Kanban(ctx)
	require.NoError(t, err)
	assert.Len(t, board[model.TaskStatusPending], 1)
	assert.Len(t, board[model.TaskStatusCompleted], 1)
	assert.Empty(t, board[model.TaskStatusInProgress])

	req := study[0].Request()
	req.Status = model.TaskStatusInProgress
	updated, err := svc.Tasks.Update(ctx, 2, req)
	require.NoError(t, err)
	assert.Equal(t, model.TaskStatusInProgress, updated.Status)
}

func TestUnknownEnumRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":1,"title":"x","type":"WORK","status":"ARCHIVED","priority":"LOW"}]`))
	}))
	t.Cleanup(srv.Close)

	svc := api.NewServices(api.NewClient(api.Options{BaseURL: srv.URL}))
	_, err := svc.Tasks.List(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ARCHIVED")
}

func TestNotificationEndpoints(t *testing.T) {
	b := testutil.NewBackend(t)
	b.Seed(func(d *testutil.Data) {
		d.Notifications = []model.Notification{
			{ID: 1, Title: "a", Type: model.NotificationTaskDue},
			{ID: 2, Title: "b", Type: model.NotificationHabitMissed, IsRead: true},
		}
	})
	svc := newServices(t, b, "tok")
	ctx := context.Background()

	n, err := svc.Notifications.UnreadCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, svc.Notifications.MarkAsRead(ctx, 1))
	n, err = svc.Notifications.UnreadCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	err = svc.Notifications.MarkAsRead(ctx, 99)
	assert.Equal(t, http.StatusNotFound, api.StatusCode(err))
}

func TestUserEndpoints(t *testing.T) {
	b := testutil.NewBackend(t)
	b.Seed(func(d *testutil.Data) {
		d.Profile = model.User{ID: 7, Email: "me@x.io", FirstName: "Ada"}
		d.Users = []model.User{
			{ID: 1, Email: "a@x.io", Status: model.UserStatusActive, Roles: []string{model.RoleUser}},
			{ID: 2, Email: "b@x.io", Status: model.UserStatusBlocked, Roles: []string{model.RoleUser}},
		}
	})
	svc := newServices(t, b, "tok")
	ctx := context.Background()

	me, err := svc.Users.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Ada", me.FullName())

	blocked, err := svc.Users.List(ctx, api.UserFilter{
		StartDate: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		Status:    " BLOCKED ",
	})
	require.NoError(t, err)
	require.Len(t, blocked, 1)
	assert.Equal(t, int64(2), blocked[0].ID)
	assert.Equal(t, "startDate=2024-01-02&status=BLOCKED", b.State().LastUserQuery)

	req := blocked[0].Request()
	req.Status = model.UserStatusActive
	req.Roles = []string{model.RoleUser, model.RoleAdmin}
	updated, err := svc.Users.Update(ctx, 2, req)
	require.NoError(t, err)
	assert.Equal(t, model.UserStatusActive, updated.Status)
	assert.True(t, updated.HasRole(model.RoleAdmin))
}

func TestFocusAndHabitLogs(t *testing.T) {
	b := testutil.NewBackend(t)
	svc := newServices(t, b, "tok")
	ctx := context.Background()

	start := time.Date(2024, 5, 1, 9, 0, 0, 0, time.Local)
	fs := model.NewFocusSession(model.TimerModeWork, start, start.Add(35*time.Minute))
	_, err := svc.Focus.Create(ctx, fs)
	require.NoError(t, err)

	today, err := svc.Focus.Today(ctx)
	require.NoError(t, err)
	require.Len(t, today, 1)
	assert.Equal(t, "09:35:00", today[0].EndTime)

	require.NoError(t, svc.Habits.Log(ctx, model.HabitLogRequest{HabitID: 3, Completed: true}))
	logs := b.State().HabitLogs
	require.Len(t, logs, 1)
	assert.Equal(t, int64(3), logs[0].HabitID)
}

func TestSummaryToday(t *testing.T) {
	b := testutil.NewBackend(t)
	b.Seed(func(d *testutil.Data) {
		d.Summary = model.DailySummary{
			ActiveGoals: []model.Goal{{ID: 1, Title: "Run", Progress: 40}},
		}
	})
	svc := newServices(t, b, "tok")

	sum, err := svc.Summary.Today(context.Background())
	require.NoError(t, err)
	require.Len(t, sum.ActiveGoals, 1)
	assert.Equal(t, 40, sum.ActiveGoals[0].Progress)
}

func TestSummaryTodaySharesInflightRequest(t *testing.T) {
	b := testutil.NewBackend(t)
	b.Delay(http.MethodGet, "/summary/today", 100*time.Millisecond)
	svc := newServices(t, b, "tok")

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Summary.Today(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Less(t, b.Hits(http.MethodGet, "/summary/today"), 4)
}

type switchableToken struct {
	mu    sync.Mutex
	token string
}

func (s *switchableToken) set(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

func (s *switchableToken) Token() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, s.token != ""
}

func TestSummaryTodayNotSharedAcrossTokens(t *testing.T) {
	b := testutil.NewBackend(t)
	b.Delay(http.MethodGet, "/summary/today", 200*time.Millisecond)
	tokens := &switchableToken{token: "alice"}
	svc := api.NewServices(api.NewClient(api.Options{BaseURL: b.URL(), Tokens: tokens}))

	done := make(chan error, 1)
	go func() {
		_, err := svc.Summary.Today(context.Background())
		done <- err
	}()
	require.Eventually(t, func() bool {
		return b.AuthHeader(http.MethodGet, "/summary/today") == "Bearer alice"
	}, time.Second, 5*time.Millisecond)

	tokens.set("bob")
	_, err := svc.Summary.Today(context.Background())
	require.NoError(t, err)
	require.NoError(t, <-done)

	assert.Equal(t, 2, b.Hits(http.MethodGet, "/summary/today"))
	assert.Equal(t, "Bearer bob", b.AuthHeader(http.MethodGet, "/summary/today"))
}

func TestAuthTransportPublicPathsMatchExactly(t *testing.T) {
	headers := map[string]string{}
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		headers[r.URL.Path] = r.Header.Get("Authorization")
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("{}"))
	}))
	t.Cleanup(srv.Close)

	c := api.NewClient(api.Options{BaseURL: srv.URL + "/api/", Tokens: staticToken("tok")})
	ctx := context.Background()
	for _, path := range []string{"/auth/login", "/auth/register/", "/notes/auth/login", "/tasks"} {
		var out map[string]any
		require.NoError(t, c.Get(ctx, path, &out), path)
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Empty(t, headers["/api/auth/login"])
	assert.Empty(t, headers["/api/auth/register/"])
	assert.Equal(t, "Bearer tok", headers["/api/notes/auth/login"])
	assert.Equal(t, "Bearer tok", headers["/api/tasks"])
}

func TestRateLimiter(t *testing.T) {
	b := testutil.NewBackend(t)
	c := api.NewClient(api.Options{BaseURL: b.URL(), MaxRequestsPerSec: 20})
	svc := api.NewServices(c)

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := svc.Habits.List(context.Background())
		require.NoError(t, err)
	}
	// Burst of one: the second and third requests wait ~50ms each.
	assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
}

func TestPing(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	c := api.NewClient(api.Options{BaseURL: srv.URL, Timeout: time.Second})
	assert.NoError(t, c.Ping(context.Background()))

	srv.Close()
	assert.Error(t, c.Ping(context.Background()))
}
