package api

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/nhle/dayboard/internal/model"
)

// Services groups one client per backend resource.
type Services struct {
	Auth          AuthService
	Tasks         TaskService
	Goals         GoalService
	Habits        HabitService
	Events        EventService
	Diary         DiaryService
	Notifications NotificationService
	Focus         FocusService
	Users         UserService
	Summary       *SummaryService
}

// NewServices builds every resource client on top of c.
func NewServices(c *Client) *Services {
	return &Services{
		Auth:          AuthService{client: c},
		Tasks:         TaskService{Resource: NewResource[model.TaskRequest, model.Task](c, "/tasks")},
		Goals:         GoalService{Resource: NewResource[model.GoalRequest, model.Goal](c, "/goals")},
		Habits:        HabitService{Resource: NewResource[model.Habit, model.Habit](c, "/habits")},
		Events:        EventService{Resource: NewResource[model.EventRequest, model.Event](c, "/events")},
		Diary:         DiaryService{Resource: NewResource[model.DiaryEntryRequest, model.DiaryEntry](c, "/diary")},
		Notifications: NotificationService{client: c},
		Focus:         FocusService{client: c},
		Users:         UserService{client: c},
		Summary:       &SummaryService{client: c},
	}
}

// AuthService talks to the public /auth endpoints.
type AuthService struct {
	client *Client
}

// Login exchanges credentials for a bearer token.
func (s AuthService) Login(ctx context.Context, creds model.Credentials) (model.AuthResponse, error) {
	var out model.AuthResponse
	err := s.client.Post(ctx, "/auth/login", creds, &out)
	return out, err
}

// Register creates an account and returns its bearer token.
func (s AuthService) Register(ctx context.Context, req model.RegisterRequest) (model.AuthResponse, error) {
	var out model.AuthResponse
	err := s.client.Post(ctx, "/auth/register", req, &out)
	return out, err
}

// TaskService manages /tasks.
type TaskService struct {
	Resource[model.TaskRequest, model.Task]
}

// ListByType fetches tasks of one type.
func (s TaskService) ListByType(ctx context.Context, t model.TaskType) ([]model.Task, error) {
	var out []model.Task
	path := s.Path() + "/type/" + url.PathEscape(string(t))
	if err := s.client.Get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Kanban fetches tasks grouped by status column.
func (s TaskService) Kanban(ctx context.Context) (map[model.TaskStatus][]model.Task, error) {
	out := make(map[model.TaskStatus][]model.Task)
	if err := s.client.Get(ctx, s.Path()+"/kanban", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GoalService manages /goals.
type GoalService struct {
	Resource[model.GoalRequest, model.Goal]
}

// HabitService manages /habits and the /habit-logs endpoint.
type HabitService struct {
	Resource[model.Habit, model.Habit]
}

// Log records a habit completion.
func (s HabitService) Log(ctx context.Context, req model.HabitLogRequest) error {
	return s.client.Post(ctx, "/habit-logs", req, nil)
}

// EventService manages /events.
type EventService struct {
	Resource[model.EventRequest, model.Event]
}

// DiaryService manages /diary.
type DiaryService struct {
	Resource[model.DiaryEntryRequest, model.DiaryEntry]
}

// NotificationService reads and acknowledges /notifications.
type NotificationService struct {
	client *Client
}

// List fetches the current user's notifications.
func (s NotificationService) List(ctx context.Context) ([]model.Notification, error) {
	var out []model.Notification
	if err := s.client.Get(ctx, "/notifications", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MarkAsRead acknowledges a single notification.
func (s NotificationService) MarkAsRead(ctx context.Context, id int64) error {
	return s.client.Patch(ctx, fmt.Sprintf("/notifications/%d/mark-as-read", id), struct{}{}, nil)
}

// UnreadCount returns the server-side count of unread notifications.
func (s NotificationService) UnreadCount(ctx context.Context) (int, error) {
	var n int
	err := s.client.Get(ctx, "/notifications/unread-count", &n)
	return n, err
}

// FocusService records pomodoro sessions.
type FocusService struct {
	client *Client
}

// Create records a finished focus session.
func (s FocusService) Create(ctx context.Context, fs model.FocusSession) (model.FocusSession, error) {
	var out model.FocusSession
	err := s.client.Post(ctx, "/focus-sessions", fs, &out)
	return out, err
}

// Today fetches today's sessions.
func (s FocusService) Today(ctx context.Context) ([]model.FocusSession, error) {
	var out []model.FocusSession
	if err := s.client.Get(ctx, "/focus-sessions/today", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UserFilter narrows the admin user list. Zero values are omitted.
type UserFilter struct {
	StartDate time.Time
	EndDate   time.Time
	Status    string
}

// Values encodes the filter as query parameters.
func (f UserFilter) Values() url.Values {
	q := url.Values{}
	if !f.StartDate.IsZero() {
		q.Set("startDate", f.StartDate.Format(model.DateLayout))
	}
	if !f.EndDate.IsZero() {
		q.Set("endDate", f.EndDate.Format(model.DateLayout))
	}
	if status := strings.TrimSpace(f.Status); status != "" {
		q.Set("status", status)
	}
	return q
}

// UserService covers the profile and admin user endpoints.
type UserService struct {
	client *Client
}

// Profile fetches the signed-in user.
func (s UserService) Profile(ctx context.Context) (model.User, error) {
	var out model.User
	err := s.client.Get(ctx, "/user/profile", &out)
	return out, err
}

// List fetches accounts matching filter. Admin only.
func (s UserService) List(ctx context.Context, filter UserFilter) ([]model.User, error) {
	var out []model.User
	if err := s.client.GetQuery(ctx, "/admin/users", filter.Values(), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Update replaces an account. Admin only.
func (s UserService) Update(ctx context.Context, id int64, req model.UserRequest) (model.User, error) {
	var out model.User
	err := s.client.Put(ctx, fmt.Sprintf("/admin/users/%d", id), req, &out)
	return out, err
}

// SummaryService fetches /summary/today. Concurrent callers holding the same
// token share a single in-flight request.
type SummaryService struct {
	client *Client
	group  singleflight.Group
}

// Today returns today's digest.
func (s *SummaryService) Today(ctx context.Context) (model.DailySummary, error) {
	v, err, _ := s.group.Do("today:"+s.client.identity(), func() (any, error) {
		var out model.DailySummary
		if err := s.client.Get(ctx, "/summary/today", &out); err != nil {
			return model.DailySummary{}, err
		}
		return out, nil
	})
	if err != nil {
		return model.DailySummary{}, err
	}
	return v.(model.DailySummary), nil
}
