package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"

	"github.com/nhle/dayboard/internal/model"
)

// Data is the mutable state served by Backend.
type Data struct {
	Credentials model.Credentials
	Token       string

	Summary       model.DailySummary
	Profile       model.User
	Users         []model.User
	Tasks         []model.Task
	Goals         []model.Goal
	Habits        []model.Habit
	Events        []model.Event
	Diary         []model.DiaryEntry
	Notifications []model.Notification
	HabitLogs     []model.HabitLogRequest
	FocusSessions []model.FocusSession

	// LastUserQuery is the raw query of the last GET /admin/users.
	LastUserQuery string
}

// Backend is an in-memory fake of the REST API served over httptest.
type Backend struct {
	Server *httptest.Server

	mu       sync.Mutex
	data     Data
	nextID   int64
	hits     map[string]int
	failures map[string]int
	auth     map[string]string
	delays   map[string]time.Duration
}

// NewBackend starts a fake API server that is shut down when the test ends.
func NewBackend(t testing.TB) *Backend {
	t.Helper()

	b := &Backend{
		nextID:   1000,
		hits:     make(map[string]int),
		failures: make(map[string]int),
		auth:     make(map[string]string),
		delays:   make(map[string]time.Duration),
	}

	r := chi.NewRouter()
	r.Use(b.record)

	r.Post("/auth/login", b.login)
	r.Post("/auth/register", b.register)
	r.Get("/summary/today", b.serve(func(d *Data) any { return d.Summary }))
	r.Get("/user/profile", b.serve(func(d *Data) any { return d.Profile }))

	r.Get("/tasks/kanban", b.kanban)
	r.Get("/tasks/type/{type}", b.tasksByType)
	mountCRUD(b, r, "/tasks",
		func(d *Data) *[]model.Task { return &d.Tasks },
		func(t *model.Task) *int64 { return &t.ID })
	mountCRUD(b, r, "/goals",
		func(d *Data) *[]model.Goal { return &d.Goals },
		func(g *model.Goal) *int64 { return &g.ID })
	mountCRUD(b, r, "/habits",
		func(d *Data) *[]model.Habit { return &d.Habits },
		func(h *model.Habit) *int64 { return &h.ID })
	mountCRUD(b, r, "/events",
		func(d *Data) *[]model.Event { return &d.Events },
		func(e *model.Event) *int64 { return &e.ID })
	mountCRUD(b, r, "/diary",
		func(d *Data) *[]model.DiaryEntry { return &d.Diary },
		func(e *model.DiaryEntry) *int64 { return &e.ID })

	r.Post("/habit-logs", b.logHabit)

	r.Get("/notifications", b.serve(func(d *Data) any { return d.Notifications }))
	r.Get("/notifications/unread-count", b.serve(func(d *Data) any {
		return model.CountUnread(d.Notifications)
	}))
	r.Patch("/notifications/{id}/mark-as-read", b.markAsRead)

	r.Post("/focus-sessions", b.createFocusSession)
	r.Get("/focus-sessions/today", b.serve(func(d *Data) any { return d.FocusSessions }))

	r.Get("/admin/users", b.listUsers)
	r.Put("/admin/users/{id}", b.updateUser)

	b.Server = httptest.NewServer(r)
	t.Cleanup(b.Server.Close)

	return b
}

// URL returns the base URL of the fake API with a trailing slash.
func (b *Backend) URL() string {
	return b.Server.URL + "/"
}

// Seed mutates the served state under lock.
func (b *Backend) Seed(fn func(d *Data)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fn(&b.data)
}

// State returns a copy of the served state.
func (b *Backend) State() Data {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.data
}

// Fail makes every request to "METHOD /path" answer with status.
// A zero status clears the failure.
func (b *Backend) Fail(method, path string, status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	key := method + " " + path
	if status == 0 {
		delete(b.failures, key)
		return
	}
	b.failures[key] = status
}

// Delay holds every request to "METHOD /path" for d before answering.
func (b *Backend) Delay(method, path string, d time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.delays[method+" "+path] = d
}

// Hits returns how many requests reached "METHOD /path".
func (b *Backend) Hits(method, path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hits[method+" "+path]
}

// AuthHeader returns the Authorization header of the last request to
// "METHOD /path".
func (b *Backend) AuthHeader(method, path string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.auth[method+" "+path]
}

func (b *Backend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path

		b.mu.Lock()
		b.hits[key]++
		b.auth[key] = r.Header.Get("Authorization")
		status := b.failures[key]
		delay := b.delays[key]
		b.mu.Unlock()

		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}

		if status != 0 {
			http.Error(w, http.StatusText(status), status)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) serve(get func(d *Data) any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		v := get(&b.data)
		b.mu.Unlock()
		writeJSON(w, http.StatusOK, v)
	}
}

func (b *Backend) login(w http.ResponseWriter, r *http.Request) {
	var creds model.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	b.mu.Lock()
	want, token := b.data.Credentials, b.data.Token
	b.mu.Unlock()

	if creds != want {
		http.Error(w, "bad credentials", http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, model.AuthResponse{Token: token})
}

func (b *Backend) register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	b.mu.Lock()
	b.data.Credentials = model.Credentials{Email: req.Email, Password: req.Password}
	token := b.data.Token
	b.mu.Unlock()

	writeJSON(w, http.StatusOK, model.AuthResponse{Token: token})
}

func (b *Backend) kanban(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	board := make(map[model.TaskStatus][]model.Task)
	for _, s := range model.TaskStatuses() {
		board[s] = []model.Task{}
	}
	for _, t := range b.data.Tasks {
		board[t.Status] = append(board[t.Status], t)
	}
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, board)
}

func (b *Backend) tasksByType(w http.ResponseWriter, r *http.Request) {
	want := model.TaskType(chi.URLParam(r, "type"))

	b.mu.Lock()
	out := []model.Task{}
	for _, t := range b.data.Tasks {
		if t.Type == want {
			out = append(out, t)
		}
	}
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) logHabit(w http.ResponseWriter, r *http.Request) {
	var req model.HabitLogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	b.mu.Lock()
	b.data.HabitLogs = append(b.data.HabitLogs, req)
	b.mu.Unlock()
	w.WriteHeader(http.StatusCreated)
}

func (b *Backend) markAsRead(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.data.Notifications {
		if b.data.Notifications[i].ID == id {
			b.data.Notifications[i].IsRead = true
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	http.Error(w, "not found", http.StatusNotFound)
}

func (b *Backend) createFocusSession(w http.ResponseWriter, r *http.Request) {
	var fs model.FocusSession
	if err := json.NewDecoder(r.Body).Decode(&fs); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	b.mu.Lock()
	b.data.FocusSessions = append(b.data.FocusSessions, fs)
	b.mu.Unlock()
	writeJSON(w, http.StatusCreated, fs)
}

func (b *Backend) listUsers(w http.ResponseWriter, r *http.Request) {
	status := strings.TrimSpace(r.URL.Query().Get("status"))

	b.mu.Lock()
	b.data.LastUserQuery = r.URL.RawQuery
	out := []model.User{}
	for _, u := range b.data.Users {
		if status == "" || string(u.Status) == status {
			out = append(out, u)
		}
	}
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) updateUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var req model.UserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for i, u := range b.data.Users {
		if u.ID != id {
			continue
		}
		u.Email = req.Email
		u.FirstName = req.FirstName
		u.LastName = req.LastName
		u.Roles = req.Roles
		u.Status = req.Status
		b.data.Users[i] = u
		writeJSON(w, http.StatusOK, u)
		return
	}
	http.Error(w, "not found", http.StatusNotFound)
}

// mountCRUD serves list, create, update and delete for one collection.
func mountCRUD[T any](
	b *Backend,
	r chi.Router,
	path string,
	items func(d *Data) *[]T,
	idField func(item *T) *int64,
) {
	r.Get(path, func(w http.ResponseWriter, _ *http.Request) {
		b.mu.Lock()
		out := append([]T{}, *items(&b.data)...)
		b.mu.Unlock()
		writeJSON(w, http.StatusOK, out)
	})

	r.Post(path, func(w http.ResponseWriter, r *http.Request) {
		var item T
		if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		b.mu.Lock()
		b.nextID++
		*idField(&item) = b.nextID
		list := items(&b.data)
		*list = append([]T{item}, *list...)
		b.mu.Unlock()
		writeJSON(w, http.StatusCreated, item)
	})

	r.Put(path+"/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		var item T
		if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		*idField(&item) = id

		b.mu.Lock()
		defer b.mu.Unlock()
		list := items(&b.data)
		for i := range *list {
			if *idField(&(*list)[i]) == id {
				(*list)[i] = item
				writeJSON(w, http.StatusOK, item)
				return
			}
		}
		http.Error(w, "not found", http.StatusNotFound)
	})

	r.Delete(path+"/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		b.mu.Lock()
		defer b.mu.Unlock()
		list := items(&b.data)
		for i := range *list {
			if *idField(&(*list)[i]) == id {
				*list = append((*list)[:i], (*list)[i+1:]...)
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}
		http.Error(w, "not found", http.StatusNotFound)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// MintToken signs a JWT carrying roles. A zero exp omits the exp claim.
func MintToken(t testing.TB, exp time.Time, roles ...string) string {
	t.Helper()

	claims := jwt.MapClaims{"sub": "user@example.com"}
	if !exp.IsZero() {
		claims["exp"] = exp.Unix()
	}
	if roles != nil {
		claims["roles"] = roles
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return token
}
