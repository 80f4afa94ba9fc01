package kanban

import (
	"context"
	"errors"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/dayboard/internal/kanban"
	"github.com/nhle/dayboard/internal/keys"
	"github.com/nhle/dayboard/internal/model"
	"github.com/nhle/dayboard/internal/ui"
	"github.com/nhle/dayboard/internal/ui/detail"
)

// fakeTasks serves a fixed board and fails updates while failUpdates is set.
type fakeTasks struct {
	mu          sync.Mutex
	failUpdates bool
	updates     []model.TaskRequest
}

func (f *fakeTasks) Kanban(context.Context) (map[model.TaskStatus][]model.Task, error) {
	return map[model.TaskStatus][]model.Task{
		model.TaskStatusPending: {
			{ID: 1, Title: "Draft agenda", Status: model.TaskStatusPending},
			{ID: 2, Title: "Book room", Status: model.TaskStatusPending},
		},
	}, nil
}

func (f *fakeTasks) Update(_ context.Context, id int64, req model.TaskRequest) (model.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, req)
	if f.failUpdates {
		return model.Task{}, errors.New("server unavailable")
	}
	return model.Task{ID: id, Title: req.Title, Status: req.Status}, nil
}

// run executes cmd and returns every message it produces, flattening batches.
func run(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	batch, ok := msg.(tea.BatchMsg)
	if !ok {
		return []tea.Msg{msg}
	}
	var out []tea.Msg
	for _, c := range batch {
		out = append(out, run(c)...)
	}
	return out
}

func loadedModel(t *testing.T, tasks *fakeTasks) Model {
	t.Helper()
	m := New(kanban.NewService(tasks, nil), keys.DefaultKeyMap(), 120, 40)
	msgs := run(m.Load())
	require.Len(t, msgs, 1)
	m, _ = m.Update(msgs[0])
	require.NotNil(t, m.board)
	return m
}

func moveRight() tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'L'}}
}

func TestMoveAcrossColumnsPersists(t *testing.T) {
	tasks := &fakeTasks{}
	m := loadedModel(t, tasks)

	m, cmd := m.Update(moveRight())
	assert.Equal(t, 1, m.board.Len(model.TaskStatusInProgress))
	assert.Equal(t, 1, m.saving)

	msgs := run(cmd)
	require.Len(t, msgs, 1)
	m, cmd = m.Update(msgs[0])
	assert.Zero(t, m.saving)

	result := run(cmd)
	require.Len(t, result, 1)
	assert.Equal(t, ui.ResultMsg{Info: `Moved "Draft agenda" to In Progress`}, result[0])
	require.Len(t, tasks.updates, 1)
	assert.Equal(t, model.TaskStatusInProgress, tasks.updates[0].Status)
}

func TestFailedMoveReportsAndReloads(t *testing.T) {
	tasks := &fakeTasks{failUpdates: true}
	m := loadedModel(t, tasks)

	m, cmd := m.Update(moveRight())
	require.Equal(t, 1, m.board.Len(model.TaskStatusInProgress))

	moved := run(cmd)
	require.Len(t, moved, 1)
	m, cmd = m.Update(moved[0])

	var (
		result ui.ResultMsg
		loaded LoadedMsg
		gotRes bool
		gotLd  bool
	)
	for _, msg := range run(cmd) {
		switch msg := msg.(type) {
		case ui.ResultMsg:
			result, gotRes = msg, true
		case LoadedMsg:
			loaded, gotLd = msg, true
		}
	}
	require.True(t, gotRes, "failure is reported")
	require.True(t, gotLd, "board is reloaded")
	assert.ErrorContains(t, result.Err, "server unavailable")

	m, _ = m.Update(loaded)
	assert.Equal(t, 2, m.board.Len(model.TaskStatusPending))
	assert.Zero(t, m.board.Len(model.TaskStatusInProgress))
}

func TestReorderWithinColumnStaysLocal(t *testing.T) {
	tasks := &fakeTasks{}
	m := loadedModel(t, tasks)

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'J'}})
	assert.Nil(t, cmd)
	assert.Empty(t, tasks.updates)
	assert.Equal(t, "Book room", m.board.Column(model.TaskStatusPending)[0].Title)
}

func TestSelectOpensDetail(t *testing.T) {
	m := loadedModel(t, &fakeTasks{})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	msgs := run(cmd)
	require.Len(t, msgs, 1)
	assert.Equal(t, int64(1), msgs[0].(detail.OpenMsg).Task.ID)
}
