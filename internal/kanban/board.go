// Package kanban holds the four-column task board and the drop logic that
// moves tasks between columns.
package kanban

import (
	"fmt"

	"github.com/nhle/dayboard/internal/model"
)

// Board is the task board, one column per status in TaskStatuses order.
// The zero value is an empty board.
type Board struct {
	columns map[model.TaskStatus][]model.Task
}

// NewBoard builds a board from the server's status→tasks grouping. Missing
// columns start empty; statuses outside the four columns are dropped.
func NewBoard(groups map[model.TaskStatus][]model.Task) *Board {
	b := &Board{columns: make(map[model.TaskStatus][]model.Task, 4)}
	for _, s := range model.TaskStatuses() {
		b.columns[s] = append([]model.Task{}, groups[s]...)
	}
	return b
}

// Columns returns the column statuses in display order.
func (b *Board) Columns() []model.TaskStatus {
	return model.TaskStatuses()
}

// Column returns a copy of the tasks in column s.
func (b *Board) Column(s model.TaskStatus) []model.Task {
	return append([]model.Task{}, b.columns[s]...)
}

// Len returns the number of tasks in column s.
func (b *Board) Len(s model.TaskStatus) int {
	return len(b.columns[s])
}

// Total returns the number of tasks on the board.
func (b *Board) Total() int {
	n := 0
	for _, tasks := range b.columns {
		n += len(tasks)
	}
	return n
}

// Move relocates the task at fromIdx in column from to toIdx in column to.
// toIdx is clamped to the target column. Within one column the task is
// spliced into its new position. Across columns the task is transferred and
// its status set to the target column. It returns the moved task and
// whether it changed columns.
func (b *Board) Move(from model.TaskStatus, fromIdx int, to model.TaskStatus, toIdx int) (model.Task, bool, error) {
	if !from.Valid() || !to.Valid() {
		return model.Task{}, false, fmt.Errorf("moving between %q and %q: unknown column", from, to)
	}
	src := b.columns[from]
	if fromIdx < 0 || fromIdx >= len(src) {
		return model.Task{}, false, fmt.Errorf("no task at %s[%d]", from, fromIdx)
	}

	task := src[fromIdx]
	src = append(src[:fromIdx:fromIdx], src[fromIdx+1:]...)

	if from == to {
		b.columns[from] = insert(src, clamp(toIdx, len(src)), task)
		return task, false, nil
	}

	b.columns[from] = src
	task.Status = to
	b.columns[to] = insert(b.columns[to], clamp(toIdx, len(b.columns[to])), task)
	return task, true, nil
}

func clamp(i, n int) int {
	if i < 0 {
		return 0
	}
	if i > n {
		return n
	}
	return i
}

func insert(tasks []model.Task, i int, t model.Task) []model.Task {
	out := make([]model.Task, 0, len(tasks)+1)
	out = append(out, tasks[:i]...)
	out = append(out, t)
	return append(out, tasks[i:]...)
}
