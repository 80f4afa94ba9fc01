package kanban

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/nhle/dayboard/internal/model"
)

// TaskClient is the part of the task API the board needs.
type TaskClient interface {
	Kanban(ctx context.Context) (map[model.TaskStatus][]model.Task, error)
	Update(ctx context.Context, id int64, req model.TaskRequest) (model.Task, error)
}

// Service loads the board and persists cross-column drops.
type Service struct {
	tasks TaskClient
	log   *zap.Logger
}

// NewService creates a Service backed by tasks.
func NewService(tasks TaskClient, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{tasks: tasks, log: log.Named("kanban")}
}

// Load fetches a fresh board from the server.
func (s *Service) Load(ctx context.Context) (*Board, error) {
	groups, err := s.tasks.Kanban(ctx)
	if err != nil {
		s.log.Error("loading kanban board", zap.Error(err))
		return nil, fmt.Errorf("loading kanban board: %w", err)
	}
	return NewBoard(groups), nil
}

// Drop applies a move to b. A reorder inside one column stays local. A move
// across columns issues exactly one PUT with the new status. The board is
// not rolled back when the PUT fails; callers reload it instead.
func (s *Service) Drop(ctx context.Context, b *Board, from model.TaskStatus, fromIdx int, to model.TaskStatus, toIdx int) error {
	task, crossed, err := b.Move(from, fromIdx, to, toIdx)
	if err != nil {
		return err
	}
	if !crossed {
		return nil
	}
	return s.Persist(ctx, task)
}

// Persist stores the status of a task that Board.Move carried into another
// column.
func (s *Service) Persist(ctx context.Context, task model.Task) error {
	if _, err := s.tasks.Update(ctx, task.ID, task.Request()); err != nil {
		s.log.Error("moving task",
			zap.Int64("task_id", task.ID),
			zap.String("status", string(task.Status)),
			zap.Error(err))
		return fmt.Errorf("moving task %d to %s: %w", task.ID, task.Status, err)
	}
	return nil
}
