package task

import (
	"context"
	"time"
)

type Repo interface {
	StoreTask(ctx context.Context, t Task) error
	GetTask(ctx context.Context, id string) (Task, error)
	ListTasks(ctx context.Context) ([]Task, error)
	ListTasksAssignedTo(ctx context.Context, userID string) ([]Task, error)
	// ListAwaitingMissedCheck returns pending tasks without an applied penalty.
	ListAwaitingMissedCheck(ctx context.Context) ([]Task, error)

	// MarkSubmitted moves a pending task to submitted, or fails with ErrTaskNotPending.
	MarkSubmitted(ctx context.Context, id string) error
	// MarkMissed is a compare-and-swap on the penalty guard. It reports false
	// when the task is no longer pending or was already penalized.
	MarkMissed(ctx context.Context, id string, at time.Time) (bool, error)
}
