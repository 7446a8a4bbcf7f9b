package tasksrvc

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/qacker/backend/logger"
	"github.com/qacker/backend/task"
	"github.com/qacker/backend/user"
)

type UserSrvcFacade interface {
	GetUser(ctx context.Context, id string) (user.User, error)
}

type TaskSrvc struct {
	tasks task.Repo
	users UserSrvcFacade
	now   func() time.Time
}

func NewTaskSrvc(tasks task.Repo, users UserSrvcFacade) *TaskSrvc {
	return &TaskSrvc{
		tasks: tasks,
		users: users,
		now:   time.Now,
	}
}

func (s *TaskSrvc) WithClock(now func() time.Time) *TaskSrvc {
	s.now = now
	return s
}

type AssignTaskParams struct {
	QuestionRef  string
	Topic        string
	AnswerDraft  string
	AssignedTo   string
	DueAt        time.Time
	ActingUserID string
}

// AssignTask creates a pending task for a contributor, stamped with the current time.
func (s *TaskSrvc) AssignTask(ctx context.Context, p AssignTaskParams) (task.Task, error) {
	if err := s.requireAdmin(ctx, p.ActingUserID); err != nil {
		return task.Task{}, err
	}

	questionRef := strings.TrimSpace(p.QuestionRef)
	if questionRef == "" {
		return task.Task{}, ErrQuestionRefEmpty()
	}
	if p.AssignedTo == "" {
		return task.Task{}, ErrAssigneeEmpty()
	}
	if p.DueAt.IsZero() {
		return task.Task{}, ErrDueAtMissing()
	}

	assignee, err := s.users.GetUser(ctx, p.AssignedTo)
	if err != nil {
		return task.Task{}, fmt.Errorf("failed to get assignee: %w", err)
	}
	if assignee.Role != user.RoleContributor {
		return task.Task{}, ErrAssigneeNotContributor()
	}

	t := task.Task{
		ID:          uuid.NewString(),
		QuestionRef: questionRef,
		Topic:       strings.TrimSpace(p.Topic),
		AnswerDraft: p.AnswerDraft,
		AssignedTo:  assignee.ID,
		AssignedBy:  p.ActingUserID,
		AssignedAt:  s.now(),
		DueAt:       p.DueAt,
		Status:      task.StatusPending,
	}
	if err := s.tasks.StoreTask(ctx, t); err != nil {
		return task.Task{}, fmt.Errorf("failed to store task: %w", err)
	}

	logger.FromContext(ctx).Info("task assigned",
		slog.String("task_id", t.ID),
		slog.String("assigned_to", t.AssignedTo),
		slog.Time("due_at", t.DueAt))

	return t, nil
}

func (s *TaskSrvc) GetTask(ctx context.Context, id string) (task.Task, error) {
	return s.tasks.GetTask(ctx, id)
}

func (s *TaskSrvc) ListTasksForUser(ctx context.Context, userID string) ([]task.Task, error) {
	return s.tasks.ListTasksAssignedTo(ctx, userID)
}

func (s *TaskSrvc) ListAllTasks(ctx context.Context, actingUserID string) ([]task.Task, error) {
	if err := s.requireAdmin(ctx, actingUserID); err != nil {
		return nil, err
	}
	return s.tasks.ListTasks(ctx)
}

func (s *TaskSrvc) requireAdmin(ctx context.Context, userID string) error {
	actor, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get acting user: %w", err)
	}
	if !actor.IsAdmin() {
		return ErrForbidden()
	}
	return nil
}
