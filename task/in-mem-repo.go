package task

import (
	"context"
	"sort"
	"sync"
	"time"
)

type InMemRepo struct {
	mu    sync.RWMutex
	tasks map[string]Task
}

func NewInMemRepo() *InMemRepo {
	return &InMemRepo{
		tasks: make(map[string]Task),
	}
}

func (r *InMemRepo) StoreTask(ctx context.Context, t Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[t.ID]; ok {
		return ErrTaskExists()
	}
	r.tasks[t.ID] = t
	return nil
}

func (r *InMemRepo) GetTask(ctx context.Context, id string) (Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if t, ok := r.tasks[id]; ok {
		return t, nil
	}
	return Task{}, ErrTaskNotFound()
}

func (r *InMemRepo) ListTasks(ctx context.Context) ([]Task, error) {
	return r.filter(func(Task) bool { return true }), nil
}

func (r *InMemRepo) ListTasksAssignedTo(ctx context.Context, userID string) ([]Task, error) {
	return r.filter(func(t Task) bool { return t.AssignedTo == userID }), nil
}

func (r *InMemRepo) ListAwaitingMissedCheck(ctx context.Context) ([]Task, error) {
	return r.filter(Task.AwaitingMissedCheck), nil
}

func (r *InMemRepo) MarkSubmitted(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok {
		return ErrTaskNotFound()
	}
	if t.Status != StatusPending {
		return ErrTaskNotPending()
	}
	t.Status = StatusSubmitted
	r.tasks[id] = t
	return nil
}

func (r *InMemRepo) MarkMissed(ctx context.Context, id string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok {
		return false, ErrTaskNotFound()
	}
	if !t.AwaitingMissedCheck() {
		return false, nil
	}
	t.Status = StatusMissed
	t.MissedPenaltyApplied = true
	t.MissedAt = &at
	r.tasks[id] = t
	return true, nil
}

func (r *InMemRepo) filter(keep func(Task) bool) []Task {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := make([]Task, 0)
	for _, t := range r.tasks {
		if keep(t) {
			res = append(res, t)
		}
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].AssignedAt.Equal(res[j].AssignedAt) {
			return res[i].ID < res[j].ID
		}
		return res[i].AssignedAt.Before(res[j].AssignedAt)
	})
	return res
}
