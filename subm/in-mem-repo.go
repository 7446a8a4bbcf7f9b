package subm

import (
	"context"
	"sync"
)

// InMemRepo keeps submissions in insertion order.
type InMemRepo struct {
	mu    sync.RWMutex
	subms []Submission
}

func NewInMemRepo() *InMemRepo {
	return &InMemRepo{}
}

func (r *InMemRepo) StoreSubm(ctx context.Context, s Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subms = append(r.subms, s)
	return nil
}

func (r *InMemRepo) ListSubms(ctx context.Context) ([]Submission, error) {
	return r.filter(func(Submission) bool { return true }), nil
}

func (r *InMemRepo) ListSubmsByUser(ctx context.Context, userID string) ([]Submission, error) {
	return r.filter(func(s Submission) bool { return s.UserID == userID }), nil
}

func (r *InMemRepo) ListSubmsByTask(ctx context.Context, taskID string) ([]Submission, error) {
	return r.filter(func(s Submission) bool { return s.TaskID == taskID }), nil
}

func (r *InMemRepo) filter(keep func(Submission) bool) []Submission {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := make([]Submission, 0)
	for _, s := range r.subms {
		if keep(s) {
			res = append(res, s)
		}
	}
	return res
}
