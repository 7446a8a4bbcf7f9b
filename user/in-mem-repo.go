package user

import (
	"context"
	"sort"
	"sync"
)

type InMemRepo struct {
	mu    sync.RWMutex
	users map[string]User
}

func NewInMemRepo() *InMemRepo {
	return &InMemRepo{
		users: make(map[string]User),
	}
}

func (r *InMemRepo) StoreUser(ctx context.Context, u User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; ok {
		return ErrUserExists()
	}
	r.users[u.ID] = u
	return nil
}

func (r *InMemRepo) GetUser(ctx context.Context, id string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return User{}, ErrUserNotFound()
}

func (r *InMemRepo) ListUsers(ctx context.Context) ([]User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := make([]User, 0, len(r.users))
	for _, u := range r.users {
		res = append(res, u)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, nil
}

func (r *InMemRepo) AddScore(ctx context.Context, id string, delta int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return 0, ErrUserNotFound()
	}
	u.Score += delta
	r.users[id] = u
	return u.Score, nil
}

func (r *InMemRepo) SetScore(ctx context.Context, id string, score int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return ErrUserNotFound()
	}
	u.Score = score
	r.users[id] = u
	return nil
}
