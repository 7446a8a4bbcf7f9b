package user

import "context"

type Repo interface {
	StoreUser(ctx context.Context, u User) error
	GetUser(ctx context.Context, id string) (User, error)
	ListUsers(ctx context.Context) ([]User, error)

	// AddScore atomically adds delta to the stored score and returns the new value.
	AddScore(ctx context.Context, id string, delta int) (int, error)
	// SetScore overwrites the stored score. Only reconciliation should use it.
	SetScore(ctx context.Context, id string, score int) error
}
