package subm

import "context"

type Repo interface {
	StoreSubm(ctx context.Context, s Submission) error
	ListSubms(ctx context.Context) ([]Submission, error)
	ListSubmsByUser(ctx context.Context, userID string) ([]Submission, error)
	ListSubmsByTask(ctx context.Context, taskID string) ([]Submission, error)
}
