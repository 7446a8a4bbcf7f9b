package scoresrvc

import (
	"context"
	"time"

	"github.com/qacker/backend/scoreledger"
	"github.com/qacker/backend/subm"
	"github.com/qacker/backend/task"
	"github.com/qacker/backend/user"
	"github.com/qacker/backend/worktime"
	"golang.org/x/sync/singleflight"
)

type UserRepoFacade interface {
	ListUsers(ctx context.Context) ([]user.User, error)
}

type TaskRepoFacade interface {
	ListTasks(ctx context.Context) ([]task.Task, error)
	ListAwaitingMissedCheck(ctx context.Context) ([]task.Task, error)
	MarkMissed(ctx context.Context, id string, at time.Time) (bool, error)
}

type SubmRepoFacade interface {
	ListSubms(ctx context.Context) ([]subm.Submission, error)
}

type LedgerFacade interface {
	ChargeMissedPenalty(ctx context.Context, userID, taskID string) (scoreledger.Entry, error)
	Overwrite(ctx context.Context, userID string, score int, rule string) (scoreledger.Entry, error)
}

// ScoreSrvc hosts the passes that read history across all users: the missed
// task sweep, score reconciliation and the aggregated views.
type ScoreSrvc struct {
	users    UserRepoFacade
	tasks    TaskRepoFacade
	subms    SubmRepoFacade
	ledger   LedgerFacade
	calendar worktime.Calendar
	now      func() time.Time

	sweeps singleflight.Group
}

func NewScoreSrvc(
	users UserRepoFacade,
	tasks TaskRepoFacade,
	subms SubmRepoFacade,
	ledger LedgerFacade,
	calendar worktime.Calendar,
) *ScoreSrvc {
	return &ScoreSrvc{
		users:    users,
		tasks:    tasks,
		subms:    subms,
		ledger:   ledger,
		calendar: calendar,
		now:      time.Now,
	}
}

func (s *ScoreSrvc) WithClock(now func() time.Time) *ScoreSrvc {
	s.now = now
	return s
}
