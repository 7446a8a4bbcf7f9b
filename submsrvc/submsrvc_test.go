package submsrvc_test

import (
	"context"
	"errors"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/qacker/backend/scoreledger"
	"github.com/qacker/backend/scoring"
	"github.com/qacker/backend/srvcerror"
	"github.com/qacker/backend/subm"
	"github.com/qacker/backend/submsrvc"
	"github.com/qacker/backend/task"
	"github.com/qacker/backend/user"
	"github.com/qacker/backend/worktime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	srvc  *submsrvc.SubmissionSrvc
	users *user.InMemRepo
	tasks *task.InMemRepo
	subms *subm.InMemRepo
	audit *scoreledger.InMemAudit
	loc   *time.Location
}

func newFixture(t *testing.T, now time.Time, tasks submsrvc.TaskRepoFacade) *fixture {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	f := &fixture{
		users: user.NewInMemRepo(),
		tasks: task.NewInMemRepo(),
		subms: subm.NewInMemRepo(),
		audit: scoreledger.NewInMemAudit(),
		loc:   loc,
	}
	require.NoError(t, f.users.StoreUser(context.Background(), user.User{
		ID: "writer", Name: "Meera", Role: user.RoleContributor,
	}))
	if tasks == nil {
		tasks = f.tasks
	}
	ledger := scoreledger.NewLedger(f.users, f.audit)
	f.srvc = submsrvc.NewSubmissionSrvc(tasks, f.subms, ledger, worktime.NewCalendar(loc)).
		WithClock(func() time.Time { return now.In(loc) })
	return f
}

func (f *fixture) storeTask(t *testing.T, tk task.Task) {
	t.Helper()
	require.NoError(t, f.tasks.StoreTask(context.Background(), tk))
}

func (f *fixture) score(t *testing.T) int {
	t.Helper()
	u, err := f.users.GetUser(context.Background(), "writer")
	require.NoError(t, err)
	return u.Score
}

func pendingTask(loc *time.Location) task.Task {
	return task.Task{
		ID:          "t1",
		QuestionRef: "q-101",
		AssignedTo:  "writer",
		AssignedBy:  "boss",
		AssignedAt:  time.Date(2024, 6, 10, 9, 0, 0, 0, loc),
		Status:      task.StatusPending,
	}
}

func TestSubmitAnswerScoresTurnaround(t *testing.T) {
	ctx := context.Background()
	loc, _ := time.LoadLocation("Asia/Kolkata")
	f := newFixture(t, time.Date(2024, 6, 10, 10, 30, 0, 0, loc), nil)
	f.storeTask(t, pendingTask(f.loc))

	s, err := f.srvc.SubmitAnswer(ctx, submsrvc.SubmitAnswerParams{
		TaskID:       "t1",
		Link:         "  https://docs.example.com/answer  ",
		ActingUserID: "writer",
	})
	require.NoError(t, err)
	assert.Equal(t, 90, s.WorkingMinutes)
	assert.Equal(t, 5, s.ScoreDelta)
	assert.Equal(t, "https://docs.example.com/answer", s.AnswerLink)
	assert.NotEmpty(t, s.ID)

	stored, err := f.tasks.GetTask(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, task.StatusSubmitted, stored.Status)
	assert.Equal(t, 5, f.score(t))

	all, err := f.subms.ListSubms(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, s, all[0])

	entries, err := f.audit.ListEntries(ctx, "writer")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, scoreledger.KindSubmission, entries[0].Kind)
	assert.Equal(t, s.ID, entries[0].SubmissionID)
}

func TestSubmitAnswerSlowTurnaroundLosesPoints(t *testing.T) {
	loc, _ := time.LoadLocation("Asia/Kolkata")
	// Monday 09:00 to Wednesday 10:00 is two full working days plus an hour.
	f := newFixture(t, time.Date(2024, 6, 12, 10, 0, 0, 0, loc), nil)
	f.storeTask(t, pendingTask(f.loc))

	s, err := f.srvc.SubmitAnswer(context.Background(), submsrvc.SubmitAnswerParams{
		TaskID: "t1", Link: "https://x", ActingUserID: "writer",
	})
	require.NoError(t, err)
	assert.Equal(t, 1020, s.WorkingMinutes)
	assert.Equal(t, scoring.LateScore, s.ScoreDelta)
	assert.Equal(t, scoring.LateScore, f.score(t))
}

func TestSubmitAnswerFlagsLateness(t *testing.T) {
	loc, _ := time.LoadLocation("Asia/Kolkata")
	now := time.Date(2024, 6, 10, 10, 30, 0, 0, loc)

	tests := []struct {
		name   string
		dueAt  time.Time
		isLate bool
	}{
		{"no due date", time.Time{}, false},
		{"due later", now.Add(time.Minute), false},
		{"due exactly now", now, false},
		{"due earlier", now.Add(-time.Minute), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, now, nil)
			tk := pendingTask(f.loc)
			tk.DueAt = tt.dueAt
			f.storeTask(t, tk)

			s, err := f.srvc.SubmitAnswer(context.Background(), submsrvc.SubmitAnswerParams{
				TaskID: "t1", Link: "https://x", ActingUserID: "writer",
			})
			require.NoError(t, err)
			assert.Equal(t, tt.isLate, s.IsLate)
			assert.Equal(t, scoring.FastScore, s.ScoreDelta)
			assert.Equal(t, scoring.FastScore, f.score(t))

			all, err := f.subms.ListSubms(context.Background())
			require.NoError(t, err)
			require.Len(t, all, 1)
			assert.Equal(t, tt.isLate, all[0].IsLate)
		})
	}
}

func TestSubmitAnswerRejections(t *testing.T) {
	loc, _ := time.LoadLocation("Asia/Kolkata")
	now := time.Date(2024, 6, 10, 10, 30, 0, 0, loc)

	tests := []struct {
		name     string
		mutate   func(*task.Task)
		link     string
		actor    string
		wantCode string
	}{
		{
			name:     "missed task",
			mutate:   func(tk *task.Task) { tk.Status = task.StatusMissed },
			link:     "https://x",
			actor:    "writer",
			wantCode: submsrvc.ErrCodeTaskMissed,
		},
		{
			name:     "already submitted",
			mutate:   func(tk *task.Task) { tk.Status = task.StatusSubmitted },
			link:     "https://x",
			actor:    "writer",
			wantCode: submsrvc.ErrCodeTaskAlreadySubmitted,
		},
		{
			name:     "blank link",
			mutate:   func(tk *task.Task) {},
			link:     "   ",
			actor:    "writer",
			wantCode: submsrvc.ErrCodeAnswerLinkEmpty,
		},
		{
			name:     "no assignment time",
			mutate:   func(tk *task.Task) { tk.AssignedAt = time.Time{} },
			link:     "https://x",
			actor:    "writer",
			wantCode: submsrvc.ErrCodeAssignedAtMissing,
		},
		{
			name:     "someone else's task",
			mutate:   func(tk *task.Task) {},
			link:     "https://x",
			actor:    "intruder",
			wantCode: submsrvc.ErrCodeTaskNotAssignedToUser,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(t, now, nil)
			tk := pendingTask(f.loc)
			tt.mutate(&tk)
			f.storeTask(t, tk)

			_, err := f.srvc.SubmitAnswer(ctx, submsrvc.SubmitAnswerParams{
				TaskID: "t1", Link: tt.link, ActingUserID: tt.actor,
			})
			require.Error(t, err)
			assert.True(t, srvcerror.HasCode(err, tt.wantCode), "got %v", err)
			assert.True(t, srvcerror.IsValidation(err))

			all, err := f.subms.ListSubms(ctx)
			require.NoError(t, err)
			assert.Empty(t, all)
			assert.Equal(t, 0, f.score(t))
		})
	}
}

func TestSubmitAnswerUnknownTask(t *testing.T) {
	f := newFixture(t, time.Now(), nil)
	_, err := f.srvc.SubmitAnswer(context.Background(), submsrvc.SubmitAnswerParams{
		TaskID: "nope", Link: "https://x", ActingUserID: "writer",
	})
	require.Error(t, err)
	assert.True(t, srvcerror.HasCode(err, task.ErrCodeTaskNotFound))
}

type brokenMarkRepo struct {
	*task.InMemRepo
}

func (brokenMarkRepo) MarkSubmitted(ctx context.Context, id string) error {
	return errors.New("store unavailable")
}

func TestSubmitAnswerPartialFailureKeepsSubmission(t *testing.T) {
	ctx := context.Background()
	loc, _ := time.LoadLocation("Asia/Kolkata")
	inner := task.NewInMemRepo()
	f := newFixture(t, time.Date(2024, 6, 10, 10, 30, 0, 0, loc), brokenMarkRepo{inner})
	require.NoError(t, inner.StoreTask(ctx, pendingTask(f.loc)))

	_, err := f.srvc.SubmitAnswer(ctx, submsrvc.SubmitAnswerParams{
		TaskID: "t1", Link: "https://x", ActingUserID: "writer",
	})
	require.Error(t, err)

	all, err := f.subms.ListSubms(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1, "the stored submission is not rolled back")
	assert.Equal(t, 0, f.score(t))

	stored, err := inner.GetTask(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, task.StatusPending, stored.Status)
}
