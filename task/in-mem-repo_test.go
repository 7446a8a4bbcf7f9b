package task_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/qacker/backend/srvcerror"
	"github.com/qacker/backend/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemRepoLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := task.NewInMemRepo()
	base := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)

	require.NoError(t, repo.StoreTask(ctx, task.Task{ID: "b", AssignedTo: "u1", AssignedAt: base, Status: task.StatusPending}))
	require.NoError(t, repo.StoreTask(ctx, task.Task{ID: "a", AssignedTo: "u1", AssignedAt: base, Status: task.StatusPending}))
	require.NoError(t, repo.StoreTask(ctx, task.Task{ID: "c", AssignedTo: "u2", AssignedAt: base.Add(-time.Hour), Status: task.StatusPending}))

	all, err := repo.ListTasks(ctx)
	require.NoError(t, err)
	ids := []string{}
	for _, tk := range all {
		ids = append(ids, tk.ID)
	}
	assert.Equal(t, []string{"c", "a", "b"}, ids)

	require.NoError(t, repo.MarkSubmitted(ctx, "a"))
	assert.True(t, srvcerror.HasCode(repo.MarkSubmitted(ctx, "a"), task.ErrCodeTaskNotPending))

	applied, err := repo.MarkMissed(ctx, "a", base)
	require.NoError(t, err)
	assert.False(t, applied, "submitted tasks cannot be missed")

	awaiting, err := repo.ListAwaitingMissedCheck(ctx)
	require.NoError(t, err)
	assert.Len(t, awaiting, 2)

	_, err = repo.MarkMissed(ctx, "nope", base)
	assert.True(t, srvcerror.HasCode(err, task.ErrCodeTaskNotFound))
}

func TestInMemMarkMissedIsExclusive(t *testing.T) {
	ctx := context.Background()
	repo := task.NewInMemRepo()
	require.NoError(t, repo.StoreTask(ctx, task.Task{ID: "t1", AssignedAt: time.Now(), Status: task.StatusPending}))

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if applied, _ := repo.MarkMissed(ctx, "t1", time.Now()); applied {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins.Load())

	got, err := repo.GetTask(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, task.StatusMissed, got.Status)
	assert.True(t, got.MissedPenaltyApplied)
	assert.NotNil(t, got.MissedAt)
}
