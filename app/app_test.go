package app_test

import (
	"context"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/qacker/backend/app"
	"github.com/qacker/backend/conf"
	"github.com/qacker/backend/scoresrvc"
	"github.com/qacker/backend/submsrvc"
	"github.com/qacker/backend/tasksrvc"
	"github.com/qacker/backend/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildInMemory(t *testing.T) {
	ctx := context.Background()
	cfg := conf.Defaults()
	cfg.Store.Backend = conf.StoreMemory
	cfg.RebuildRule = "latest"
	cfg.JwtKey = "k"

	a, err := app.Build(ctx, cfg)
	require.NoError(t, err)
	assert.Nil(t, a.Reports)
	assert.Nil(t, a.DynamoDb)
	assert.Equal(t, scoresrvc.RebuildLatestPerTask, a.RebuildRule())
	assert.Equal(t, "Asia/Kolkata", a.Calendar.Location().String())

	key, err := a.JwtKey(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("k"), key)

	require.NoError(t, a.Users.StoreUser(ctx, user.User{ID: "boss", Name: "Ravi", Role: user.RoleAdmin}))
	require.NoError(t, a.Users.StoreUser(ctx, user.User{ID: "w", Name: "Meera", Role: user.RoleContributor}))

	tk, err := a.TaskSrvc.AssignTask(ctx, tasksrvc.AssignTaskParams{
		QuestionRef: "q", AssignedTo: "w", DueAt: time.Now().Add(time.Hour), ActingUserID: "boss",
	})
	require.NoError(t, err)

	_, err = a.SubmSrvc.SubmitAnswer(ctx, submsrvc.SubmitAnswerParams{
		TaskID: tk.ID, Link: "https://x", ActingUserID: "w",
	})
	require.NoError(t, err)

	history, err := a.Ledger.History(ctx, "w")
	require.NoError(t, err)
	assert.Len(t, history, 1)

	assert.Error(t, a.CreateTables(ctx))
}
