package http

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/qacker/backend/scoreledger"
	"github.com/qacker/backend/scoresrvc"
	"github.com/qacker/backend/subm"
	"github.com/qacker/backend/submsrvc"
	"github.com/qacker/backend/task"
	"github.com/qacker/backend/tasksrvc"
	"github.com/qacker/backend/user"
	"github.com/qacker/backend/user/auth"
	"github.com/qacker/backend/worktime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var jwtKey = []byte("test-key")

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type testEnv struct {
	server *HttpServer
	users  *user.InMemRepo
	tasks  *task.InMemRepo
	subms  *subm.InMemRepo
	clock  *clock
	loc    *time.Location
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithOptions(t, Options{Env: "dev", LogLevel: slog.LevelError})
}

func newTestEnvWithOptions(t *testing.T, opts Options) *testEnv {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	env := &testEnv{
		users: user.NewInMemRepo(),
		tasks: task.NewInMemRepo(),
		subms: subm.NewInMemRepo(),
		clock: &clock{now: time.Date(2024, 6, 10, 9, 0, 0, 0, loc)},
		loc:   loc,
	}
	ctx := context.Background()
	require.NoError(t, env.users.StoreUser(ctx, user.User{ID: "boss", Name: "Ravi", Role: user.RoleAdmin}))
	require.NoError(t, env.users.StoreUser(ctx, user.User{ID: "writer", Name: "Meera", Role: user.RoleContributor}))

	cal := worktime.NewCalendar(loc)
	ledger := scoreledger.NewLedger(env.users, scoreledger.NewInMemAudit())

	env.server = NewHttpServer(Services{
		Tasks:    tasksrvc.NewTaskSrvc(env.tasks, env.users).WithClock(env.clock.Now),
		Subms:    submsrvc.NewSubmissionSrvc(env.tasks, env.subms, ledger, cal).WithClock(env.clock.Now),
		Scores:   scoresrvc.NewScoreSrvc(env.users, env.tasks, env.subms, ledger, cal).WithClock(env.clock.Now),
		Users:    env.users,
		History:  ledger,
		Calendar: cal,
	}, jwtKey, opts)
	return env
}

type envelope struct {
	Status  string          `json:"status"`
	Data    json.RawMessage `json:"data"`
	ErrCode string          `json:"code"`
	ErrMsg  string          `json:"message"`
}

func (env *testEnv) do(t *testing.T, method, path, userID string, body any) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if userID != "" {
		token, err := auth.GenerateJWT(userID, "", "", time.Hour, jwtKey)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.server.ServeHTTP(rec, req)

	var resp envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return rec.Code, resp
}

func decodeData[T any](t *testing.T, resp envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(resp.Data, &v))
	return v
}

func (env *testEnv) assign(t *testing.T) Task {
	t.Helper()
	code, resp := env.do(t, http.MethodPost, "/tasks", "boss", map[string]any{
		"question_ref": "q-7",
		"topic":        "optics",
		"assigned_to":  "writer",
		"due_at":       time.Date(2024, 6, 11, 17, 0, 0, 0, env.loc),
	})
	require.Equal(t, http.StatusCreated, code, resp.ErrMsg)
	return decodeData[Task](t, resp)
}

func TestRequiresToken(t *testing.T) {
	env := newTestEnv(t)

	code, resp := env.do(t, http.MethodGet, "/tasks", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, ErrCodeUnauthenticated, resp.ErrCode)

	code, resp = env.do(t, http.MethodGet, "/tasks", "deleted-user", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, ErrCodeUnauthenticated, resp.ErrCode)
}

func TestAssignAndSubmit(t *testing.T) {
	env := newTestEnv(t)
	created := env.assign(t)
	assert.Equal(t, "pending", created.Status)
	require.NotNil(t, created.MissedCutoff)
	assert.True(t, time.Date(2024, 6, 11, 17, 0, 0, 0, env.loc).Equal(*created.MissedCutoff))

	code, resp := env.do(t, http.MethodGet, "/tasks", "writer", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decodeData[[]Task](t, resp), 1)

	env.clock.Set(time.Date(2024, 6, 10, 10, 30, 0, 0, env.loc))
	code, resp = env.do(t, http.MethodPost, "/tasks/"+created.ID+"/submissions", "writer",
		map[string]string{"link": "https://docs.example.com/q-7"})
	require.Equal(t, http.StatusCreated, code, resp.ErrMsg)
	s := decodeData[Submission](t, resp)
	assert.Equal(t, 90, s.WorkingMinutes)
	assert.Equal(t, 5, s.ScoreDelta)

	code, resp = env.do(t, http.MethodPost, "/tasks/"+created.ID+"/submissions", "writer",
		map[string]string{"link": "https://docs.example.com/again"})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, submsrvc.ErrCodeTaskAlreadySubmitted, resp.ErrCode)

	code, resp = env.do(t, http.MethodGet, "/submissions", "writer", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decodeData[[]Submission](t, resp), 1)

	code, resp = env.do(t, http.MethodGet, "/score-history", "writer", nil)
	require.Equal(t, http.StatusOK, code)
	history := decodeData[[]scoreledger.Entry](t, resp)
	require.Len(t, history, 1)
	assert.Equal(t, 5, history[0].NewScore)
}

func TestRoleChecks(t *testing.T) {
	env := newTestEnv(t)

	code, resp := env.do(t, http.MethodPost, "/tasks", "writer", map[string]any{
		"question_ref": "q-1", "assigned_to": "writer", "due_at": time.Now(),
	})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, tasksrvc.ErrCodeForbidden, resp.ErrCode)

	for _, path := range []string{"/admin/performance", "/admin/tasks", "/admin/users/writer/score-history"} {
		code, resp = env.do(t, http.MethodGet, path, "writer", nil)
		assert.Equal(t, http.StatusForbidden, code, path)
		assert.Equal(t, ErrCodeAdminOnly, resp.ErrCode, path)
	}

	code, _ = env.do(t, http.MethodGet, "/admin/performance", "boss", nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestSubmitRejectsMalformedBody(t *testing.T) {
	env := newTestEnv(t)
	created := env.assign(t)

	code, resp := env.do(t, http.MethodPost, "/tasks/"+created.ID+"/submissions", "writer",
		map[string]any{"url": "https://x"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "invalid_body", resp.ErrCode)
}

func TestMissedSweepAndRebuild(t *testing.T) {
	env := newTestEnv(t)
	created := env.assign(t)

	env.clock.Set(time.Date(2024, 6, 12, 9, 0, 0, 0, env.loc))
	code, resp := env.do(t, http.MethodPost, "/admin/missed/sweep", "boss", nil)
	require.Equal(t, http.StatusOK, code, resp.ErrMsg)
	assert.Equal(t, scoresrvc.SweepResult{Scanned: 1, Penalized: 1}, decodeData[scoresrvc.SweepResult](t, resp))

	code, resp = env.do(t, http.MethodPost, "/tasks/"+created.ID+"/submissions", "writer",
		map[string]string{"link": "https://late"})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, submsrvc.ErrCodeTaskMissed, resp.ErrCode)

	code, resp = env.do(t, http.MethodGet, "/admin/users/writer/score-history", "boss", nil)
	require.Equal(t, http.StatusOK, code)
	history := decodeData[[]scoreledger.Entry](t, resp)
	require.Len(t, history, 1)
	assert.Equal(t, scoreledger.KindMissedPenalty, history[0].Kind)

	code, resp = env.do(t, http.MethodPost, "/admin/scores/rebuild?rule=sometimes", "boss", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, scoresrvc.ErrCodeUnknownRebuildRule, resp.ErrCode)

	code, resp = env.do(t, http.MethodPost, "/admin/scores/rebuild?rule=latest", "boss", nil)
	require.Equal(t, http.StatusOK, code)
	res := decodeData[scoresrvc.RebuildResult](t, resp)
	assert.Equal(t, scoresrvc.RebuildLatestPerTask, res.Rule)
	assert.Empty(t, res.Scores)
}

func TestRebuildUsesConfiguredRuleByDefault(t *testing.T) {
	ctx := context.Background()
	env := newTestEnvWithOptions(t, Options{
		Env:         "dev",
		LogLevel:    slog.LevelError,
		RebuildRule: scoresrvc.RebuildLatestPerTask,
	})
	for _, s := range []subm.Submission{
		{ID: "s1", TaskID: "t1", UserID: "writer", ScoreDelta: 5, SubmittedAt: time.Date(2024, 6, 10, 10, 0, 0, 0, env.loc)},
		{ID: "s2", TaskID: "t1", UserID: "writer", ScoreDelta: 3, SubmittedAt: time.Date(2024, 6, 10, 11, 0, 0, 0, env.loc)},
	} {
		require.NoError(t, env.subms.StoreSubm(ctx, s))
	}

	code, resp := env.do(t, http.MethodPost, "/admin/scores/rebuild", "boss", nil)
	require.Equal(t, http.StatusOK, code, resp.ErrMsg)
	res := decodeData[scoresrvc.RebuildResult](t, resp)
	assert.Equal(t, scoresrvc.RebuildLatestPerTask, res.Rule)
	assert.Equal(t, map[string]int{"writer": 3}, res.Scores)

	code, resp = env.do(t, http.MethodPost, "/admin/scores/rebuild?rule=all", "boss", nil)
	require.Equal(t, http.StatusOK, code, resp.ErrMsg)
	res = decodeData[scoresrvc.RebuildResult](t, resp)
	assert.Equal(t, scoresrvc.RebuildAll, res.Rule)
	assert.Equal(t, map[string]int{"writer": 8}, res.Scores)
}

func TestLeaderboardIsCachedUntilScoresChange(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	created := env.assign(t)

	code, resp := env.do(t, http.MethodGet, "/leaderboard", "writer", nil)
	require.Equal(t, http.StatusOK, code)
	rows := decodeData[[]scoresrvc.LeaderboardRow](t, resp)
	require.Len(t, rows, 1)
	assert.Equal(t, 0, rows[0].TotalScore)

	// written behind the server's back: the cached board is still served
	require.NoError(t, env.subms.StoreSubm(ctx, subm.Submission{
		ID: "side", TaskID: "other", UserID: "writer", SubmittedAt: env.clock.Now(), ScoreDelta: 1,
	}))
	_, resp = env.do(t, http.MethodGet, "/leaderboard", "writer", nil)
	assert.Equal(t, 0, decodeData[[]scoresrvc.LeaderboardRow](t, resp)[0].TotalScore)

	env.clock.Set(time.Date(2024, 6, 10, 10, 0, 0, 0, env.loc))
	code, _ = env.do(t, http.MethodPost, "/tasks/"+created.ID+"/submissions", "writer",
		map[string]string{"link": "https://x"})
	require.Equal(t, http.StatusCreated, code)

	_, resp = env.do(t, http.MethodGet, "/leaderboard", "writer", nil)
	assert.Equal(t, 6, decodeData[[]scoresrvc.LeaderboardRow](t, resp)[0].TotalScore)
}

func TestDashboardTriggersSweep(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.assign(t)

	env.clock.Set(time.Date(2024, 6, 12, 9, 0, 0, 0, env.loc))
	code, resp := env.do(t, http.MethodGet, "/dashboard", "writer", nil)
	require.Equal(t, http.StatusOK, code)
	dash := decodeData[Dashboard](t, resp)
	assert.Equal(t, "writer", dash.User.ID)

	env.server.bg.Wait()
	u, err := env.users.GetUser(ctx, "writer")
	require.NoError(t, err)
	assert.Equal(t, -5, u.Score)

	_, resp = env.do(t, http.MethodGet, "/dashboard", "writer", nil)
	env.server.bg.Wait()
	dash = decodeData[Dashboard](t, resp)
	assert.Empty(t, dash.PendingTasks)
	assert.Equal(t, 1, dash.MissedCount)
	assert.Equal(t, -5, dash.User.Score)
}

func TestEstimate(t *testing.T) {
	env := newTestEnv(t)

	code, resp := env.do(t, http.MethodGet,
		"/estimate?assigned_at=2024-06-10T09:00:00%2B05:30&submitted_at=2024-06-10T10:30:00%2B05:30", "", nil)
	require.Equal(t, http.StatusOK, code, resp.ErrMsg)
	est := decodeData[Estimate](t, resp)
	assert.Equal(t, 90, est.WorkingMinutes)
	assert.Equal(t, 5, est.ScoreDelta)
	assert.True(t, time.Date(2024, 6, 11, 17, 0, 0, 0, env.loc).Equal(est.MissedCutoff))

	code, resp = env.do(t, http.MethodGet, "/estimate?assigned_at=yesterday", "", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, ErrCodeInvalidTimestamp, resp.ErrCode)
}

func TestStatsUseRoutePatterns(t *testing.T) {
	env := newTestEnv(t)
	created := env.assign(t)
	env.do(t, http.MethodPost, "/tasks/"+created.ID+"/submissions", "writer", map[string]string{"link": "https://x"})

	assert.Equal(t, 1, env.server.stats.snapshot("POST /tasks/{taskID}/submissions").count)
	assert.Equal(t, 1, env.server.stats.snapshot("POST /tasks").count)
}
