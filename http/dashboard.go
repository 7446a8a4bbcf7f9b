package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/httplog/v2"
	"github.com/qacker/backend/httpjson"
	"github.com/qacker/backend/logger"
	"github.com/qacker/backend/task"
)

// dashboard returns the caller's pending tasks and score. Opening it also
// kicks off a missed-task sweep in the background; the response does not
// wait for it.
func (httpserver *HttpServer) dashboard(w http.ResponseWriter, r *http.Request) {
	log := httplog.LogEntry(r.Context())
	me := actingUser(r)

	httpserver.sweepInBackground(r.Context())

	tasks, err := httpserver.taskSrvc.ListTasksForUser(r.Context(), me.ID)
	if err != nil {
		httpjson.HandleError(log, w, err)
		return
	}

	resp := Dashboard{
		User:         mapUser(me),
		PendingTasks: make([]Task, 0),
	}
	for _, t := range tasks {
		switch t.Status {
		case task.StatusPending:
			resp.PendingTasks = append(resp.PendingTasks, httpserver.mapTask(t))
		case task.StatusSubmitted:
			resp.SubmittedCount++
		case task.StatusMissed:
			resp.MissedCount++
		}
	}

	httpjson.WriteSuccessJson(w, resp)
}

func (httpserver *HttpServer) sweepInBackground(reqCtx context.Context) {
	ctx := context.WithoutCancel(reqCtx)
	httpserver.bg.Add(1)
	go func() {
		defer httpserver.bg.Done()
		res, err := httpserver.scoreSrvc.CheckAndApplyMissedPenalties(ctx)
		if err != nil {
			logger.FromContext(ctx).Error("background missed sweep failed", slog.Any("error", err))
		}
		if res.Penalized > 0 {
			httpserver.invalidateLeaderboard()
		}
	}()
}
