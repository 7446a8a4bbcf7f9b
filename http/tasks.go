package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httplog/v2"
	"github.com/qacker/backend/httpjson"
	"github.com/qacker/backend/tasksrvc"
)

func (httpserver *HttpServer) listOwnTasks(w http.ResponseWriter, r *http.Request) {
	log := httplog.LogEntry(r.Context())

	tasks, err := httpserver.taskSrvc.ListTasksForUser(r.Context(), actingUser(r).ID)
	if err != nil {
		httpjson.HandleError(log, w, err)
		return
	}

	httpjson.WriteSuccessJson(w, httpserver.mapTasks(tasks))
}

func (httpserver *HttpServer) listAllTasks(w http.ResponseWriter, r *http.Request) {
	log := httplog.LogEntry(r.Context())

	tasks, err := httpserver.taskSrvc.ListAllTasks(r.Context(), actingUser(r).ID)
	if err != nil {
		httpjson.HandleError(log, w, err)
		return
	}

	httpjson.WriteSuccessJson(w, httpserver.mapTasks(tasks))
}

func (httpserver *HttpServer) assignTask(w http.ResponseWriter, r *http.Request) {
	type assignTaskRequest struct {
		QuestionRef string    `json:"question_ref"`
		Topic       string    `json:"topic"`
		AnswerDraft string    `json:"answer_draft"`
		AssignedTo  string    `json:"assigned_to"`
		DueAt       time.Time `json:"due_at"`
	}

	log := httplog.LogEntry(r.Context())

	var request assignTaskRequest
	if !httpjson.DecodeJsonBody(w, r, &request) {
		return
	}

	t, err := httpserver.taskSrvc.AssignTask(r.Context(), tasksrvc.AssignTaskParams{
		QuestionRef:  request.QuestionRef,
		Topic:        request.Topic,
		AnswerDraft:  request.AnswerDraft,
		AssignedTo:   request.AssignedTo,
		DueAt:        request.DueAt,
		ActingUserID: actingUser(r).ID,
	})
	if err != nil {
		httpjson.HandleError(log, w, err)
		return
	}

	httpjson.WriteJson(w, http.StatusCreated, httpserver.mapTask(t))
}

func taskIDParam(r *http.Request) string {
	return chi.URLParam(r, "taskID")
}
