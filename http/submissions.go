package http

import (
	"net/http"

	"github.com/go-chi/httplog/v2"
	"github.com/qacker/backend/httpjson"
	"github.com/qacker/backend/submsrvc"
)

func (httpserver *HttpServer) submitAnswer(w http.ResponseWriter, r *http.Request) {
	type submitAnswerRequest struct {
		Link string `json:"link"`
	}

	log := httplog.LogEntry(r.Context())

	var request submitAnswerRequest
	if !httpjson.DecodeJsonBody(w, r, &request) {
		return
	}

	s, err := httpserver.submSrvc.SubmitAnswer(r.Context(), submsrvc.SubmitAnswerParams{
		TaskID:       taskIDParam(r),
		Link:         request.Link,
		ActingUserID: actingUser(r).ID,
	})
	if err != nil {
		httpjson.HandleError(log, w, err)
		return
	}
	httpserver.invalidateLeaderboard()

	httpjson.WriteJson(w, http.StatusCreated, mapSubm(s))
}

func (httpserver *HttpServer) listOwnSubmissions(w http.ResponseWriter, r *http.Request) {
	log := httplog.LogEntry(r.Context())

	subms, err := httpserver.submSrvc.ListUserSubms(r.Context(), actingUser(r).ID)
	if err != nil {
		httpjson.HandleError(log, w, err)
		return
	}

	httpjson.WriteSuccessJson(w, mapSubms(subms))
}
