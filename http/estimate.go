package http

import (
	"net/http"
	"time"

	"github.com/go-chi/httplog/v2"
	"github.com/qacker/backend/httpjson"
	"github.com/qacker/backend/scoring"
	"github.com/qacker/backend/srvcerror"
)

const ErrCodeInvalidTimestamp = "invalid_timestamp"

func ErrInvalidTimestamp(param string) *srvcerror.Error {
	return srvcerror.NewValidation(
		ErrCodeInvalidTimestamp,
		param+" must be an RFC 3339 timestamp",
	)
}

type Estimate struct {
	WorkingMinutes int       `json:"working_minutes"`
	ScoreDelta     int       `json:"score_delta"`
	MissedCutoff   time.Time `json:"missed_cutoff"`
}

// estimate previews the working minutes and score a submission at
// submitted_at would earn for a task assigned at assigned_at. submitted_at
// defaults to now.
func (httpserver *HttpServer) estimate(w http.ResponseWriter, r *http.Request) {
	log := httplog.LogEntry(r.Context())
	q := r.URL.Query()

	assignedAt, err := time.Parse(time.RFC3339, q.Get("assigned_at"))
	if err != nil {
		httpjson.HandleError(log, w, ErrInvalidTimestamp("assigned_at").SetDebug(err))
		return
	}

	submittedAt := time.Now()
	if raw := q.Get("submitted_at"); raw != "" {
		submittedAt, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			httpjson.HandleError(log, w, ErrInvalidTimestamp("submitted_at").SetDebug(err))
			return
		}
	}

	minutes := httpserver.calendar.WorkingMinutesBetween(assignedAt, submittedAt)
	httpjson.WriteSuccessJson(w, Estimate{
		WorkingMinutes: minutes,
		ScoreDelta:     scoring.ResolveScore(minutes),
		MissedCutoff:   httpserver.calendar.MissedCutoff(assignedAt),
	})
}
