package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httplog/v2"
	"github.com/patrickmn/go-cache"
	"github.com/qacker/backend/httpjson"
	"github.com/qacker/backend/scoresrvc"
	"github.com/qacker/backend/srvcerror"
)

const leaderboardCacheKey = "leaderboard"

func (httpserver *HttpServer) invalidateLeaderboard() {
	httpserver.cache.Delete(leaderboardCacheKey)
}

func (httpserver *HttpServer) leaderboard(w http.ResponseWriter, r *http.Request) {
	log := httplog.LogEntry(r.Context())

	if cached, ok := httpserver.cache.Get(leaderboardCacheKey); ok {
		httpjson.WriteSuccessJson(w, cached)
		return
	}

	rows, err, _ := httpserver.sfGroup.Do(leaderboardCacheKey, func() (interface{}, error) {
		// another request may have filled the cache while we waited
		if cached, ok := httpserver.cache.Get(leaderboardCacheKey); ok {
			return cached, nil
		}
		// shared with other waiters, so not bound to this request
		rows, err := httpserver.scoreSrvc.Leaderboard(context.WithoutCancel(r.Context()))
		if err != nil {
			return nil, err
		}
		httpserver.cache.Set(leaderboardCacheKey, rows, cache.DefaultExpiration)
		return rows, nil
	})
	if err != nil {
		httpjson.HandleError(log, w, err)
		return
	}

	httpjson.WriteSuccessJson(w, rows)
}

func (httpserver *HttpServer) performance(w http.ResponseWriter, r *http.Request) {
	log := httplog.LogEntry(r.Context())

	rows, err := httpserver.scoreSrvc.Performance(r.Context())
	if err != nil {
		httpjson.HandleError(log, w, err)
		return
	}

	httpjson.WriteSuccessJson(w, rows)
}

const ErrCodeReportsDisabled = "reports_disabled"

func ErrReportsDisabled() *srvcerror.Error {
	return srvcerror.NewDependency(
		ErrCodeReportsDisabled,
		"no report bucket is configured",
	)
}

func (httpserver *HttpServer) exportPerformance(w http.ResponseWriter, r *http.Request) {
	log := httplog.LogEntry(r.Context())

	if httpserver.reports == nil {
		httpjson.HandleError(log, w, ErrReportsDisabled())
		return
	}

	url, err := httpserver.scoreSrvc.ExportPerformance(r.Context(), httpserver.reports)
	if err != nil {
		httpjson.HandleError(log, w, err)
		return
	}

	httpjson.WriteJson(w, http.StatusCreated, map[string]string{"url": url})
}

func (httpserver *HttpServer) sweepMissed(w http.ResponseWriter, r *http.Request) {
	log := httplog.LogEntry(r.Context())

	res, err := httpserver.scoreSrvc.CheckAndApplyMissedPenalties(r.Context())
	if res.Penalized > 0 {
		httpserver.invalidateLeaderboard()
	}
	if err != nil {
		httpjson.HandleError(log, w, err)
		return
	}

	httpjson.WriteSuccessJson(w, res)
}

func (httpserver *HttpServer) rebuildScores(w http.ResponseWriter, r *http.Request) {
	log := httplog.LogEntry(r.Context())

	rule := httpserver.rebuildRule
	if raw := r.URL.Query().Get("rule"); raw != "" {
		parsed, err := scoresrvc.ParseRebuildRule(raw)
		if err != nil {
			httpjson.HandleError(log, w, err)
			return
		}
		rule = parsed
	}

	res, err := httpserver.scoreSrvc.Rebuild(r.Context(), rule)
	httpserver.invalidateLeaderboard()
	if err != nil {
		httpjson.HandleError(log, w, err)
		return
	}

	httpjson.WriteSuccessJson(w, res)
}

func (httpserver *HttpServer) ownScoreHistory(w http.ResponseWriter, r *http.Request) {
	httpserver.writeScoreHistory(w, r, actingUser(r).ID)
}

func (httpserver *HttpServer) userScoreHistory(w http.ResponseWriter, r *http.Request) {
	httpserver.writeScoreHistory(w, r, chi.URLParam(r, "userID"))
}

func (httpserver *HttpServer) writeScoreHistory(w http.ResponseWriter, r *http.Request, userID string) {
	log := httplog.LogEntry(r.Context())

	entries, err := httpserver.history.History(r.Context(), userID)
	if err != nil {
		httpjson.HandleError(log, w, err)
		return
	}

	httpjson.WriteSuccessJson(w, entries)
}
