package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"
	"github.com/patrickmn/go-cache"
	"github.com/qacker/backend/logger"
	"github.com/qacker/backend/scoreledger"
	"github.com/qacker/backend/scoresrvc"
	"github.com/qacker/backend/submsrvc"
	"github.com/qacker/backend/tasksrvc"
	"github.com/qacker/backend/user"
	"github.com/qacker/backend/user/auth"
	"github.com/qacker/backend/worktime"
	"golang.org/x/sync/singleflight"
)

type UserRepoFacade interface {
	GetUser(ctx context.Context, id string) (user.User, error)
}

type HistoryFacade interface {
	History(ctx context.Context, userID string) ([]scoreledger.Entry, error)
}

// Services are the dependencies the handlers call into. Reports may be nil,
// in which case report export answers 503.
type Services struct {
	Tasks    *tasksrvc.TaskSrvc
	Subms    *submsrvc.SubmissionSrvc
	Scores   *scoresrvc.ScoreSrvc
	Users    UserRepoFacade
	History  HistoryFacade
	Reports  scoresrvc.ReportUploader
	Calendar worktime.Calendar
}

type Options struct {
	Env            string
	Version        string
	LogLevel       slog.Level
	AllowedOrigins []string
	LeaderboardTTL time.Duration
	StatsInterval  time.Duration
	// RebuildRule applies when a rebuild request names no rule.
	RebuildRule scoresrvc.RebuildRule
}

type HttpServer struct {
	taskSrvc  *tasksrvc.TaskSrvc
	submSrvc  *submsrvc.SubmissionSrvc
	scoreSrvc *scoresrvc.ScoreSrvc
	users     UserRepoFacade
	history   HistoryFacade
	reports   scoresrvc.ReportUploader
	calendar  worktime.Calendar

	rebuildRule scoresrvc.RebuildRule

	router  *chi.Mux
	cache   *cache.Cache
	sfGroup singleflight.Group
	stats   *statsLogger

	// background work started by handlers, waited for on shutdown
	bg sync.WaitGroup
}

func NewHttpServer(srvcs Services, jwtKey []byte, opts Options) *HttpServer {
	if opts.LeaderboardTTL == 0 {
		opts.LeaderboardTTL = 30 * time.Second
	}
	if opts.StatsInterval == 0 {
		opts.StatsInterval = time.Minute
	}
	if opts.RebuildRule == "" {
		opts.RebuildRule = scoresrvc.RebuildAll
	}

	router := chi.NewRouter()

	httpLogger := httplog.NewLogger("qacker", httplog.Options{
		JSON:             opts.Env != "dev",
		LogLevel:         opts.LogLevel,
		Concise:          true,
		RequestHeaders:   false,
		MessageFieldName: "message",
		Tags: map[string]string{
			"version": opts.Version,
			"env":     opts.Env,
		},
	})

	server := &HttpServer{
		taskSrvc:  srvcs.Tasks,
		submSrvc:  srvcs.Subms,
		scoreSrvc: srvcs.Scores,
		users:     srvcs.Users,
		history:   srvcs.History,
		reports:   srvcs.Reports,
		calendar:  srvcs.Calendar,

		rebuildRule: opts.RebuildRule,

		router:    router,
		cache:     cache.New(opts.LeaderboardTTL, 2*opts.LeaderboardTTL),
		stats:     newStatsLogger(opts.StatsInterval),
	}

	router.Use(middleware.RequestID)
	router.Use(httplog.RequestLogger(httpLogger))
	router.Use(server.stats.middleware)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           3000,
	}))

	router.Use(auth.GetJwtAuthMiddleware(jwtKey))
	router.Use(requestLogger)

	server.routes()

	return server
}

func (httpserver *HttpServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	httpserver.router.ServeHTTP(w, r)
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (httpserver *HttpServer) Start(ctx context.Context, address string) error {
	srv := &http.Server{
		Addr:              address,
		Handler:           httpserver.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go httpserver.stats.run(ctx)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	httpserver.bg.Wait()
	return err
}

func (httpserver *HttpServer) routes() {
	r := httpserver.router

	r.Get("/estimate", httpserver.estimate)

	r.Group(func(r chi.Router) {
		r.Use(httpserver.requireUser)

		r.Get("/dashboard", httpserver.dashboard)
		r.Get("/tasks", httpserver.listOwnTasks)
		r.Post("/tasks", httpserver.assignTask)
		r.Post("/tasks/{taskID}/submissions", httpserver.submitAnswer)
		r.Get("/submissions", httpserver.listOwnSubmissions)
		r.Get("/leaderboard", httpserver.leaderboard)
		r.Get("/score-history", httpserver.ownScoreHistory)

		r.Route("/admin", func(r chi.Router) {
			r.Use(httpserver.requireAdmin)

			r.Get("/tasks", httpserver.listAllTasks)
			r.Get("/performance", httpserver.performance)
			r.Post("/performance/export", httpserver.exportPerformance)
			r.Post("/missed/sweep", httpserver.sweepMissed)
			r.Post("/scores/rebuild", httpserver.rebuildScores)
			r.Get("/users/{userID}/score-history", httpserver.userScoreHistory)
		})
	})
}

// requestLogger hands the request-scoped httplog logger to the services.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := logger.WithLogger(r.Context(), httplog.LogEntry(r.Context()))
		if claims := auth.ClaimsFromContext(ctx); claims != nil {
			ctx = logger.WithUserID(ctx, claims.UserID())
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
