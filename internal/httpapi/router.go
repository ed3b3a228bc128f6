package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Wakana-github/score-sheet-sub000/internal/auth"
	"github.com/Wakana-github/score-sheet-sub000/internal/metrics"
	"github.com/Wakana-github/score-sheet-sub000/internal/service"
)

type RouterOpts struct {
	Logger *slog.Logger
	IsProd bool

	DBPing func(context.Context) error

	Auth    *service.AuthService
	Records *service.RecordService
	Groups  *service.GroupService
	Stats   *service.StatsService
	// Metrics may be nil, which also disables GET /metrics.
	Metrics *metrics.Metrics

	CookieCodec  auth.CookieCodec
	CookieSecure bool
	SessionTTL   time.Duration
}

func NewRouter(opts RouterOpts) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	api := &api{
		logger:       logger,
		isProd:       opts.IsProd,
		dbPing:       opts.DBPing,
		authSvc:      opts.Auth,
		recordSvc:    opts.Records,
		groupSvc:     opts.Groups,
		statsSvc:     opts.Stats,
		metrics:      opts.Metrics,
		cookieCodec:  opts.CookieCodec,
		cookieSecure: opts.CookieSecure,
		sessionTTL:   opts.SessionTTL,
		loginLimiter: newLoginLimiter(),
	}

	publicMux := http.NewServeMux()
	apiMux := http.NewServeMux()

	publicMux.HandleFunc("GET /healthz", api.handleHealthz)
	if api.metrics != nil {
		publicMux.Handle("GET /metrics", api.metrics.Handler())
	}

	if api.authSvc == nil {
		apiMux.HandleFunc("/v1/", handleNotImplemented)
	} else {
		apiMux.HandleFunc("POST /v1/auth/register", api.handleAuthRegister)
		apiMux.HandleFunc("POST /v1/auth/login", api.handleAuthLogin)
		apiMux.HandleFunc("POST /v1/auth/google", api.handleAuthLoginGoogle)
		apiMux.HandleFunc("POST /v1/auth/apple", api.handleAuthLoginApple)
		apiMux.HandleFunc("POST /v1/auth/logout", api.requireAuth(api.handleAuthLogout))
		apiMux.HandleFunc("GET /v1/users/me", api.requireAuth(api.handleUsersMe))

		if api.recordSvc != nil {
			apiMux.HandleFunc("POST /v1/records", api.requireAuth(api.handleRecordsCreate))
			apiMux.HandleFunc("GET /v1/records", api.requireAuth(api.handleRecordsList))
			apiMux.HandleFunc("GET /v1/records/{id}", api.requireAuth(api.handleRecordsGet))
			apiMux.HandleFunc("PUT /v1/records/{id}", api.requireAuth(api.handleRecordsReplace))
			apiMux.HandleFunc("DELETE /v1/records/{id}", api.requireAuth(api.handleRecordsDelete))
		}

		if api.groupSvc != nil {
			apiMux.HandleFunc("POST /v1/groups", api.requireAuth(api.handleGroupsCreate))
			apiMux.HandleFunc("GET /v1/groups", api.requireAuth(api.handleGroupsList))
			apiMux.HandleFunc("GET /v1/groups/{id}", api.requireAuth(api.handleGroupsGet))
			apiMux.HandleFunc("PUT /v1/groups/{id}", api.requireAuth(api.handleGroupsReplace))
			apiMux.HandleFunc("DELETE /v1/groups/{id}", api.requireAuth(api.handleGroupsDelete))
		}

		if api.statsSvc != nil {
			apiMux.HandleFunc("GET /v1/stats/personal", api.requireAuth(api.handleStatsPersonal))
			apiMux.HandleFunc("GET /v1/stats/groups/{id}", api.requireAuth(api.handleStatsGroup))
		}
	}

	apiHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		// Handler only resolves the route label; ServeHTTP fills path values.
		_, pattern := apiMux.Handler(r)
		if pattern == "" {
			apiMux.ServeHTTP(&muxErrorWriter{ResponseWriter: rec}, r)
		} else {
			apiMux.ServeHTTP(rec, r)
		}
		api.metrics.ObserveRequest(pattern, rec.status, time.Since(start))
	})

	root := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/v1/") || r.URL.Path == "/v1" {
			apiHandler.ServeHTTP(w, r)
			return
		}
		publicMux.ServeHTTP(w, r)
	})

	var h http.Handler = root
	h = RequestLogger(logger)(h)
	h = RequestID()(h)
	h = Recoverer(logger, opts.IsProd)(h)
	return h
}

func handleNotImplemented(w http.ResponseWriter, _ *http.Request) {
	WriteError(w, http.StatusNotImplemented, "not_implemented", "not implemented")
}

// muxErrorWriter turns the mux's plain-text 404 and 405 replies into the JSON
// error envelope. Headers the mux already set, such as Allow, are kept.
type muxErrorWriter struct {
	http.ResponseWriter
	replaced bool
}

func (w *muxErrorWriter) WriteHeader(code int) {
	switch code {
	case http.StatusNotFound:
		w.replaced = true
		WriteError(w.ResponseWriter, code, "not_found", "not found")
	case http.StatusMethodNotAllowed:
		w.replaced = true
		WriteError(w.ResponseWriter, code, "method_not_allowed", "method not allowed")
	default:
		w.ResponseWriter.WriteHeader(code)
	}
}

func (w *muxErrorWriter) Write(p []byte) (int, error) {
	if w.replaced {
		return len(p), nil
	}
	return w.ResponseWriter.Write(p)
}

type api struct {
	logger *slog.Logger
	isProd bool

	dbPing func(context.Context) error

	authSvc   *service.AuthService
	recordSvc *service.RecordService
	groupSvc  *service.GroupService
	statsSvc  *service.StatsService
	metrics   *metrics.Metrics

	cookieCodec  auth.CookieCodec
	cookieSecure bool
	sessionTTL   time.Duration

	loginLimiter *loginLimiter
}

func (a *api) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	if a.dbPing != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 1*time.Second)
		defer cancel()
		if err := a.dbPing(ctx); err != nil {
			a.logger.Warn("health check failed", "err", err)
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("db down"))
			return
		}
	}

	_, _ = w.Write([]byte("ok"))
}
