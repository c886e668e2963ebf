package serverapp

import (
	"errors"
	"net/http"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"tasknest/internal/auth"
	"tasknest/internal/config"
	"tasknest/internal/httpmw"
	"tasknest/internal/store"
	"tasknest/internal/taskapi"
	"tasknest/internal/telemetry"
)

type Options struct {
	Config *config.Config
	Store  *store.Store
	Logger zerolog.Logger
}

// NewHandler wires auth, the task API, and the middleware chain around the
// given store. The store's durability lifecycle (snapshot load/save) belongs
// to the caller; this handler never touches the snapshot file.
func NewHandler(opts Options) (http.Handler, error) {
	if opts.Config == nil {
		return nil, errors.New("config is required")
	}
	if opts.Store == nil {
		return nil, errors.New("store is required")
	}

	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = w.Write([]byte(`{"ok":true,"service":"tasknest","time":"` +
			time.Now().UTC().Format(time.RFC3339) + `"}`))
	})

	authRepo, err := auth.NewFileRepo(filepath.Join(opts.Config.DataDir, "auth"))
	if err != nil {
		return nil, err
	}
	authService := auth.NewService(authRepo, opts.Logger, opts.Config.Auth)
	authHandler := auth.NewHandler(authService)
	mux.HandleFunc("/api/auth/request-otp", authHandler.RequestOTP)
	mux.HandleFunc("/api/auth/verify-otp", authHandler.VerifyOTP)
	mux.HandleFunc("/api/auth/session", authHandler.Session)
	mux.HandleFunc("/api/auth/logout", authHandler.Logout)

	events := telemetry.NewMemoryRepository()
	taskHandler := taskapi.NewHandler(opts.Store, events, opts.Config.Limits)
	mux.Handle("/api/tasks", authService.RequireAPI(http.HandlerFunc(taskHandler.TasksRoot)))
	mux.Handle("/api/tasks/", authService.RequireAPI(http.HandlerFunc(taskHandler.TasksSub)))
	mux.Handle("/api/tasks/count", authService.RequireAPI(http.HandlerFunc(taskHandler.TaskCount)))
	mux.Handle("/api/tasks/status", authService.RequireAPI(http.HandlerFunc(taskHandler.TasksByStatus)))
	mux.Handle("/api/tasks/clear-completed", authService.RequireAPI(http.HandlerFunc(taskHandler.ClearCompleted)))
	mux.Handle("/api/tasks/export.ics", authService.RequireAPI(http.HandlerFunc(taskHandler.ExportCalendar)))
	mux.Handle("/api/me", authService.RequireAPI(http.HandlerFunc(taskHandler.Me)))
	mux.Handle("/api/stats", authService.RequireAPI(http.HandlerFunc(taskHandler.Stats)))

	return httpmw.Chain(mux,
		httpmw.WithRequestID,
		httpmw.WithRecover(opts.Logger),
		httpmw.WithAccessLog(opts.Logger),
	), nil
}
