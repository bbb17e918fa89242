package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"ptforge/internal/logging"
)

// APIServer exposes daemon control over loopback HTTP. It serves the same
// operations as the IPC socket for tooling that prefers plain HTTP.
type APIServer struct {
	daemon   *Daemon
	logger   *slog.Logger
	validate *validator.Validate
	server   *http.Server
}

// NewAPIServer builds the HTTP control server bound to cfg.Paths.APIBind.
func NewAPIServer(d *Daemon, logger *slog.Logger) *APIServer {
	api := &APIServer{
		daemon:   d,
		logger:   logging.NewComponentLogger(logger, "api"),
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(api.auth(d.cfg.Paths.APIToken))
	r.Route("/api", func(r chi.Router) {
		r.Get("/status", api.handleStatus)
		r.Get("/queue", api.handleQueueList)
		r.Post("/queue", api.handleQueueAdd)
		r.Delete("/queue", api.handleQueueClear)
		r.Delete("/queue/{id}", api.handleQueueRemove)
		r.Get("/history", api.handleHistory)
	})

	api.server = &http.Server{
		Addr:         d.cfg.Paths.APIBind,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return api
}

// Serve blocks until the listener fails or Shutdown is called.
func (a *APIServer) Serve() error {
	a.logger.Info("api listening", logging.String("bind", a.server.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests and closes the listener.
func (a *APIServer) Shutdown(ctx context.Context) error {
	return a.server.Shutdown(ctx)
}

// Handler exposes the router for tests.
func (a *APIServer) Handler() http.Handler {
	return a.server.Handler
}

// auth validates a bearer token when one is configured; an empty token
// leaves the loopback API open.
func (a *APIServer) auth(token string) func(http.Handler) http.Handler {
	token = strings.TrimSpace(token)
	return func(next http.Handler) http.Handler {
		if token == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") || strings.TrimPrefix(header, "Bearer ") != token {
				a.writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type statusResponse struct {
	Running   bool      `json:"running"`
	PID       int       `json:"pid"`
	RunID     string    `json:"run_id"`
	StartedAt time.Time `json:"started_at"`
	QueueSize int       `json:"queue_size"`
	Current   *JobView  `json:"current,omitempty"`
}

func (a *APIServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := a.daemon.Status()
	a.writeJSON(w, http.StatusOK, statusResponse{
		Running:   status.Running,
		PID:       status.PID,
		RunID:     status.RunID,
		StartedAt: status.StartedAt,
		QueueSize: status.QueueSize,
		Current:   status.Current,
	})
}

func (a *APIServer) handleQueueList(w http.ResponseWriter, r *http.Request) {
	a.writeJSON(w, http.StatusOK, map[string]any{"jobs": a.daemon.ListJobs()})
}

type addJobRequest struct {
	Folder     string `json:"folder" validate:"required"`
	Artist     string `json:"artist"`
	Song       string `json:"song"`
	Project    string `json:"project"`
	SampleRate int    `json:"sample_rate" validate:"omitempty,oneof=44100 48000 88200 96000 176400 192000"`
	BitDepth   int    `json:"bit_depth" validate:"omitempty,oneof=16 24 32"`
	Template   string `json:"template"`
}

func (a *APIServer) handleQueueAdd(w http.ResponseWriter, r *http.Request) {
	var req addJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := a.validate.Struct(req); err != nil {
		a.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	jobs, err := a.daemon.EnqueueFolder(r.Context(), AddRequest{
		Folder:     req.Folder,
		Artist:     req.Artist,
		Song:       req.Song,
		Project:    req.Project,
		SampleRate: req.SampleRate,
		BitDepth:   req.BitDepth,
		Template:   req.Template,
	})
	if err != nil {
		a.writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	views := make([]JobView, 0, len(jobs))
	for _, job := range jobs {
		views = append(views, ViewOf(job))
	}
	a.writeJSON(w, http.StatusCreated, map[string]any{"jobs": views})
}

func (a *APIServer) handleQueueRemove(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !a.daemon.RemoveJob(id) {
		a.writeError(w, http.StatusConflict, "job is running or not found")
		return
	}
	a.writeJSON(w, http.StatusOK, map[string]any{"removed": id})
}

func (a *APIServer) handleQueueClear(w http.ResponseWriter, r *http.Request) {
	removed := a.daemon.ClearQueue()
	a.writeJSON(w, http.StatusOK, map[string]any{"removed": removed})
}

func (a *APIServer) handleHistory(w http.ResponseWriter, r *http.Request) {
	records, err := a.daemon.history.Recent(r.Context(), 50)
	if err != nil {
		a.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	a.writeJSON(w, http.StatusOK, map[string]any{"records": records})
}

func (a *APIServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		a.logger.Debug("write response failed", logging.Error(err))
	}
}

func (a *APIServer) writeError(w http.ResponseWriter, status int, message string) {
	a.writeJSON(w, status, map[string]string{"error": message})
}
