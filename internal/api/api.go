// Package api serves the read-only HTTP surface: host metrics, liveness and the job ledger.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sharma-sourabh3435/imagegen/internal/models"
	"github.com/sharma-sourabh3435/imagegen/internal/observability"
	"github.com/sharma-sourabh3435/imagegen/internal/scheduler"
	"github.com/sharma-sourabh3435/imagegen/internal/storage"
	"github.com/sharma-sourabh3435/imagegen/pkg/utils"
)

// Core is the scheduler state the HTTP surface reports on
type Core interface {
	WorkerAlive() bool
	WorkerStatus() models.WorkerStatus
	GetStats() scheduler.Stats
}

// MetricsResponse is the body of GET /metrics
type MetricsResponse struct {
	CPUPercent  float64             `json:"cpu_percent"`
	RAMUsedMB   float64             `json:"ram_used_mb"`
	GPUUsedMB   float64             `json:"gpu_used_mb"`
	WorkerAlive bool                `json:"worker_alive"`
	GRPCAlive   bool                `json:"grpc_alive"`
	Worker      models.WorkerStatus `json:"worker"`
	Jobs        scheduler.Stats     `json:"jobs"`
	Ledger      map[string]int      `json:"ledger,omitempty"`
}

// Server represents the API server
type Server struct {
	core      Core
	storage   storage.Storage
	grpcAlive func() bool
	sample    func(ctx context.Context) observability.HostStats
	logger    *utils.Logger
	server    *http.Server
}

// NewServer creates a new API server instance. store may be nil when the
// ledger is disabled; the job and worker endpoints then answer 404.
func NewServer(core Core, store storage.Storage, grpcAlive func() bool, addr string) *Server {
	s := &Server{
		core:      core,
		storage:   store,
		grpcAlive: grpcAlive,
		sample:    observability.SampleHost,
		logger:    utils.NewLogger("api"),
	}

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.corsMiddleware(s.routes()),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/metrics", s.loggingMiddleware(s.handleMetrics))
	mux.HandleFunc("/healthz", s.loggingMiddleware(s.handleHealth))

	// Ledger endpoints
	mux.HandleFunc("/jobs", s.loggingMiddleware(s.handleJobs))
	mux.HandleFunc("/jobs/", s.loggingMiddleware(s.handleJobByID))
	mux.HandleFunc("/workers", s.loggingMiddleware(s.handleWorkers))

	return mux
}

// Handler returns the HTTP handler, used by tests
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start starts the API server
func (s *Server) Start() error {
	s.logger.Info("Starting metrics server on %s", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down metrics server...")
	return s.server.Shutdown(ctx)
}

// Middleware: CORS
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Middleware: Logging
func (s *Server) loggingMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		s.logger.Debug("%s %s", r.Method, r.URL.Path)

		next(w, r)

		s.logger.Debug("Completed %s %s in %v", r.Method, r.URL.Path, time.Since(start))
	}
}

// Helper: JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("Failed to encode JSON response: %v", err)
	}
}

// Helper: Error response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// Handler: GET /metrics
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.errorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	host := s.sample(r.Context())
	resp := MetricsResponse{
		CPUPercent:  host.CPUPercent,
		RAMUsedMB:   host.RAMUsedMB,
		GPUUsedMB:   host.GPUUsedMB,
		WorkerAlive: s.core.WorkerAlive(),
		GRPCAlive:   s.grpcAlive != nil && s.grpcAlive(),
		Worker:      s.core.WorkerStatus(),
		Jobs:        s.core.GetStats(),
	}

	if s.storage != nil {
		counts, err := s.storage.CountJobRunsByStatus(r.Context())
		if err != nil {
			s.logger.Warn("Failed to count job runs: %v", err)
		} else {
			resp.Ledger = counts
		}
	}

	s.jsonResponse(w, http.StatusOK, resp)
}

// Handler: GET /healthz
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.grpcAlive != nil && !s.grpcAlive() {
		s.errorResponse(w, http.StatusServiceUnavailable, "gRPC server not serving")
		return
	}
	if s.storage != nil {
		if err := s.storage.Ping(r.Context()); err != nil {
			s.logger.Error("Database ping failed: %v", err)
			s.errorResponse(w, http.StatusServiceUnavailable, "Database unavailable")
			return
		}
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Handler: GET /jobs
func (s *Server) handleJobs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.errorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	if s.storage == nil {
		s.errorResponse(w, http.StatusNotFound, "Job ledger disabled")
		return
	}

	limit := queryInt(r, "limit", 100, 1)
	offset := queryInt(r, "offset", 0, 0)

	runs, err := s.storage.ListJobRuns(r.Context(), limit, offset)
	if err != nil {
		s.logger.Error("Failed to list job runs: %v", err)
		s.errorResponse(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}

	s.jsonResponse(w, http.StatusOK, runs)
}

// Handler: GET /jobs/{id}
func (s *Server) handleJobByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.errorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	if s.storage == nil {
		s.errorResponse(w, http.StatusNotFound, "Job ledger disabled")
		return
	}

	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/jobs/"), "/")
	if path == "" {
		s.errorResponse(w, http.StatusBadRequest, "Job ID required")
		return
	}

	id, err := strconv.ParseInt(path, 10, 64)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid job ID")
		return
	}

	run, err := s.storage.GetJobRun(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		s.errorResponse(w, http.StatusNotFound, "Job not found")
		return
	}
	if err != nil {
		s.logger.Error("Failed to get job run %d: %v", id, err)
		s.errorResponse(w, http.StatusInternalServerError, "Failed to get job")
		return
	}

	s.jsonResponse(w, http.StatusOK, run)
}

// Handler: GET /workers
func (s *Server) handleWorkers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.errorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	if s.storage == nil {
		s.errorResponse(w, http.StatusNotFound, "Job ledger disabled")
		return
	}

	runs, err := s.storage.ListWorkerRuns(r.Context(), queryInt(r, "limit", 50, 1))
	if err != nil {
		s.logger.Error("Failed to list worker runs: %v", err)
		s.errorResponse(w, http.StatusInternalServerError, "Failed to list workers")
		return
	}

	s.jsonResponse(w, http.StatusOK, runs)
}

// queryInt reads an integer query parameter, falling back to def when absent or below floor
func queryInt(r *http.Request, key string, def, floor int) int {
	if str := r.URL.Query().Get(key); str != "" {
		if v, err := strconv.Atoi(str); err == nil && v >= floor {
			return v
		}
	}
	return def
}
