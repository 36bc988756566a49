package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"jobportal/internal/app"
	"jobportal/internal/guard"
	"jobportal/internal/ratelimit"
	"jobportal/internal/util"
	"jobportal/pkg/domain"
	"jobportal/pkg/store"
)

// Config wires required dependencies for the HTTP server. LoginLimiter
// is optional; nil disables credential throttling.
type Config struct {
	App          *app.App
	LoginLimiter *ratelimit.FixedWindowLimiter
}

// Server exposes the thin HTTP surface over the application core. Route
// admission goes through the guard checks; store failures map to a
// generic retry-later response so nothing internal leaks.
type Server struct {
	app     *app.App
	limiter *ratelimit.FixedWindowLimiter
	mux     *http.ServeMux
}

// New constructs the server with routes configured.
func New(cfg Config) *Server {
	s := &Server{app: cfg.App, limiter: cfg.LoginLimiter, mux: http.NewServeMux()}
	s.routes()
	return s
}

// Router returns the configured handler.
func (s *Server) Router() http.Handler {
	return util.WithRequestID(s.mux)
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealth)

	// auth
	s.mux.HandleFunc("/api/auth/register", s.handleRegister)
	s.mux.HandleFunc("/api/auth/login", s.handleLogin)
	s.mux.HandleFunc("/api/auth/logout", s.handleLogout)
	s.mux.HandleFunc("/api/auth/me", s.handleMe)

	// jobs: listing and search are public, mutations admin-only
	s.mux.HandleFunc("/api/jobs", s.handleJobs)
	s.mux.HandleFunc("/api/jobs/", s.handleJobByID)

	// bookmarks (auth required)
	s.mux.Handle("/api/bookmarks", s.authenticated(s.handleBookmarks))
	s.mux.Handle("/api/bookmarks/", s.authenticated(s.handleBookmarkByJob))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// guard wrappers
func (s *Server) authenticated(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !guard.Authenticated(s.app.Sessions()) {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next(w, r)
	})
}

func (s *Server) requireAdmin(w http.ResponseWriter) bool {
	if !guard.Authenticated(s.app.Sessions()) {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return false
	}
	if !guard.Admin(s.app.Sessions()) {
		writeError(w, http.StatusForbidden, "forbidden")
		return false
	}
	return true
}

// throttle guards the credential endpoints against brute forcing,
// keyed by the remote address.
func (s *Server) throttle(w http.ResponseWriter, r *http.Request) bool {
	if s.limiter == nil {
		return true
	}
	host := r.RemoteAddr
	if h, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		host = h
	}
	if !s.limiter.Allow(host) {
		writeError(w, http.StatusTooManyRequests, "too many attempts, slow down")
		return false
	}
	return true
}

// auth handlers
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !s.throttle(w, r) {
		return
	}
	var req registerRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	user, err := s.app.Register(req.Name, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrDuplicateEmail):
			writeError(w, http.StatusConflict, "email already registered")
		case errors.Is(err, app.ErrEmailAndPasswordRequired):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeStoreError(w, r, "register", err)
		}
		return
	}
	slog.Info("user registered", "user_id", user.ID, "request_id", util.RequestIDFromContext(r.Context()))
	writeJSON(w, http.StatusCreated, user)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !s.throttle(w, r) {
		return
	}
	var req loginRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	id, ok, err := s.app.Login(req.Email, req.Password)
	if err != nil {
		writeStoreError(w, r, "login", err)
		return
	}
	if !ok {
		// No credential match is a normal outcome, not a server fault.
		writeError(w, http.StatusUnauthorized, "incorrect email or password")
		return
	}
	writeJSON(w, http.StatusOK, id)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	target, err := s.app.Logout()
	if err != nil {
		writeStoreError(w, r, "logout", err)
		return
	}
	// The client performs a full-page navigation to flush view state.
	writeJSON(w, http.StatusOK, map[string]string{"redirect": target})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	id, ok := s.app.Sessions().Current()
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, id)
}

// job handlers
func (s *Server) handleJobs(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		jobs, err := s.app.SearchJobs(r.URL.Query().Get("q"))
		if err != nil {
			writeStoreError(w, r, "list jobs", err)
			return
		}
		writeJSON(w, http.StatusOK, jobs)
	case http.MethodPost:
		if !s.requireAdmin(w) {
			return
		}
		var job domain.Job
		if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&job); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		created, err := s.app.CreateJob(job)
		if err != nil {
			writeStoreError(w, r, "create job", err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleJobByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	switch r.Method {
	case http.MethodGet:
		job, ok, err := s.app.GetJob(id)
		if err != nil {
			writeStoreError(w, r, "get job", err)
			return
		}
		if !ok {
			writeError(w, http.StatusNotFound, "job not found")
			return
		}
		writeJSON(w, http.StatusOK, job)
	case http.MethodPut:
		if !s.requireAdmin(w) {
			return
		}
		var job domain.Job
		if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&job); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		job.ID = id
		updated, err := s.app.UpdateJob(job)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeError(w, http.StatusNotFound, "job not found")
				return
			}
			writeStoreError(w, r, "update job", err)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	case http.MethodDelete:
		if !s.requireAdmin(w) {
			return
		}
		if err := s.app.DeleteJob(id); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeError(w, http.StatusNotFound, "job not found")
				return
			}
			writeStoreError(w, r, "delete job", err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
	default:
		methodNotAllowed(w)
	}
}

// bookmark handlers
func (s *Server) handleBookmarks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	jobs, err := s.app.Bookmarks()
	if err != nil {
		writeStoreError(w, r, "list bookmarks", err)
		return
	}
	writeJSON(w, http.StatusOK, jobs)
}

func (s *Server) handleBookmarkByJob(w http.ResponseWriter, r *http.Request) {
	jobID := strings.TrimPrefix(r.URL.Path, "/api/bookmarks/")
	if jobID == "" || strings.Contains(jobID, "/") {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	switch r.Method {
	case http.MethodGet:
		saved, err := s.app.IsBookmarked(jobID)
		if err != nil {
			writeStoreError(w, r, "check bookmark", err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"bookmarked": saved})
	case http.MethodPost:
		jobs, err := s.app.ToggleBookmark(jobID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeError(w, http.StatusNotFound, "job not found")
				return
			}
			writeStoreError(w, r, "toggle bookmark", err)
			return
		}
		writeJSON(w, http.StatusOK, jobs)
	default:
		methodNotAllowed(w)
	}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// writeStoreError logs the cause and answers with a generic retry-later
// message; persistence details never reach the client.
func writeStoreError(w http.ResponseWriter, r *http.Request, op string, err error) {
	slog.Error("store operation failed",
		"op", op,
		"err", err,
		"request_id", util.RequestIDFromContext(r.Context()),
	)
	writeError(w, http.StatusServiceUnavailable, "temporary failure, please retry")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}
