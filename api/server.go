// Package api exposes the admin HTTP surface: inspecting filters and
// mutating their subscriptions while the watcher runs.
package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/skywatchd/skywatch/filter"
	"github.com/skywatchd/skywatch/pkg/log"
	"github.com/skywatchd/skywatch/watcher"
)

// FilterAdmin is the slice of the watcher the API needs.
type FilterAdmin interface {
	Status() watcher.Status
	Snapshot() []*filter.Filter
	SubscribeRepo(name, did string) error
	UnsubscribeRepo(name, did string) error
	SubscribeHandle(name, handle string) error
	UnsubscribeHandle(name, handle string) error
}

type Server struct {
	admin FilterAdmin
}

func NewServer(admin FilterAdmin) *Server {
	return &Server{admin: admin}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/status", s.handleStatus)
	r.Get("/filters", s.handleListFilters)
	r.Route("/filters/{name}", func(r chi.Router) {
		r.Post("/repos", s.handleSubscribeRepo)
		r.Delete("/repos", s.handleUnsubscribeRepo)
		r.Post("/handles", s.handleSubscribeHandle)
		r.Delete("/handles", s.handleUnsubscribeHandle)
	})

	return r
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": s.admin.Status(),
	})
}

func (s *Server) handleListFilters(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"filters": s.admin.Snapshot(),
	})
}

type repoRequest struct {
	Did string `json:"did"`
}

type handleRequest struct {
	Handle string `json:"handle"`
}

func (s *Server) handleSubscribeRepo(w http.ResponseWriter, r *http.Request) {
	var req repoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Did == "" {
		writeError(w, http.StatusBadRequest, "missing did")
		return
	}
	s.finishMutation(w, s.admin.SubscribeRepo(chi.URLParam(r, "name"), req.Did))
}

func (s *Server) handleUnsubscribeRepo(w http.ResponseWriter, r *http.Request) {
	var req repoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Did == "" {
		writeError(w, http.StatusBadRequest, "missing did")
		return
	}
	s.finishMutation(w, s.admin.UnsubscribeRepo(chi.URLParam(r, "name"), req.Did))
}

func (s *Server) handleSubscribeHandle(w http.ResponseWriter, r *http.Request) {
	var req handleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Handle == "" {
		writeError(w, http.StatusBadRequest, "missing handle")
		return
	}
	s.finishMutation(w, s.admin.SubscribeHandle(chi.URLParam(r, "name"), req.Handle))
}

func (s *Server) handleUnsubscribeHandle(w http.ResponseWriter, r *http.Request) {
	var req handleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Handle == "" {
		writeError(w, http.StatusBadRequest, "missing handle")
		return
	}
	s.finishMutation(w, s.admin.UnsubscribeHandle(chi.URLParam(r, "name"), req.Handle))
}

func (s *Server) finishMutation(w http.ResponseWriter, err error) {
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	case errors.Is(err, filter.ErrNoSuchFilter):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, filter.ErrNotFound):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Errorf("failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"error": msg})
}
