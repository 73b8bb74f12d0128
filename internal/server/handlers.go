package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/claude/fitcoach/internal/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func (s *Server) handleListAssignments(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "clientID")
	if raw == "" {
		raw = r.URL.Query().Get("client_id")
	}
	if raw == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "client_id parameter required"})
		return
	}
	clientID, err := uuid.Parse(raw)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid client_id: " + err.Error()})
		return
	}

	list, err := s.store.ListAssignments(r.Context(), clientID)
	if err != nil {
		s.writeStoreError(w, "listing assignments", err)
		return
	}
	if list == nil {
		list = []models.AssignmentSummary{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetAssignment(w http.ResponseWriter, r *http.Request) {
	id, ok := assignmentID(w, r)
	if !ok {
		return
	}
	d, err := s.store.FetchAssignment(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, "fetching assignment", err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleStartAssignment(w http.ResponseWriter, r *http.Request) {
	id, ok := assignmentID(w, r)
	if !ok {
		return
	}
	res, err := s.store.StartAssignment(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, "starting assignment", err)
		return
	}
	s.transition(res.Status)
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleLogSet(w http.ResponseWriter, r *http.Request) {
	id, ok := assignmentID(w, r)
	if !ok {
		return
	}

	var entry models.SetEntry
	if !decodeBody(w, r, &entry) {
		return
	}
	if entry.WorkoutExerciseID == uuid.Nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "workout_exercise_id required"})
		return
	}

	rec, err := s.store.LogSet(r.Context(), id, entry)
	if err != nil {
		s.writeStoreError(w, "logging set", err)
		return
	}
	if s.metrics != nil {
		s.metrics.CounterSetsLogged.Inc()
	}
	s.log.Debug("set logged",
		"assignment", id,
		"exercise", entry.WorkoutExerciseID,
		"set", entry.SetNumber,
		"caller", userIDFromContext(r),
	)
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleCompleteAssignment(w http.ResponseWriter, r *http.Request) {
	id, ok := assignmentID(w, r)
	if !ok {
		return
	}
	res, err := s.store.CompleteAssignment(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, "completing assignment", err)
		return
	}
	s.transition(res.Status)
	s.log.Info("assignment completed", "assignment", id, "caller", userInfoFromContext(r).Login)
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleSkipAssignment(w http.ResponseWriter, r *http.Request) {
	id, ok := assignmentID(w, r)
	if !ok {
		return
	}
	res, err := s.store.SkipAssignment(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, "skipping assignment", err)
		return
	}
	s.transition(res.Status)
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userInfoFromContext(r))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		s.log.Error("health check", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) transition(status models.AssignmentStatus) {
	if s.metrics != nil {
		s.metrics.CounterTransitions.WithLabelValues(string(status)).Inc()
	}
}

// writeStoreError maps the shared model errors to HTTP statuses.
func (s *Server) writeStoreError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, models.ErrConflict):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, models.ErrInvalid):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		s.log.Error(op, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

func assignmentID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	return pathID(w, r, "assignment")
}

// pathID parses the {id} URL parameter, writing a 400 naming kind on failure.
func pathID(w http.ResponseWriter, r *http.Request, kind string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid " + kind + " id"})
		return uuid.Nil, false
	}
	return id, true
}

// decodeBody decodes a JSON request body into v, writing a 400 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
