package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/claude/fitcoach/internal/models"
)

func (s *Server) handleCreateAssignment(w http.ResponseWriter, r *http.Request) {
	var in models.NewAssignment
	if !decodeBody(w, r, &in) {
		return
	}
	a, err := s.store.CreateAssignment(r.Context(), in)
	if err != nil {
		s.writeStoreError(w, "creating assignment", err)
		return
	}
	s.transition(a.Status)
	s.log.Info("assignment created", "assignment", a.ID, "workout", in.WorkoutID, "client", in.ClientID)
	writeJSON(w, http.StatusCreated, a)
}

// handleSetAssignmentStatus moves an assignment to the requested status by
// dispatching to the matching transition. Going back to pending is refused.
func (s *Server) handleSetAssignmentStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := assignmentID(w, r)
	if !ok {
		return
	}
	var body models.StatusChange
	if !decodeBody(w, r, &body) {
		return
	}
	status, ok := models.NormalizeStatus(body.Status)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("unknown status %q", body.Status)})
		return
	}

	var err error
	switch status {
	case models.StatusInProgress:
		_, err = s.store.StartAssignment(r.Context(), id)
	case models.StatusCompleted:
		_, err = s.store.CompleteAssignment(r.Context(), id)
	case models.StatusSkipped:
		_, err = s.store.SkipAssignment(r.Context(), id)
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "an assignment cannot be moved back to " + string(status)})
		return
	}
	if err != nil {
		s.writeStoreError(w, "updating assignment status", err)
		return
	}
	s.transition(status)

	d, err := s.store.FetchAssignment(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, "fetching assignment", err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleListExercises(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := models.ExerciseQuery{
		Search:    q.Get("search"),
		BodyPart:  q.Get("body_part"),
		Target:    q.Get("target"),
		Equipment: q.Get("equipment"),
	}
	var err error
	if query.Limit, err = intParam(q.Get("limit")); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid limit"})
		return
	}
	if query.Offset, err = intParam(q.Get("offset")); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid offset"})
		return
	}

	list, err := s.store.ListExercises(r.Context(), query)
	if err != nil {
		s.writeStoreError(w, "listing exercises", err)
		return
	}
	if list == nil {
		list = []models.Exercise{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleExerciseFilters(w http.ResponseWriter, r *http.Request) {
	f, err := s.store.ExerciseFacets(r.Context())
	if err != nil {
		s.writeStoreError(w, "listing exercise filters", err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (s *Server) handleGetExercise(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "exercise")
	if !ok {
		return
	}
	e, err := s.store.GetExercise(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, "fetching exercise", err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleCreateExercise(w http.ResponseWriter, r *http.Request) {
	var in models.NewExercise
	if !decodeBody(w, r, &in) {
		return
	}
	e, err := s.store.CreateExercise(r.Context(), in)
	if err != nil {
		s.writeStoreError(w, "creating exercise", err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

func (s *Server) handleListWorkouts(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.ListWorkouts(r.Context())
	if err != nil {
		s.writeStoreError(w, "listing workouts", err)
		return
	}
	if list == nil {
		list = []models.Workout{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetWorkout(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "workout")
	if !ok {
		return
	}
	wo, err := s.store.GetWorkout(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, "fetching workout", err)
		return
	}
	writeJSON(w, http.StatusOK, wo)
}

func (s *Server) handleCreateWorkout(w http.ResponseWriter, r *http.Request) {
	var in models.WorkoutInput
	if !decodeBody(w, r, &in) {
		return
	}
	wo, err := s.store.CreateWorkout(r.Context(), in)
	if err != nil {
		s.writeStoreError(w, "creating workout", err)
		return
	}
	s.log.Info("workout created", "workout", wo.ID, "exercises", len(wo.Exercises))
	writeJSON(w, http.StatusCreated, wo)
}

func (s *Server) handleUpdateWorkout(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "workout")
	if !ok {
		return
	}
	var p models.WorkoutPatch
	if !decodeBody(w, r, &p) {
		return
	}
	wo, err := s.store.UpdateWorkout(r.Context(), id, p)
	if err != nil {
		s.writeStoreError(w, "updating workout", err)
		return
	}
	writeJSON(w, http.StatusOK, wo)
}

func (s *Server) handleDeleteWorkout(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "workout")
	if !ok {
		return
	}
	if err := s.store.DeleteWorkout(r.Context(), id); err != nil {
		s.writeStoreError(w, "deleting workout", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListClients(w http.ResponseWriter, r *http.Request) {
	var active *bool
	if raw := r.URL.Query().Get("active"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid active filter"})
			return
		}
		active = &v
	}
	list, err := s.store.ListClients(r.Context(), active)
	if err != nil {
		s.writeStoreError(w, "listing clients", err)
		return
	}
	if list == nil {
		list = []models.Client{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetClient(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "client")
	if !ok {
		return
	}
	c, err := s.store.GetClient(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, "fetching client", err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleCreateClient(w http.ResponseWriter, r *http.Request) {
	var in models.ClientInput
	if !decodeBody(w, r, &in) {
		return
	}
	c, err := s.store.CreateClient(r.Context(), in)
	if err != nil {
		s.writeStoreError(w, "creating client", err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleUpdateClient(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "client")
	if !ok {
		return
	}
	var p models.ClientPatch
	if !decodeBody(w, r, &p) {
		return
	}
	c, err := s.store.UpdateClient(r.Context(), id, p)
	if err != nil {
		s.writeStoreError(w, "updating client", err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleDeleteClient(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "client")
	if !ok {
		return
	}
	if err := s.store.DeleteClient(r.Context(), id); err != nil {
		s.writeStoreError(w, "deleting client", err)
		return
	}
	s.log.Info("client deleted", "client", id, "caller", userInfoFromContext(r).Login)
	w.WriteHeader(http.StatusNoContent)
}

// intParam parses an optional integer query parameter; empty is zero.
func intParam(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
