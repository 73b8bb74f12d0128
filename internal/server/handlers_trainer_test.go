package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/claude/fitcoach/internal/models"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func (f *fakeStore) addExercise(name, bodyPart string) *models.Exercise {
	f.mu.Lock()
	defer f.mu.Unlock()
	e := &models.Exercise{ID: uuid.New(), Name: name, BodyPart: bodyPart, Equipment: "barbell", Target: "pecs", Instructions: []string{}}
	f.exercises[e.ID] = e
	return e
}

func (f *fakeStore) ListExercises(_ context.Context, q models.ExerciseQuery) ([]models.Exercise, error) {
	if err := q.Normalize(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Exercise
	for _, e := range f.exercises {
		if q.Search != "" && !strings.Contains(strings.ToLower(e.Name), strings.ToLower(q.Search)) {
			continue
		}
		if q.BodyPart != "" && !strings.EqualFold(e.BodyPart, q.BodyPart) {
			continue
		}
		out = append(out, *e)
	}
	slices.SortFunc(out, func(a, b models.Exercise) int { return strings.Compare(a.Name, b.Name) })
	if q.Offset >= len(out) {
		return nil, nil
	}
	out = out[q.Offset:]
	if len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (f *fakeStore) ExerciseFacets(context.Context) (*models.ExerciseFacets, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	facets := &models.ExerciseFacets{}
	for _, e := range f.exercises {
		if !slices.Contains(facets.BodyParts, e.BodyPart) {
			facets.BodyParts = append(facets.BodyParts, e.BodyPart)
		}
	}
	slices.Sort(facets.BodyParts)
	return facets, nil
}

func (f *fakeStore) GetExercise(_ context.Context, id uuid.UUID) (*models.Exercise, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.exercises[id]
	if !ok {
		return nil, fmt.Errorf("exercise %s: %w", id, models.ErrNotFound)
	}
	return e, nil
}

func (f *fakeStore) CreateExercise(_ context.Context, in models.NewExercise) (*models.Exercise, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	e := &models.Exercise{ID: uuid.New(), Name: in.Name, BodyPart: in.BodyPart, Instructions: in.Instructions, Custom: true}
	f.exercises[e.ID] = e
	return e, nil
}

func (f *fakeStore) ListWorkouts(context.Context) ([]models.Workout, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Workout
	for _, w := range f.workouts {
		out = append(out, *w)
	}
	return out, nil
}

func (f *fakeStore) GetWorkout(_ context.Context, id uuid.UUID) (*models.Workout, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.workouts[id]
	if !ok {
		return nil, fmt.Errorf("workout %s: %w", id, models.ErrNotFound)
	}
	return w, nil
}

// buildExercises resolves inputs against the library; the caller holds f.mu.
func (f *fakeStore) buildExercises(items []models.WorkoutExerciseInput) ([]models.WorkoutExercise, error) {
	out := []models.WorkoutExercise{}
	for _, it := range items {
		e, ok := f.exercises[it.ExerciseID]
		if !ok {
			return nil, fmt.Errorf("unknown exercise %s: %w", it.ExerciseID, models.ErrInvalid)
		}
		out = append(out, models.WorkoutExercise{
			ID: uuid.New(), ExerciseID: e.ID, ExerciseName: e.Name, OrderIndex: *it.OrderIndex,
			Sets: it.Sets, Reps: it.Reps, Weight: it.Weight, RestSeconds: *it.RestSeconds, Notes: it.Notes,
		})
	}
	return out, nil
}

func (f *fakeStore) CreateWorkout(_ context.Context, in models.WorkoutInput) (*models.Workout, error) {
	if err := in.Normalize(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	exercises, err := f.buildExercises(in.Exercises)
	if err != nil {
		return nil, err
	}
	w := &models.Workout{ID: uuid.New(), Name: in.Name, Description: in.Description, Category: in.Category, Difficulty: in.Difficulty, DurationMinutes: in.DurationMinutes, CreatedAt: time.Now(), Exercises: exercises}
	f.workouts[w.ID] = w
	return w, nil
}

// loggedAgainst reports whether any assignment of workoutID has logged sets;
// the caller holds f.mu.
func (f *fakeStore) loggedAgainst(workoutID uuid.UUID) (assigned, logged bool) {
	for _, d := range f.details {
		if d.WorkoutID != workoutID {
			continue
		}
		assigned = true
		if d.LoggedSets() > 0 {
			logged = true
		}
	}
	return assigned, logged
}

func (f *fakeStore) UpdateWorkout(_ context.Context, id uuid.UUID, p models.WorkoutPatch) (*models.Workout, error) {
	if err := p.Normalize(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.workouts[id]
	if !ok {
		return nil, fmt.Errorf("workout %s: %w", id, models.ErrNotFound)
	}
	if p.Exercises != nil {
		if _, logged := f.loggedAgainst(id); logged {
			return nil, fmt.Errorf("workout has logged sets: %w", models.ErrConflict)
		}
		exercises, err := f.buildExercises(p.Exercises)
		if err != nil {
			return nil, err
		}
		w.Exercises = exercises
	}
	if p.Name != nil {
		w.Name = *p.Name
	}
	if p.Difficulty != nil {
		w.Difficulty = *p.Difficulty
	}
	return w, nil
}

func (f *fakeStore) DeleteWorkout(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.workouts[id]; !ok {
		return fmt.Errorf("workout %s: %w", id, models.ErrNotFound)
	}
	if assigned, _ := f.loggedAgainst(id); assigned {
		return fmt.Errorf("workout is assigned: %w", models.ErrConflict)
	}
	delete(f.workouts, id)
	return nil
}

func (f *fakeStore) ListClients(_ context.Context, active *bool) ([]models.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Client
	for _, c := range f.clients {
		if active == nil || c.Active == *active {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeStore) GetClient(_ context.Context, id uuid.UUID) (*models.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.clients[id]
	if !ok {
		return nil, fmt.Errorf("client %s: %w", id, models.ErrNotFound)
	}
	return c, nil
}

// emailTaken reports whether another client uses email; the caller holds f.mu.
func (f *fakeStore) emailTaken(email string, except uuid.UUID) bool {
	for id, c := range f.clients {
		if id != except && c.Email == email {
			return true
		}
	}
	return false
}

func (f *fakeStore) CreateClient(_ context.Context, in models.ClientInput) (*models.Client, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.emailTaken(in.Email, uuid.Nil) {
		return nil, fmt.Errorf("email %s already in use: %w", in.Email, models.ErrConflict)
	}
	c := &models.Client{ID: uuid.New(), Name: in.Name, Email: in.Email, Notes: in.Notes, Active: true, CreatedAt: time.Now()}
	f.clients[c.ID] = c
	return c, nil
}

func (f *fakeStore) UpdateClient(_ context.Context, id uuid.UUID, p models.ClientPatch) (*models.Client, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.clients[id]
	if !ok {
		return nil, fmt.Errorf("client %s: %w", id, models.ErrNotFound)
	}
	if p.Email != nil {
		if f.emailTaken(*p.Email, id) {
			return nil, fmt.Errorf("email %s already in use: %w", *p.Email, models.ErrConflict)
		}
		c.Email = *p.Email
	}
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Active != nil {
		c.Active = *p.Active
	}
	return c, nil
}

func (f *fakeStore) DeleteClient(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.clients[id]; !ok {
		return fmt.Errorf("client %s: %w", id, models.ErrNotFound)
	}
	delete(f.clients, id)
	for aid, cid := range f.clientOf {
		if cid == id {
			delete(f.clientOf, aid)
			delete(f.details, aid)
		}
	}
	return nil
}

func (f *fakeStore) CreateAssignment(_ context.Context, in models.NewAssignment) (*models.AssignmentSummary, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.workouts[in.WorkoutID]
	if _, known := f.clients[in.ClientID]; !ok || !known {
		return nil, fmt.Errorf("workout or client not found: %w", models.ErrNotFound)
	}
	d := &models.AssignmentDetail{ID: uuid.New(), WorkoutID: w.ID, WorkoutName: w.Name, Status: models.StatusPending, AssignedDate: time.Now(), ScheduledDate: in.ScheduledDate, Notes: in.Notes}
	for _, we := range w.Exercises {
		d.Exercises = append(d.Exercises, models.AssignmentExercise{ID: we.ID, ExerciseID: we.ExerciseID, Name: we.ExerciseName, Sets: we.Sets, Reps: we.Reps, RestSeconds: we.RestSeconds, OrderIndex: we.OrderIndex})
	}
	f.details[d.ID] = d
	f.clientOf[d.ID] = in.ClientID
	return &models.AssignmentSummary{ID: d.ID, WorkoutID: w.ID, WorkoutName: w.Name, ExerciseCount: len(d.Exercises), Status: d.Status, AssignedDate: d.AssignedDate, ScheduledDate: d.ScheduledDate, Notes: d.Notes}, nil
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decoding %T: %v", v, err)
	}
	return v
}

// TestExerciseLibrary verifies search, body part filtering, paging, the
// filters endpoint and custom exercise creation.
func TestExerciseLibrary(t *testing.T) {
	store := newFakeStore()
	store.addExercise("Bench Press", "chest")
	store.addExercise("Incline Bench Press", "chest")
	store.addExercise("Back Squat", "upper legs")
	s, _ := newTestServer(t, store)

	rec := do(t, s, http.MethodGet, "/api/v1/exercises?search=bench", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("search: status = %d body=%s", rec.Code, rec.Body)
	}
	if list := decode[[]models.Exercise](t, rec); len(list) != 2 {
		t.Errorf("search bench = %d results, want 2", len(list))
	}

	rec = do(t, s, http.MethodGet, "/api/v1/exercises?body_part=Upper%20Legs", "")
	if list := decode[[]models.Exercise](t, rec); len(list) != 1 || list[0].Name != "Back Squat" {
		t.Errorf("body part filter = %+v", list)
	}

	rec = do(t, s, http.MethodGet, "/api/v1/exercises?limit=1&offset=1", "")
	if list := decode[[]models.Exercise](t, rec); len(list) != 1 || list[0].Name != "Bench Press" {
		t.Errorf("second page = %+v", list)
	}

	rec = do(t, s, http.MethodGet, "/api/v1/exercises?offset=10", "")
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("past the end body = %q, want []", rec.Body)
	}

	for _, q := range []string{"limit=abc", "limit=-1", "offset=-5"} {
		if rec := do(t, s, http.MethodGet, "/api/v1/exercises?"+q, ""); rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", q, rec.Code)
		}
	}

	rec = do(t, s, http.MethodGet, "/api/v1/exercises/filters", "")
	facets := decode[models.ExerciseFacets](t, rec)
	if !slices.Equal(facets.BodyParts, []string{"chest", "upper legs"}) {
		t.Errorf("body parts = %v", facets.BodyParts)
	}

	rec = do(t, s, http.MethodPost, "/api/v1/exercises", `{"name":"  Sled Push ","body_part":"upper legs","instructions":["push"]}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status = %d body=%s", rec.Code, rec.Body)
	}
	created := decode[models.Exercise](t, rec)
	if created.Name != "Sled Push" || !created.Custom {
		t.Errorf("created = %+v", created)
	}
	if rec := do(t, s, http.MethodGet, "/api/v1/exercises/"+created.ID.String(), ""); rec.Code != http.StatusOK {
		t.Errorf("get created: status = %d", rec.Code)
	}
	if rec := do(t, s, http.MethodPost, "/api/v1/exercises", `{"name":"  "}`); rec.Code != http.StatusBadRequest {
		t.Errorf("blank name: status = %d, want 400", rec.Code)
	}
	if rec := do(t, s, http.MethodGet, "/api/v1/exercises/"+uuid.NewString(), ""); rec.Code != http.StatusNotFound {
		t.Errorf("unknown exercise: status = %d, want 404", rec.Code)
	}
}

// TestWorkoutCRUD verifies create with defaults, get, rename and delete.
func TestWorkoutCRUD(t *testing.T) {
	store := newFakeStore()
	bench := store.addExercise("Bench Press", "chest")
	s, _ := newTestServer(t, store)

	rec := do(t, s, http.MethodPost, "/api/v1/workouts", fmt.Sprintf(`{"name":"Push","exercises":[{"exercise_id":%q}]}`, bench.ID))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status = %d body=%s", rec.Code, rec.Body)
	}
	w := decode[models.Workout](t, rec)
	if len(w.Exercises) != 1 {
		t.Fatalf("exercises = %+v", w.Exercises)
	}
	if ex := w.Exercises[0]; ex.Sets != models.DefaultSets || ex.Reps != models.DefaultReps || ex.RestSeconds != models.DefaultRestSeconds || ex.ExerciseName != "Bench Press" {
		t.Errorf("defaults not applied: %+v", ex)
	}

	path := "/api/v1/workouts/" + w.ID.String()
	rec = do(t, s, http.MethodPut, path, `{"name":"Push Day","difficulty":"hard"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update: status = %d body=%s", rec.Code, rec.Body)
	}
	if got := decode[models.Workout](t, rec); got.Name != "Push Day" || got.Difficulty != "hard" || len(got.Exercises) != 1 {
		t.Errorf("updated = %+v", got)
	}

	rec = do(t, s, http.MethodGet, "/api/v1/workouts", "")
	if list := decode[[]models.Workout](t, rec); len(list) != 1 {
		t.Errorf("list = %d workouts, want 1", len(list))
	}

	if rec := do(t, s, http.MethodDelete, path, ""); rec.Code != http.StatusNoContent {
		t.Fatalf("delete: status = %d", rec.Code)
	}
	if rec := do(t, s, http.MethodGet, path, ""); rec.Code != http.StatusNotFound {
		t.Errorf("get deleted: status = %d, want 404", rec.Code)
	}
	if rec := do(t, s, http.MethodDelete, path, ""); rec.Code != http.StatusNotFound {
		t.Errorf("second delete: status = %d, want 404", rec.Code)
	}
}

// TestWorkoutValidation verifies bad prescriptions and unknown library
// exercises are rejected with 400.
func TestWorkoutValidation(t *testing.T) {
	store := newFakeStore()
	bench := store.addExercise("Bench Press", "chest")
	s, _ := newTestServer(t, store)

	cases := map[string]string{
		"bad json":         `{`,
		"no name":          `{"exercises":[]}`,
		"too many sets":    fmt.Sprintf(`{"name":"x","exercises":[{"exercise_id":%q,"sets":11}]}`, bench.ID),
		"too many reps":    fmt.Sprintf(`{"name":"x","exercises":[{"exercise_id":%q,"reps":101}]}`, bench.ID),
		"negative rest":    fmt.Sprintf(`{"name":"x","exercises":[{"exercise_id":%q,"rest_seconds":-1}]}`, bench.ID),
		"zero duration":    `{"name":"x","duration_minutes":0}`,
		"missing exercise": `{"name":"x","exercises":[{"sets":3}]}`,
		"unknown exercise": fmt.Sprintf(`{"name":"x","exercises":[{"exercise_id":%q}]}`, uuid.New()),
	}
	for name, b := range cases {
		if rec := do(t, s, http.MethodPost, "/api/v1/workouts", b); rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", name, rec.Code)
		}
	}
	if rec := do(t, s, http.MethodGet, "/api/v1/workouts/nope", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("bad id: status = %d, want 400", rec.Code)
	}
}

// TestAssignedWorkoutIsProtected verifies an assigned workout cannot be
// deleted and its exercise list cannot be replaced once sets are logged.
func TestAssignedWorkoutIsProtected(t *testing.T) {
	store := newFakeStore()
	bench := store.addExercise("Bench Press", "chest")
	s, _ := newTestServer(t, store)

	w := decode[models.Workout](t, do(t, s, http.MethodPost, "/api/v1/workouts", fmt.Sprintf(`{"name":"Push","exercises":[{"exercise_id":%q,"sets":2}]}`, bench.ID)))
	c := decode[models.Client](t, do(t, s, http.MethodPost, "/api/v1/clients", `{"name":"Ana","email":"ana@example.com"}`))
	a := decode[models.AssignmentSummary](t, do(t, s, http.MethodPost, "/api/v1/assignments", fmt.Sprintf(`{"workout_id":%q,"client_id":%q}`, w.ID, c.ID)))

	path := "/api/v1/workouts/" + w.ID.String()
	if rec := do(t, s, http.MethodDelete, path, ""); rec.Code != http.StatusConflict {
		t.Errorf("delete assigned: status = %d, want 409", rec.Code)
	}

	replace := fmt.Sprintf(`{"exercises":[{"exercise_id":%q,"sets":4}]}`, bench.ID)
	if rec := do(t, s, http.MethodPut, path, replace); rec.Code != http.StatusOK {
		t.Errorf("replace before logging: status = %d body=%s", rec.Code, rec.Body)
	}

	// The assignment still carries the exercise ids it was created with.
	logBody := fmt.Sprintf(`{"workout_exercise_id":%q,"set_number":1,"reps_completed":8}`, w.Exercises[0].ID)
	if rec := do(t, s, http.MethodPost, "/api/v1/assignments/"+a.ID.String()+"/logs", logBody); rec.Code != http.StatusCreated {
		t.Fatalf("log: status = %d body=%s", rec.Code, rec.Body)
	}
	if rec := do(t, s, http.MethodPut, path, replace); rec.Code != http.StatusConflict {
		t.Errorf("replace after logging: status = %d, want 409", rec.Code)
	}
	if rec := do(t, s, http.MethodPut, path, `{"name":"Push v2"}`); rec.Code != http.StatusOK {
		t.Errorf("rename after logging: status = %d, want 200", rec.Code)
	}
}

// TestClientRoster verifies create, duplicate email, the active filter,
// deactivation and delete.
func TestClientRoster(t *testing.T) {
	s, _ := newTestServer(t, newFakeStore())

	rec := do(t, s, http.MethodPost, "/api/v1/clients", `{"name":"Ana","email":"Ana@Example.com"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status = %d body=%s", rec.Code, rec.Body)
	}
	ana := decode[models.Client](t, rec)
	if ana.Email != "ana@example.com" || !ana.Active {
		t.Errorf("created = %+v", ana)
	}
	if rec := do(t, s, http.MethodPost, "/api/v1/clients", `{"name":"Other Ana","email":"ana@example.com"}`); rec.Code != http.StatusConflict {
		t.Errorf("duplicate email: status = %d, want 409", rec.Code)
	}
	for name, b := range map[string]string{
		"no email":     `{"name":"Bo"}`,
		"bad email":    `{"name":"Bo","email":"not-an-address"}`,
		"display name": `{"name":"Bo","email":"Bo <bo@example.com>"}`,
	} {
		if rec := do(t, s, http.MethodPost, "/api/v1/clients", b); rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", name, rec.Code)
		}
	}

	bo := decode[models.Client](t, do(t, s, http.MethodPost, "/api/v1/clients", `{"name":"Bo","email":"bo@example.com"}`))
	rec = do(t, s, http.MethodPut, "/api/v1/clients/"+bo.ID.String(), `{"active":false}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("deactivate: status = %d", rec.Code)
	}
	if rec := do(t, s, http.MethodPut, "/api/v1/clients/"+bo.ID.String(), `{"email":"ana@example.com"}`); rec.Code != http.StatusConflict {
		t.Errorf("steal email: status = %d, want 409", rec.Code)
	}

	rec = do(t, s, http.MethodGet, "/api/v1/clients?active=true", "")
	if list := decode[[]models.Client](t, rec); len(list) != 1 || list[0].ID != ana.ID {
		t.Errorf("active clients = %+v", list)
	}
	rec = do(t, s, http.MethodGet, "/api/v1/clients", "")
	if list := decode[[]models.Client](t, rec); len(list) != 2 {
		t.Errorf("all clients = %d, want 2", len(list))
	}
	if rec := do(t, s, http.MethodGet, "/api/v1/clients?active=maybe", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("bad filter: status = %d, want 400", rec.Code)
	}

	if rec := do(t, s, http.MethodDelete, "/api/v1/clients/"+bo.ID.String(), ""); rec.Code != http.StatusNoContent {
		t.Errorf("delete: status = %d", rec.Code)
	}
	if rec := do(t, s, http.MethodGet, "/api/v1/clients/"+bo.ID.String(), ""); rec.Code != http.StatusNotFound {
		t.Errorf("get deleted: status = %d, want 404", rec.Code)
	}
}

// TestCreateAssignment verifies a new assignment is pending, shows up under
// the client's path and rejects unknown workouts or clients.
func TestCreateAssignment(t *testing.T) {
	store := newFakeStore()
	bench := store.addExercise("Bench Press", "chest")
	s, m := newTestServer(t, store)

	w := decode[models.Workout](t, do(t, s, http.MethodPost, "/api/v1/workouts", fmt.Sprintf(`{"name":"Push","exercises":[{"exercise_id":%q}]}`, bench.ID)))
	c := decode[models.Client](t, do(t, s, http.MethodPost, "/api/v1/clients", `{"name":"Ana","email":"ana@example.com"}`))

	rec := do(t, s, http.MethodPost, "/api/v1/assignments", fmt.Sprintf(`{"workout_id":%q,"client_id":%q,"scheduled_date":"2026-10-20T00:00:00Z","notes":"easy week"}`, w.ID, c.ID))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status = %d body=%s", rec.Code, rec.Body)
	}
	a := decode[models.AssignmentSummary](t, rec)
	if a.Status != models.StatusPending || a.ExerciseCount != 1 || a.Notes != "easy week" || a.ScheduledDate == nil {
		t.Errorf("created = %+v", a)
	}
	if got := testutil.ToFloat64(m.CounterTransitions.WithLabelValues("pending")); got != 1 {
		t.Errorf("pending transitions = %v, want 1", got)
	}

	rec = do(t, s, http.MethodGet, "/api/v1/assignments/client/"+c.ID.String(), "")
	if list := decode[[]models.AssignmentSummary](t, rec); len(list) != 1 || list[0].ID != a.ID {
		t.Errorf("client assignments = %+v", list)
	}
	if rec := do(t, s, http.MethodGet, "/api/v1/assignments/client/nope", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("bad client id: status = %d, want 400", rec.Code)
	}

	unknown := map[string]string{
		"unknown workout": fmt.Sprintf(`{"workout_id":%q,"client_id":%q}`, uuid.New(), c.ID),
		"unknown client":  fmt.Sprintf(`{"workout_id":%q,"client_id":%q}`, w.ID, uuid.New()),
	}
	for name, b := range unknown {
		if rec := do(t, s, http.MethodPost, "/api/v1/assignments", b); rec.Code != http.StatusNotFound {
			t.Errorf("%s: status = %d, want 404", name, rec.Code)
		}
	}
	if rec := do(t, s, http.MethodPost, "/api/v1/assignments", `{"workout_id":"`+w.ID.String()+`"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("missing client: status = %d, want 400", rec.Code)
	}
}

// TestSetAssignmentStatus verifies the status endpoint dispatches to the
// matching transition, accepts aliases and refuses going back to pending.
func TestSetAssignmentStatus(t *testing.T) {
	store := newFakeStore()
	d := store.add(uuid.New(), 2)
	s, m := newTestServer(t, store)
	path := "/api/v1/assignments/" + d.ID.String() + "/status"

	rec := do(t, s, http.MethodPut, path, `{"status":"started"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("start: status = %d body=%s", rec.Code, rec.Body)
	}
	if got := decode[models.AssignmentDetail](t, rec); got.Status != models.StatusInProgress || got.StartedAt == nil {
		t.Errorf("after start = %+v", got)
	}

	if rec := do(t, s, http.MethodPut, path, `{"status":"pending"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("back to pending: status = %d, want 400", rec.Code)
	}
	if rec := do(t, s, http.MethodPut, path, `{"status":"paused"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("unknown status: status = %d, want 400", rec.Code)
	}

	rec = do(t, s, http.MethodPut, path, `{"status":"done"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("complete: status = %d body=%s", rec.Code, rec.Body)
	}
	if got := decode[models.AssignmentDetail](t, rec); got.Status != models.StatusCompleted {
		t.Errorf("after complete = %s", got.Status)
	}
	if rec := do(t, s, http.MethodPut, path, `{"status":"skipped"}`); rec.Code != http.StatusConflict {
		t.Errorf("skip completed: status = %d, want 409", rec.Code)
	}
	if rec := do(t, s, http.MethodPut, "/api/v1/assignments/"+uuid.NewString()+"/status", `{"status":"skipped"}`); rec.Code != http.StatusNotFound {
		t.Errorf("unknown assignment: status = %d, want 404", rec.Code)
	}

	if got := testutil.ToFloat64(m.CounterTransitions.WithLabelValues("in_progress")); got != 1 {
		t.Errorf("in_progress transitions = %v, want 1", got)
	}
}
