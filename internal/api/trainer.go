package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/claude/fitcoach/internal/models"
	"github.com/google/uuid"
)

// CreateAssignment assigns a workout to a client.
func (c *Client) CreateAssignment(ctx context.Context, in models.NewAssignment) (*models.AssignmentSummary, error) {
	var out models.AssignmentSummary
	if err := c.do(ctx, http.MethodPost, "/api/v1/assignments", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ClientAssignments lists a client's assignments through the roster path.
func (c *Client) ClientAssignments(ctx context.Context, clientID uuid.UUID) ([]models.AssignmentSummary, error) {
	var out []models.AssignmentSummary
	if err := c.do(ctx, http.MethodGet, "/api/v1/assignments/client/"+clientID.String(), nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SetAssignmentStatus moves an assignment to status and returns it refreshed.
func (c *Client) SetAssignmentStatus(ctx context.Context, id uuid.UUID, status models.AssignmentStatus) (*models.AssignmentDetail, error) {
	var out models.AssignmentDetail
	body := models.StatusChange{Status: string(status)}
	if err := c.do(ctx, http.MethodPut, assignmentPath(id, "status"), nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListExercises searches the exercise library.
func (c *Client) ListExercises(ctx context.Context, q models.ExerciseQuery) ([]models.Exercise, error) {
	params := url.Values{}
	for key, v := range map[string]string{
		"search":    q.Search,
		"body_part": q.BodyPart,
		"target":    q.Target,
		"equipment": q.Equipment,
	} {
		if v != "" {
			params.Set(key, v)
		}
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		params.Set("offset", strconv.Itoa(q.Offset))
	}

	var out []models.Exercise
	if err := c.do(ctx, http.MethodGet, "/api/v1/exercises", params, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ExerciseFilters returns the values the library can be filtered by.
func (c *Client) ExerciseFilters(ctx context.Context) (*models.ExerciseFacets, error) {
	var out models.ExerciseFacets
	if err := c.do(ctx, http.MethodGet, "/api/v1/exercises/filters", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetExercise(ctx context.Context, id uuid.UUID) (*models.Exercise, error) {
	var out models.Exercise
	if err := c.do(ctx, http.MethodGet, "/api/v1/exercises/"+id.String(), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateExercise adds a custom exercise to the library.
func (c *Client) CreateExercise(ctx context.Context, in models.NewExercise) (*models.Exercise, error) {
	var out models.Exercise
	if err := c.do(ctx, http.MethodPost, "/api/v1/exercises", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListWorkouts(ctx context.Context) ([]models.Workout, error) {
	var out []models.Workout
	if err := c.do(ctx, http.MethodGet, "/api/v1/workouts", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetWorkout(ctx context.Context, id uuid.UUID) (*models.Workout, error) {
	var out models.Workout
	if err := c.do(ctx, http.MethodGet, "/api/v1/workouts/"+id.String(), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateWorkout(ctx context.Context, in models.WorkoutInput) (*models.Workout, error) {
	var out models.Workout
	if err := c.do(ctx, http.MethodPost, "/api/v1/workouts", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateWorkout applies p. A non-nil exercise list replaces the workout's
// exercises, which the server refuses once sets have been logged.
func (c *Client) UpdateWorkout(ctx context.Context, id uuid.UUID, p models.WorkoutPatch) (*models.Workout, error) {
	var out models.Workout
	if err := c.do(ctx, http.MethodPut, "/api/v1/workouts/"+id.String(), nil, p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteWorkout(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/workouts/"+id.String(), nil, nil, nil)
}

// ListClients returns the roster. A nil active lists everyone.
func (c *Client) ListClients(ctx context.Context, active *bool) ([]models.Client, error) {
	params := url.Values{}
	if active != nil {
		params.Set("active", strconv.FormatBool(*active))
	}
	var out []models.Client
	if err := c.do(ctx, http.MethodGet, "/api/v1/clients", params, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetClient(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	var out models.Client
	if err := c.do(ctx, http.MethodGet, "/api/v1/clients/"+id.String(), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateClient(ctx context.Context, in models.ClientInput) (*models.Client, error) {
	var out models.Client
	if err := c.do(ctx, http.MethodPost, "/api/v1/clients", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateClient(ctx context.Context, id uuid.UUID, p models.ClientPatch) (*models.Client, error) {
	var out models.Client
	if err := c.do(ctx, http.MethodPut, "/api/v1/clients/"+id.String(), nil, p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteClient removes a client together with their assignments and logs.
func (c *Client) DeleteClient(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/clients/"+id.String(), nil, nil, nil)
}
