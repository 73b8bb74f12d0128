package mcp

import (
	"context"
	"time"

	"github.com/claude/fitcoach/internal/models"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
)

func parseFlexTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse("2006-01-02", s)
	if err == nil {
		return t, nil
	}
	return time.Time{}, err
}

func requireUUID(req mcp.CallToolRequest, name string) (uuid.UUID, *mcp.CallToolResult) {
	raw, err := req.RequireString(name)
	if err != nil {
		return uuid.Nil, mcp.NewToolResultError(name + " parameter is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, mcp.NewToolResultError("invalid " + name + ": " + err.Error())
	}
	return id, nil
}

// --- Tool definitions ---

var toolListAssignments = mcp.NewTool("list_assignments",
	mcp.WithDescription("List a client's workout assignments, newest first. Each entry has the workout name, status, exercise count and number of sets logged so far."),
	mcp.WithString("client_id", mcp.Required(), mcp.Description("Client UUID")),
	mcp.WithString("status", mcp.Description("Only return assignments with this status"), mcp.Enum("pending", "in_progress", "completed", "skipped")),
	mcp.WithString("since", mcp.Description("Only return assignments assigned on or after this date (ISO 8601 or YYYY-MM-DD)")),
)

var toolGetAssignment = mcp.NewTool("get_assignment",
	mcp.WithDescription("Get one assignment with its ordered exercises (sets, reps, weight, rest) and every set logged against it."),
	mcp.WithString("assignment_id", mcp.Required(), mcp.Description("Assignment UUID")),
)

var toolGetAssignmentProgress = mcp.NewTool("get_assignment_progress",
	mcp.WithDescription("Set-level progress of an assignment: completed and target sets overall and per exercise, and the completion rate as a whole percentage."),
	mcp.WithString("assignment_id", mcp.Required(), mcp.Description("Assignment UUID")),
)

// --- Tool handlers ---

func (h *handlers) listAssignments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	clientID, errResult := requireUUID(req, "client_id")
	if errResult != nil {
		return errResult, nil
	}

	var status models.AssignmentStatus
	if raw := req.GetString("status", ""); raw != "" {
		st, ok := models.NormalizeStatus(raw)
		if !ok {
			return mcp.NewToolResultError("unknown status: " + raw), nil
		}
		status = st
	}

	var since time.Time
	if raw := req.GetString("since", ""); raw != "" {
		t, err := parseFlexTime(raw)
		if err != nil {
			return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
		}
		since = t
	}

	list, err := h.ds.ListAssignments(ctx, clientID)
	if err != nil {
		h.log.Error("mcp list_assignments", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	out := make([]models.AssignmentSummary, 0, len(list))
	for _, a := range list {
		if status != "" && a.Status != status {
			continue
		}
		if !since.IsZero() && a.AssignedDate.Before(since) {
			continue
		}
		out = append(out, a)
	}

	result, err := mcp.NewToolResultJSON(out)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getAssignment(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errResult := requireUUID(req, "assignment_id")
	if errResult != nil {
		return errResult, nil
	}

	d, err := h.ds.FetchAssignment(ctx, id)
	if err != nil {
		h.log.Error("mcp get_assignment", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(d)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

// exerciseProgress is the per-exercise line of get_assignment_progress.
type exerciseProgress struct {
	WorkoutExerciseID uuid.UUID `json:"workout_exercise_id"`
	Name              string    `json:"name"`
	CompletedSets     int       `json:"completed_sets"`
	TargetSets        int       `json:"target_sets"`
}

type assignmentProgress struct {
	ID          uuid.UUID               `json:"id"`
	WorkoutName string                  `json:"workout_name"`
	Status      models.AssignmentStatus `json:"status"`
	models.Progress
	Exercises []exerciseProgress `json:"exercises"`
}

func progressOf(d *models.AssignmentDetail) assignmentProgress {
	p := assignmentProgress{
		ID:          d.ID,
		WorkoutName: d.WorkoutName,
		Status:      d.Status,
		Progress:    models.ProgressOf(d),
		Exercises:   make([]exerciseProgress, 0, len(d.Exercises)),
	}
	for _, ex := range d.Exercises {
		single := models.AssignmentDetail{Exercises: []models.AssignmentExercise{ex}}
		p.Exercises = append(p.Exercises, exerciseProgress{
			WorkoutExerciseID: ex.ID,
			Name:              ex.Name,
			CompletedSets:     single.LoggedSets(),
			TargetSets:        ex.Sets,
		})
	}
	return p
}

func (h *handlers) getAssignmentProgress(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errResult := requireUUID(req, "assignment_id")
	if errResult != nil {
		return errResult, nil
	}

	d, err := h.ds.FetchAssignment(ctx, id)
	if err != nil {
		h.log.Error("mcp get_assignment_progress", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(progressOf(d))
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
