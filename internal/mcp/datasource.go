package mcp

import (
	"context"

	"github.com/claude/fitcoach/internal/api"
	"github.com/claude/fitcoach/internal/models"
	"github.com/claude/fitcoach/internal/storage"
	"github.com/google/uuid"
)

// DataSource abstracts the data layer for MCP tools. Both *storage.DB (local)
// and *api.Client (remote via REST API) satisfy this interface.
type DataSource interface {
	ListAssignments(ctx context.Context, clientID uuid.UUID) ([]models.AssignmentSummary, error)
	FetchAssignment(ctx context.Context, id uuid.UUID) (*models.AssignmentDetail, error)
}

var (
	_ DataSource = (*storage.DB)(nil)
	_ DataSource = (*api.Client)(nil)
)
