package mcp

import (
	"context"
	"encoding/json"

	"github.com/claude/fitcoach/internal/models"
	"github.com/claude/fitcoach/internal/resttimer"
	"github.com/mark3labs/mcp-go/mcp"
)

type statusEntry struct {
	Status   models.AssignmentStatus `json:"status"`
	Meaning  string                  `json:"meaning"`
	Terminal bool                    `json:"terminal"`
	Aliases  []string                `json:"aliases"`
}

type bandEntry struct {
	Band  resttimer.Band `json:"band"`
	Range string         `json:"remaining_seconds"`
}

var statusMeanings = []struct {
	status  models.AssignmentStatus
	meaning string
}{
	{models.StatusPending, "assigned, no set logged yet"},
	{models.StatusInProgress, "started; sets are being logged"},
	{models.StatusCompleted, "finished by the client; duration is recorded"},
	{models.StatusSkipped, "skipped by the client"},
}

// statusLegend lists each status with the spellings NormalizeStatus accepts
// for it, plus the rest timer bands.
func (h *handlers) statusLegend(_ context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	statuses := make([]statusEntry, 0, len(statusMeanings))
	for _, m := range statusMeanings {
		statuses = append(statuses, statusEntry{
			Status:   m.status,
			Meaning:  m.meaning,
			Terminal: m.status.Terminal(),
			Aliases:  models.StatusAliases(m.status),
		})
	}

	legend := map[string]any{
		"statuses": statuses,
		"rest_bands": []bandEntry{
			{resttimer.BandFor(31), "> 30"},
			{resttimer.BandFor(30), "11-30"},
			{resttimer.BandFor(10), "<= 10"},
		},
	}

	data, err := json.Marshal(legend)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
