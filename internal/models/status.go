package models

import (
	"slices"
	"strings"
)

// AssignmentStatus is the backend lifecycle of a workout assignment.
type AssignmentStatus string

// Canonical assignment statuses (the values stored in workout_assignments.status).
const (
	StatusPending    AssignmentStatus = "pending"
	StatusInProgress AssignmentStatus = "in_progress"
	StatusCompleted  AssignmentStatus = "completed"
	StatusSkipped    AssignmentStatus = "skipped"
)

// statusAliases maps lowercased spellings seen from older clients and
// hand-written seed files to their canonical status.
var statusAliases = map[string]AssignmentStatus{
	"pending":     StatusPending,
	"assigned":    StatusPending,
	"todo":        StatusPending,
	"in_progress": StatusInProgress,
	"in-progress": StatusInProgress,
	"in progress": StatusInProgress,
	"inprogress":  StatusInProgress,
	"started":     StatusInProgress,
	"active":      StatusInProgress,
	"completed":   StatusCompleted,
	"complete":    StatusCompleted,
	"done":        StatusCompleted,
	"finished":    StatusCompleted,
	"skipped":     StatusSkipped,
	"skip":        StatusSkipped,
}

// NormalizeStatus maps a status spelling to its canonical value.
// Returns the input unchanged and false if the spelling is unknown.
func NormalizeStatus(s string) (AssignmentStatus, bool) {
	if st, ok := statusAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return st, true
	}
	return AssignmentStatus(s), false
}

// Valid reports whether s is one of the canonical statuses.
func (s AssignmentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusSkipped:
		return true
	}
	return false
}

// Terminal reports whether no further sets can be logged.
func (s AssignmentStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusSkipped
}

// StatusAliases returns the sorted spellings NormalizeStatus maps to s.
func StatusAliases(s AssignmentStatus) []string {
	var out []string
	for alias, st := range statusAliases {
		if st == s {
			out = append(out, alias)
		}
	}
	slices.Sort(out)
	return out
}
