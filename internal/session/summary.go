package session

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/claude/fitcoach/internal/models"
)

const (
	MessageFullyCompleted = "Excellent work! You completed every set."
	MessagePartial        = "Good effort! Keep it up to reach your goals."
)

// Summary is shown when a session finishes.
type Summary struct {
	WorkoutName    string `json:"workout_name"`
	CompletedSets  int    `json:"completed_sets"`
	TotalSets      int    `json:"total_sets"`
	CompletionRate int    `json:"completion_rate"`
	// FullyCompleted means every set was logged. The rounded rate alone
	// would also read 100 for 199 of 200 sets.
	FullyCompleted bool   `json:"fully_completed"`
	ElapsedSeconds int    `json:"elapsed_seconds"`
	// DurationMinutes is the backend's recorded duration when Confirmed,
	// otherwise the locally measured one.
	DurationMinutes int    `json:"duration_minutes"`
	Confirmed       bool   `json:"confirmed"`
	Message         string `json:"message"`
}

func (c *Controller) summaryLocked() Summary {
	completed, total := c.session.Totals()
	rate := models.CompletionRate(completed, total)
	s := Summary{
		WorkoutName:     c.session.WorkoutName,
		CompletedSets:   completed,
		TotalSets:       total,
		CompletionRate:  rate,
		FullyCompleted:  total > 0 && completed == total,
		ElapsedSeconds:  c.session.ElapsedSeconds,
		DurationMinutes: c.session.ElapsedSeconds / 60,
		Message:         MessagePartial,
	}
	if s.FullyCompleted {
		s.Message = MessageFullyCompleted
	}
	return s
}

var leadingNumber = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)`)

// parseLenient reads the leading decimal number of raw, so "12kg" is 12.
// Anything unparsable or negative becomes 0.
func parseLenient(raw string) float64 {
	m := leadingNumber.FindString(strings.TrimSpace(raw))
	if m == "" {
		return 0
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

// parseReps reads reps with the same rules as parseLenient, truncated to an
// integer. Values beyond MaxInt32 become 0 rather than wrapping.
func parseReps(raw string) int {
	v := parseLenient(raw)
	if v > math.MaxInt32 {
		return 0
	}
	return int(v)
}
