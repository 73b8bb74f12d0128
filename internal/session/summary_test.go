package session

import "testing"

func TestParseLenient(t *testing.T) {
	cases := []struct {
		raw  string
		want float64
	}{
		{"10", 10},
		{" 10 ", 10},
		{"12.5kg", 12.5},
		{".5", 0.5},
		{"+3", 3},
		{"-1", 0},
		{"kg", 0},
		{"", 0},
	}
	for _, tc := range cases {
		if got := parseLenient(tc.raw); got != tc.want {
			t.Errorf("parseLenient(%q) = %v, want %v", tc.raw, got, tc.want)
		}
	}
}

// TestParseReps verifies reps are truncated and that values too large for an
// int32 become 0 instead of wrapping negative.
func TestParseReps(t *testing.T) {
	cases := []struct {
		raw  string
		want int
	}{
		{"12", 12},
		{"7.9", 7},
		{"2147483647", 2147483647},
		{"2147483648", 0},
		{"99999999999999999999", 0},
		{"-3", 0},
	}
	for _, tc := range cases {
		if got := parseReps(tc.raw); got != tc.want {
			t.Errorf("parseReps(%q) = %d, want %d", tc.raw, got, tc.want)
		}
	}
}

// TestFullyCompletedNeedsEverySet verifies 199 of 200 sets rounds to a 100%
// rate but is not reported as fully completed.
func TestFullyCompletedNeedsEverySet(t *testing.T) {
	logs := make([]SetLog, 200)
	for i := range logs {
		logs[i] = SetLog{SetNumber: i + 1, Completed: i < 199}
	}
	c := &Controller{session: WorkoutSession{
		Exercises: []ExerciseProgress{{TargetSets: 200, Logs: logs}},
	}}

	s := c.summaryLocked()
	if s.CompletionRate != 100 {
		t.Fatalf("rate = %d, want 100", s.CompletionRate)
	}
	if s.FullyCompleted || s.Message != MessagePartial {
		t.Errorf("summary = %+v, want partial", s)
	}

	c.session.Exercises[0].Logs[199].Completed = true
	if s := c.summaryLocked(); !s.FullyCompleted || s.Message != MessageFullyCompleted {
		t.Errorf("summary = %+v, want fully completed", s)
	}
}
