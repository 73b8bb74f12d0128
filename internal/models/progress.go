package models

import "math"

// CompletionRate returns completed/total as a whole percentage, rounded half
// away from zero. An empty prescription has a rate of 0.
func CompletionRate(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}

// Progress is the set-level completion of one assignment.
type Progress struct {
	CompletedSets  int  `json:"completed_sets"`
	TotalSets      int  `json:"total_sets"`
	CompletionRate int  `json:"completion_rate"`
	FullyCompleted bool `json:"fully_completed"`
}

// ProgressOf computes set-level progress for an assignment detail.
func ProgressOf(d *AssignmentDetail) Progress {
	p := Progress{
		CompletedSets: d.LoggedSets(),
		TotalSets:     d.TotalSets(),
	}
	p.CompletionRate = CompletionRate(p.CompletedSets, p.TotalSets)
	p.FullyCompleted = p.CompletionRate == 100
	return p
}
