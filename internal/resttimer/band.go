package resttimer

import "fmt"

// Band is the urgency colour band for a remaining time.
type Band string

const (
	BandNormal   Band = "normal"
	BandWarning  Band = "warning"
	BandCritical Band = "critical"
)

// BandFor classifies remaining seconds: above 30 is normal, 11 through 30 is
// warning, 10 and below is critical.
func BandFor(remaining int) Band {
	switch {
	case remaining <= 10:
		return BandCritical
	case remaining <= 30:
		return BandWarning
	default:
		return BandNormal
	}
}

// Format renders seconds as mm:ss.
func Format(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// Status is the one-line caption shown under the countdown.
func Status(s State) string {
	switch {
	case s.Phase == Expired || (s.Visible && s.RemainingSeconds == 0):
		return "rest complete"
	case s.Paused:
		return "paused"
	case s.Visible:
		return "resting"
	default:
		return ""
	}
}
