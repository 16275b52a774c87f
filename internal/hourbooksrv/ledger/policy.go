package ledger

import (
	"fmt"
	"math"
	"time"
)

const (
	// DefaultSessionCap is the longest session credited in full.
	DefaultSessionCap = 5.0
	// MaxHours is the largest value total_hours can store.
	MaxHours = 99999.99

	DefaultManualNote = "Manually added by admin"
)

// RoundHours converts d to hours rounded to two decimals. Negative durations
// count as zero.
func RoundHours(d time.Duration) float64 {
	if d < 0 {
		return 0
	}
	return math.Round(d.Hours()*100) / 100
}

// ApplyCap returns the credited hours and whether the raw value exceeded cap.
func ApplyCap(raw, cap float64) (total float64, flagged bool) {
	if raw > cap {
		return cap, true
	}
	return raw, false
}

func validHours(h float64) bool {
	return !math.IsNaN(h) && !math.IsInf(h, 0) && h >= 0 && h <= MaxHours
}

func adjustNote(prev, next float64, actor string) string {
	return fmt.Sprintf("Hours adjusted from %.2f to %.2f by %s", prev, next, actor)
}
