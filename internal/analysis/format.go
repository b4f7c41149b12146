package analysis

import (
	"fmt"
	"math"
)

// FormatDuration formats whole seconds as zero-padded HH:MM:SS.
// Hours are not wrapped at 24.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// RoundDistance rounds kilometers to two decimals for presentation and upload
func RoundDistance(km float64) float64 {
	return math.Round(km*100) / 100
}
