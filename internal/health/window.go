package health

import "time"

const (
	// SleepWindowStartHour is the local hour on the previous day where the sleep window opens
	SleepWindowStartHour = 18
	// HeartRateLookback bounds how old a resting heart-rate sample may be
	HeartRateLookback = 24 * time.Hour
)

// SleepWindow returns the window for last night's sleep: 18:00 on the
// previous local day through now.
func SleepWindow(now time.Time) (start, end time.Time) {
	y, m, d := now.Date()
	start = time.Date(y, m, d-1, SleepWindowStartHour, 0, 0, 0, now.Location())
	return start, now
}

// DayWindow returns local midnight through now
func DayWindow(now time.Time) (start, end time.Time) {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location()), now
}

// SumAsleep totals the hours of asleep samples, clipped to [start, end].
// Awake and in-bed samples are ignored.
func SumAsleep(samples []SleepSample, start, end time.Time) float64 {
	var total time.Duration
	for _, s := range samples {
		if s.Stage != StageAsleep {
			continue
		}
		from, to := s.Start, s.End
		if from.Before(start) {
			from = start
		}
		if to.After(end) {
			to = end
		}
		if to.After(from) {
			total += to.Sub(from)
		}
	}
	return total.Hours()
}

// SumSteps totals step samples that started inside [start, end]
func SumSteps(samples []StepSample, start, end time.Time) int {
	total := 0
	for _, s := range samples {
		if s.Start.Before(start) || s.Start.After(end) || s.Count < 0 {
			continue
		}
		total += s.Count
	}
	return total
}

// LatestResting returns the BPM of the most recent resting sample taken
// within HeartRateLookback of now, or 0 when there is none.
func LatestResting(samples []HeartRateSample, now time.Time) float64 {
	cutoff := now.Add(-HeartRateLookback)
	var latest *HeartRateSample
	for i := range samples {
		s := &samples[i]
		if !s.Resting || s.BPM <= 0 {
			continue
		}
		if s.At.Before(cutoff) || s.At.After(now) {
			continue
		}
		if latest == nil || s.At.After(latest.At) {
			latest = s
		}
	}
	if latest == nil {
		return 0
	}
	return latest.BPM
}
