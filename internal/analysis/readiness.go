package analysis

import "runready/internal/health"

// Readiness messages
const (
	MessageLightDay    = "Consider a light day"
	MessageLookingGood = "Looking good"
	MessageReady       = "Ready to go!"
)

// ReadinessScore is a 0-100 composite of sleep, steps and resting heart rate
type ReadinessScore struct {
	Value   int    `json:"value"`
	Message string `json:"message"`
}

// Score computes the readiness score for a metrics snapshot.
//
// Sleep: >7h = 40, >6h = 30
// Steps: <5000 = 30, <10000 = 20 (a quieter day implies more recovery)
// Resting HR: <65 = 30, <75 = 20, only when a sample exists
func Score(m health.HealthMetrics) ReadinessScore {
	score := SleepPoints(m.SleepHours) + StepPoints(m.StepCount) + HeartRatePoints(m.HeartRateBPM)
	return ReadinessScore{Value: score, Message: ReadinessMessage(score)}
}

// SleepPoints returns the sleep component of the readiness score
func SleepPoints(hours float64) int {
	switch {
	case hours > 7:
		return 40
	case hours > 6:
		return 30
	default:
		return 0
	}
}

// StepPoints returns the step component of the readiness score
func StepPoints(steps int) int {
	switch {
	case steps < 5000:
		return 30
	case steps < 10000:
		return 20
	default:
		return 0
	}
}

// HeartRatePoints returns the resting heart-rate component. A zero
// reading means "no sample" and never earns points.
func HeartRatePoints(bpm float64) int {
	if bpm <= 0 {
		return 0
	}
	switch {
	case bpm < 65:
		return 30
	case bpm < 75:
		return 20
	default:
		return 0
	}
}

// ReadinessMessage maps a score to its human-readable verdict
func ReadinessMessage(score int) string {
	switch {
	case score < 50:
		return MessageLightDay
	case score < 75:
		return MessageLookingGood
	default:
		return MessageReady
	}
}
