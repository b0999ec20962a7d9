package chart

import (
	"math"
	"time"
)

const (
	// StaggerDelay separates the start of consecutive point transitions.
	StaggerDelay = 40 * time.Millisecond

	// TransitionDuration is how long each point takes to reach its position.
	TransitionDuration = 800 * time.Millisecond

	// EasingCircle names the circular in-out easing curve.
	EasingCircle = "circle"
)

// Animation schedules the entry transition of a single point.
type Animation struct {
	DelayMS    int64  `json:"delayMs"`
	DurationMS int64  `json:"durationMs"`
	Easing     string `json:"easing"`
}

func animationFor(i int) Animation {
	return Animation{
		DelayMS:    (time.Duration(i) * StaggerDelay).Milliseconds(),
		DurationMS: TransitionDuration.Milliseconds(),
		Easing:     EasingCircle,
	}
}

// Progress returns the eased completion, in [0, 1], of the transition at
// elapsed time since the chart started animating.
func (a Animation) Progress(elapsed time.Duration) float64 {
	ms := float64(elapsed.Milliseconds() - a.DelayMS)
	switch {
	case ms <= 0:
		return 0
	case a.DurationMS <= 0 || ms >= float64(a.DurationMS):
		return 1
	}
	return EaseCircle(ms / float64(a.DurationMS))
}

// EaseCircle is the symmetric circular easing curve: slow at both ends.
func EaseCircle(t float64) float64 {
	t *= 2
	if t <= 1 {
		return (1 - math.Sqrt(1-t*t)) / 2
	}
	t -= 2
	return (math.Sqrt(1-t*t) + 1) / 2
}
