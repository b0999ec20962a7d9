package scale

import (
	"math"
	"sort"
)

var (
	e10 = math.Sqrt(50)
	e5  = math.Sqrt(10)
	e2  = math.Sqrt(2)
)

// ticks returns about count values spaced by 1, 2 or 5 times a power of ten,
// covering [start, stop]. The order follows the order of start and stop.
func ticks(start, stop float64, count int) []float64 {
	if count <= 0 || math.IsNaN(start) || math.IsNaN(stop) {
		return nil
	}
	if start == stop {
		return []float64{start}
	}

	reverse := stop < start
	if reverse {
		start, stop = stop, start
	}

	step := tickIncrement(start, stop, count)
	if step == 0 || math.IsInf(step, 0) || math.IsNaN(step) {
		return nil
	}

	var out []float64
	if step > 0 {
		lo, hi := math.Ceil(start/step), math.Floor(stop/step)
		for i := lo; i <= hi; i++ {
			out = append(out, i*step)
		}
	} else {
		inv := -step
		lo, hi := math.Ceil(start*inv), math.Floor(stop*inv)
		for i := lo; i <= hi; i++ {
			out = append(out, i/inv)
		}
	}

	if reverse {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out
}

// tickIncrement returns the tick step for [start, stop]. Positive results are
// the step itself; negative results are the negated inverse of a step below 1,
// which keeps decimal ticks exact.
func tickIncrement(start, stop float64, count int) float64 {
	step := (stop - start) / float64(count)
	power := math.Floor(math.Log10(step))
	errRatio := step / math.Pow(10, power)

	factor := 1.0
	switch {
	case errRatio >= e10:
		factor = 10
	case errRatio >= e5:
		factor = 5
	case errRatio >= e2:
		factor = 2
	}

	if power >= 0 {
		return factor * math.Pow(10, power)
	}
	return -math.Pow(10, -power) / factor
}

// timeIntervals are the tick spacings, in seconds, offered for time axes.
var timeIntervals = []float64{1, 5, 15, 30, 60, 5 * 60, 15 * 60, 30 * 60, 60 * 60}

// timeTickStep picks the interval closest to the ideal spacing for count
// ticks over [start, stop] seconds. Returns 0 when no ticks apply.
func timeTickStep(start, stop float64, count int) float64 {
	if count <= 0 {
		return 0
	}

	target := math.Abs(stop-start) / float64(count)
	if target == 0 {
		return timeIntervals[0]
	}

	i := sort.SearchFloat64s(timeIntervals, target)
	// SearchFloat64s finds the first interval >= target; step past an exact
	// match so the comparison below picks between neighbours.
	for i < len(timeIntervals) && timeIntervals[i] == target {
		i++
	}

	switch {
	case i == 0:
		return timeIntervals[0]
	case i == len(timeIntervals):
		return timeIntervals[len(timeIntervals)-1]
	case target/timeIntervals[i-1] < timeIntervals[i]/target:
		return timeIntervals[i-1]
	default:
		return timeIntervals[i]
	}
}
