// Package scale maps dataset values to pixel offsets for the scatter plot.
//
// Scales are plain values: once computed they never change, and every method
// is safe to call from any goroutine.
package scale

import (
	"encoding/json"
	"math"
	"time"

	"github.com/couchcryptid/cyclist-scatter/internal/domain"
)

// Linear is an affine mapping from a numeric domain onto a pixel range.
// Values outside the domain are extrapolated, not clamped. A degenerate domain
// (both ends equal) maps every value to the middle of the range.
type Linear struct {
	d0, d1 float64
	r0, r1 float64
}

// NewLinear builds a linear scale from domain [d0, d1] to range [r0, r1].
func NewLinear(d0, d1, r0, r1 float64) Linear {
	return Linear{d0: d0, d1: d1, r0: r0, r1: r1}
}

// Map returns the pixel offset for v.
func (s Linear) Map(v float64) float64 {
	span := s.d1 - s.d0
	if span == 0 {
		return s.r0 + (s.r1-s.r0)/2
	}
	t := (v - s.d0) / span
	switch t {
	case 0:
		return s.r0
	case 1:
		return s.r1
	}
	return s.r0 + t*(s.r1-s.r0)
}

// Invert returns the domain value that maps to pixel offset p.
func (s Linear) Invert(p float64) float64 {
	span := s.r1 - s.r0
	if span == 0 {
		return s.d0 + (s.d1-s.d0)/2
	}
	return s.d0 + (p-s.r0)/span*(s.d1-s.d0)
}

// Domain returns the [min, max] input interval.
func (s Linear) Domain() [2]float64 { return [2]float64{s.d0, s.d1} }

// Range returns the [min, max] output interval.
func (s Linear) Range() [2]float64 { return [2]float64{s.r0, s.r1} }

// Ticks returns roughly count evenly spaced, human-friendly values inside the
// domain.
func (s Linear) Ticks(count int) []float64 {
	return ticks(s.d0, s.d1, count)
}

func (s Linear) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Domain [2]float64 `json:"domain"`
		Range  [2]float64 `json:"range"`
	}{s.Domain(), s.Range()})
}

// Time is a linear scale over ascent times, measured as seconds since
// domain.Epoch.
type Time struct {
	linear Linear
}

// NewTime builds a time scale from domain [t0, t1] to range [r0, r1].
func NewTime(t0, t1 time.Time, r0, r1 float64) Time {
	return Time{linear: NewLinear(seconds(t0), seconds(t1), r0, r1)}
}

// Map returns the pixel offset for t.
func (s Time) Map(t time.Time) float64 {
	return s.linear.Map(seconds(t))
}

// Invert returns the ascent time that maps to pixel offset p, rounded to the
// nearest millisecond.
func (s Time) Invert(p float64) time.Time {
	return fromSeconds(s.linear.Invert(p))
}

// Domain returns the [min, max] time interval.
func (s Time) Domain() [2]time.Time {
	d := s.linear.Domain()
	return [2]time.Time{fromSeconds(d[0]), fromSeconds(d[1])}
}

// Range returns the [min, max] output interval.
func (s Time) Range() [2]float64 { return s.linear.Range() }

// Ticks returns times aligned to a whole number of seconds or minutes,
// roughly count of them, inside the domain.
func (s Time) Ticks(count int) []time.Time {
	d := s.linear.Domain()
	step := timeTickStep(d[0], d[1], count)
	if step == 0 {
		return nil
	}

	lo, hi := d[0], d[1]
	if lo > hi {
		lo, hi = hi, lo
	}
	var out []time.Time
	for v := math.Ceil(lo/step) * step; v <= hi; v += step {
		out = append(out, fromSeconds(v))
	}
	if d[0] > d[1] {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out
}

func (s Time) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Domain [2]time.Time `json:"domain"`
		Range  [2]float64   `json:"range"`
	}{s.Domain(), s.Range()})
}

func seconds(t time.Time) float64 {
	return t.Sub(domain.Epoch).Seconds()
}

func fromSeconds(v float64) time.Time {
	return domain.Epoch.Add(time.Duration(math.Round(v*1000)) * time.Millisecond)
}
