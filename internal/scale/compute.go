package scale

import (
	"errors"
	"fmt"

	"github.com/couchcryptid/cyclist-scatter/internal/domain"
)

var (
	// ErrUndefinedExtent is returned when scales are requested for an empty
	// dataset. It always wraps domain.ErrEmptyDataset as well.
	ErrUndefinedExtent = errors.New("scale: undefined extent")

	// ErrInvalidDimensions is returned for non-positive plot dimensions.
	ErrInvalidDimensions = errors.New("scale: invalid dimensions")
)

// Margin is the space between the chart border and the plot area, in pixels.
type Margin struct {
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
	Right  float64 `json:"right"`
}

// Layout describes the fixed chart geometry.
type Layout struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Margin Margin  `json:"margin"`
}

// DefaultLayout is the 800x600 chart with room for the axes on the left and
// bottom.
var DefaultLayout = Layout{
	Width:  800,
	Height: 600,
	Margin: Margin{Top: 50, Bottom: 70, Left: 70, Right: 10},
}

// InnerWidth is the width of the plot area.
func (l Layout) InnerWidth() float64 {
	return l.Width - l.Margin.Left - l.Margin.Right
}

// InnerHeight is the height of the plot area.
func (l Layout) InnerHeight() float64 {
	return l.Height - l.Margin.Top - l.Margin.Bottom
}

// Scales holds the horizontal (year) and vertical (ascent time) mappings.
type Scales struct {
	X Linear `json:"x"`
	Y Time   `json:"y"`
}

// Compute derives both scales from the dataset extents. The year domain is
// padded by one year on each side; the time domain is the exact extent.
// Earlier (faster) times map to smaller offsets.
func Compute(records []domain.Record, innerWidth, innerHeight float64) (Scales, error) {
	if innerWidth <= 0 || innerHeight <= 0 {
		return Scales{}, fmt.Errorf("%w: %gx%g", ErrInvalidDimensions, innerWidth, innerHeight)
	}

	ext, err := domain.Extents(records)
	if err != nil {
		return Scales{}, fmt.Errorf("%w: %w", ErrUndefinedExtent, err)
	}

	return Scales{
		X: NewLinear(float64(ext.MinYear-1), float64(ext.MaxYear+1), 0, innerWidth),
		Y: NewTime(ext.MinTime, ext.MaxTime, 0, innerHeight),
	}, nil
}

// ComputeForLayout is Compute over the plot area of l.
func ComputeForLayout(records []domain.Record, l Layout) (Scales, error) {
	return Compute(records, l.InnerWidth(), l.InnerHeight())
}
