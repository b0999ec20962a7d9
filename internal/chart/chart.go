// Package chart lays out the scatter plot as plain data: where each point
// goes, how it is colored and animated, what its tooltip says, and where the
// axis ticks fall. Drawing is left to the renderer consuming the View.
package chart

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/cyclist-scatter/internal/domain"
	"github.com/couchcryptid/cyclist-scatter/internal/scale"
)

const (
	// Radius is the resting point radius.
	Radius = 5.0

	// InitialRadius is the radius points start from before animating in.
	InitialRadius = 20.0

	// HoverRadius is the radius of a point under the pointer.
	HoverRadius = 30.0

	// DuplicateOffset shifts a point that repeats its predecessor's year and
	// time so both stay visible.
	DuplicateOffset = 0.2

	// TickCount is the approximate number of ticks per axis.
	TickCount = 10

	LegendDoping   = "Doping allegations"
	LegendNoDoping = "No doping"
	YAxisLabel     = "Ascent time (lower means faster)"
	CleanSubtitle  = "Clean. No doping accusations."
)

// View is everything a renderer needs to draw the chart.
type View struct {
	Layout scale.Layout  `json:"layout"`
	Points []Point       `json:"points"`
	Legend []LegendEntry `json:"legend"`
	XAxis  Axis          `json:"xAxis"`
	YAxis  Axis          `json:"yAxis"`
}

// Point is one plotted record.
type Point struct {
	CX     float64 `json:"cx"`
	CY     float64 `json:"cy"`
	Radius float64 `json:"r"`
	Fill   string  `json:"fill"`

	// Entry state, before the animation runs.
	InitialCX     float64 `json:"initialCx"`
	InitialCY     float64 `json:"initialCy"`
	InitialRadius float64 `json:"initialR"`
	HoverRadius   float64 `json:"hoverR"`

	DataXValue int    `json:"dataXValue"`
	DataYValue string `json:"dataYValue"`
	URL        string `json:"url,omitempty"`

	Tooltip   Tooltip   `json:"tooltip"`
	Animation Animation `json:"animation"`
}

// Tooltip is the text shown while a point is hovered.
type Tooltip struct {
	Year     int    `json:"year"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
}

type LegendEntry struct {
	Doping bool   `json:"doping"`
	Label  string `json:"label"`
	Color  string `json:"color"`
}

// Axis is a labelled list of tick positions along one dimension.
type Axis struct {
	Label string `json:"label,omitempty"`
	Ticks []Tick `json:"ticks"`
}

type Tick struct {
	Offset float64 `json:"offset"`
	Label  string  `json:"label"`
}

// Build lays out records on the given scales. Points keep input order.
func Build(records []domain.Record, s scale.Scales, l scale.Layout) View {
	palette := NewPalette(ColorFirst, ColorSecond)

	points := make([]Point, len(records))
	for i, r := range records {
		x := float64(r.Year)
		if r.IsDuplicateYear {
			x += DuplicateOffset
		}

		points[i] = Point{
			CX:            s.X.Map(x),
			CY:            s.Y.Map(r.Time),
			Radius:        Radius,
			Fill:          palette.Color(r.HasDoping()),
			InitialCX:     0,
			InitialCY:     l.InnerHeight(),
			InitialRadius: InitialRadius,
			HoverRadius:   HoverRadius,
			DataXValue:    r.Year,
			DataYValue:    r.Time.UTC().Format(time.RFC3339Nano),
			URL:           r.URL,
			Tooltip:       tooltipFor(r),
			Animation:     animationFor(i),
		}
	}

	return View{
		Layout: l,
		Points: points,
		Legend: legend(palette),
		XAxis:  xAxis(s.X),
		YAxis:  yAxis(s.Y),
	}
}

func tooltipFor(r domain.Record) Tooltip {
	sub := CleanSubtitle
	if r.HasDoping() {
		sub = r.Doping
		if !strings.HasSuffix(sub, ".") {
			sub += "."
		}
	}
	return Tooltip{
		Year:     r.Year,
		Title:    fmt.Sprintf("%s (%s). In %d: %s.", r.Name, r.Country, r.Year, domain.FormatTooltipTime(r.Time)),
		Subtitle: sub,
	}
}

func legend(p *Palette) []LegendEntry {
	values := p.Domain()
	out := make([]LegendEntry, len(values))
	for i, v := range values {
		label := LegendNoDoping
		if v {
			label = LegendDoping
		}
		out[i] = LegendEntry{Doping: v, Label: label, Color: p.Color(v)}
	}
	return out
}

func xAxis(x scale.Linear) Axis {
	values := x.Ticks(TickCount)
	ticks := make([]Tick, len(values))
	for i, v := range values {
		ticks[i] = Tick{Offset: x.Map(v), Label: strconv.FormatFloat(v, 'f', -1, 64)}
	}
	return Axis{Ticks: ticks}
}

func yAxis(y scale.Time) Axis {
	values := y.Ticks(TickCount)
	ticks := make([]Tick, len(values))
	for i, v := range values {
		ticks[i] = Tick{Offset: y.Map(v), Label: domain.FormatTime(v)}
	}
	return Axis{Label: YAxisLabel, Ticks: ticks}
}
