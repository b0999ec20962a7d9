package pipeline

import (
	"fmt"

	"github.com/couchcryptid/cyclist-scatter/internal/chart"
	"github.com/couchcryptid/cyclist-scatter/internal/domain"
	"github.com/couchcryptid/cyclist-scatter/internal/scale"
)

// Dataset is the normalized records together with everything derived from
// them for rendering.
type Dataset struct {
	Records []domain.Record
	Scales  scale.Scales
	View    chart.View
}

// Build runs the pure stages on a fetched batch: normalize, compute scales,
// lay out the chart. It performs no I/O.
func Build(raws []domain.RawRecord, layout scale.Layout) (Dataset, error) {
	records, err := domain.BuildDataset(raws)
	if err != nil {
		return Dataset{}, fmt.Errorf("build dataset: %w", err)
	}

	scales, err := scale.ComputeForLayout(records, layout)
	if err != nil {
		return Dataset{}, fmt.Errorf("compute scales: %w", err)
	}

	return Dataset{
		Records: records,
		Scales:  scales,
		View:    chart.Build(records, scales, layout),
	}, nil
}

// DuplicateYearCount returns how many records repeat their predecessor's year
// and time.
func (d Dataset) DuplicateYearCount() int {
	n := 0
	for _, r := range d.Records {
		if r.IsDuplicateYear {
			n++
		}
	}
	return n
}
