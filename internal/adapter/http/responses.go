package http

import (
	"time"

	"github.com/couchcryptid/cyclist-scatter/internal/chart"
	"github.com/couchcryptid/cyclist-scatter/internal/domain"
	"github.com/couchcryptid/cyclist-scatter/internal/pipeline"
	"github.com/couchcryptid/cyclist-scatter/internal/scale"
)

type meta struct {
	ID      string    `json:"id"`
	BuiltAt time.Time `json:"builtAt"`
}

func metaOf(s *pipeline.Snapshot) meta {
	return meta{ID: s.ID, BuiltAt: s.BuiltAt}
}

type chartBody struct {
	meta
	chart.View
}

type datasetBody struct {
	meta
	Records []domain.Record `json:"records"`
}

type scalesBody struct {
	meta
	Layout scale.Layout `json:"layout"`
	Scales scale.Scales `json:"scales"`
}

func chartResponse(s *pipeline.Snapshot) any {
	return chartBody{meta: metaOf(s), View: s.View}
}

func datasetResponse(s *pipeline.Snapshot) any {
	return datasetBody{meta: metaOf(s), Records: s.Records}
}

func scalesResponse(s *pipeline.Snapshot) any {
	return scalesBody{meta: metaOf(s), Layout: s.View.Layout, Scales: s.Scales}
}
