package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "github.com/couchcryptid/cyclist-scatter/internal/adapter/http"
	"github.com/couchcryptid/cyclist-scatter/internal/domain"
	"github.com/couchcryptid/cyclist-scatter/internal/observability"
	"github.com/couchcryptid/cyclist-scatter/internal/pipeline"
)

type stubSource struct {
	records []domain.RawRecord
	err     error
}

func (s stubSource) Fetch(context.Context) ([]domain.RawRecord, error) {
	return s.records, s.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newPipeline(src stubSource) *pipeline.Pipeline {
	return pipeline.New(src, nil, clockwork.NewFakeClock(), testLogger(), observability.NewMetricsForTesting())
}

// readyServer returns a server backed by a pipeline that has built a dataset.
func readyServer(t *testing.T) (*httpadapter.Server, *pipeline.Snapshot) {
	t.Helper()
	p := newPipeline(stubSource{records: []domain.RawRecord{
		{Time: "36:50", Name: "A", Nationality: "X", Year: domain.YearText("1994")},
		{Time: "36:50", Doping: " banned ", Name: "B", Nationality: "Y", URL: "u", Year: domain.YearText("1994")},
	}})
	snap, err := p.Refresh(context.Background())
	require.NoError(t, err)
	return httpadapter.NewServer(":0", p, testLogger()), snap
}

func get(srv http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthzReturns200(t *testing.T) {
	srv := httpadapter.NewServer(":0", newPipeline(stubSource{}), testLogger())

	rec := get(srv, "/healthz")

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyz(t *testing.T) {
	t.Run("ready after build", func(t *testing.T) {
		srv, _ := readyServer(t)
		assert.Equal(t, http.StatusOK, get(srv, "/readyz").Code)
	})

	t.Run("not ready before build", func(t *testing.T) {
		srv := httpadapter.NewServer(":0", newPipeline(stubSource{}), testLogger())
		assert.Equal(t, http.StatusServiceUnavailable, get(srv, "/readyz").Code)
	})
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := readyServer(t)

	rec := get(srv, "/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestAPI_UnavailableBeforeFirstBuild(t *testing.T) {
	p := newPipeline(stubSource{err: errors.New("connection refused")})
	_, err := p.Refresh(context.Background())
	require.Error(t, err)
	srv := httpadapter.NewServer(":0", p, testLogger())

	for _, path := range []string{"/api/chart", "/api/dataset", "/api/scales"} {
		t.Run(path, func(t *testing.T) {
			rec := get(srv, path)

			assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, "unavailable", body["status"])
			assert.Contains(t, body["error"], "connection refused")
		})
	}
}

func TestAPI_UnavailableWithoutAttempt(t *testing.T) {
	srv := httpadapter.NewServer(":0", newPipeline(stubSource{}), testLogger())

	rec := get(srv, "/api/chart")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "dataset not built yet")
}

func TestAPI_Dataset(t *testing.T) {
	srv, snap := readyServer(t)

	rec := get(srv, "/api/dataset")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		ID      string          `json:"id"`
		Records []domain.Record `json:"records"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, snap.ID, body.ID)
	require.Len(t, body.Records, 2)
	assert.Equal(t, "banned", body.Records[1].Doping)
	assert.True(t, body.Records[1].IsDuplicateYear)
	assert.Equal(t, `"`+snap.ID+`"`, rec.Header().Get("ETag"))
}

func TestAPI_Scales(t *testing.T) {
	srv, _ := readyServer(t)

	rec := get(srv, "/api/scales")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Layout struct {
			Width  float64 `json:"width"`
			Height float64 `json:"height"`
		} `json:"layout"`
		Scales struct {
			X struct {
				Domain []float64 `json:"domain"`
				Range  []float64 `json:"range"`
			} `json:"x"`
		} `json:"scales"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 800.0, body.Layout.Width)
	assert.Equal(t, 600.0, body.Layout.Height)
	assert.Equal(t, []float64{1993, 1995}, body.Scales.X.Domain)
	assert.Equal(t, []float64{0, 720}, body.Scales.X.Range)
}

func TestAPI_Chart(t *testing.T) {
	srv, _ := readyServer(t)

	rec := get(srv, "/api/chart")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		ID     string `json:"id"`
		Points []struct {
			CX   float64 `json:"cx"`
			CY   float64 `json:"cy"`
			Fill string  `json:"fill"`
		} `json:"points"`
		Legend []struct {
			Label string `json:"label"`
		} `json:"legend"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body.ID)
	require.Len(t, body.Points, 2)
	assert.Equal(t, 360.0, body.Points[0].CX)
	assert.Equal(t, 240.0, body.Points[0].CY)
	require.Len(t, body.Legend, 2)
	assert.Equal(t, "No doping", body.Legend[0].Label)
}

func TestAPI_NotModified(t *testing.T) {
	srv, snap := readyServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/chart", nil)
	req.Header.Set("If-None-Match", `"`+snap.ID+`"`)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotModified, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestAPI_MethodNotAllowed(t *testing.T) {
	srv, _ := readyServer(t)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/chart", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
