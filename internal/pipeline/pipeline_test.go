package pipeline_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/cyclist-scatter/internal/adapter/source"
	"github.com/couchcryptid/cyclist-scatter/internal/domain"
	"github.com/couchcryptid/cyclist-scatter/internal/observability"
	"github.com/couchcryptid/cyclist-scatter/internal/pipeline"
)

// --- mocks ---

// mockSource returns results in order, repeating the last one.
type mockSource struct {
	mu      sync.Mutex
	calls   int
	results []sourceResult
}

type sourceResult struct {
	records []domain.RawRecord
	err     error
}

func (m *mockSource) Fetch(context.Context) ([]domain.RawRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := min(m.calls, len(m.results)-1)
	m.calls++
	return m.results[i].records, m.results[i].err
}

func (m *mockSource) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type mockPublisher struct {
	mu        sync.Mutex
	datasetID string
	builtAt   time.Time
	records   []domain.Record
	err       error
}

func (m *mockPublisher) Publish(_ context.Context, id string, builtAt time.Time, records []domain.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.datasetID, m.builtAt, m.records = id, builtAt, records
	return nil
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestMetrics() *observability.Metrics {
	return observability.NewMetricsForTesting()
}

func validRaw() []domain.RawRecord {
	return []domain.RawRecord{
		{Time: "36:50", Name: "A", Nationality: "ITA", Year: domain.YearNumber(1995), Doping: "x"},
		{Time: "36:50", Name: "B", Nationality: "FRA", Year: domain.YearNumber(1995)},
		{Time: "39:50", Name: "C", Nationality: "ESP", Year: domain.YearText("2015")},
	}
}

func ok(records []domain.RawRecord) sourceResult { return sourceResult{records: records} }
func fail(err error) sourceResult                { return sourceResult{err: err} }

// --- tests ---

func TestPipeline_Refresh_HappyPath(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC))
	src := &mockSource{results: []sourceResult{ok(validRaw())}}
	pub := &mockPublisher{}
	metrics := newTestMetrics()

	p := pipeline.New(src, pub, clock, newTestLogger(), metrics)
	require.Nil(t, p.Snapshot())
	require.Error(t, p.CheckReadiness(context.Background()))

	snap, err := p.Refresh(context.Background())
	require.NoError(t, err)

	assert.Same(t, snap, p.Snapshot())
	_, err = uuid.Parse(snap.ID)
	assert.NoError(t, err, "snapshot id is a uuid")
	assert.Equal(t, clock.Now(), snap.BuiltAt)
	require.Len(t, snap.Records, 3)
	assert.True(t, snap.Records[1].IsDuplicateYear)
	assert.Len(t, snap.View.Points, 3)
	assert.Equal(t, [2]float64{1994, 2016}, snap.Scales.X.Domain())

	assert.NoError(t, p.CheckReadiness(context.Background()))
	assert.NoError(t, p.LastError())

	assert.Equal(t, snap.ID, pub.datasetID)
	assert.Equal(t, snap.BuiltAt, pub.builtAt)
	assert.Equal(t, snap.Records, pub.records)

	assert.Equal(t, 3.0, testutil.ToFloat64(metrics.RecordsNormalized))
	assert.Equal(t, 3.0, testutil.ToFloat64(metrics.DatasetSize))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.DuplicateYearRecords))
	assert.Equal(t, 3.0, testutil.ToFloat64(metrics.RecordsPublished))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.PipelineReady))
}

func TestPipeline_Refresh_NilPublisher(t *testing.T) {
	src := &mockSource{results: []sourceResult{ok(validRaw())}}

	p := pipeline.New(src, nil, clockwork.NewFakeClock(), newTestLogger(), newTestMetrics())

	_, err := p.Refresh(context.Background())
	require.NoError(t, err)
}

func TestPipeline_Refresh_PublishFailureKeepsSnapshot(t *testing.T) {
	src := &mockSource{results: []sourceResult{ok(validRaw())}}
	pub := &mockPublisher{err: errors.New("broker down")}
	metrics := newTestMetrics()

	p := pipeline.New(src, pub, clockwork.NewFakeClock(), newTestLogger(), metrics)

	snap, err := p.Refresh(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, snap)
	assert.NoError(t, p.CheckReadiness(context.Background()))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.PublishErrors))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.RecordsPublished))
}

func TestPipeline_Refresh_Errors(t *testing.T) {
	malformed := validRaw()
	malformed[2].Time = "9:99"

	tests := []struct {
		name            string
		result          sourceResult
		target          error
		normalizeErrors float64
	}{
		{"fetch failure", fail(errors.New("connection refused")), nil, 0},
		{"empty dataset", ok([]domain.RawRecord{}), domain.ErrEmptyDataset, 0},
		{"malformed record", ok(malformed), domain.ErrMalformedRecord, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			metrics := newTestMetrics()
			src := &mockSource{results: []sourceResult{tt.result}}
			pub := &mockPublisher{}
			p := pipeline.New(src, pub, clockwork.NewFakeClock(), newTestLogger(), metrics)

			snap, err := p.Refresh(context.Background())

			require.Error(t, err)
			assert.Nil(t, snap)
			assert.Nil(t, p.Snapshot(), "no partial dataset is stored")
			if tt.target != nil {
				assert.ErrorIs(t, err, tt.target)
			}
			assert.Equal(t, err, p.LastError())

			readyErr := p.CheckReadiness(context.Background())
			require.Error(t, readyErr)
			assert.Contains(t, readyErr.Error(), err.Error())

			assert.Empty(t, pub.records)
			assert.Equal(t, tt.normalizeErrors, testutil.ToFloat64(metrics.NormalizeErrors))
			assert.Equal(t, 0.0, testutil.ToFloat64(metrics.PipelineReady))
		})
	}
}

func TestPipeline_Refresh_FailureKeepsPreviousSnapshot(t *testing.T) {
	src := &mockSource{results: []sourceResult{ok(validRaw()), fail(errors.New("timeout"))}}
	p := pipeline.New(src, nil, clockwork.NewFakeClock(), newTestLogger(), newTestMetrics())

	first, err := p.Refresh(context.Background())
	require.NoError(t, err)

	_, err = p.Refresh(context.Background())
	require.Error(t, err)

	assert.Same(t, first, p.Snapshot())
	assert.NoError(t, p.CheckReadiness(context.Background()))
	assert.Error(t, p.LastError())
}

func TestPipeline_Run_RetriesWithBackoff(t *testing.T) {
	clock := clockwork.NewFakeClock()
	src := &mockSource{results: []sourceResult{
		fail(errors.New("first")),
		fail(errors.New("second")),
		ok(validRaw()),
	}}
	p := pipeline.New(src, nil, clock, newTestLogger(), newTestMetrics())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	// First retry waits 200ms, the second 400ms.
	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(200 * time.Millisecond)
	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(400 * time.Millisecond)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-ctx.Done():
		t.Fatal("pipeline did not finish")
	}

	assert.Equal(t, 3, src.callCount())
	assert.NotNil(t, p.Snapshot())
}

func TestPipeline_Run_ContextCancellation(t *testing.T) {
	src := &mockSource{results: []sourceResult{fail(errors.New("down"))}}
	p := pipeline.New(src, nil, clockwork.NewFakeClock(), newTestLogger(), newTestMetrics())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, src.callCount())
	assert.Nil(t, p.Snapshot())
}

func TestPipeline_Run_StopsWhileBackingOff(t *testing.T) {
	clock := clockwork.NewFakeClock()
	src := &mockSource{results: []sourceResult{fail(errors.New("down"))}}
	p := pipeline.New(src, nil, clock, newTestLogger(), newTestMetrics())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	waitCtx, waitCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer waitCancel()
	require.NoError(t, clock.BlockUntilContext(waitCtx, 1))
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-waitCtx.Done():
		t.Fatal("pipeline did not stop")
	}
	assert.Equal(t, 1, src.callCount())
	assert.Error(t, p.CheckReadiness(context.Background()))
}

func TestPipeline_Refresh_MalformedPayloadInvalidatesCache(t *testing.T) {
	malformed := validRaw()
	malformed[0].Year = domain.YearText("bad")

	upstream := &mockSource{results: []sourceResult{ok(malformed), ok(validRaw())}}
	metrics := newTestMetrics()
	cached := source.NewCachedSource(upstream, time.Hour, clockwork.NewFakeClock(), metrics)
	p := pipeline.New(cached, nil, clockwork.NewFakeClock(), newTestLogger(), metrics)

	_, err := p.Refresh(context.Background())
	require.ErrorIs(t, err, domain.ErrMalformedRecord)

	snap, err := p.Refresh(context.Background())
	require.NoError(t, err, "retry reaches upstream instead of the cached payload")
	assert.Equal(t, 2, upstream.callCount())
	assert.Len(t, snap.Records, 3)

	// A good payload stays cached.
	_, err = cached.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, upstream.callCount())
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.CacheLookups.WithLabelValues("hit")))
}

func TestPipeline_Refresh_ValidPayloadServedFromCache(t *testing.T) {
	upstream := &mockSource{results: []sourceResult{ok(validRaw())}}
	cached := source.NewCachedSource(upstream, time.Hour, clockwork.NewFakeClock(), newTestMetrics())
	p := pipeline.New(cached, nil, clockwork.NewFakeClock(), newTestLogger(), newTestMetrics())

	_, err := p.Refresh(context.Background())
	require.NoError(t, err)
	_, err = p.Refresh(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, upstream.callCount(), "valid payload served from cache")
}
