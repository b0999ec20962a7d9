package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/cyclist-scatter/internal/domain"
	"github.com/couchcryptid/cyclist-scatter/internal/observability"
	"github.com/couchcryptid/cyclist-scatter/internal/scale"
)

const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// Source fetches the raw dataset.
type Source interface {
	Fetch(ctx context.Context) ([]domain.RawRecord, error)
}

// Publisher forwards a built dataset downstream.
type Publisher interface {
	Publish(ctx context.Context, datasetID string, builtAt time.Time, records []domain.Record) error
}

// invalidator is implemented by sources that cache upstream payloads.
type invalidator interface {
	Invalidate()
}

// Snapshot is one successfully built dataset. Snapshots are never modified
// after they are stored.
type Snapshot struct {
	ID      string
	BuiltAt time.Time
	Dataset
}

// Pipeline fetches the dataset and keeps the latest successful build.
type Pipeline struct {
	source    Source
	publisher Publisher
	clock     clockwork.Clock
	logger    *slog.Logger
	metrics   *observability.Metrics
	layout    scale.Layout
	newID     func() string

	snapshot atomic.Pointer[Snapshot]

	mu      sync.Mutex
	lastErr error
}

// New creates a Pipeline. Pass a nil publisher to disable publishing.
func New(src Source, pub Publisher, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		source:    src,
		publisher: pub,
		clock:     clock,
		logger:    logger,
		metrics:   metrics,
		layout:    scale.DefaultLayout,
		newID:     uuid.NewString,
	}
}

// Snapshot returns the latest built dataset, or nil before the first success.
func (p *Pipeline) Snapshot() *Snapshot {
	return p.snapshot.Load()
}

// LastError returns the most recent refresh failure, cleared on success.
func (p *Pipeline) LastError() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}

// CheckReadiness returns nil once a dataset has been built, or an error
// carrying the last failure otherwise.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if p.snapshot.Load() != nil {
		return nil
	}
	if err := p.LastError(); err != nil {
		return fmt.Errorf("dataset not built yet: %w", err)
	}
	return errors.New("dataset not built yet")
}

// Refresh runs one fetch and build cycle and stores the result. A failed
// refresh leaves the previous snapshot in place.
func (p *Pipeline) Refresh(ctx context.Context) (*Snapshot, error) {
	start := p.clock.Now()

	snap, err := p.build(ctx)
	p.setLastErr(err)
	if err != nil {
		return nil, err
	}

	p.snapshot.Store(snap)
	p.metrics.BuildDuration.Observe(p.clock.Since(start).Seconds())
	p.metrics.DatasetSize.Set(float64(len(snap.Records)))
	p.metrics.DuplicateYearRecords.Set(float64(snap.DuplicateYearCount()))
	p.metrics.PipelineReady.Set(1)
	p.logger.Info("dataset built",
		"dataset_id", snap.ID,
		"records", len(snap.Records),
		"duplicate_year", snap.DuplicateYearCount(),
	)

	p.publish(ctx, snap)
	return snap, nil
}

func (p *Pipeline) build(ctx context.Context) (*Snapshot, error) {
	raws, err := p.source.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch dataset: %w", err)
	}

	ds, err := Build(raws, p.layout)
	if err != nil {
		if errors.Is(err, domain.ErrMalformedRecord) {
			p.metrics.NormalizeErrors.Inc()
		}
		// Drop a cached payload that cannot be built so the retry refetches.
		if inv, ok := p.source.(invalidator); ok {
			inv.Invalidate()
		}
		return nil, err
	}
	p.metrics.RecordsNormalized.Add(float64(len(ds.Records)))

	return &Snapshot{
		ID:      p.newID(),
		BuiltAt: p.clock.Now().UTC(),
		Dataset: ds,
	}, nil
}

// publish is best effort: the snapshot stays served if Kafka is down.
func (p *Pipeline) publish(ctx context.Context, snap *Snapshot) {
	if p.publisher == nil {
		return
	}
	if err := p.publisher.Publish(ctx, snap.ID, snap.BuiltAt, snap.Records); err != nil {
		p.metrics.PublishErrors.Inc()
		p.logger.Error("publish dataset failed", "error", err, "dataset_id", snap.ID)
		return
	}
	p.metrics.RecordsPublished.Add(float64(len(snap.Records)))
}

func (p *Pipeline) setLastErr(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastErr = err
}

// Run refreshes until the first success, retrying failures with exponential
// backoff. It returns nil on success or cancellation.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started")

	backoff := initialBackoff
	for attempt := 1; ; attempt++ {
		if ctx.Err() != nil {
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		}

		_, err := p.Refresh(ctx)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		}

		p.logger.Error("refresh failed", "error", err, "attempt", attempt, "retry_in", backoff)
		if !sleepWithContext(ctx, p.clock, backoff) {
			return nil
		}
		backoff = nextBackoff(backoff, maxBackoff)
	}
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, clock clockwork.Clock, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.Chan():
		return true
	}
}
