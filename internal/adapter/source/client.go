// Package source fetches the raw cyclist dataset over HTTP.
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/cyclist-scatter/internal/domain"
	"github.com/couchcryptid/cyclist-scatter/internal/observability"
)

// maxErrorBody caps how much of a failed response is quoted in the error.
const maxErrorBody = 512

// Client downloads the dataset from a single URL.
type Client struct {
	url        string
	httpClient *http.Client
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a dataset client.
func NewClient(url string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		metrics: metrics,
		logger:  logger,
	}
}

// Fetch performs one GET of the dataset and decodes it. It does not retry.
func (c *Client) Fetch(ctx context.Context) ([]domain.RawRecord, error) {
	start := time.Now()
	records, err := c.doRequest(ctx)
	c.metrics.FetchDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		c.metrics.FetchRequests.WithLabelValues("error").Inc()
		return nil, err
	}
	c.metrics.FetchRequests.WithLabelValues("success").Inc()
	c.logger.Debug("dataset fetched", "url", c.url, "records", len(records), "duration", time.Since(start))
	return records, nil
}

func (c *Client) doRequest(ctx context.Context) ([]domain.RawRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch dataset: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("dataset source error: status %d: %s", resp.StatusCode, body)
	}

	return DecodeRecords(resp.Body)
}

// DecodeRecords reads a JSON array of raw records. Fields beyond the six
// known ones are ignored.
func DecodeRecords(r io.Reader) ([]domain.RawRecord, error) {
	var records []domain.RawRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	return records, nil
}
