// Package records talks to the upstream tracking API that owns certificate
// records and, in remote render mode, renders certificates itself.
package records

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"batch-release/internal/config"
	"batch-release/internal/data"
	"batch-release/internal/metrics"
	"batch-release/internal/models"
)

const (
	recordKeyPrefix = "record:"
	searchLimit     = 50
	maxResponseSize = 10 << 20
)

type Client struct {
	baseURL  string
	http     *http.Client
	cache    data.CacheProvider
	cacheTTL time.Duration
	logger   *slog.Logger
}

// SearchQuery mirrors the tracking API's list parameters. Zero values are
// not sent.
type SearchQuery struct {
	Search    string
	SortBy    string
	SortOrder string
	Status    string
	Page      int
	Limit     int
}

type SearchResult struct {
	Data  []models.CertificateRecord `json:"data"`
	Total int                        `json:"total,omitempty"`
	Page  int                        `json:"page,omitempty"`
}

func NewClient(ctx context.Context, cfg config.RecordsConfig, cache data.CacheProvider, logger *slog.Logger) *Client {
	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		http:     newHTTPClient(ctx, cfg),
		cache:    cache,
		cacheTTL: cfg.CacheTTL,
		logger:   logger,
	}
}

// Search lists tracking rows.
func (c *Client) Search(ctx context.Context, q SearchQuery) (*SearchResult, error) {
	params := url.Values{}
	setParam(params, "search", q.Search)
	setParam(params, "sortBy", q.SortBy)
	setParam(params, "sortOrder", q.SortOrder)
	setParam(params, "status", q.Status)
	if q.Page > 0 {
		params.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}

	var result SearchResult
	status, err := c.getJSON(ctx, "/tracking", params, &result)
	if err != nil {
		if status != 0 {
			return nil, fmt.Errorf("tracking search returned status %d: %w", status, err)
		}
		return nil, fmt.Errorf("tracking search failed: %w", err)
	}
	return &result, nil
}

// FetchRecord returns the row whose batch number equals batchNumber exactly.
// Hits are cached for the configured TTL.
func (c *Client) FetchRecord(ctx context.Context, batchNumber string) (models.CertificateRecord, error) {
	batchNumber = strings.TrimSpace(batchNumber)
	if batchNumber == "" {
		return models.CertificateRecord{}, &RecordFetchError{Err: errors.New("batch number is required")}
	}

	if record, ok := c.cached(ctx, batchNumber); ok {
		return record, nil
	}

	params := url.Values{}
	params.Set("search", batchNumber)
	params.Set("limit", strconv.Itoa(searchLimit))

	var result SearchResult
	status, err := c.getJSON(ctx, "/tracking", params, &result)
	if err != nil {
		return models.CertificateRecord{}, &RecordFetchError{BatchNumber: batchNumber, StatusCode: status, Err: err}
	}

	for _, row := range result.Data {
		if row.BatchNumber == batchNumber {
			c.store(ctx, row)
			return row, nil
		}
	}

	return models.CertificateRecord{}, &RecordFetchError{BatchNumber: batchNumber, Err: ErrRecordNotFound}
}

func (c *Client) cached(ctx context.Context, batchNumber string) (models.CertificateRecord, bool) {
	var record models.CertificateRecord
	if c.cache == nil || c.cacheTTL <= 0 {
		return record, false
	}

	raw, err := c.cache.GetKey(ctx, recordKeyPrefix+batchNumber)
	if err != nil {
		if !errors.Is(err, data.ErrCacheMiss) {
			c.logger.Warn("record cache read failed", "error", err)
		}
		return record, false
	}

	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		c.logger.Warn("discarding corrupt cached record", "batch_number", batchNumber, "error", err)
		return record, false
	}
	return record, true
}

func (c *Client) store(ctx context.Context, record models.CertificateRecord) {
	if c.cache == nil || c.cacheTTL <= 0 {
		return
	}
	raw, err := json.Marshal(record)
	if err != nil {
		return
	}
	if err := c.cache.SetKey(ctx, recordKeyPrefix+record.BatchNumber, raw, c.cacheTTL); err != nil {
		c.logger.Warn("record cache write failed", "error", err)
	}
}

// getJSON performs a GET and decodes the body into v. The returned status is
// non-zero when the upstream answered with a non-2xx code.
func (c *Client) getJSON(ctx context.Context, path string, params url.Values, v interface{}) (int, error) {
	start := time.Now()
	defer func() {
		metrics.DataFetchDuration.WithLabelValues(metrics.DataSourceTracking).Observe(time.Since(start).Seconds())
	}()

	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.DataFetchErrors.WithLabelValues(metrics.DataSourceTracking).Inc()
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.DataFetchErrors.WithLabelValues(metrics.DataSourceTracking).Inc()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		err := fmt.Errorf("unexpected status: %s", strings.TrimSpace(string(body)))
		if resp.StatusCode == http.StatusNotFound {
			err = fmt.Errorf("%w: %s", ErrRecordNotFound, strings.TrimSpace(string(body)))
		}
		return resp.StatusCode, err
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(v); err != nil {
		metrics.DataFetchErrors.WithLabelValues(metrics.DataSourceTracking).Inc()
		return 0, fmt.Errorf("failed to decode response: %w", err)
	}
	return 0, nil
}

func setParam(params url.Values, key, value string) {
	if value != "" {
		params.Set(key, value)
	}
}
