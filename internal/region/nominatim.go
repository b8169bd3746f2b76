package region

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
)

const geocodeKeyPrefix = "geo:"

// NominatimGeocoder reverse-geocodes against a Nominatim-compatible /reverse
// endpoint. Answers are cached by coordinates rounded to two decimals.
type NominatimGeocoder struct {
	baseURL   string
	userAgent string
	client    *http.Client
	cache     data.CacheProvider
	cacheTTL  time.Duration
	logger    *slog.Logger
}

type nominatimResponse struct {
	Error   string `json:"error"`
	Address struct {
		CountryCode string `json:"country_code"`
	} `json:"address"`
}

func NewNominatimGeocoder(cfg config.GeocoderConfig, cache data.CacheProvider, logger *slog.Logger) *NominatimGeocoder {
	return &NominatimGeocoder{
		baseURL:   strings.TrimRight(cfg.URL, "/"),
		userAgent: cfg.UserAgent,
		client:    &http.Client{Timeout: cfg.Timeout},
		cache:     cache,
		cacheTTL:  cfg.CacheTTL,
		logger:    logger,
	}
}

func cacheKey(lat, lon float64) string {
	return geocodeKeyPrefix + strconv.FormatFloat(lat, 'f', 2, 64) + "," + strconv.FormatFloat(lon, 'f', 2, 64)
}

func (g *NominatimGeocoder) ReverseGeocode(ctx context.Context, lat, lon float64) (string, error) {
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return "", fmt.Errorf("coordinates out of range: %f,%f", lat, lon)
	}

	key := cacheKey(lat, lon)
	if g.cache != nil {
		if code, err := g.cache.GetKey(ctx, key); err == nil {
			return code, nil
		} else if !errors.Is(err, data.ErrCacheMiss) {
			g.logger.Warn("geocode cache read failed", "error", err)
		}
	}

	code, err := g.lookup(ctx, lat, lon)
	if err != nil {
		metrics.DataFetchErrors.WithLabelValues(metrics.DataSourceGeocoder).Inc()
		return "", err
	}

	if g.cache != nil {
		if err := g.cache.SetKey(ctx, key, code, g.cacheTTL); err != nil {
			g.logger.Warn("geocode cache write failed", "error", err)
		}
	}
	return code, nil
}

func (g *NominatimGeocoder) lookup(ctx context.Context, lat, lon float64) (string, error) {
	start := time.Now()
	defer func() {
		metrics.DataFetchDuration.WithLabelValues(metrics.DataSourceGeocoder).Observe(time.Since(start).Seconds())
	}()

	params := url.Values{}
	params.Set("format", "jsonv2")
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Set("zoom", "3")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/reverse?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if g.userAgent != "" {
		req.Header.Set("User-Agent", g.userAgent)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("reverse geocode request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("reverse geocode returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload nominatimResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&payload); err != nil {
		return "", fmt.Errorf("failed to decode reverse geocode response: %w", err)
	}
	if payload.Error != "" {
		return "", fmt.Errorf("reverse geocode error: %s", payload.Error)
	}
	if payload.Address.CountryCode == "" {
		return "", errors.New("reverse geocode response has no country code")
	}

	return strings.ToUpper(payload.Address.CountryCode), nil
}
