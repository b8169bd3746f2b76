// Package region decides which country a print request is coming from.
//
// The answer is advisory. Coordinates are reported by the browser, so a
// hostile client can claim any position it likes.
package region

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/text/language"

	"batch-release/internal/metrics"
)

var (
	ErrPermissionDenied    = errors.New("geolocation permission denied")
	ErrPositionTimeout     = errors.New("geolocation timed out")
	ErrPositionUnavailable = errors.New("geolocation position unavailable")
)

// Position is a single device location fix. Region is set when the client
// already knows its country code; otherwise Lat and Lon are used.
type Position struct {
	Lat      float64
	Lon      float64
	Accuracy float64
	Region   string
	HasFix   bool
}

type Locator interface {
	Locate(ctx context.Context) (Position, error)
}

// LocatorFunc adapts a plain function to a Locator.
type LocatorFunc func(ctx context.Context) (Position, error)

func (f LocatorFunc) Locate(ctx context.Context) (Position, error) {
	return f(ctx)
}

// Geocoder maps coordinates to an ISO 3166-1 alpha-2 country code.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, lat, lon float64) (string, error)
}

type Result struct {
	Code      string `json:"code,omitempty"`
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

func Unavailable(reason string) Result {
	return Result{Reason: reason}
}

// Matches reports whether the resolved region is the given country.
func (r Result) Matches(country string) bool {
	return r.Available && Match(r.Code, country)
}

type Resolver struct {
	geocoder Geocoder
	timeout  time.Duration
	logger   *slog.Logger
}

// NewResolver builds a Resolver. A nil geocoder means only positions that
// already carry a region code can be resolved.
func NewResolver(geocoder Geocoder, timeout time.Duration, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		geocoder: geocoder,
		timeout:  timeout,
		logger:   logger,
	}
}

// Resolve asks the locator for one fix and turns it into a region code. It
// never returns an error; every failure becomes an unavailable Result.
func (r *Resolver) Resolve(ctx context.Context, locator Locator) (result Result) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("region resolution panicked", "panic", rec)
			result = Unavailable("region resolution failed")
		}
		outcome := "resolved"
		if !result.Available {
			outcome = "unavailable"
		}
		metrics.RegionResolutions.WithLabelValues(outcome).Inc()
	}()

	if locator == nil {
		return Unavailable("no location provided")
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	pos, err := locator.Locate(ctx)
	if err != nil {
		r.logger.Debug("location unavailable", "error", err)
		return Unavailable(reasonFor(err))
	}

	if pos.Region != "" {
		code, err := Normalize(pos.Region)
		if err != nil {
			r.logger.Debug("client supplied an invalid region", "region", pos.Region, "error", err)
			return Unavailable("unrecognised region")
		}
		return Result{Code: code, Available: true}
	}

	if !pos.HasFix {
		return Unavailable("no location provided")
	}
	if r.geocoder == nil {
		return Unavailable("reverse geocoding disabled")
	}

	raw, err := r.geocoder.ReverseGeocode(ctx, pos.Lat, pos.Lon)
	if err != nil {
		r.logger.Warn("reverse geocoding failed", "error", err)
		if errors.Is(err, context.DeadlineExceeded) {
			return Unavailable(reasonFor(ErrPositionTimeout))
		}
		return Unavailable("region lookup failed")
	}

	code, err := Normalize(raw)
	if err != nil {
		r.logger.Warn("geocoder returned an invalid region", "region", raw, "error", err)
		return Unavailable("region lookup failed")
	}
	return Result{Code: code, Available: true}
}

func reasonFor(err error) string {
	switch {
	case errors.Is(err, ErrPermissionDenied):
		return "location permission denied"
	case errors.Is(err, ErrPositionTimeout), errors.Is(err, context.DeadlineExceeded):
		return "location request timed out"
	case errors.Is(err, ErrPositionUnavailable):
		return "location unavailable"
	default:
		return "location unavailable"
	}
}

// Normalize canonicalises a region code, so "in" and "IN" both become "IN".
func Normalize(code string) (string, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return "", errors.New("empty region code")
	}
	region, err := language.ParseRegion(code)
	if err != nil {
		return "", fmt.Errorf("parse region %q: %w", code, err)
	}
	return region.String(), nil
}

// Match compares two region codes case-insensitively. Codes that cannot be
// parsed are compared as trimmed strings.
func Match(a, b string) bool {
	ca, errA := Normalize(a)
	cb, errB := Normalize(b)
	if errA == nil && errB == nil {
		return ca == cb
	}
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	return a != "" && strings.EqualFold(a, b)
}

// ErrorFromCode maps the browser's geolocation error names to sentinels.
func ErrorFromCode(code string) error {
	switch strings.ToLower(strings.TrimSpace(code)) {
	case "":
		return nil
	case "permission_denied", "1":
		return ErrPermissionDenied
	case "timeout", "3":
		return ErrPositionTimeout
	default:
		return ErrPositionUnavailable
	}
}
