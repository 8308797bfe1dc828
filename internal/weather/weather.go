// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package weather fetches forecasts from a provider and falls back to the last persisted
// forecast if the live data cannot be used.
package weather

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/wneessen/weather-forecast/internal/cache"
	"github.com/wneessen/weather-forecast/internal/forecast"
	"github.com/wneessen/weather-forecast/internal/logger"
)

// ErrTransport is returned by providers if the forecast could not be retrieved at all.
var ErrTransport = errors.New("forecast transport failed")

// Provider is implemented by each weather API backend. Fetch errors wrap either ErrTransport
// or forecast.ErrMalformedResponse.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, city string) ([]forecast.RawSample, error)
}

// Origin states where the forecast of a Result comes from.
type Origin int

const (
	// OriginUnavailable means neither live nor cached data could be used
	OriginUnavailable Origin = iota
	// OriginLive is a freshly fetched forecast
	OriginLive
	// OriginFallback is the last persisted forecast for the city
	OriginFallback
)

func (o Origin) String() string {
	switch o {
	case OriginLive:
		return "live"
	case OriginFallback:
		return "fallback"
	default:
		return "unavailable"
	}
}

// Result is the outcome of a forecast request. Set is nil if and only if Origin is
// OriginUnavailable. Err holds the reason the live fetch failed, if it did.
type Result struct {
	City   string
	Set    *forecast.Set
	Origin Origin
	Err    error
}

// OK reports whether the result carries a forecast.
func (r Result) OK() bool {
	return r.Set != nil
}

// Service fetches forecasts for cities. It does not persist anything itself: callers are
// expected to persist OriginLive results.
type Service struct {
	provider Provider
	store    cache.Store
	location *time.Location
	logger   *logger.Logger
}

// New returns a Service that fetches from provider, groups samples by calendar day in loc and
// reads fallback data from store.
func New(provider Provider, store cache.Store, loc *time.Location, log *logger.Logger) (*Service, error) {
	if provider == nil {
		return nil, errors.New("weather provider is required")
	}
	if store == nil {
		return nil, errors.New("cache store is required")
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Service{provider: provider, store: store, location: loc, logger: log}, nil
}

func (s *Service) ProviderName() string {
	return s.provider.Name()
}

func (s *Service) Location() *time.Location {
	return s.location
}

// Forecast fetches and aggregates the forecast for city. If fetching or aggregation fails,
// the last persisted forecast for the city is returned instead. Forecast never returns an
// error; the outcome is described by the Result.
func (s *Service) Forecast(ctx context.Context, city string) Result {
	set, err := s.live(ctx, city)
	if err == nil {
		return Result{City: city, Set: &set, Origin: OriginLive}
	}
	s.logger.Warn("live forecast unavailable, trying cached forecast", slog.String("city", city),
		slog.String("provider", s.provider.Name()), logger.Err(err))

	cached, cacheErr := cache.Restore(ctx, s.store, city)
	if cacheErr != nil {
		if !errors.Is(cacheErr, cache.ErrNotFound) {
			s.logger.Error("failed to restore cached forecast", slog.String("city", city),
				logger.Err(cacheErr))
		}
		return Result{City: city, Origin: OriginUnavailable, Err: errors.Join(err, cacheErr)}
	}
	return Result{City: city, Set: &cached, Origin: OriginFallback, Err: err}
}

// ForecastAsync runs Forecast on its own goroutine. The returned channel receives exactly one
// Result and is closed afterwards.
func (s *Service) ForecastAsync(ctx context.Context, city string) <-chan Result {
	results := make(chan Result, 1)
	go func() {
		defer close(results)
		results <- s.Forecast(ctx, city)
	}()
	return results
}

func (s *Service) live(ctx context.Context, city string) (forecast.Set, error) {
	samples, err := s.provider.Fetch(ctx, city)
	if err != nil {
		return forecast.Set{}, fmt.Errorf("failed to fetch forecast from %s: %w", s.provider.Name(), err)
	}
	days, err := forecast.Aggregate(samples, s.location)
	if err != nil {
		return forecast.Set{}, fmt.Errorf("failed to aggregate forecast from %s: %w", s.provider.Name(), err)
	}
	return forecast.NewSet(city, days)
}
