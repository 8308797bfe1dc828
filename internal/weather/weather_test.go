// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package weather

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/wneessen/weather-forecast/internal/cache"
	"github.com/wneessen/weather-forecast/internal/calendar"
	"github.com/wneessen/weather-forecast/internal/forecast"
	"github.com/wneessen/weather-forecast/internal/logger"
)

var tokyo = time.FixedZone("UTC+9", 9*60*60)

type fakeProvider struct {
	samples []forecast.RawSample
	err     error
	calls   int
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) Fetch(context.Context, string) ([]forecast.RawSample, error) {
	p.calls++
	return p.samples, p.err
}

// fortySamples returns 40 three-hourly samples covering exactly 5 days in the tokyo zone
func fortySamples() []forecast.RawSample {
	base := calendar.New(2024, time.January, 1).Time(tokyo).Unix()
	kinds := []string{"Clear", "Clouds", "Rain", "Clear"}
	icons := []string{"01d", "04d", "10n", "01n"}
	samples := make([]forecast.RawSample, 0, 40)
	for i := range 40 {
		samples = append(samples, forecast.RawSample{
			Epoch:       base + int64(i)*3*60*60,
			Temperature: float64(i%8) - 2,
			Kind:        kinds[i%4],
			Icon:        icons[i%4],
		})
	}
	return samples
}

func testLogger() *logger.Logger {
	return logger.NewLogger(slog.LevelDebug, io.Discard)
}

func newTestService(t *testing.T, provider Provider, store cache.Store) *Service {
	t.Helper()
	service, err := New(provider, store, tokyo, testLogger())
	if err != nil {
		t.Fatalf("failed to create weather service: %s", err)
	}
	return service
}

func TestNew(t *testing.T) {
	t.Run("provider is required", func(t *testing.T) {
		if _, err := New(nil, cache.NewMemoryStore(), tokyo, testLogger()); err == nil {
			t.Error("expected service creation to fail")
		}
	})
	t.Run("store is required", func(t *testing.T) {
		if _, err := New(&fakeProvider{}, nil, tokyo, testLogger()); err == nil {
			t.Error("expected service creation to fail")
		}
	})
	t.Run("nil location defaults to UTC", func(t *testing.T) {
		service, err := New(&fakeProvider{}, cache.NewMemoryStore(), nil, testLogger())
		if err != nil {
			t.Fatalf("failed to create weather service: %s", err)
		}
		if service.Location() != time.UTC {
			t.Errorf("expected location to be UTC, got %s", service.Location())
		}
		if service.ProviderName() != "fake" {
			t.Errorf("expected provider name to be fake, got %s", service.ProviderName())
		}
	})
}

func TestService_Forecast(t *testing.T) {
	t.Run("live, then fallback after a transport failure, then unavailable without cache", func(t *testing.T) {
		provider := &fakeProvider{samples: fortySamples()}
		store := cache.NewMemoryStore()
		service := newTestService(t, provider, store)

		live := service.Forecast(t.Context(), "Tokyo")
		if live.Origin != OriginLive {
			t.Fatalf("expected origin to be %s, got %s (%v)", OriginLive, live.Origin, live.Err)
		}
		if !live.OK() || live.Err != nil {
			t.Fatalf("expected live result without error, got %v", live.Err)
		}
		if live.Set.Days[0].Date != calendar.New(2024, time.January, 1) {
			t.Errorf("expected first day to be 2024-01-01, got %s", live.Set.Days[0].Date)
		}
		if live.Set.Days[0].Temperature != 1 {
			// (-2 -1 0 1 2 3 4 5) / 8 = 1.5
			t.Errorf("expected first temperature to be 1, got %d", live.Set.Days[0].Temperature)
		}
		if live.Set.Days[0].Kind != "Clear" || live.Set.Days[0].Icon != "01d" {
			t.Errorf("expected Clear/01d, got %s/%s", live.Set.Days[0].Kind, live.Set.Days[0].Icon)
		}
		if text, _ := store.Load(t.Context(), "Tokyo"); text != "" {
			t.Fatal("expected service not to write to the cache")
		}
		if err := cache.Persist(t.Context(), store, *live.Set); err != nil {
			t.Fatalf("failed to persist live forecast: %s", err)
		}

		provider.samples, provider.err = nil, ErrTransport
		fallback := service.Forecast(t.Context(), "Tokyo")
		if fallback.Origin != OriginFallback {
			t.Fatalf("expected origin to be %s, got %s", OriginFallback, fallback.Origin)
		}
		if *fallback.Set != *live.Set {
			t.Errorf("expected fallback forecast to equal the persisted live forecast")
		}
		if !errors.Is(fallback.Err, ErrTransport) {
			t.Errorf("expected fallback error to be %s, got %v", ErrTransport, fallback.Err)
		}

		unavailable := newTestService(t, provider, cache.NewMemoryStore()).Forecast(t.Context(), "Tokyo")
		if unavailable.Origin != OriginUnavailable {
			t.Fatalf("expected origin to be %s, got %s", OriginUnavailable, unavailable.Origin)
		}
		if unavailable.OK() || unavailable.Set != nil {
			t.Error("expected unavailable result to carry no forecast")
		}
		if !errors.Is(unavailable.Err, ErrTransport) || !errors.Is(unavailable.Err, cache.ErrNotFound) {
			t.Errorf("expected error to carry transport and not-found errors, got %v", unavailable.Err)
		}
	})
	t.Run("too few days fall back to the cache", func(t *testing.T) {
		provider := &fakeProvider{samples: fortySamples()[:24]}
		store := cache.NewMemoryStore()
		service := newTestService(t, provider, store)

		result := service.Forecast(t.Context(), "Tokyo")
		if result.Origin != OriginUnavailable {
			t.Fatalf("expected origin to be %s, got %s", OriginUnavailable, result.Origin)
		}
		if !errors.Is(result.Err, forecast.ErrMalformedResponse) {
			t.Errorf("expected error to be %s, got %v", forecast.ErrMalformedResponse, result.Err)
		}
	})
	t.Run("malformed provider response falls back to the cache", func(t *testing.T) {
		store := cache.NewMemoryStore()
		seed := newTestService(t, &fakeProvider{samples: fortySamples()}, store).Forecast(t.Context(), "Tokyo")
		if err := cache.Persist(t.Context(), store, *seed.Set); err != nil {
			t.Fatalf("failed to persist forecast: %s", err)
		}

		provider := &fakeProvider{err: forecast.ErrMalformedResponse}
		result := newTestService(t, provider, store).Forecast(t.Context(), "Tokyo")
		if result.Origin != OriginFallback {
			t.Fatalf("expected origin to be %s, got %s", OriginFallback, result.Origin)
		}
	})
	t.Run("corrupt cache record is unavailable", func(t *testing.T) {
		store := cache.NewMemoryStore()
		if err := store.Save(t.Context(), "Tokyo", "{garbage}"); err != nil {
			t.Fatalf("failed to save record: %s", err)
		}
		result := newTestService(t, &fakeProvider{err: ErrTransport}, store).Forecast(t.Context(), "Tokyo")
		if result.Origin != OriginUnavailable {
			t.Fatalf("expected origin to be %s, got %s", OriginUnavailable, result.Origin)
		}
		if !errors.Is(result.Err, cache.ErrFormat) {
			t.Errorf("expected error to be %s, got %v", cache.ErrFormat, result.Err)
		}
	})
	t.Run("fallback is keyed by city", func(t *testing.T) {
		store := cache.NewMemoryStore()
		seed := newTestService(t, &fakeProvider{samples: fortySamples()}, store).Forecast(t.Context(), "Oita")
		if err := cache.Persist(t.Context(), store, *seed.Set); err != nil {
			t.Fatalf("failed to persist forecast: %s", err)
		}
		result := newTestService(t, &fakeProvider{err: ErrTransport}, store).Forecast(t.Context(), "Tokyo")
		if result.Origin != OriginUnavailable {
			t.Errorf("expected origin to be %s, got %s", OriginUnavailable, result.Origin)
		}
	})
}

func TestService_ForecastAsync(t *testing.T) {
	service := newTestService(t, &fakeProvider{samples: fortySamples()}, cache.NewMemoryStore())
	results := service.ForecastAsync(t.Context(), "Tokyo")

	result, ok := <-results
	if !ok {
		t.Fatal("expected a result before the channel is closed")
	}
	if result.Origin != OriginLive {
		t.Errorf("expected origin to be %s, got %s", OriginLive, result.Origin)
	}
	if _, ok = <-results; ok {
		t.Error("expected channel to be closed after the result")
	}
}

func TestOrigin_String(t *testing.T) {
	for origin, want := range map[Origin]string{
		OriginLive:        "live",
		OriginFallback:    "fallback",
		OriginUnavailable: "unavailable",
	} {
		if got := origin.String(); got != want {
			t.Errorf("expected origin string to be %s, got %s", want, got)
		}
	}
}
