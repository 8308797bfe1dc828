// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package openweathermap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/wneessen/weather-forecast/internal/forecast"
	"github.com/wneessen/weather-forecast/internal/http"
	"github.com/wneessen/weather-forecast/internal/logger"
	"github.com/wneessen/weather-forecast/internal/weather"
)

const (
	name            = "openweathermap"
	DefaultEndpoint = "https://api.openweathermap.org/data/2.5/forecast"
	apiTimeout      = time.Second * 10
)

// Config configures the OpenWeatherMap provider.
type Config struct {
	Endpoint string
	APIKey   string
	Language string
	// RateLimit is the number of requests per second, Burst the number of requests that may
	// exceed it at once
	RateLimit float64
	Burst     int
	// BreakerThreshold is the number of consecutive failures that open the circuit breaker
	BreakerThreshold uint32
	BreakerTimeout   time.Duration
}

type OpenWeatherMap struct {
	endpoint string
	apikey   string
	lang     string
	http     *http.Client
	log      *logger.Logger
	limiter  *rate.Limiter
	breaker  *gobreaker.CircuitBreaker
	validate *validator.Validate
}

type response struct {
	List []entry `json:"list" validate:"required,min=1,dive"`
}

type entry struct {
	DateTime *int64      `json:"dt" validate:"required"`
	Main     *mainValues `json:"main" validate:"required"`
	Weather  []condition `json:"weather" validate:"required,min=1,dive"`
}

type mainValues struct {
	Temp *float64 `json:"temp" validate:"required"`
}

type condition struct {
	Main string `json:"main" validate:"required"`
	Icon string `json:"icon" validate:"required"`
}

func New(http *http.Client, log *logger.Logger, conf Config) (*OpenWeatherMap, error) {
	if http == nil {
		return nil, fmt.Errorf("http client is required")
	}
	if log == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if conf.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if conf.Endpoint == "" {
		conf.Endpoint = DefaultEndpoint
	}
	if conf.RateLimit <= 0 {
		conf.RateLimit = 1
	}
	if conf.Burst <= 0 {
		conf.Burst = 1
	}
	if conf.BreakerThreshold == 0 {
		conf.BreakerThreshold = 5
	}
	if conf.BreakerTimeout <= 0 {
		conf.BreakerTimeout = time.Minute * 2
	}

	threshold := conf.BreakerThreshold
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     conf.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(breaker string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed", slog.String("breaker", breaker),
				slog.String("from", from.String()), slog.String("to", to.String()))
		},
	})

	return &OpenWeatherMap{
		endpoint: conf.Endpoint,
		apikey:   conf.APIKey,
		lang:     conf.Language,
		http:     http,
		log:      log,
		limiter:  rate.NewLimiter(rate.Limit(conf.RateLimit), conf.Burst),
		breaker:  breaker,
		validate: validator.New(),
	}, nil
}

func (o *OpenWeatherMap) Name() string {
	return name
}

// Fetch retrieves the 3-hourly forecast for city.
func (o *OpenWeatherMap) Fetch(ctx context.Context, city string) ([]forecast.RawSample, error) {
	if err := o.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limit: %w", weather.ErrTransport, err)
	}

	query := url.Values{}
	query.Set("q", city)
	query.Set("APPID", o.apikey)
	query.Set("units", "metric")
	if o.lang != "" {
		query.Set("lang", o.lang)
	}

	res := new(response)
	_, err := o.breaker.Execute(func() (interface{}, error) {
		code, err := o.http.GetWithTimeout(ctx, o.endpoint, res, query, nil, apiTimeout)
		if err != nil {
			return nil, err
		}
		return code, nil
	})
	switch {
	case errors.Is(err, http.ErrDecode):
		return nil, fmt.Errorf("%w: %w", forecast.ErrMalformedResponse, err)
	case err != nil:
		return nil, fmt.Errorf("%w: failed to retrieve forecast from OpenWeatherMap API: %w",
			weather.ErrTransport, err)
	}

	if err = o.validate.Struct(res); err != nil {
		return nil, fmt.Errorf("%w: %w", forecast.ErrMalformedResponse, err)
	}

	samples := make([]forecast.RawSample, 0, len(res.List))
	for _, item := range res.List {
		samples = append(samples, forecast.RawSample{
			Epoch:       *item.DateTime,
			Temperature: *item.Main.Temp,
			Kind:        item.Weather[0].Main,
			Icon:        item.Weather[0].Icon,
		})
	}
	o.log.Debug("forecast retrieved", slog.String("provider", name), slog.String("city", city),
		slog.Int("samples", len(samples)))
	return samples, nil
}
