// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"

	"github.com/wneessen/weather-forecast/internal/api"
	"github.com/wneessen/weather-forecast/internal/cache"
	"github.com/wneessen/weather-forecast/internal/config"
	"github.com/wneessen/weather-forecast/internal/location"
	"github.com/wneessen/weather-forecast/internal/logger"
	"github.com/wneessen/weather-forecast/internal/presenter"
	"github.com/wneessen/weather-forecast/internal/weather"
)

const (
	FetchTimeout = time.Second * 30

	refreshJobName     = "forecast_refresh_job"
	dayChangeJobName   = "day_change_job"
	apiShutdownTimeout = time.Second * 10
)

type Service struct {
	config    *config.Config
	logger    *logger.Logger
	scheduler gocron.Scheduler
	forecasts *weather.Service
	store     cache.Store
	resolver  *location.Resolver
	presenter *presenter.Presenter
	SignalSrc signalSource

	outputLock sync.Mutex
	output     io.Writer

	resultLock sync.RWMutex
	results    map[string]weather.Result
}

// New wires the forecast service, the cache store and the location resolver according to
// the configuration. Rendered forecasts are written to output.
func New(conf *config.Config, log *logger.Logger, output io.Writer) (*Service, error) {
	timezone := conf.Timezone()
	if timezone == nil {
		return nil, fmt.Errorf("configuration has not been validated")
	}

	scheduler, err := gocron.NewScheduler(gocron.WithLocation(timezone))
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	store, err := cache.NewFileStore(conf.Cache.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache store: %w", err)
	}

	provider, err := selectWeatherProvider(conf, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create weather provider: %w", err)
	}
	forecasts, err := weather.New(provider, store, timezone, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create forecast service: %w", err)
	}

	pres, err := presenter.New(conf.Templates.Header, conf.Templates.Day, conf.Language())
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	resolver := location.NewResolver(location.ResolverConfig{
		Enabled: !conf.Location.Disabled,
		Home:    location.Coordinate{Lat: conf.Location.HomeLat, Lon: conf.Location.HomeLon},
		Timeout: conf.Location.Timeout,
		Unknown: conf.Geocoder.Unknown,
	}, selectLocators(conf), selectRegionLookup(conf, log), log)

	return &Service{
		config:    conf,
		logger:    log,
		scheduler: scheduler,
		forecasts: forecasts,
		store:     store,
		resolver:  resolver,
		presenter: pres,
		SignalSrc: stdLibSignalSource{},
		output:    output,
		results:   make(map[string]weather.Result),
	}, nil
}

// Run refreshes the forecasts of all configured cities periodically and at the start of
// every day until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	if err := s.createScheduledJob(ctx, gocron.DurationJob(s.config.Intervals.Refresh), s.refresh,
		refreshJobName, gocron.WithStartAt(gocron.WithStartImmediately())); err != nil {
		return err
	}
	midnight := gocron.NewAtTimes(gocron.NewAtTime(0, 0, 0))
	if err := s.createScheduledJob(ctx, gocron.DailyJob(1, midnight), s.refresh, dayChangeJobName); err != nil {
		return err
	}
	s.scheduler.Start()

	if !s.config.Service.DisableResumeRefresh {
		go newResumeMonitor(s.logger, s.refresh).Run(ctx)
	}

	var server *api.Server
	if s.config.API.Enabled {
		server = api.New(s, s.resolver, s.config.Cities, s.config.DefaultCity, s.logger)
		go func() {
			if err := server.Listen(s.config.API.Listen); err != nil {
				s.logger.Error("HTTP API stopped", logger.Err(err))
			}
		}()
	}

	<-ctx.Done()
	if server != nil {
		ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), apiShutdownTimeout)
		defer cancelShutdown()
		if err := server.Shutdown(ctxShutdown); err != nil {
			s.logger.Error("failed to shut down HTTP API", logger.Err(err))
		}
	}
	return s.scheduler.Shutdown()
}

func (s *Service) createScheduledJob(ctx context.Context, definition gocron.JobDefinition,
	task func(context.Context), jobName string, options ...gocron.JobOption,
) error {
	options = append([]gocron.JobOption{
		gocron.WithContext(ctx),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithName(jobName),
	}, options...)
	if _, err := s.scheduler.NewJob(definition, gocron.NewTask(task), options...); err != nil {
		return fmt.Errorf("failed to create %s: %w", jobName, err)
	}
	return nil
}

// Forecast returns the latest forecast for city known to the service, fetching it if there
// is none yet.
func (s *Service) Forecast(ctx context.Context, city string) weather.Result {
	s.resultLock.RLock()
	result, ok := s.results[resultKey(city)]
	s.resultLock.RUnlock()
	if ok {
		return result
	}
	return s.fetch(ctx, city)
}

// ForecastOnce fetches the forecast for city and renders it. An error is returned if
// neither a live nor a cached forecast is available.
func (s *Service) ForecastOnce(ctx context.Context, city string) error {
	result := s.fetch(ctx, city)
	s.print(result)
	if !result.OK() {
		return fmt.Errorf("no forecast available for %s: %w", city, result.Err)
	}
	return nil
}

// Locate returns the region of the current device position, or the default city if it
// cannot be determined.
func (s *Service) Locate(ctx context.Context) string {
	return s.resolver.CurrentCity(ctx, s.config.DefaultCity)
}

// refresh fetches and renders the forecasts of all configured cities.
func (s *Service) refresh(ctx context.Context) {
	fetchID := uuid.NewString()
	s.logger.Debug("refreshing forecasts", slog.String("fetch_id", fetchID),
		slog.String("provider", s.forecasts.ProviderName()), slog.Int("cities", len(s.config.Cities)))

	for _, city := range s.config.Cities {
		if ctx.Err() != nil {
			return
		}
		result := s.fetch(ctx, city)
		s.logger.Info("forecast refreshed", slog.String("fetch_id", fetchID), slog.String("city", city),
			slog.String("origin", result.Origin.String()))
		s.print(result)
	}
}

// fetch retrieves the forecast for city, persists live results and remembers every result
// that carries a forecast.
func (s *Service) fetch(ctx context.Context, city string) weather.Result {
	ctxFetch, cancelFetch := context.WithTimeout(ctx, FetchTimeout)
	defer cancelFetch()

	result := s.forecasts.Forecast(ctxFetch, city)
	if result.Origin == weather.OriginLive {
		if err := cache.Persist(ctx, s.store, *result.Set); err != nil {
			s.logger.Error("failed to persist forecast", slog.String("city", city), logger.Err(err))
		}
	}
	if result.OK() {
		s.resultLock.Lock()
		s.results[resultKey(city)] = result
		s.resultLock.Unlock()
	}
	return result
}

func (s *Service) print(result weather.Result) {
	s.outputLock.Lock()
	defer s.outputLock.Unlock()
	if err := s.presenter.Render(s.output, result); err != nil {
		s.logger.Error("failed to render forecast", slog.String("city", result.City), logger.Err(err))
	}
}

func resultKey(city string) string {
	return strings.ToLower(strings.TrimSpace(city))
}
