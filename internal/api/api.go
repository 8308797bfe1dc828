// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package api serves forecasts and the device location over HTTP.
package api

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"golang.org/x/text/language"

	"github.com/wneessen/weather-forecast/internal/calendar"
	"github.com/wneessen/weather-forecast/internal/forecast"
	"github.com/wneessen/weather-forecast/internal/location"
	"github.com/wneessen/weather-forecast/internal/logger"
	"github.com/wneessen/weather-forecast/internal/weather"
)

const appName = "weather-forecast"

type Forecaster interface {
	Forecast(ctx context.Context, city string) weather.Result
}

type Locator interface {
	CurrentCoordinate(ctx context.Context) location.Coordinate
	RegionName(ctx context.Context, c location.Coordinate) string
	CurrentCity(ctx context.Context, fallback string) string
}

type Server struct {
	app         *fiber.App
	forecaster  Forecaster
	locator     Locator
	cities      []string
	defaultCity string
	logger      *logger.Logger
	validate    *validator.Validate
}

type cityParam struct {
	City string `validate:"required,max=100"`
}

type dayResponse struct {
	Date        string `json:"date"`
	Weekday     string `json:"weekday"`
	Accent      string `json:"accent"`
	Kind        string `json:"kind"`
	Icon        string `json:"icon"`
	IconURL     string `json:"icon_url"`
	Temperature int    `json:"temperature"`
}

type forecastResponse struct {
	City   string        `json:"city"`
	Origin string        `json:"origin"`
	Stale  bool          `json:"stale"`
	Error  string        `json:"error,omitempty"`
	Days   []dayResponse `json:"days"`
}

type locationResponse struct {
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`
	Region string  `json:"region"`
}

// New returns a Server answering forecast requests for the given cities. Requests for
// other cities are rejected.
func New(forecaster Forecaster, locator Locator, cities []string, defaultCity string, log *logger.Logger) *Server {
	s := &Server{
		forecaster:  forecaster,
		locator:     locator,
		cities:      cities,
		defaultCity: defaultCity,
		logger:      log,
		validate:    validator.New(),
	}
	s.app = fiber.New(fiber.Config{
		AppName:               appName,
		DisableStartupMessage: true,
		UnescapePath:          true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler:          s.errorHandler,
	})
	s.app.Use(recover.New())
	s.app.Use(s.requestLogger)
	s.routes()
	return s
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Listen(addr string) error {
	s.logger.Info("starting HTTP API", slog.String("listen", addr))
	return s.app.Listen(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) routes() {
	s.app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": appName,
		})
	})

	v1 := s.app.Group("/api/v1")
	v1.Get("/forecast", s.currentForecast)
	v1.Get("/forecast/:city", s.cityForecast)
	v1.Get("/location", s.currentLocation)
}

func (s *Server) cityForecast(c *fiber.Ctx) error {
	param := cityParam{City: strings.TrimSpace(c.Params("city"))}
	if err := s.validate.Struct(param); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	city, ok := s.configured(param.City)
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "city is not configured: "+param.City)
	}
	return s.forecast(c, city)
}

func (s *Server) currentForecast(c *fiber.Ctx) error {
	region := s.locator.CurrentCity(c.UserContext(), s.defaultCity)
	if city, ok := s.configured(region); ok {
		region = city
	}
	return s.forecast(c, region)
}

func (s *Server) forecast(c *fiber.Ctx, city string) error {
	result := s.forecaster.Forecast(c.UserContext(), city)
	if !result.OK() {
		s.logger.Error("no forecast available", slog.String("city", city), logger.Err(result.Err))
		return fiber.NewError(fiber.StatusServiceUnavailable, "no forecast available for "+city)
	}
	return c.JSON(newForecastResponse(result))
}

func (s *Server) currentLocation(c *fiber.Ctx) error {
	coord := s.locator.CurrentCoordinate(c.UserContext())
	return c.JSON(locationResponse{
		Lat:    coord.Lat,
		Lon:    coord.Lon,
		Region: s.locator.RegionName(c.UserContext(), coord),
	})
}

// configured returns the configured spelling of city.
func (s *Server) configured(city string) (string, bool) {
	idx := slices.IndexFunc(s.cities, func(known string) bool {
		return strings.EqualFold(known, city)
	})
	if idx < 0 {
		return "", false
	}
	return s.cities[idx], true
}

func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var ferr *fiber.Error
	if errors.As(err, &ferr) {
		code = ferr.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}

func (s *Server) requestLogger(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	s.logger.Debug("HTTP request", slog.String("method", c.Method()), slog.String("path", c.Path()),
		slog.Int("status", c.Response().StatusCode()), slog.Duration("duration", time.Since(start)))
	return err
}

func newForecastResponse(result weather.Result) forecastResponse {
	resp := forecastResponse{
		City:   result.Set.City,
		Origin: result.Origin.String(),
		Stale:  result.Origin == weather.OriginFallback,
		Days:   make([]dayResponse, 0, len(result.Set.Days)),
	}
	if result.Err != nil {
		resp.Error = result.Err.Error()
	}
	for _, day := range result.Set.Days {
		resp.Days = append(resp.Days, dayResponse{
			Date:        calendar.Format(day.Date, calendar.CacheLayout),
			Weekday:     calendar.WeekdayName(day.Date, calendar.StyleFull, language.English),
			Accent:      calendar.WeekdayAccent(day.Date).String(),
			Kind:        day.Kind,
			Icon:        day.Icon,
			IconURL:     forecast.IconURL(day.Icon, true),
			Temperature: day.Temperature,
		})
	}
	return resp
}
