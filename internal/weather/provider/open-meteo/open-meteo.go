// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package openmeteo

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/hectormalot/omgo"
	"github.com/nathan-osman/go-sunrise"

	"github.com/wneessen/weather-forecast/internal/forecast"
	"github.com/wneessen/weather-forecast/internal/location"
	"github.com/wneessen/weather-forecast/internal/logger"
	"github.com/wneessen/weather-forecast/internal/weather"
)

const (
	name         = "open-meteo"
	apiTimeout   = time.Second * 10
	sampleStep   = 3
	metricTemp   = "temperature_2m"
	metricWMO    = "weather_code"
	timezoneName = "UTC"
)

// condition is the OpenWeatherMap style kind and icon (without day/night suffix) of a WMO code
type condition struct {
	kind string
	icon string
}

// wmoConditions maps WMO weather codes to the weather kinds and icon codes used throughout
// the application.
var wmoConditions = map[int]condition{
	0:  {"Clear", "01"},
	1:  {"Clouds", "02"},
	2:  {"Clouds", "03"},
	3:  {"Clouds", "04"},
	45: {"Fog", "50"},
	48: {"Fog", "50"},
	51: {"Drizzle", "09"},
	53: {"Drizzle", "09"},
	55: {"Drizzle", "09"},
	56: {"Drizzle", "09"},
	57: {"Drizzle", "09"},
	61: {"Rain", "10"},
	63: {"Rain", "10"},
	65: {"Rain", "10"},
	66: {"Rain", "13"},
	67: {"Rain", "13"},
	71: {"Snow", "13"},
	73: {"Snow", "13"},
	75: {"Snow", "13"},
	77: {"Snow", "13"},
	80: {"Rain", "09"},
	81: {"Rain", "09"},
	82: {"Rain", "09"},
	85: {"Snow", "13"},
	86: {"Snow", "13"},
	95: {"Thunderstorm", "11"},
	96: {"Thunderstorm", "11"},
	99: {"Thunderstorm", "11"},
}

type forecaster interface {
	Forecast(ctx context.Context, loc omgo.Location, opts *omgo.Options) (*omgo.Forecast, error)
}

type OpenMeteo struct {
	client forecaster
	log    *logger.Logger
}

func New(log *logger.Logger) (*OpenMeteo, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is required")
	}
	client, err := omgo.NewClient()
	if err != nil {
		return nil, fmt.Errorf("failed to create Open-Meteo client: %w", err)
	}
	return &OpenMeteo{client: &client, log: log}, nil
}

func (o *OpenMeteo) Name() string {
	return name
}

// Fetch retrieves the hourly forecast for one of the known cities and converts every third
// hour into a sample.
func (o *OpenMeteo) Fetch(ctx context.Context, city string) ([]forecast.RawSample, error) {
	coords, ok := location.CityCoordinate(city)
	if !ok {
		return nil, fmt.Errorf("%w: no coordinates known for city %q", weather.ErrTransport, city)
	}
	loc, err := omgo.NewLocation(coords.Lat, coords.Lon)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid location for city %q: %w", weather.ErrTransport, city, err)
	}

	ctxFetch, cancelFetch := context.WithTimeout(ctx, apiTimeout)
	defer cancelFetch()
	opts := &omgo.Options{
		Timezone:        timezoneName,
		TemperatureUnit: "celsius",
		HourlyMetrics:   []string{metricTemp, metricWMO},
	}
	res, err := o.client.Forecast(ctxFetch, loc, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to retrieve forecast from Open-Meteo API: %w", weather.ErrTransport, err)
	}

	samples, err := toSamples(res, coords)
	if err != nil {
		return nil, err
	}
	o.log.Debug("forecast retrieved", slog.String("provider", name), slog.String("city", city),
		slog.Int("samples", len(samples)))
	return samples, nil
}

func toSamples(res *omgo.Forecast, coords location.Coordinate) ([]forecast.RawSample, error) {
	if res == nil || len(res.HourlyTimes) == 0 {
		return nil, fmt.Errorf("%w: no hourly data in response", forecast.ErrMalformedResponse)
	}
	temps, codes := res.HourlyMetrics[metricTemp], res.HourlyMetrics[metricWMO]
	if len(temps) != len(res.HourlyTimes) || len(codes) != len(res.HourlyTimes) {
		return nil, fmt.Errorf("%w: hourly metrics do not match the time series", forecast.ErrMalformedResponse)
	}

	samples := make([]forecast.RawSample, 0, len(res.HourlyTimes)/sampleStep+1)
	for i, instant := range res.HourlyTimes {
		if instant.UTC().Hour()%sampleStep != 0 {
			continue
		}
		code := int(math.Round(codes[i]))
		cond, ok := wmoConditions[code]
		if !ok {
			return nil, fmt.Errorf("%w: unknown weather code %d", forecast.ErrMalformedResponse, code)
		}
		samples = append(samples, forecast.RawSample{
			Epoch:       instant.Unix(),
			Temperature: temps[i],
			Kind:        cond.kind,
			Icon:        cond.icon + daySuffix(instant, coords),
		})
	}
	return samples, nil
}

// daySuffix returns "d" if the sun is up at the given instant and "n" otherwise
func daySuffix(instant time.Time, coords location.Coordinate) string {
	utc := instant.UTC()
	rise, set := sunrise.SunriseSunset(coords.Lat, coords.Lon, utc.Year(), utc.Month(), utc.Day())
	if rise.IsZero() || set.IsZero() {
		return "d"
	}
	// Sunset may fall on the next UTC day for eastern longitudes
	if set.Before(rise) {
		set = set.Add(time.Hour * 24)
	}
	for _, shift := range []time.Duration{-24 * time.Hour, 0, 24 * time.Hour} {
		if !utc.Before(rise.Add(shift)) && utc.Before(set.Add(shift)) {
			return "d"
		}
	}
	return "n"
}
