// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package service

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"

	"github.com/wneessen/weather-forecast/internal/config"
	"github.com/wneessen/weather-forecast/internal/geocode"
	"github.com/wneessen/weather-forecast/internal/geocode/provider/google"
	"github.com/wneessen/weather-forecast/internal/http"
	"github.com/wneessen/weather-forecast/internal/location"
	"github.com/wneessen/weather-forecast/internal/logger"
	"github.com/wneessen/weather-forecast/internal/weather"
	openmeteo "github.com/wneessen/weather-forecast/internal/weather/provider/open-meteo"
	"github.com/wneessen/weather-forecast/internal/weather/provider/openweathermap"
)

func selectWeatherProvider(conf *config.Config, log *logger.Logger) (weather.Provider, error) {
	switch strings.ToLower(conf.Forecast.Provider) {
	case config.ProviderOpenWeatherMap:
		return openweathermap.New(http.New(log), log, openweathermap.Config{
			Endpoint:  conf.Forecast.Endpoint,
			APIKey:    conf.Forecast.APIKey,
			Language:  conf.Forecast.Language,
			RateLimit: conf.Forecast.RateLimit,
			Burst:     conf.Forecast.Burst,
		})
	case config.ProviderOpenMeteo:
		return openmeteo.New(log)
	default:
		return nil, fmt.Errorf("unsupported weather provider: %s", conf.Forecast.Provider)
	}
}

// selectRegionLookup returns nil if no geocoding API key is configured. Region names then
// always resolve to the unknown name.
func selectRegionLookup(conf *config.Config, log *logger.Logger) location.RegionLookup {
	if conf.Geocoder.APIKey == "" {
		log.Debug("no geocoder API key configured, region lookup disabled")
		return nil
	}
	lang := language.Make(conf.Geocoder.Language)
	coder := google.New(http.New(log), lang, conf.Geocoder.APIKey, conf.Geocoder.Endpoint)
	return geocode.NewCachedGeocoder(coder, geocode.DefaultHitTTL, geocode.DefaultMissTTL)
}

func selectLocators(conf *config.Config) []location.Locator {
	var locators []location.Locator
	if conf.Location.File != "" {
		locators = append(locators, location.NewFileLocator(conf.Location.File))
	}
	if conf.Location.GPSDAddr != "" {
		locators = append(locators, location.NewGPSDLocator(conf.Location.GPSDAddr))
	}
	return locators
}
