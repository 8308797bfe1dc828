// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/Xuanwo/go-locale"
	"github.com/kkyr/fig"
	"golang.org/x/text/language"
)

const (
	configEnv = "WEATHERFORECAST"
	appName   = "weather-forecast"

	ProviderOpenWeatherMap = "openweathermap"
	ProviderOpenMeteo      = "open-meteo"

	DefaultHeaderTpl = "{{.City}}{{if .Stale}} (cached){{end}}"
	DefaultDayTpl    = "{{pad .Weekday 4}} {{.Date}}  {{.Emoji}} {{pad .Kind 13}} {{.Temperature}}°C"
)

var (
	ErrInvalidProvider = errors.New("invalid forecast provider")
	ErrInvalidTimezone = errors.New("invalid forecast timezone")
)

// Config represents the application's configuration structure.
type Config struct {
	LogLevel slog.Level `fig:"loglevel" default:"0"`
	Locale   string     `fig:"locale"`

	Cities      []string `fig:"cities" default:"[Hokkaido,Tokyo,Hyogo,Oita]"`
	DefaultCity string   `fig:"default_city" default:"Tokyo"`

	Forecast struct {
		// Allowed values: openweathermap, open-meteo
		Provider string `fig:"provider" default:"openweathermap"`
		Endpoint string `fig:"endpoint"`
		APIKey   string `fig:"apikey"`
		Language string `fig:"language"`
		// The calendar days of a forecast are cut in this timezone
		Timezone  string  `fig:"timezone" default:"Asia/Tokyo"`
		RateLimit float64 `fig:"rate_limit" default:"1"`
		Burst     int     `fig:"burst" default:"1"`
	} `fig:"forecast"`

	Geocoder struct {
		Endpoint string `fig:"endpoint"`
		APIKey   string `fig:"apikey"`
		Language string `fig:"language"`
		Unknown  string `fig:"unknown" default:"unknown"`
	} `fig:"geocoder"`

	Location struct {
		Disabled bool          `fig:"disabled"`
		File     string        `fig:"file"`
		GPSDAddr string        `fig:"gpsd_addr" default:"localhost:2947"`
		Timeout  time.Duration `fig:"timeout" default:"5s"`
		HomeLat  float64       `fig:"home_lat" default:"35.6895"`
		HomeLon  float64       `fig:"home_lon" default:"139.6917"`
	} `fig:"location"`

	Cache struct {
		Dir string `fig:"dir"`
	} `fig:"cache"`

	Intervals struct {
		Refresh time.Duration `fig:"refresh" default:"30m"`
	} `fig:"intervals"`

	Service struct {
		DisableResumeRefresh bool `fig:"disable_resume_refresh"`
	} `fig:"service"`

	API struct {
		Enabled bool   `fig:"enabled"`
		Listen  string `fig:"listen" default:"127.0.0.1:8080"`
	} `fig:"api"`

	Templates struct {
		Header string `fig:"header"`
		Day    string `fig:"day"`
	} `fig:"templates"`

	timezone *time.Location
	language language.Tag
}

func NewFromFile(path, file string) (*Config, error) {
	conf := new(Config)
	_, err := os.Stat(filepath.Join(path, file))
	if err != nil {
		return conf, fmt.Errorf("failed to read Config: %w", err)
	}
	if err = fig.Load(conf, fig.Dirs(path), fig.File(file), fig.UseEnv(configEnv)); err != nil {
		return conf, fmt.Errorf("failed to load Config: %w", err)
	}

	return conf, conf.Validate()
}

func New() (*Config, error) {
	conf := new(Config)
	if err := fig.Load(conf, fig.AllowNoFile(), fig.UseEnv(configEnv)); err != nil {
		return conf, fmt.Errorf("failed to load Config: %w", err)
	}

	return conf, conf.Validate()
}

func (c *Config) Validate() error {
	switch c.Forecast.Provider {
	case ProviderOpenWeatherMap, ProviderOpenMeteo:
	default:
		return fmt.Errorf("%w: %s", ErrInvalidProvider, c.Forecast.Provider)
	}

	tz, err := time.LoadLocation(c.Forecast.Timezone)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidTimezone, c.Forecast.Timezone)
	}
	c.timezone = tz

	if c.Forecast.RateLimit <= 0 || c.Forecast.Burst < 1 {
		return fmt.Errorf("invalid rate limit: %g requests/s with burst %d", c.Forecast.RateLimit, c.Forecast.Burst)
	}

	c.DefaultCity = strings.TrimSpace(c.DefaultCity)
	if c.DefaultCity == "" {
		return errors.New("default city must not be empty")
	}
	if !slices.Contains(c.Cities, c.DefaultCity) {
		c.Cities = append(c.Cities, c.DefaultCity)
	}

	if c.Locale == "" {
		c.Locale = getLocale()
	}
	c.language = language.Make(c.Locale)
	// Geocoder.Language stays empty unless configured: region names must match the
	// English city names used for forecasts.
	if base, confidence := c.language.Base(); confidence != language.No && c.Forecast.Language == "" {
		c.Forecast.Language = base.String()
	}

	if c.Location.Timeout <= 0 {
		return fmt.Errorf("invalid location timeout: %s", c.Location.Timeout)
	}
	if c.Location.HomeLat < -90 || c.Location.HomeLat > 90 || c.Location.HomeLon < -180 || c.Location.HomeLon > 180 {
		return fmt.Errorf("invalid home coordinate: %f,%f", c.Location.HomeLat, c.Location.HomeLon)
	}
	if c.Location.File == "" {
		home, _ := os.UserHomeDir()
		c.Location.File = filepath.Join(home, ".config", appName, "geolocation")
	}

	if c.Cache.Dir == "" {
		dir, err := os.UserCacheDir()
		if err != nil {
			dir = os.TempDir()
		}
		c.Cache.Dir = filepath.Join(dir, appName)
	}

	if c.Intervals.Refresh < time.Minute {
		return fmt.Errorf("invalid refresh interval: %s", c.Intervals.Refresh)
	}

	if c.Templates.Header == "" {
		c.Templates.Header = DefaultHeaderTpl
	}
	if c.Templates.Day == "" {
		c.Templates.Day = DefaultDayTpl
	}

	return nil
}

// Timezone returns the loaded forecast timezone. It is nil until Validate succeeded.
func (c *Config) Timezone() *time.Location {
	return c.timezone
}

// Language returns the language tag of the configured locale.
func (c *Config) Language() language.Tag {
	return c.language
}

func getLocale() string {
	tag, err := locale.Detect()
	if err != nil {
		return language.English.String()
	}
	return tag.String()
}
