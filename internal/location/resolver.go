// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package location

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/wneessen/weather-forecast/internal/logger"
)

const (
	// DefaultTimeout bounds the time CurrentCoordinate waits for the locators
	DefaultTimeout = time.Second * 5
	// Unknown is the region name returned if a coordinate cannot be resolved
	Unknown = "unknown"
)

// RegionLookup resolves a coordinate into the name of its administrative region.
type RegionLookup interface {
	RegionName(ctx context.Context, c Coordinate) (string, error)
}

// ResolverConfig configures a Resolver.
type ResolverConfig struct {
	// Enabled is false if the user did not permit locating the device
	Enabled bool
	Home    Coordinate
	Timeout time.Duration
	Unknown string
}

// Resolver determines the current coordinate and region of the device. None of its methods
// fail: every lookup degrades to a configured default.
type Resolver struct {
	enabled  bool
	home     Coordinate
	timeout  time.Duration
	unknown  string
	locators []Locator
	regions  RegionLookup
	log      *logger.Logger
}

func NewResolver(conf ResolverConfig, locators []Locator, regions RegionLookup, log *logger.Logger) *Resolver {
	if !conf.Home.Valid() || conf.Home == (Coordinate{}) {
		conf.Home, _ = CityCoordinate(DefaultCity)
	}
	if conf.Timeout <= 0 {
		conf.Timeout = DefaultTimeout
	}
	if conf.Unknown == "" {
		conf.Unknown = Unknown
	}
	return &Resolver{
		enabled:  conf.Enabled,
		home:     conf.Home,
		timeout:  conf.Timeout,
		unknown:  conf.Unknown,
		locators: locators,
		regions:  regions,
		log:      log,
	}
}

// Home returns the coordinate used if no position can be determined.
func (r *Resolver) Home() Coordinate {
	return r.home
}

// Unknown returns the region name used if a coordinate cannot be resolved.
func (r *Resolver) Unknown() string {
	return r.unknown
}

// CurrentCoordinate returns the first valid position reported by the locators, tried in
// order. If locating is disabled, or no locator delivers a position within the configured
// timeout, the home coordinate is returned.
func (r *Resolver) CurrentCoordinate(ctx context.Context) Coordinate {
	if !r.enabled {
		return r.home
	}

	ctxLocate, cancelLocate := context.WithTimeout(ctx, r.timeout)
	defer cancelLocate()
	for _, locator := range r.locators {
		coord, err := locator.Locate(ctxLocate)
		if err == nil && coord.Valid() {
			r.log.Debug("position determined", slog.String("locator", locator.Name()),
				slog.String("coordinate", coord.String()))
			return coord
		}
		if err != nil {
			r.log.Debug("locator failed", slog.String("locator", locator.Name()), logger.Err(err))
		}
		if ctxLocate.Err() != nil {
			break
		}
	}

	r.log.Info("no position available, using home coordinate", slog.String("coordinate", r.home.String()))
	return r.home
}

// RegionName returns the administrative region the coordinate lies in, or the configured
// unknown name if the region cannot be determined.
func (r *Resolver) RegionName(ctx context.Context, c Coordinate) string {
	if r.regions == nil || !c.Valid() {
		return r.unknown
	}
	region, err := r.regions.RegionName(ctx, c)
	if err != nil {
		r.log.Warn("failed to resolve region", slog.String("coordinate", c.String()), logger.Err(err))
		return r.unknown
	}
	if strings.TrimSpace(region) == "" {
		return r.unknown
	}
	return region
}

// CurrentCity returns the region of the current coordinate for use as a forecast city. If
// the region cannot be determined, fallback is returned.
func (r *Resolver) CurrentCity(ctx context.Context, fallback string) string {
	region := r.RegionName(ctx, r.CurrentCoordinate(ctx))
	if region == r.unknown {
		return fallback
	}
	return region
}
