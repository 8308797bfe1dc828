// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geocode

import (
	"context"
	"errors"
	"time"

	"github.com/wneessen/weather-forecast/internal/location"
)

// Default cache lifetimes for found and not-found reverse lookups.
const (
	DefaultHitTTL  = 24 * time.Hour
	DefaultMissTTL = 10 * time.Minute
)

// ErrNotFound is returned by RegionName if the geocoder knows no region for a coordinate.
var ErrNotFound = errors.New("no region found for coordinate")

type Address struct {
	Found  bool
	Lat    float64
	Lon    float64
	Region string

	CacheHit bool
}

type Geocoder interface {
	Name() string
	Reverse(ctx context.Context, coords location.Coordinate) (Address, error)
}
