// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package location

import (
	"context"
	"fmt"

	"github.com/stratoberry/go-gpsd"
)

// DefaultGPSDAddr is the address gpsd listens on by default.
const DefaultGPSDAddr = "localhost:2947"

type gpsdSession interface {
	AddFilter(class string, f gpsd.Filter)
	Watch() chan bool
}

// GPSDLocator returns the first position report with at least a 2D fix from gpsd.
type GPSDLocator struct {
	addr string
	dial func(addr string) (gpsdSession, error)
}

func NewGPSDLocator(addr string) *GPSDLocator {
	if addr == "" {
		addr = DefaultGPSDAddr
	}
	return &GPSDLocator{
		addr: addr,
		dial: func(addr string) (gpsdSession, error) {
			return gpsd.Dial(addr)
		},
	}
}

func (l *GPSDLocator) Name() string {
	return "gpsd"
}

// Locate blocks until gpsd reports a fix, the watch ends or ctx is done. go-gpsd has no way
// to close a session, so the connection is left to gpsd once Locate returns.
func (l *GPSDLocator) Locate(ctx context.Context) (Coordinate, error) {
	session, err := l.dial(l.addr)
	if err != nil {
		return Coordinate{}, fmt.Errorf("failed to connect to gpsd at %q: %w", l.addr, err)
	}

	fixes := make(chan Coordinate, 1)
	session.AddFilter("TPV", func(r interface{}) {
		tpv, ok := r.(*gpsd.TPVReport)
		if !ok {
			return
		}
		// Need at least 2D fix
		if tpv.Mode < gpsd.Mode2D {
			return
		}
		coord := Coordinate{Lat: tpv.Lat, Lon: tpv.Lon}
		if !coord.Valid() {
			return
		}
		select {
		case fixes <- coord:
		default:
		}
	})
	done := session.Watch()

	select {
	case <-ctx.Done():
		return Coordinate{}, ctx.Err()
	case coord := <-fixes:
		return coord, nil
	case <-done:
		select {
		case coord := <-fixes:
			return coord, nil
		default:
		}
		return Coordinate{}, fmt.Errorf("%w: gpsd watch at %q ended", ErrNoFix, l.addr)
	}
}
