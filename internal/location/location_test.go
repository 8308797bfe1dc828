// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package location

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stratoberry/go-gpsd"

	"github.com/wneessen/weather-forecast/internal/logger"
)

const (
	testLat = 34.6912
	testLon = 135.1830
)

var home = Coordinate{Lat: 35.6895, Lon: 139.6917}

func testLogger() *logger.Logger {
	return logger.NewLogger(slog.LevelDebug, io.Discard)
}

type staticLocator struct {
	coord Coordinate
	err   error
	calls int
}

func (l *staticLocator) Name() string { return "static" }

func (l *staticLocator) Locate(context.Context) (Coordinate, error) {
	l.calls++
	return l.coord, l.err
}

// blockingLocator never reports a position and only returns once ctx is done
type blockingLocator struct{}

func (blockingLocator) Name() string { return "blocking" }

func (blockingLocator) Locate(ctx context.Context) (Coordinate, error) {
	<-ctx.Done()
	return Coordinate{}, ctx.Err()
}

type regionLookup struct {
	region string
	err    error
}

func (r regionLookup) RegionName(context.Context, Coordinate) (string, error) {
	return r.region, r.err
}

func TestCityCoordinate(t *testing.T) {
	t.Run("known city is found case-insensitively", func(t *testing.T) {
		coord, ok := CityCoordinate(" hyogo ")
		if !ok {
			t.Fatal("expected Hyogo to be a known city")
		}
		if coord.Lat != testLat || coord.Lon != testLon {
			t.Errorf("expected coordinate %f,%f, got %s", testLat, testLon, coord)
		}
	})
	t.Run("unknown city is not found", func(t *testing.T) {
		if _, ok := CityCoordinate("Atlantis"); ok {
			t.Error("expected Atlantis to be unknown")
		}
	})
	t.Run("default city is known", func(t *testing.T) {
		coord, ok := CityCoordinate(DefaultCity)
		if !ok || coord != home {
			t.Errorf("expected default city to resolve to %s, got %s", home, coord)
		}
	})
	t.Run("city names keep table order", func(t *testing.T) {
		names := CityNames()
		want := []string{"Hokkaido", "Tokyo", "Hyogo", "Oita"}
		if len(names) != len(want) {
			t.Fatalf("expected %d names, got %d", len(want), len(names))
		}
		for i := range want {
			if names[i] != want[i] {
				t.Errorf("expected name %d to be %s, got %s", i, want[i], names[i])
			}
		}
	})
}

func TestCoordinate_Valid(t *testing.T) {
	tests := []struct {
		name  string
		coord Coordinate
		want  bool
	}{
		{"regular coordinate", Coordinate{Lat: testLat, Lon: testLon}, true},
		{"poles and antimeridian", Coordinate{Lat: -90, Lon: 180}, true},
		{"latitude out of range", Coordinate{Lat: 90.1, Lon: 0}, false},
		{"longitude out of range", Coordinate{Lat: 0, Lon: -180.5}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.coord.Valid(); got != tc.want {
				t.Errorf("expected valid to be %t, got %t", tc.want, got)
			}
		})
	}
}

func TestFileLocator_Locate(t *testing.T) {
	writeFile := func(t *testing.T, content string) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), "location")
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("failed to write location file: %s", err)
		}
		return path
	}

	t.Run("first valid line is used", func(t *testing.T) {
		path := writeFile(t, "# home\n\ninvalid\n34.6912, 135.1830\n1,2\n")
		coord, err := NewFileLocator(path).Locate(t.Context())
		if err != nil {
			t.Fatalf("failed to locate: %s", err)
		}
		if coord.Lat != testLat || coord.Lon != testLon {
			t.Errorf("expected coordinate %f,%f, got %s", testLat, testLon, coord)
		}
	})
	t.Run("out of range coordinates are skipped", func(t *testing.T) {
		path := writeFile(t, "100,200\n34.6912,135.1830\n")
		coord, err := NewFileLocator(path).Locate(t.Context())
		if err != nil {
			t.Fatalf("failed to locate: %s", err)
		}
		if coord.Lat != testLat {
			t.Errorf("expected latitude %f, got %f", testLat, coord.Lat)
		}
	})
	t.Run("file without coordinates has no fix", func(t *testing.T) {
		path := writeFile(t, "# nothing here\nfoo,bar\n")
		_, err := NewFileLocator(path).Locate(t.Context())
		if !errors.Is(err, ErrNoFix) {
			t.Errorf("expected error to be %s, got %v", ErrNoFix, err)
		}
	})
	t.Run("missing file fails", func(t *testing.T) {
		_, err := NewFileLocator(filepath.Join(t.TempDir(), "missing")).Locate(t.Context())
		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("expected error to be %s, got %v", os.ErrNotExist, err)
		}
	})
	t.Run("name is file", func(t *testing.T) {
		if name := NewFileLocator("").Name(); name != "file" {
			t.Errorf("expected name to be file, got %s", name)
		}
	})
}

type fakeSession struct {
	reports []interface{}
	filters map[string][]gpsd.Filter
	hold    bool
}

func (s *fakeSession) AddFilter(class string, f gpsd.Filter) {
	if s.filters == nil {
		s.filters = make(map[string][]gpsd.Filter)
	}
	s.filters[class] = append(s.filters[class], f)
}

func (s *fakeSession) Watch() chan bool {
	done := make(chan bool)
	go func() {
		for _, report := range s.reports {
			for _, f := range s.filters["TPV"] {
				f(report)
			}
		}
		if !s.hold {
			close(done)
		}
	}()
	return done
}

func gpsdLocator(session *fakeSession, err error) *GPSDLocator {
	locator := NewGPSDLocator("")
	locator.dial = func(string) (gpsdSession, error) {
		if err != nil {
			return nil, err
		}
		return session, nil
	}
	return locator
}

func TestGPSDLocator_Locate(t *testing.T) {
	t.Run("first report with a fix is used", func(t *testing.T) {
		session := &fakeSession{reports: []interface{}{
			&gpsd.SKYReport{},
			&gpsd.TPVReport{Mode: gpsd.NoFix, Lat: 1, Lon: 1},
			&gpsd.TPVReport{Mode: gpsd.Mode3D, Lat: testLat, Lon: testLon},
			&gpsd.TPVReport{Mode: gpsd.Mode2D, Lat: 2, Lon: 2},
		}}
		coord, err := gpsdLocator(session, nil).Locate(t.Context())
		if err != nil {
			t.Fatalf("failed to locate: %s", err)
		}
		if coord.Lat != testLat || coord.Lon != testLon {
			t.Errorf("expected coordinate %f,%f, got %s", testLat, testLon, coord)
		}
	})
	t.Run("ended watch without fix fails", func(t *testing.T) {
		session := &fakeSession{reports: []interface{}{&gpsd.TPVReport{Mode: gpsd.NoFix}}}
		_, err := gpsdLocator(session, nil).Locate(t.Context())
		if !errors.Is(err, ErrNoFix) {
			t.Errorf("expected error to be %s, got %v", ErrNoFix, err)
		}
	})
	t.Run("dial failure is returned", func(t *testing.T) {
		_, err := gpsdLocator(nil, errors.New("connection refused")).Locate(t.Context())
		if err == nil {
			t.Error("expected locate to fail")
		}
	})
	t.Run("locate gives up when the context is done", func(t *testing.T) {
		synctest.Test(t, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(t.Context(), time.Second)
			defer cancel()
			_, err := gpsdLocator(&fakeSession{hold: true}, nil).Locate(ctx)
			if !errors.Is(err, context.DeadlineExceeded) {
				t.Errorf("expected error to be %s, got %v", context.DeadlineExceeded, err)
			}
		})
	})
	t.Run("default address is used", func(t *testing.T) {
		if locator := NewGPSDLocator(""); locator.addr != DefaultGPSDAddr {
			t.Errorf("expected address to be %s, got %s", DefaultGPSDAddr, locator.addr)
		}
	})
}

func TestResolver_CurrentCoordinate(t *testing.T) {
	t.Run("disabled location returns home without asking locators", func(t *testing.T) {
		locator := &staticLocator{coord: Coordinate{Lat: testLat, Lon: testLon}}
		resolver := NewResolver(ResolverConfig{Home: home}, []Locator{locator}, nil, testLogger())
		if got := resolver.CurrentCoordinate(t.Context()); got != home {
			t.Errorf("expected home coordinate, got %s", got)
		}
		if locator.calls != 0 {
			t.Errorf("expected locator not to be called, got %d calls", locator.calls)
		}
	})
	t.Run("first successful locator wins", func(t *testing.T) {
		failing := &staticLocator{err: ErrNoFix}
		working := &staticLocator{coord: Coordinate{Lat: testLat, Lon: testLon}}
		unused := &staticLocator{coord: Coordinate{Lat: 1, Lon: 1}}
		resolver := NewResolver(ResolverConfig{Enabled: true, Home: home},
			[]Locator{failing, working, unused}, nil, testLogger())
		if got := resolver.CurrentCoordinate(t.Context()); got != working.coord {
			t.Errorf("expected %s, got %s", working.coord, got)
		}
		if unused.calls != 0 {
			t.Error("expected later locators not to be called")
		}
	})
	t.Run("invalid position falls back to home", func(t *testing.T) {
		locator := &staticLocator{coord: Coordinate{Lat: 91, Lon: 0}}
		resolver := NewResolver(ResolverConfig{Enabled: true, Home: home}, []Locator{locator}, nil, testLogger())
		if got := resolver.CurrentCoordinate(t.Context()); got != home {
			t.Errorf("expected home coordinate, got %s", got)
		}
	})
	t.Run("no locators falls back to home", func(t *testing.T) {
		resolver := NewResolver(ResolverConfig{Enabled: true, Home: home}, nil, nil, testLogger())
		if got := resolver.CurrentCoordinate(t.Context()); got != home {
			t.Errorf("expected home coordinate, got %s", got)
		}
	})
	t.Run("wait for a position is bounded", func(t *testing.T) {
		synctest.Test(t, func(t *testing.T) {
			later := &staticLocator{coord: Coordinate{Lat: testLat, Lon: testLon}}
			resolver := NewResolver(ResolverConfig{Enabled: true, Home: home, Timeout: time.Second * 3},
				[]Locator{blockingLocator{}, later}, nil, testLogger())

			start := time.Now()
			got := resolver.CurrentCoordinate(t.Context())
			if got != home {
				t.Errorf("expected home coordinate, got %s", got)
			}
			if elapsed := time.Since(start); elapsed != time.Second*3 {
				t.Errorf("expected to wait exactly 3s, waited %s", elapsed)
			}
			if later.calls != 0 {
				t.Error("expected no locator to be asked after the timeout")
			}
		})
	})
	t.Run("missing home defaults to the default city", func(t *testing.T) {
		resolver := NewResolver(ResolverConfig{}, nil, nil, testLogger())
		if resolver.Home() != home {
			t.Errorf("expected home to be %s, got %s", home, resolver.Home())
		}
	})
}

func TestResolver_RegionName(t *testing.T) {
	coord := Coordinate{Lat: testLat, Lon: testLon}

	t.Run("region is resolved", func(t *testing.T) {
		resolver := NewResolver(ResolverConfig{}, nil, regionLookup{region: "Hyogo"}, testLogger())
		if got := resolver.RegionName(t.Context(), coord); got != "Hyogo" {
			t.Errorf("expected region to be Hyogo, got %s", got)
		}
	})
	t.Run("lookup error returns unknown", func(t *testing.T) {
		resolver := NewResolver(ResolverConfig{}, nil, regionLookup{err: errors.New("quota exceeded")}, testLogger())
		if got := resolver.RegionName(t.Context(), coord); got != Unknown {
			t.Errorf("expected region to be %s, got %s", Unknown, got)
		}
	})
	t.Run("empty region returns the configured unknown name", func(t *testing.T) {
		resolver := NewResolver(ResolverConfig{Unknown: "不明"}, nil, regionLookup{}, testLogger())
		if got := resolver.RegionName(t.Context(), coord); got != "不明" {
			t.Errorf("expected region to be 不明, got %s", got)
		}
		if resolver.Unknown() != "不明" {
			t.Errorf("expected unknown name to be 不明, got %s", resolver.Unknown())
		}
	})
	t.Run("missing lookup returns unknown", func(t *testing.T) {
		resolver := NewResolver(ResolverConfig{}, nil, nil, testLogger())
		if got := resolver.RegionName(t.Context(), coord); got != Unknown {
			t.Errorf("expected region to be %s, got %s", Unknown, got)
		}
	})
}

func TestResolver_CurrentCity(t *testing.T) {
	t.Run("region of the current position is the city", func(t *testing.T) {
		locator := &staticLocator{coord: Coordinate{Lat: testLat, Lon: testLon}}
		resolver := NewResolver(ResolverConfig{Enabled: true, Home: home}, []Locator{locator},
			regionLookup{region: "Hyogo"}, testLogger())
		if got := resolver.CurrentCity(t.Context(), DefaultCity); got != "Hyogo" {
			t.Errorf("expected city to be Hyogo, got %s", got)
		}
	})
	t.Run("unresolvable region returns the fallback city", func(t *testing.T) {
		resolver := NewResolver(ResolverConfig{Home: home}, nil, regionLookup{err: ErrNoFix}, testLogger())
		if got := resolver.CurrentCity(t.Context(), "Oita"); got != "Oita" {
			t.Errorf("expected city to be Oita, got %s", got)
		}
	})
}
