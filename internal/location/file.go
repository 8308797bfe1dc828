// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package location

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// FileLocator reads a static position from a file. The first line in the form "lat,lon" is
// used; empty lines and lines starting with "#" are skipped.
type FileLocator struct {
	path string
}

func NewFileLocator(path string) *FileLocator {
	return &FileLocator{path: path}
}

func (l *FileLocator) Name() string {
	return "file"
}

func (l *FileLocator) Locate(ctx context.Context) (Coordinate, error) {
	if err := ctx.Err(); err != nil {
		return Coordinate{}, err
	}
	data, err := os.ReadFile(l.path)
	if err != nil {
		return Coordinate{}, fmt.Errorf("failed to read location file %q: %w", l.path, err)
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		coords := strings.Split(line, ",")
		if len(coords) != 2 {
			continue
		}
		lat, err := strconv.ParseFloat(strings.TrimSpace(coords[0]), 64)
		if err != nil {
			continue
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(coords[1]), 64)
		if err != nil {
			continue
		}
		coord := Coordinate{Lat: lat, Lon: lon}
		if !coord.Valid() {
			continue
		}
		return coord, nil
	}
	return Coordinate{}, fmt.Errorf("%w: no valid coordinates in location file %q", ErrNoFix, l.path)
}
