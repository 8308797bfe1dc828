// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package google

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"time"

	"golang.org/x/text/language"

	"github.com/wneessen/weather-forecast/internal/geocode"
	"github.com/wneessen/weather-forecast/internal/http"
	"github.com/wneessen/weather-forecast/internal/location"
)

const (
	APIEndpoint = "https://maps.googleapis.com/maps/api/geocode/json"
	APITimeout  = time.Second * 10
	name        = "google"

	regionType = "administrative_area_level_1"
)

// ErrStatus is returned if the API answers with a status other than OK or ZERO_RESULTS.
var ErrStatus = errors.New("geocoding request was not successful")

type Google struct {
	apikey   string
	endpoint string
	http     *http.Client
	lang     language.Tag
}

type Response struct {
	Status       string   `json:"status"`
	ErrorMessage string   `json:"error_message"`
	Results      []Result `json:"results"`
}

type Result struct {
	AddressComponents []Component `json:"address_components"`
	FormattedAddress  string      `json:"formatted_address"`
	Geometry          Geometry    `json:"geometry"`
}

type Component struct {
	LongName  string   `json:"long_name"`
	ShortName string   `json:"short_name"`
	Types     []string `json:"types"`
}

type Geometry struct {
	Location struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lng"`
	} `json:"location"`
}

func New(client *http.Client, lang language.Tag, apikey, endpoint string) *Google {
	if endpoint == "" {
		endpoint = APIEndpoint
	}
	return &Google{
		apikey:   apikey,
		endpoint: endpoint,
		lang:     lang,
		http:     client,
	}
}

func (g *Google) Name() string {
	return name
}

// Reverse looks up the first-level administrative area (prefecture, state) of the
// coordinate.
func (g *Google) Reverse(ctx context.Context, coords location.Coordinate) (geocode.Address, error) {
	var response Response

	query := url.Values{}
	query.Set("latlng", fmt.Sprintf("%f,%f", coords.Lat, coords.Lon))
	query.Set("key", g.apikey)
	if g.lang != language.Und {
		query.Set("language", g.lang.String())
	}

	if _, err := g.http.GetWithTimeout(ctx, g.endpoint, &response, query, nil, APITimeout); err != nil {
		return geocode.Address{}, fmt.Errorf("failed to retrieve address details from Google Geocoding API: %w", err)
	}

	address := geocode.Address{Lat: coords.Lat, Lon: coords.Lon}
	switch response.Status {
	case "OK":
	case "ZERO_RESULTS":
		return address, nil
	default:
		return geocode.Address{}, fmt.Errorf("%w: %s: %s", ErrStatus, response.Status, response.ErrorMessage)
	}
	if len(response.Results) == 0 {
		return address, nil
	}

	result := response.Results[0]
	for _, component := range result.AddressComponents {
		if slices.Contains(component.Types, regionType) {
			address.Found = true
			address.Region = component.LongName
			address.Lat = result.Geometry.Location.Lat
			address.Lon = result.Geometry.Location.Lon
			break
		}
	}
	return address, nil
}
