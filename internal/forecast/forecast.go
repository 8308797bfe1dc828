// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package forecast holds the forecast data model and reduces 3-hourly forecast samples into one
// summary per calendar day.
package forecast

import (
	"errors"
	"fmt"
	"strings"

	"github.com/wneessen/weather-forecast/internal/calendar"
)

// Days is the number of daily summaries a forecast set carries.
const Days = 5

// ErrMalformedResponse is returned if forecast data is structurally invalid or yields fewer
// than Days distinct days.
var ErrMalformedResponse = errors.New("malformed forecast response")

// RawSample is a single forecast sample as delivered by a provider.
type RawSample struct {
	// Epoch is the sample time in seconds since the Unix epoch (UTC)
	Epoch       int64
	Temperature float64
	Kind        string
	Icon        string
}

// DailySummary is the reduced forecast for one calendar day.
type DailySummary struct {
	Date        calendar.Date
	Kind        string
	Icon        string
	Temperature int
}

// Set is a complete forecast for a city. A Set always holds exactly Days summaries in
// ascending date order and is not modified after construction.
type Set struct {
	City string
	Days [Days]DailySummary
}

// NewSet validates the given summaries and returns a Set for the city. The first Days
// summaries are used; they must be in strictly ascending date order.
func NewSet(city string, days []DailySummary) (Set, error) {
	if strings.TrimSpace(city) == "" {
		return Set{}, errors.New("city must not be empty")
	}
	if len(days) < Days {
		return Set{}, fmt.Errorf("%w: %d days available, %d required", ErrMalformedResponse, len(days), Days)
	}

	set := Set{City: city}
	for i := range Days {
		if i > 0 && !days[i].Date.After(days[i-1].Date) {
			return Set{}, fmt.Errorf("%w: days are not in ascending order", ErrMalformedResponse)
		}
		set.Days[i] = days[i]
	}
	return set, nil
}
