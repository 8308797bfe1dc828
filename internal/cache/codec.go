// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package cache persists the last successful forecast of a city as a flat text record and
// restores it as fallback data.
package cache

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/wneessen/weather-forecast/internal/calendar"
	"github.com/wneessen/weather-forecast/internal/forecast"
)

var (
	// ErrNotFound is returned if no record exists for a city.
	ErrNotFound = errors.New("no cached forecast")

	// ErrFormat is returned if a record cannot be parsed.
	ErrFormat = errors.New("invalid cache record")
)

const keyCity = "city"

func keyDate(i int) string        { return "date" + strconv.Itoa(i) }
func keyWeather(i int) string     { return "weather" + strconv.Itoa(i) }
func keyWeatherIcon(i int) string { return "weathericon" + strconv.Itoa(i) }
func keyTemperature(i int) string { return "temperature" + strconv.Itoa(i) }

// Encode renders the forecast set as a cache record. The output is deterministic: one
// "key": "value" pair per line, city first, followed by date, weather, weathericon and
// temperature of every day. All values are strings.
func Encode(set forecast.Set) string {
	buf := bytes.NewBufferString("{\n")
	writePair(buf, keyCity, set.City)
	for i, day := range set.Days {
		buf.WriteString(",\n")
		writePair(buf, keyDate(i), calendar.Format(day.Date, calendar.CacheLayout))
		buf.WriteString(",\n")
		writePair(buf, keyWeather(i), day.Kind)
		buf.WriteString(",\n")
		writePair(buf, keyWeatherIcon(i), day.Icon)
		buf.WriteString(",\n")
		writePair(buf, keyTemperature(i), strconv.Itoa(day.Temperature))
	}
	buf.WriteString("\n}")
	return buf.String()
}

func writePair(buf *bytes.Buffer, key, value string) {
	buf.WriteString(quote(key))
	buf.WriteString(": ")
	buf.WriteString(quote(value))
}

// quote renders s as a JSON string literal without HTML escaping
func quote(s string) string {
	buf := new(bytes.Buffer)
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	// Encoding a string never fails
	_ = enc.Encode(s)
	return strings.TrimSuffix(buf.String(), "\n")
}

// Decode parses a cache record into a forecast set.
//
// Blank input means there is no record and returns ErrNotFound. Any other input that does not
// hold a complete record returns ErrFormat. Unknown keys are ignored.
func Decode(text string) (forecast.Set, error) {
	if strings.TrimSpace(text) == "" {
		return forecast.Set{}, ErrNotFound
	}

	var record map[string]any
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	if err := dec.Decode(&record); err != nil {
		return forecast.Set{}, fmt.Errorf("%w: %w", ErrFormat, err)
	}
	if record == nil {
		return forecast.Set{}, fmt.Errorf("%w: record is not an object", ErrFormat)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return forecast.Set{}, fmt.Errorf("%w: trailing data after record", ErrFormat)
	}

	city, err := stringValue(record, keyCity)
	if err != nil {
		return forecast.Set{}, err
	}
	if strings.TrimSpace(city) == "" {
		return forecast.Set{}, fmt.Errorf("%w: city is empty", ErrFormat)
	}

	days := make([]forecast.DailySummary, 0, forecast.Days)
	for i := range forecast.Days {
		day, err := decodeDay(record, i)
		if err != nil {
			return forecast.Set{}, err
		}
		days = append(days, day)
	}

	set, err := forecast.NewSet(city, days)
	if err != nil {
		return forecast.Set{}, fmt.Errorf("%w: %w", ErrFormat, err)
	}
	return set, nil
}

func decodeDay(record map[string]any, i int) (forecast.DailySummary, error) {
	var day forecast.DailySummary

	rawDate, err := stringValue(record, keyDate(i))
	if err != nil {
		return day, err
	}
	if day.Date, err = calendar.Parse(rawDate, calendar.CacheLayout); err != nil {
		return day, fmt.Errorf("%w: %s: %w", ErrFormat, keyDate(i), err)
	}
	if day.Kind, err = stringValue(record, keyWeather(i)); err != nil {
		return day, err
	}
	if day.Icon, err = stringValue(record, keyWeatherIcon(i)); err != nil {
		return day, err
	}
	if day.Temperature, err = intValue(record, keyTemperature(i)); err != nil {
		return day, err
	}
	return day, nil
}

func stringValue(record map[string]any, key string) (string, error) {
	raw, ok := record[key]
	if !ok {
		return "", fmt.Errorf("%w: missing key %q", ErrFormat, key)
	}
	value, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%w: key %q is not a string", ErrFormat, key)
	}
	return value, nil
}

// intValue accepts both the quoted form written by Encode and a plain JSON number
func intValue(record map[string]any, key string) (int, error) {
	raw, ok := record[key]
	if !ok {
		return 0, fmt.Errorf("%w: missing key %q", ErrFormat, key)
	}

	var text string
	switch value := raw.(type) {
	case string:
		text = strings.TrimSpace(value)
	case json.Number:
		text = value.String()
	default:
		return 0, fmt.Errorf("%w: key %q is not an integer", ErrFormat, key)
	}
	n, err := strconv.Atoi(text)
	if err != nil {
		return 0, fmt.Errorf("%w: key %q is not an integer: %w", ErrFormat, key, err)
	}
	return n, nil
}
