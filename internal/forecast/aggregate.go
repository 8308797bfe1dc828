// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package forecast

import (
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/wneessen/weather-forecast/internal/calendar"
)

type dayGroup struct {
	date    calendar.Date
	samples []RawSample
}

// Aggregate groups the samples by their calendar date in loc and reduces every group into a
// DailySummary. The summaries of the first Days dates are returned in ascending order.
//
// Temperature is the integer mean of the group: every sample is truncated toward zero, the
// truncated values are summed and divided by the sample count. Kind and Icon are the most
// frequent values of the group, determined independently of each other. On a tie the value
// that occurs first in the input wins.
func Aggregate(samples []RawSample, loc *time.Location) ([]DailySummary, error) {
	groups := make(map[calendar.Date]*dayGroup)
	for i, sample := range samples {
		if sample.Kind == "" || sample.Icon == "" {
			return nil, fmt.Errorf("%w: sample %d has no weather kind or icon", ErrMalformedResponse, i)
		}
		if math.IsNaN(sample.Temperature) || math.IsInf(sample.Temperature, 0) {
			return nil, fmt.Errorf("%w: sample %d has a non-finite temperature", ErrMalformedResponse, i)
		}

		date := calendar.FromEpoch(sample.Epoch, loc)
		group, ok := groups[date]
		if !ok {
			group = &dayGroup{date: date}
			groups[date] = group
		}
		group.samples = append(group.samples, sample)
	}
	if len(groups) < Days {
		return nil, fmt.Errorf("%w: %d distinct days in response, %d required", ErrMalformedResponse,
			len(groups), Days)
	}

	ordered := make([]*dayGroup, 0, len(groups))
	for _, group := range groups {
		ordered = append(ordered, group)
	}
	slices.SortFunc(ordered, func(a, b *dayGroup) int {
		switch {
		case a.date.Before(b.date):
			return -1
		case a.date.After(b.date):
			return 1
		default:
			return 0
		}
	})

	summaries := make([]DailySummary, 0, Days)
	for _, group := range ordered[:Days] {
		summaries = append(summaries, group.summarize())
	}
	return summaries, nil
}

func (g *dayGroup) summarize() DailySummary {
	var total int
	kinds := make([]string, 0, len(g.samples))
	icons := make([]string, 0, len(g.samples))
	for _, sample := range g.samples {
		total += int(math.Trunc(sample.Temperature))
		kinds = append(kinds, sample.Kind)
		icons = append(icons, sample.Icon)
	}

	return DailySummary{
		Date:        g.date,
		Kind:        mode(kinds),
		Icon:        mode(icons),
		Temperature: total / len(g.samples),
	}
}

// mode returns the most frequent value; ties go to the value seen first.
func mode(values []string) string {
	counts := make(map[string]int, len(values))
	order := make([]string, 0, len(values))
	for _, v := range values {
		if counts[v] == 0 {
			order = append(order, v)
		}
		counts[v]++
	}

	var best string
	var bestCount int
	for _, v := range order {
		if counts[v] > bestCount {
			best, bestCount = v, counts[v]
		}
	}
	return best
}
