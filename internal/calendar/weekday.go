// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package calendar

import (
	"time"

	"golang.org/x/text/language"
)

// Style selects the length of a weekday name.
type Style int

const (
	StyleFull Style = iota
	StyleShort
	StyleNarrow
)

// Accent is the display accent of a weekday.
type Accent int

const (
	AccentDefault Accent = iota
	AccentSaturday
	AccentSunday
)

func (a Accent) String() string {
	switch a {
	case AccentSaturday:
		return "saturday"
	case AccentSunday:
		return "sunday"
	default:
		return "default"
	}
}

var weekdayLanguages = []language.Tag{language.English, language.Japanese}

var weekdayMatcher = language.NewMatcher(weekdayLanguages)

// weekdayNames is indexed by language (see weekdayLanguages), style and time.Weekday
var weekdayNames = [][3][7]string{
	{
		{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"},
		{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"},
		{"S", "M", "T", "W", "T", "F", "S"},
	},
	{
		{"日曜日", "月曜日", "火曜日", "水曜日", "木曜日", "金曜日", "土曜日"},
		{"日", "月", "火", "水", "木", "金", "土"},
		{"日", "月", "火", "水", "木", "金", "土"},
	},
}

// WeekdayName returns the name of the weekday of d in the given style. Languages without a
// table of their own fall back to English.
func WeekdayName(d Date, style Style, lang language.Tag) string {
	if style < StyleFull || style > StyleNarrow {
		style = StyleFull
	}
	_, idx, _ := weekdayMatcher.Match(lang)
	return weekdayNames[idx][style][d.Weekday()]
}

// WeekdayAccent returns the display accent for d: Saturdays and Sundays are highlighted.
func WeekdayAccent(d Date) Accent {
	switch d.Weekday() {
	case time.Saturday:
		return AccentSaturday
	case time.Sunday:
		return AccentSunday
	default:
		return AccentDefault
	}
}
