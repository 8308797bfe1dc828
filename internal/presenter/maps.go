// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package presenter

// unknownKindEmoji is shown for weather kinds missing in KindEmoji.
const unknownKindEmoji = "🌡️"

// KindEmoji maps the weather kinds reported by the forecast providers to their emoji
// representations.
var KindEmoji = map[string]string{
	"Clear":        "☀️",
	"Clouds":       "☁️",
	"Rain":         "🌧️",
	"Drizzle":      "🌦️",
	"Thunderstorm": "⛈️",
	"Snow":         "❄️",
	"Mist":         "🌫️",
	"Fog":          "🌫️",
	"Haze":         "🌫️",
	"Smoke":        "🌫️",
	"Dust":         "🌪️",
	"Sand":         "🌪️",
	"Ash":          "🌋",
	"Squall":       "💨",
	"Tornado":      "🌪️",
}
