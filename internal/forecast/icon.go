// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package forecast

const iconBaseURL = "https://openweathermap.org/img/wn/"

// IconURL returns the image URL for a weather icon code. Night variants are always mapped to
// their day counterpart. The primary URL points to the large rendition, the secondary one to the
// small rendition. An empty code yields an empty URL.
func IconURL(code string, primary bool) string {
	if code == "" {
		return ""
	}
	if code[len(code)-1] != 'd' {
		code = code[:len(code)-1] + "d"
	}
	if primary {
		return iconBaseURL + code + "@4x.png"
	}
	return iconBaseURL + code + ".png"
}
