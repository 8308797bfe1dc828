// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package presenter

import (
	"strings"
	"text/template"

	"github.com/mattn/go-runewidth"
)

func (p *Presenter) templateFuncMap() template.FuncMap {
	return template.FuncMap{
		"pad":  pad,
		"lpad": lpad,
		"lc":   strings.ToLower,
		"uc":   strings.ToUpper,
	}
}

// pad fills val with spaces up to the given display width. East Asian wide characters
// count as two columns.
func pad(val string, width int) string {
	return runewidth.FillRight(val, width)
}

func lpad(val string, width int) string {
	return runewidth.FillLeft(val, width)
}

func emoji(kind string) string {
	if icon, ok := KindEmoji[kind]; ok {
		return icon
	}
	return unknownKindEmoji
}
