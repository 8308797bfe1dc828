// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package presenter

import (
	"fmt"
	"io"
	"text/template"

	"golang.org/x/text/language"

	"github.com/wneessen/weather-forecast/internal/calendar"
	"github.com/wneessen/weather-forecast/internal/forecast"
	"github.com/wneessen/weather-forecast/internal/weather"
)

// DayView wraps a DailySummary with presentation-related fields.
type DayView struct {
	forecast.DailySummary

	Date        string
	Weekday     string
	WeekdayFull string
	Accent      string
	Emoji       string
	IconURL     string
	IconURLMini string
}

type TemplateContext struct {
	City   string
	Origin string
	Stale  bool
	Error  string
	Days   []DayView
}

type Presenter struct {
	header *template.Template
	day    *template.Template
	lang   language.Tag
}

func New(headerTpl, dayTpl string, lang language.Tag) (*Presenter, error) {
	p := &Presenter{lang: lang}

	tpl, err := template.New("header").Funcs(p.templateFuncMap()).Parse(headerTpl)
	if err != nil {
		return nil, fmt.Errorf("failed to parse header template: %w", err)
	}
	p.header = tpl

	tpl, err = template.New("day").Funcs(p.templateFuncMap()).Parse(dayTpl)
	if err != nil {
		return nil, fmt.Errorf("failed to parse day template: %w", err)
	}
	p.day = tpl

	return p, nil
}

func (p *Presenter) BuildContext(result weather.Result) TemplateContext {
	ctx := TemplateContext{
		City:   result.City,
		Origin: result.Origin.String(),
		Stale:  result.Origin == weather.OriginFallback,
	}
	if result.Err != nil {
		ctx.Error = result.Err.Error()
	}
	if result.Set == nil {
		return ctx
	}

	ctx.City = result.Set.City
	ctx.Days = make([]DayView, 0, len(result.Set.Days))
	for _, day := range result.Set.Days {
		ctx.Days = append(ctx.Days, p.viewFromSummary(day))
	}
	return ctx
}

func (p *Presenter) viewFromSummary(day forecast.DailySummary) DayView {
	return DayView{
		DailySummary: day,
		Date:         calendar.Format(day.Date, calendar.CacheLayout),
		Weekday:      calendar.WeekdayName(day.Date, calendar.StyleShort, p.lang),
		WeekdayFull:  calendar.WeekdayName(day.Date, calendar.StyleFull, p.lang),
		Accent:       calendar.WeekdayAccent(day.Date).String(),
		Emoji:        emoji(day.Kind),
		IconURL:      forecast.IconURL(day.Icon, true),
		IconURLMini:  forecast.IconURL(day.Icon, false),
	}
}

// Render writes the header line followed by one line per forecast day. A result without
// a forecast renders the header only.
func (p *Presenter) Render(w io.Writer, result weather.Result) error {
	ctx := p.BuildContext(result)
	if err := p.header.Execute(w, ctx); err != nil {
		return fmt.Errorf("failed to render header template: %w", err)
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return err
	}
	for _, day := range ctx.Days {
		if err := p.day.Execute(w, day); err != nil {
			return fmt.Errorf("failed to render day template: %w", err)
		}
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
	}
	return nil
}
