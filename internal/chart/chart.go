// Package chart renders the dashboard performance chart.
package chart

import (
	"fmt"
	"io"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/matchbook/matchbook/internal/stats"
)

// Format is an output image format.
type Format string

const (
	SVG Format = "svg"
	PNG Format = "png"
)

// ParseFormat accepts "svg" (the default when empty) or "png".
func ParseFormat(s string) (Format, error) {
	switch s {
	case "", string(SVG):
		return SVG, nil
	case string(PNG):
		return PNG, nil
	}
	return "", fmt.Errorf("unsupported chart format %q", s)
}

// ContentType returns the MIME type for f.
func (f Format) ContentType() string {
	if f == PNG {
		return "image/png"
	}
	return "image/svg+xml"
}

var (
	winColor  = drawing.ColorFromHex("22c55e")
	halfColor = drawing.ColorFromHex("9ca3af")
	lossColor = drawing.ColorFromHex("ef4444")
	// headroom pads each bar up to the tallest month. It must not be the zero
	// Color, which go-chart replaces with a palette colour.
	headroom = drawing.Color{R: 255, G: 255, B: 255, A: 0}
)

const (
	barWidth   = 40
	barSpacing = 16
)

type legendEntry struct {
	name  string
	color drawing.Color
}

// Stacking order from the axis up.
var legendEntries = []legendEntry{
	{"Win", winColor},
	{"Half", halfColor},
	{"Loss", lossColor},
}

func segment(label string, n int, col drawing.Color) chart.Value {
	return chart.Value{
		Label: label,
		Value: float64(n),
		Style: chart.Style{
			FillColor:   col,
			StrokeColor: col,
			StrokeWidth: 1,
			FontColor:   drawing.ColorWhite,
		},
	}
}

// Build assembles one stacked bar per month: Win at the base, then Half, then
// Loss. go-chart scales every bar to the full canvas height, so each bar is
// topped up to the busiest month with an invisible segment to keep heights
// proportional to match counts.
func Build(months []stats.Month, title string) chart.StackedBarChart {
	peak := stats.Peak(months)
	if peak < 1 {
		peak = 1
	}

	bars := make([]chart.StackedBar, len(months))
	for i, m := range months {
		// Values stack from the top of the canvas down.
		values := []chart.Value{segment("", peak-m.Total(), headroom)}
		if m.Loss > 0 {
			values = append(values, segment(fmt.Sprint(m.Loss), m.Loss, lossColor))
		}
		if m.Half > 0 {
			values = append(values, segment(fmt.Sprint(m.Half), m.Half, halfColor))
		}
		if m.Win > 0 {
			values = append(values, segment(fmt.Sprint(m.Win), m.Win, winColor))
		}
		bars[i] = chart.StackedBar{Name: m.Name, Width: barWidth, Values: values}
	}

	return chart.StackedBarChart{
		Title:      title,
		Width:      720,
		Height:     320,
		Background: chart.Style{Padding: chart.Box{Top: 48, Left: 16, Right: 16, Bottom: 16}},
		BarSpacing: barSpacing,
		// The stacked chart's own y-axis is in percent, which is meaningless
		// here. Counts are printed on the segments instead.
		YAxis:    chart.Style{Hidden: true},
		Bars:     bars,
		Elements: []chart.Renderable{legend},
	}
}

// legend draws a swatch and name per result above the bars.
func legend(r chart.Renderer, canvas chart.Box, defaults chart.Style) {
	text := chart.Style{Font: defaults.Font, FontSize: 9, FontColor: chart.DefaultTextColor}
	x, y := canvas.Left, canvas.Top-16
	for _, e := range legendEntries {
		chart.Draw.Box(r, chart.Box{Top: y, Left: x, Right: x + 10, Bottom: y + 10}, chart.Style{
			FillColor:   e.color,
			StrokeColor: e.color,
			StrokeWidth: 1,
		})
		chart.Draw.Text(r, e.name, x+14, y+9, text)
		x += 14 + chart.Draw.MeasureText(r, e.name, text).Width() + 16
	}
}

// Render writes the chart for months to w.
func Render(w io.Writer, months []stats.Month, title string, format Format) error {
	if len(months) < 2 {
		return fmt.Errorf("chart needs at least two months, got %d", len(months))
	}
	ch := Build(months, title)
	provider := chart.SVG
	if format == PNG {
		provider = chart.PNG
	}
	if err := ch.Render(provider, w); err != nil {
		return fmt.Errorf("rendering chart: %w", err)
	}
	return nil
}
