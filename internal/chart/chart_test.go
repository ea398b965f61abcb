package chart

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matchbook/matchbook/internal/db"
	"github.com/matchbook/matchbook/internal/stats"
)

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, SVG, f)
	assert.Equal(t, "image/svg+xml", f.ContentType())

	f, err = ParseFormat("png")
	require.NoError(t, err)
	assert.Equal(t, "image/png", f.ContentType())

	_, err = ParseFormat("gif")
	assert.Error(t, err)
}

func TestBuild(t *testing.T) {
	months := stats.Monthly([]db.Match{
		{Date: "2024-04-01", Result: db.ResultWin},
		{Date: "2024-04-08", Result: db.ResultWin},
		{Date: "2024-05-01", Result: db.ResultLoss},
		{Date: "2024-06-01", Result: db.ResultHalf},
		{Date: "2024-06-02", Result: db.ResultWin},
	})
	ch := Build(months, "Performance")

	require.Len(t, ch.Bars, 12)
	assert.Equal(t, "Jan", ch.Bars[0].Name)
	assert.Equal(t, "Apr", ch.Bars[3].Name)
	assert.True(t, ch.YAxis.Hidden)

	// Each bar sums to the busiest month so heights stay proportional.
	for _, bar := range ch.Bars {
		var total float64
		for _, v := range bar.Values {
			total += v.Value
		}
		assert.Equal(t, 2.0, total, bar.Name)
	}

	june := ch.Bars[5].Values
	require.Len(t, june, 3)
	assert.Equal(t, headroom, june[0].Style.FillColor)
	assert.Equal(t, halfColor, june[1].Style.FillColor, "half sits on top of win")
	assert.Equal(t, winColor, june[2].Style.FillColor, "win is drawn last, at the base")
	assert.Equal(t, "1", june[2].Label)

	assert.Len(t, ch.Bars[0].Values, 1, "empty month is headroom only")
}

func TestRenderSVG_DrawsFilledBars(t *testing.T) {
	months := stats.Monthly([]db.Match{
		{Date: "2024-04-01", Result: db.ResultWin},
		{Date: "2024-04-08", Result: db.ResultWin},
		{Date: "2024-05-01", Result: db.ResultLoss},
	})
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, months, "Performance", SVG))
	svg := buf.String()

	// One filled bar segment per month with that result, plus the legend swatch.
	assert.Equal(t, 2, strings.Count(svg, "fill:"+winColor.String()))
	assert.Equal(t, 2, strings.Count(svg, "fill:"+lossColor.String()))
	assert.Equal(t, 1, strings.Count(svg, "fill:"+halfColor.String()))
	// Every month except April tops up to the peak.
	assert.Equal(t, 11, strings.Count(svg, "fill:"+headroom.String()))
	assert.Contains(t, svg, ">Apr<")
}

func TestRenderSVG(t *testing.T) {
	months := stats.Monthly([]db.Match{
		{Date: "2024-04-01", Result: db.ResultWin},
		{Date: "2024-06-01", Result: db.ResultHalf},
	})
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, months, "Performance", SVG))
	assert.Contains(t, buf.String(), "<svg")
}

func TestRenderEmptyHistory(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, stats.Monthly(nil), "", SVG))
	assert.Contains(t, buf.String(), "<svg")
}

func TestRenderPNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, stats.Monthly(nil), "", PNG))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")))
}
