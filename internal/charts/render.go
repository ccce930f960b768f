package charts

import (
	"errors"
	"fmt"
	"io"
	"strings"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/spacesedan/ballotboard/internal/processing"
)

type Kind string

const (
	KindBar Kind = "bar"
	KindPie Kind = "pie"
)

// ErrNoChartData means there is nothing to draw: no categories, or every
// count is zero.
var ErrNoChartData = errors.New("chart series has no positive values")

type Size struct {
	Width  int
	Height int
}

var (
	FullSize    = Size{Width: 560, Height: 300}
	CompactSize = Size{Width: 420, Height: 200}
)

func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(s)) {
	case KindBar:
		return KindBar, nil
	case KindPie:
		return KindPie, nil
	default:
		return "", fmt.Errorf("unknown chart kind %q", s)
	}
}

// Render draws series as an SVG chart of the given kind.
func Render(w io.Writer, kind Kind, series []processing.ChartPoint, size Size) error {
	if !hasPositive(series) {
		return ErrNoChartData
	}

	switch kind {
	case KindBar:
		return renderBar(w, series, size)
	case KindPie:
		return renderPie(w, series, size)
	default:
		return fmt.Errorf("unknown chart kind %q", kind)
	}
}

func renderBar(w io.Writer, series []processing.ChartPoint, size Size) error {
	maxCount := 1
	bars := make([]chart.Value, 0, len(series))
	for _, point := range series {
		if point.Count > maxCount {
			maxCount = point.Count
		}
		bars = append(bars, chart.Value{
			Label: point.Label,
			Value: float64(point.Count),
			Style: fill(point.Color),
		})
	}

	barWidth := size.Width / (2*len(series) + 1)
	if barWidth < 10 {
		barWidth = 10
	}

	bc := chart.BarChart{
		Width:    size.Width,
		Height:   size.Height,
		BarWidth: barWidth,
		Background: chart.Style{
			Padding: chart.Box{Top: 20, Left: 10, Right: 10, Bottom: 10},
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: float64(maxCount)},
		},
		Bars: bars,
	}

	if err := bc.Render(chart.SVG, w); err != nil {
		return fmt.Errorf("render bar chart: %w", err)
	}
	return nil
}

func renderPie(w io.Writer, series []processing.ChartPoint, size Size) error {
	values := make([]chart.Value, 0, len(series))
	for _, point := range series {
		// zero slices only add empty labels
		if point.Count <= 0 {
			continue
		}
		values = append(values, chart.Value{
			Label: point.Label,
			Value: float64(point.Count),
			Style: fill(point.Color),
		})
	}

	pc := chart.PieChart{
		Width:  size.Width,
		Height: size.Height,
		Values: values,
	}

	if err := pc.Render(chart.SVG, w); err != nil {
		return fmt.Errorf("render pie chart: %w", err)
	}
	return nil
}

func fill(hex string) chart.Style {
	color := drawing.ColorFromHex(strings.TrimPrefix(hex, "#"))
	return chart.Style{
		FillColor:   color,
		StrokeColor: color,
		StrokeWidth: 1,
	}
}

func hasPositive(series []processing.ChartPoint) bool {
	for _, point := range series {
		if point.Count > 0 {
			return true
		}
	}
	return false
}
