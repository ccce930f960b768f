package processing

import (
	"math"

	"github.com/spacesedan/ballotboard/internal/models"
)

const (
	// CompactPreviewLimit is the number of preview rows a comparison card shows.
	CompactPreviewLimit = 5
	// FullPreview keeps every preview record.
	FullPreview = 0
)

type ChartPoint struct {
	Label string `json:"label"`
	Count int    `json:"count"`
	Color string `json:"color"`
}

type Percentage struct {
	Label string  `json:"label"`
	Value float64 `json:"percentage"`
}

type PreviewRow struct {
	Text    string `json:"text"`
	Label   string `json:"label"`
	Display string `json:"display"`
}

// ViewModel is the render-ready form of a SummaryPayload.
type ViewModel struct {
	Total       int          `json:"total"`
	ChartSeries []ChartPoint `json:"chart_series"`
	Percentages []Percentage `json:"percentages"`
	PreviewRows []PreviewRow `json:"preview_rows"`

	// DegenerateTotal is set when total is not positive. Every percentage is
	// then zero and the view should read as insufficient data.
	DegenerateTotal bool `json:"degenerate_total"`
}

type TransformOptions struct {
	PreviewLimit int
	Palette      ColorPolicy
}

// Transform is pure: the same payload and options always give the same view.
func Transform(payload models.SummaryPayload, opts TransformOptions) ViewModel {
	palette := opts.Palette
	if palette == nil {
		palette = DefaultPositionalPalette()
	}

	vm := ViewModel{
		Total:           payload.Total,
		ChartSeries:     make([]ChartPoint, 0, len(payload.Summary)),
		Percentages:     make([]Percentage, 0, len(payload.Summary)),
		DegenerateTotal: payload.Total <= 0,
	}

	for i, entry := range payload.Summary {
		vm.ChartSeries = append(vm.ChartSeries, ChartPoint{
			Label: entry.Label,
			Count: entry.Count,
			Color: palette.ColorFor(i, entry.Label),
		})
		vm.Percentages = append(vm.Percentages, Percentage{
			Label: entry.Label,
			Value: percentOf(entry.Count, payload.Total),
		})
	}

	vm.PreviewRows = previewRows(payload.Preview, opts.PreviewLimit)
	return vm
}

// percentOf rounds count/total to one decimal place. A non-positive total
// yields 0 instead of NaN or Inf.
func percentOf(count, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(count)/float64(total)*1000) / 10
}

func previewRows(records []models.PreviewRecord, limit int) []PreviewRow {
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}

	rows := make([]PreviewRow, 0, len(records))
	for _, record := range records {
		rows = append(rows, PreviewRow{
			Text:    record.Text,
			Label:   record.Label,
			Display: PlainText(record.Text),
		})
	}
	return rows
}

// PercentageSum is the sum of all rounded percentages in the view.
func (vm ViewModel) PercentageSum() float64 {
	sum := 0.0
	for _, p := range vm.Percentages {
		sum += p.Value
	}
	return sum
}

// HasChartData reports whether at least one category has a positive count.
func (vm ViewModel) HasChartData() bool {
	for _, point := range vm.ChartSeries {
		if point.Count > 0 {
			return true
		}
	}
	return false
}
