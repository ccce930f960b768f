package processing

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/ballotboard/internal/models"
)

func payload(total int, counts ...models.CategoryCount) models.SummaryPayload {
	return models.SummaryPayload{Summary: counts, Total: total}
}

func TestTransform_Percentages(t *testing.T) {
	p := payload(100,
		models.CategoryCount{Label: "positive", Count: 30},
		models.CategoryCount{Label: "neutral", Count: 50},
		models.CategoryCount{Label: "negative", Count: 20},
	)
	p.Preview = []models.PreviewRecord{{Text: "x", Label: "positive"}}

	vm := Transform(p, TransformOptions{})

	assert.Equal(t, []Percentage{
		{Label: "positive", Value: 30.0},
		{Label: "neutral", Value: 50.0},
		{Label: "negative", Value: 20.0},
	}, vm.Percentages)
	assert.False(t, vm.DegenerateTotal)
	assert.Equal(t, 100, vm.Total)
	require.Len(t, vm.PreviewRows, 1)
	assert.Equal(t, PreviewRow{Text: "x", Label: "positive", Display: "x"}, vm.PreviewRows[0])
}

func TestTransform_RoundsToOneDecimal(t *testing.T) {
	vm := Transform(payload(3,
		models.CategoryCount{Label: "positive", Count: 1},
		models.CategoryCount{Label: "neutral", Count: 1},
		models.CategoryCount{Label: "negative", Count: 1},
	), TransformOptions{})

	for _, p := range vm.Percentages {
		assert.Equal(t, 33.3, p.Value)
	}
	assert.InDelta(t, 100, vm.PercentageSum(), 3*0.05)
}

func TestTransform_PercentSumWithinRoundingError(t *testing.T) {
	cases := [][]int{
		{1, 1, 1},
		{2, 1},
		{7, 11, 13},
		{1, 0, 0},
		{999, 1, 333, 17},
		{5, 5, 5, 5, 5, 5, 5},
	}

	for _, counts := range cases {
		t.Run(fmt.Sprint(counts), func(t *testing.T) {
			var summary models.CategoryCounts
			total := 0
			for i, c := range counts {
				summary = append(summary, models.CategoryCount{Label: fmt.Sprintf("c%d", i), Count: c})
				total += c
			}

			vm := Transform(models.SummaryPayload{Summary: summary, Total: total}, TransformOptions{})
			tolerance := float64(len(counts))*0.05 + 1e-9
			assert.InDelta(t, 100, vm.PercentageSum(), tolerance)
		})
	}
}

func TestTransform_ZeroTotal(t *testing.T) {
	vm := Transform(payload(0,
		models.CategoryCount{Label: "positive", Count: 0},
		models.CategoryCount{Label: "neutral", Count: 4},
	), TransformOptions{})

	assert.True(t, vm.DegenerateTotal)
	require.Len(t, vm.Percentages, 2)
	for _, p := range vm.Percentages {
		assert.Zero(t, p.Value)
		assert.False(t, math.IsNaN(p.Value))
		assert.False(t, math.IsInf(p.Value, 0))
	}
	assert.Len(t, vm.ChartSeries, 2)
}

func TestTransform_ZeroTotalNoCategories(t *testing.T) {
	vm := Transform(models.SummaryPayload{}, TransformOptions{})

	assert.True(t, vm.DegenerateTotal)
	assert.Empty(t, vm.ChartSeries)
	assert.Empty(t, vm.Percentages)
	assert.Empty(t, vm.PreviewRows)
	assert.False(t, vm.HasChartData())
}

func TestTransform_ChartSeriesKeepsOrder(t *testing.T) {
	vm := Transform(payload(10,
		models.CategoryCount{Label: "negative", Count: 5},
		models.CategoryCount{Label: "mixed", Count: 1},
		models.CategoryCount{Label: "positive", Count: 4},
	), TransformOptions{Palette: DefaultPositionalPalette()})

	assert.Equal(t, []ChartPoint{
		{Label: "negative", Count: 5, Color: "#34d399"},
		{Label: "mixed", Count: 1, Color: "#60a5fa"},
		{Label: "positive", Count: 4, Color: "#f87171"},
	}, vm.ChartSeries)
	assert.True(t, vm.HasChartData())
}

func TestTransform_LabelPalette(t *testing.T) {
	vm := Transform(payload(10,
		models.CategoryCount{Label: "Negative", Count: 5},
		models.CategoryCount{Label: "sarcastic", Count: 1},
		models.CategoryCount{Label: "POSITIVE", Count: 4},
	), TransformOptions{Palette: DefaultLabelPalette()})

	colors := []string{}
	for _, point := range vm.ChartSeries {
		colors = append(colors, point.Color)
	}
	assert.Equal(t, []string{"#f87171", NeutralColor, "#34d399"}, colors)
}

func TestTransform_PreviewLimit(t *testing.T) {
	var preview []models.PreviewRecord
	for i := 0; i < 8; i++ {
		preview = append(preview, models.PreviewRecord{Text: fmt.Sprintf("tweet %d", i), Label: "neutral"})
	}
	p := models.SummaryPayload{Total: 8, Preview: preview}

	compact := Transform(p, TransformOptions{PreviewLimit: CompactPreviewLimit})
	require.Len(t, compact.PreviewRows, 5)
	assert.Equal(t, "tweet 0", compact.PreviewRows[0].Text)
	assert.Equal(t, "tweet 4", compact.PreviewRows[4].Text)

	full := Transform(p, TransformOptions{PreviewLimit: FullPreview})
	assert.Len(t, full.PreviewRows, 8)
}

func TestTransform_DoesNotMutateInput(t *testing.T) {
	p := payload(10, models.CategoryCount{Label: "positive", Count: 10})
	p.Preview = []models.PreviewRecord{{Text: "**bold** claim", Label: "positive"}}

	first := Transform(p, TransformOptions{})
	second := Transform(p, TransformOptions{})

	assert.Equal(t, first, second)
	assert.Equal(t, "**bold** claim", p.Preview[0].Text)
	assert.Equal(t, "**bold** claim", first.PreviewRows[0].Text)
	assert.Equal(t, "bold claim", first.PreviewRows[0].Display)
}
