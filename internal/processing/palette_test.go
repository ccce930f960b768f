package processing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPositionalPalette_Wraps(t *testing.T) {
	p := DefaultPositionalPalette()

	assert.Equal(t, "#34d399", p.ColorFor(0, "anything"))
	assert.Equal(t, "#f87171", p.ColorFor(2, "anything"))
	assert.Equal(t, "#34d399", p.ColorFor(3, "anything"))
	assert.Equal(t, NeutralColor, PositionalPalette{}.ColorFor(0, "x"))
}

func TestLabelPalette_CaseInsensitive(t *testing.T) {
	p := DefaultLabelPalette()

	assert.Equal(t, "#34d399", p.ColorFor(5, "Positive"))
	assert.Equal(t, "#60a5fa", p.ColorFor(0, " neutral "))
	assert.Equal(t, "#f87171", p.ColorFor(0, "NEGATIVE"))
	assert.Equal(t, NeutralColor, p.ColorFor(0, "unknown"))

	custom := NewLabelPalette(map[string]string{"Hope": "#fff"}, "#000")
	assert.Equal(t, "#fff", custom.ColorFor(0, "hope"))
	assert.Equal(t, "#000", custom.ColorFor(0, "fear"))
}

func TestAnalyzerPalette_OnlyPolarLabelsColored(t *testing.T) {
	p := AnalyzerPalette()

	assert.Equal(t, "#34d399", p.ColorFor(0, "Positive"))
	assert.Equal(t, "#f87171", p.ColorFor(0, "Negative"))
	assert.Equal(t, NeutralColor, p.ColorFor(0, "Neutral"))
	assert.Equal(t, NeutralColor, p.ColorFor(0, "mixed"))
}

func TestPlainText(t *testing.T) {
	cases := map[string]string{
		"":                                        "",
		"plain tweet":                             "plain tweet",
		"**bold** and _em_":                       "bold and em",
		"see [the speech](https://example.com/x)": "see the speech",
		"link https://t.co/abc here":              "link here",
		"a &amp; b":                               "a & b",
	}

	for in, want := range cases {
		assert.Equal(t, want, PlainText(in), "input %q", in)
	}
}
