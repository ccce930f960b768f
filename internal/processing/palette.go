package processing

import "strings"

const NeutralColor = "#9ca3af"

// DefaultPalette is assigned by position: green, blue, red.
var DefaultPalette = []string{"#34d399", "#60a5fa", "#f87171"}

var DefaultLabelColors = map[string]string{
	"positive": "#34d399",
	"neutral":  "#60a5fa",
	"negative": "#f87171",
}

// AnalyzerLabelColors only tells the two polar labels apart. Everything else
// renders as NeutralColor.
var AnalyzerLabelColors = map[string]string{
	"positive": "#34d399",
	"negative": "#f87171",
}

// ColorPolicy picks a colour for the series entry at index with the given
// label. Implementations must be stable for the same inputs.
type ColorPolicy interface {
	ColorFor(index int, label string) string
}

type PositionalPalette struct {
	Colors []string
}

func (p PositionalPalette) ColorFor(index int, _ string) string {
	if len(p.Colors) == 0 || index < 0 {
		return NeutralColor
	}
	return p.Colors[index%len(p.Colors)]
}

// LabelPalette looks the label up case-insensitively and falls back to
// Fallback (or NeutralColor) for anything unknown.
type LabelPalette struct {
	Colors   map[string]string
	Fallback string
}

func NewLabelPalette(colors map[string]string, fallback string) LabelPalette {
	normalized := make(map[string]string, len(colors))
	for label, color := range colors {
		normalized[strings.ToLower(label)] = color
	}
	return LabelPalette{Colors: normalized, Fallback: fallback}
}

func (p LabelPalette) ColorFor(_ int, label string) string {
	if color, ok := p.Colors[strings.ToLower(strings.TrimSpace(label))]; ok {
		return color
	}
	if p.Fallback != "" {
		return p.Fallback
	}
	return NeutralColor
}

func DefaultPositionalPalette() PositionalPalette {
	return PositionalPalette{Colors: DefaultPalette}
}

func DefaultLabelPalette() LabelPalette {
	return NewLabelPalette(DefaultLabelColors, NeutralColor)
}

func AnalyzerPalette() LabelPalette {
	return NewLabelPalette(AnalyzerLabelColors, NeutralColor)
}
