package dashboard

import (
	"encoding/json"

	"github.com/spacesedan/ballotboard/internal/processing"
)

type ViewState int

const (
	StateLoading ViewState = iota
	StateReady
	StateError
)

func (s ViewState) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

func (s ViewState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// SummaryView is a snapshot of one dashboard. Model is only set when State
// is StateReady.
type SummaryView struct {
	State      ViewState             `json:"state"`
	Source     string                `json:"source"`
	Generation uint64                `json:"generation"`
	Model      *processing.ViewModel `json:"model,omitempty"`
	Message    string                `json:"message,omitempty"`
	Err        error                 `json:"-"`
}

// InsufficientData reports a ready view whose total was zero.
func (v SummaryView) InsufficientData() bool {
	return v.State == StateReady && v.Model != nil && v.Model.DegenerateTotal
}

type CardView struct {
	Side  string                `json:"side"`
	Key   string                `json:"key"`
	Title string                `json:"title"`
	Model *processing.ViewModel `json:"model"`
}

// ComparisonView holds both cards or neither.
type ComparisonView struct {
	State      ViewState `json:"state"`
	Generation uint64    `json:"generation"`
	Left       *CardView `json:"left,omitempty"`
	Right      *CardView `json:"right,omitempty"`
	Message    string    `json:"message,omitempty"`
	Err        error     `json:"-"`
}
