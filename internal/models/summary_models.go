package models

import (
	"encoding/json"
	"errors"

	"github.com/tidwall/gjson"
)

// SummaryPayload is the aggregate the remote service computes for one data
// source.
type SummaryPayload struct {
	Summary CategoryCounts  `json:"summary"`
	Total   int             `json:"total"`
	Preview []PreviewRecord `json:"preview"`
}

type PreviewRecord struct {
	Text  string `json:"Tweet"`
	Label string `json:"Predicted Sentiment"`
}

type CategoryCount struct {
	Label string
	Count int
}

// CategoryCounts keeps the label order of the JSON object it was decoded from.
type CategoryCounts []CategoryCount

var errSummaryNotObject = errors.New("summary is not a JSON object")

func (c *CategoryCounts) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return errors.New("invalid summary JSON")
	}

	result := gjson.ParseBytes(data)
	if result.Type == gjson.Null {
		*c = nil
		return nil
	}
	if !result.IsObject() {
		return errSummaryNotObject
	}

	counts := make(CategoryCounts, 0, 3)
	result.ForEach(func(key, value gjson.Result) bool {
		count := int(value.Int())
		if count < 0 {
			count = 0
		}
		counts = append(counts, CategoryCount{Label: key.String(), Count: count})
		return true
	})

	*c = counts
	return nil
}

func (c CategoryCounts) MarshalJSON() ([]byte, error) {
	if c == nil {
		return []byte("null"), nil
	}

	buf := []byte{'{'}
	for i, entry := range c {
		if i > 0 {
			buf = append(buf, ',')
		}
		label, err := json.Marshal(entry.Label)
		if err != nil {
			return nil, err
		}
		buf = append(buf, label...)
		buf = append(buf, ':')
		count, err := json.Marshal(entry.Count)
		if err != nil {
			return nil, err
		}
		buf = append(buf, count...)
	}
	return append(buf, '}'), nil
}

func (c CategoryCounts) Sum() int {
	sum := 0
	for _, entry := range c {
		sum += entry.Count
	}
	return sum
}
