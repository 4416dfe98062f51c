package expense

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/creditx/creditx-server/internal/domain/llm"
)

// ErrNotJSON is returned when the model answer holds no JSON object.
var ErrNotJSON = errors.New("expense analysis is not a JSON object")

// Percent is a share of spending. Models write it as 35, 35.5 or "35%".
type Percent float64

// UnmarshalJSON accepts numbers, numeric strings with an optional percent sign and null.
func (p *Percent) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*p = 0
		return nil
	}
	var s string
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
	} else {
		s = string(b)
	}
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if s == "" {
		*p = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("percent %q: %w", s, err)
	}
	*p = Percent(v)
	return nil
}

// Notes is a list of model remarks. Object items are kept as compact JSON text.
type Notes []string

// UnmarshalJSON accepts an array of strings or objects, a single string, or null.
func (n *Notes) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*n = nil
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*n = Notes{s}
		return nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(b, &items); err != nil {
		return err
	}
	out := make(Notes, 0, len(items))
	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			out = append(out, s)
			continue
		}
		var buf bytes.Buffer
		if err := json.Compact(&buf, item); err != nil {
			return err
		}
		out = append(out, buf.String())
	}
	*n = out
	return nil
}

// DatePattern is the share of spending per period label.
type DatePattern struct {
	Week map[string]Percent `json:"week"`
	Day  map[string]Percent `json:"day"`
}

// Breakdown is the model's share of spending per amount range.
type Breakdown struct {
	Small       Percent     `json:"small"`
	Medium      Percent     `json:"medium"`
	Large       Percent     `json:"large"`
	VeryLarge   Percent     `json:"very_large"`
	DatePattern DatePattern `json:"date_pattern"`
}

// ByRange returns the breakdown keyed by range.
func (b Breakdown) ByRange() map[Range]float64 {
	return map[Range]float64{
		RangeSmall:     float64(b.Small),
		RangeMedium:    float64(b.Medium),
		RangeLarge:     float64(b.Large),
		RangeVeryLarge: float64(b.VeryLarge),
	}
}

// Insights is the model's reading of a statement.
type Insights struct {
	Summary             string    `json:"summary"`
	SpendingBreakdown   Breakdown `json:"spending_breakdown"`
	UnusualTransactions Notes     `json:"unusual_transactions"`
	Suggestions         Notes     `json:"suggestions"`
}

// ParseInsights decodes a model answer. Prose and code fences around the object are tolerated.
func ParseInsights(text string) (*Insights, error) {
	body, ok := llm.ExtractJSONObject(text)
	if !ok {
		return nil, ErrNotJSON
	}
	var out Insights
	if err := json.Unmarshal([]byte(body), &out); err != nil {
		return nil, fmt.Errorf("decode expense analysis: %w", err)
	}
	return &out, nil
}
