package interval

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/Sumatoshi-tech/intervaltree/pkg/numeric"
)

// Endpoint is the textual form of an interval bound in documents. The empty
// Endpoint is unbounded.
type Endpoint string

var jsonNull = []byte("null")

// MarshalJSON writes finite numbers as JSON numbers, unbounded ends as null
// and anything else as a string.
func (e Endpoint) MarshalJSON() ([]byte, error) {
	if e == "" {
		return jsonNull, nil
	}

	var number json.Number
	if err := json.Unmarshal([]byte(e), &number); err == nil {
		return []byte(e), nil
	}

	return json.Marshal(string(e))
}

// UnmarshalJSON accepts numbers, strings and null.
func (e *Endpoint) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	if bytes.Equal(data, jsonNull) {
		*e = ""

		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return fmt.Errorf("endpoint: %w", err)
		}

		*e = Endpoint(text)

		return nil
	}

	var number json.Number
	if err := json.Unmarshal(data, &number); err != nil {
		return fmt.Errorf("endpoint: %w", err)
	}

	*e = Endpoint(number.String())

	return nil
}

// Record is the document form of an interval used by the CLI and the JSON
// and YAML loaders.
type Record struct {
	Kind      string   `json:"kind,omitempty"      yaml:"kind,omitempty"`
	Start     Endpoint `json:"start"               yaml:"start"`
	End       Endpoint `json:"end"                 yaml:"end"`
	OpenStart bool     `json:"openStart,omitempty" yaml:"openStart,omitempty"`
	OpenEnd   bool     `json:"openEnd,omitempty"   yaml:"openEnd,omitempty"`
	Label     string   `json:"label,omitempty"     yaml:"label,omitempty"`
}

// ToRecord converts iv into its document form.
func ToRecord(iv Interval) Record {
	return Record{
		Kind:      iv.kind.String(),
		Start:     endpointOf(iv.start),
		End:       endpointOf(iv.end),
		OpenStart: iv.openStart,
		OpenEnd:   iv.openEnd,
		Label:     iv.label,
	}
}

func endpointOf(v numeric.Value) Endpoint {
	if v.IsNull() {
		return ""
	}

	return Endpoint(v.String())
}

// FromRecord builds an interval from its document form. Records without a
// kind are read as fallback.
func FromRecord(r Record, fallback numeric.Kind) (Interval, error) {
	kind := fallback

	if r.Kind != "" {
		parsed, err := numeric.ParseKind(r.Kind)
		if err != nil {
			return Interval{}, err
		}

		kind = parsed
	}

	start, err := numeric.Parse(kind, string(r.Start))
	if err != nil {
		return Interval{}, fmt.Errorf("start: %w", err)
	}

	end, err := numeric.Parse(kind, string(r.End))
	if err != nil {
		return Interval{}, fmt.Errorf("end: %w", err)
	}

	return New(kind, start, end, WithOpen(r.OpenStart, r.OpenEnd), WithLabel(r.Label))
}
