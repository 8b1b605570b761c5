package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// MetricState distinguishes a usable number from the two kinds of absence
// that must never be confused with zero.
type MetricState uint8

const (
	// MetricUnset means the value was never computed, e.g. the year-over-year
	// fields of a country's earliest year.
	MetricUnset MetricState = iota
	// MetricValid holds a finite number.
	MetricValid
	// MetricInvalid marks a malformed input or a non-finite result such as a
	// division by zero.
	MetricInvalid
)

func (s MetricState) String() string {
	switch s {
	case MetricValid:
		return "valid"
	case MetricInvalid:
		return "invalid"
	default:
		return "unset"
	}
}

// Metric is a numeric statistic with an explicit state. Only valid metrics
// take part in arithmetic and in extent computation.
type Metric struct {
	Value float64
	State MetricState
}

// Valid wraps a finite number. Non-finite input yields an invalid metric.
func Valid(v float64) Metric {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Invalid()
	}
	return Metric{Value: v, State: MetricValid}
}

// Invalid returns the "not a number" marker.
func Invalid() Metric {
	return Metric{State: MetricInvalid}
}

// Unset returns the "not computed" marker.
func Unset() Metric {
	return Metric{}
}

// Float returns the value and whether it is usable.
func (m Metric) Float() (float64, bool) {
	return m.Value, m.State == MetricValid
}

// IsValid reports whether the metric holds a finite number.
func (m Metric) IsValid() bool { return m.State == MetricValid }

// IsSet reports whether the metric was computed at all, valid or not.
func (m Metric) IsSet() bool { return m.State != MetricUnset }

// absentMetric is the wire form of a metric without a usable value. The
// state keeps "not computed" apart from "not a number".
type absentMetric struct {
	Value *float64 `json:"value" yaml:"value"`
	State string   `json:"state" yaml:"state"`
}

func (m Metric) absent() absentMetric {
	return absentMetric{State: m.State.String()}
}

// parseMetricState is the inverse of MetricState.String for the absent states.
func parseMetricState(s string) (MetricState, error) {
	switch s {
	case "unset", "":
		return MetricUnset, nil
	case "invalid":
		return MetricInvalid, nil
	default:
		return 0, fmt.Errorf("unknown metric state %q", s)
	}
}

// MarshalJSON encodes valid metrics as plain numbers and the other states as
// {"value":null,"state":"invalid"|"unset"}.
func (m Metric) MarshalJSON() ([]byte, error) {
	if m.State != MetricValid {
		return json.Marshal(m.absent())
	}
	return json.Marshal(m.Value)
}

// MarshalYAML mirrors MarshalJSON.
func (m Metric) MarshalYAML() (any, error) {
	if m.State != MetricValid {
		return m.absent(), nil
	}
	return m.Value, nil
}

// UnmarshalJSON accepts a number (valid), the absent object form, or a bare
// null (unset).
func (m *Metric) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*m = Unset()
		return nil
	}
	if len(data) > 0 && data[0] == '{' {
		var a absentMetric
		if err := json.Unmarshal(data, &a); err != nil {
			return err
		}
		return m.fromAbsent(a)
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*m = Valid(v)
	return nil
}

// UnmarshalYAML mirrors UnmarshalJSON.
func (m *Metric) UnmarshalYAML(node *yaml.Node) error {
	switch {
	case node.Kind == yaml.MappingNode:
		var a absentMetric
		if err := node.Decode(&a); err != nil {
			return err
		}
		return m.fromAbsent(a)
	case node.Tag == "!!null":
		*m = Unset()
		return nil
	}
	var v float64
	if err := node.Decode(&v); err != nil {
		return err
	}
	*m = Valid(v)
	return nil
}

func (m *Metric) fromAbsent(a absentMetric) error {
	if a.Value != nil {
		*m = Valid(*a.Value)
		return nil
	}
	state, err := parseMetricState(a.State)
	if err != nil {
		return err
	}
	*m = Metric{State: state}
	return nil
}

// ParseMetric coerces a raw cell into a Metric. Empty or malformed cells
// become invalid rather than zero, since zero is a legitimate statistic.
func ParseMetric(s string) Metric {
	s = strings.TrimSpace(s)
	if s == "" {
		return Invalid()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Invalid()
	}
	return Valid(v)
}

// Div returns a/b, invalid when either operand is unusable or b is zero.
func Div(a, b Metric) Metric {
	av, aok := a.Float()
	bv, bok := b.Float()
	if !aok || !bok || bv == 0 {
		return Invalid()
	}
	return Valid(av / bv)
}

// Sub returns a-b, invalid when either operand is unusable.
func Sub(a, b Metric) Metric {
	av, aok := a.Float()
	bv, bok := b.Float()
	if !aok || !bok {
		return Invalid()
	}
	return Valid(av - bv)
}

// PercentChange returns (cur-prev)/prev*100, invalid when prev is zero or
// either operand is unusable.
func PercentChange(prev, cur Metric) Metric {
	pv, pok := prev.Float()
	cv, cok := cur.Float()
	if !pok || !cok || pv == 0 {
		return Invalid()
	}
	return Valid((cv - pv) / pv * 100)
}
