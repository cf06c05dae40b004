package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Answer is either a single value (single-choice, boolean, text) or an ordered
// collection of values (multiple-choice). On the wire it is a JSON string or a
// JSON array of strings.
type Answer struct {
	value  string
	values []string
	multi  bool
}

// Single builds a single-valued answer.
func Single(value string) Answer {
	return Answer{value: value}
}

// Multi builds a multi-valued answer. The values slice is copied.
func Multi(values ...string) Answer {
	cp := make([]string, len(values))
	copy(cp, values)
	return Answer{values: cp, multi: true}
}

// IsMulti reports whether the answer is a collection.
func (a Answer) IsMulti() bool { return a.multi }

// Value returns the single value; empty for multi-valued answers.
func (a Answer) Value() string { return a.value }

// Values normalizes the answer to a slice: a single value becomes a one-element slice.
func (a Answer) Values() []string {
	if a.multi {
		cp := make([]string, len(a.values))
		copy(cp, a.values)
		return cp
	}
	return []string{a.value}
}

// IsEmpty reports an empty string or an empty collection.
func (a Answer) IsEmpty() bool {
	if a.multi {
		return len(a.values) == 0
	}
	return a.value == ""
}

// Equal is exact value equality: both single and equal strings, or both
// collections with the same values in the same order.
func (a Answer) Equal(b Answer) bool {
	if a.multi != b.multi {
		return false
	}
	if !a.multi {
		return a.value == b.value
	}
	if len(a.values) != len(b.values) {
		return false
	}
	for i := range a.values {
		if a.values[i] != b.values[i] {
			return false
		}
	}
	return true
}

func (a Answer) String() string {
	if a.multi {
		return fmt.Sprintf("%q", a.values)
	}
	return a.value
}

func (a Answer) MarshalJSON() ([]byte, error) {
	if a.multi {
		if a.values == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(a.values)
	}
	return json.Marshal(a.value)
}

func (a *Answer) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var values []string
		if err := json.Unmarshal(data, &values); err != nil {
			return fmt.Errorf("decode answer: %w", err)
		}
		*a = Multi(values...)
		return nil
	}
	if bytes.Equal(data, []byte("null")) {
		*a = Answer{}
		return nil
	}
	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return fmt.Errorf("decode answer: %w", err)
	}
	*a = Single(value)
	return nil
}

// UnmarshalYAML accepts a scalar or a sequence, mirroring the JSON form.
func (a *Answer) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var values []string
	if err := unmarshal(&values); err == nil {
		*a = Multi(values...)
		return nil
	}
	var value string
	if err := unmarshal(&value); err != nil {
		return fmt.Errorf("decode answer: %w", err)
	}
	*a = Single(value)
	return nil
}

// MarshalYAML mirrors MarshalJSON.
func (a Answer) MarshalYAML() (interface{}, error) {
	if a.multi {
		return a.Values(), nil
	}
	return a.value, nil
}
