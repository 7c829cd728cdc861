// Package normalize extracts a definite list from backend responses whose
// enclosing key is not fixed ({films: [...]}, {movies: [...]}, {data: [...]},
// a bare array, or any first list-valued field).
package normalize

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/goccy/go-json"
)

// ErrUnrecognizedShape is returned by Strict when the payload carries neither
// an expected collection key nor a bare list.
var ErrUnrecognizedShape = errors.New("normalize: unrecognized response shape")

// Policy selects how Decode treats payloads that only match by guessing
type Policy int

const (
	// PolicyLenient accepts every rule, including positional guessing
	PolicyLenient Policy = iota
	// PolicyStrict accepts only an expected key or a bare list
	PolicyStrict
)

// Rule identifies which branch of the algorithm produced the list
type Rule int

const (
	RuleNone Rule = iota
	RuleKnownKey
	RuleBareList
	RuleDataKey
	RuleFirstList
)

type field struct {
	key   string
	value json.RawMessage
}

// List returns the first recognizable list in payload, checked in order:
// an expected key, the payload itself, a "data" key, then the first
// list-valued property in key order. It never fails; unusable payloads
// give an empty list.
func List(payload []byte, keys ...string) []json.RawMessage {
	items, _ := match(payload, keys)
	return items
}

// Strict is List restricted to an expected key or a bare list
func Strict(payload []byte, keys ...string) ([]json.RawMessage, error) {
	items, rule := match(payload, keys)
	if rule != RuleKnownKey && rule != RuleBareList {
		return nil, fmt.Errorf("%w: expected one of %v", ErrUnrecognizedShape, keys)
	}
	return items, nil
}

// Match is List, also reporting the rule that matched
func Match(payload []byte, keys ...string) ([]json.RawMessage, Rule) {
	return match(payload, keys)
}

// Decode normalizes payload and decodes each element into T.
// Under PolicyLenient elements that fail to decode are skipped.
func Decode[T any](payload []byte, policy Policy, keys ...string) ([]T, error) {
	var raw []json.RawMessage
	if policy == PolicyStrict {
		var err error
		if raw, err = Strict(payload, keys...); err != nil {
			return nil, err
		}
	} else {
		raw = List(payload, keys...)
	}

	out := make([]T, 0, len(raw))
	for i, item := range raw {
		var v T
		if err := json.Unmarshal(item, &v); err != nil {
			if policy == PolicyStrict {
				return nil, fmt.Errorf("normalize: element %d: %w", i, err)
			}
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

func match(payload []byte, keys []string) ([]json.RawMessage, Rule) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 {
		return []json.RawMessage{}, RuleNone
	}

	switch trimmed[0] {
	case '[':
		if items, ok := asList(trimmed); ok {
			return items, RuleBareList
		}
		return []json.RawMessage{}, RuleNone
	case '{':
	default:
		return []json.RawMessage{}, RuleNone
	}

	fields, err := objectFields(trimmed)
	if err != nil {
		return []json.RawMessage{}, RuleNone
	}

	for _, key := range keys {
		if items, ok := lookupList(fields, key); ok {
			return items, RuleKnownKey
		}
	}
	if items, ok := lookupList(fields, "data"); ok {
		return items, RuleDataKey
	}
	for _, f := range fields {
		if items, ok := asList(f.value); ok {
			return items, RuleFirstList
		}
	}
	return []json.RawMessage{}, RuleNone
}

// lookupList finds the first field named key whose value is a list
func lookupList(fields []field, key string) ([]json.RawMessage, bool) {
	for _, f := range fields {
		if f.key != key {
			continue
		}
		if items, ok := asList(f.value); ok {
			return items, true
		}
	}
	return nil, false
}

func asList(value json.RawMessage) ([]json.RawMessage, bool) {
	v := bytes.TrimSpace(value)
	if len(v) == 0 || v[0] != '[' {
		return nil, false
	}
	var items []json.RawMessage
	if err := json.Unmarshal(v, &items); err != nil {
		return nil, false
	}
	if items == nil {
		items = []json.RawMessage{}
	}
	return items, true
}

// objectFields reads the top-level members of a JSON object in source order.
func objectFields(obj []byte) ([]field, error) {
	dec := json.NewDecoder(bytes.NewReader(obj))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, ErrUnrecognizedShape
	}

	var fields []field
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, ErrUnrecognizedShape
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}
		fields = append(fields, field{key: key, value: value})
	}
	if _, err := dec.Token(); err != nil && err != io.EOF {
		return nil, err
	}
	return fields, nil
}
