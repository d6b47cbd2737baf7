package mealcraft

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Number is a numeric field that may be missing or malformed in the agent
// payload. Numeric strings are accepted; anything else leaves it invalid.
type Number struct {
	Value float64
	Valid bool
}

func NumberOf(v float64) Number { return Number{Value: v, Valid: true} }

// Float returns the value, or zero when missing.
func (n Number) Float() float64 {
	if !n.Valid {
		return 0
	}
	return n.Value
}

// Int rounds the value to the nearest integer, or zero when missing.
// Values beyond the int range saturate at math.MaxInt or math.MinInt.
func (n Number) Int() int {
	f := math.Round(n.Float())
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt:
		return math.MaxInt
	case f <= math.MinInt:
		return math.MinInt
	}
	return int(f)
}

func (n Number) String() string {
	return strconv.FormatFloat(n.Float(), 'f', -1, 64)
}

func (n *Number) UnmarshalJSON(data []byte) error {
	*n = Number{}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil
	}
	switch x := v.(type) {
	case float64:
		*n = NumberOf(x)
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(x), 64); err == nil {
			*n = NumberOf(f)
		}
	}
	return nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// Text is a string field that may be missing. Numbers and booleans keep their
// literal text.
type Text struct {
	Value string
	Valid bool
}

func TextOf(s string) Text { return Text{Value: s, Valid: true} }

// Or returns the text, or def when missing.
func (t Text) Or(def string) string {
	if !t.Valid {
		return def
	}
	return t.Value
}

func (t Text) String() string { return t.Value }

func (t *Text) UnmarshalJSON(data []byte) error {
	*t = Text{}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil
	}
	switch x := v.(type) {
	case string:
		*t = TextOf(x)
	case float64, bool:
		*t = TextOf(string(bytes.TrimSpace(data)))
	}
	return nil
}

func (t Text) MarshalJSON() ([]byte, error) {
	if !t.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(t.Value)
}

// List is a sequence field. A value that is not a JSON array leaves it
// invalid; elements that fail to decode become the zero value.
type List[T any] struct {
	Items []T
	Valid bool
}

func ListOf[T any](items ...T) List[T] {
	if items == nil {
		items = []T{}
	}
	return List[T]{Items: items, Valid: true}
}

func (l List[T]) Len() int { return len(l.Items) }

func (l *List[T]) UnmarshalJSON(data []byte) error {
	*l = List[T]{}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil || raw == nil {
		return nil
	}
	items := make([]T, 0, len(raw))
	for _, r := range raw {
		var v T
		if err := json.Unmarshal(r, &v); err != nil {
			var zero T
			v = zero
		}
		items = append(items, v)
	}
	*l = List[T]{Items: items, Valid: true}
	return nil
}

func (l List[T]) MarshalJSON() ([]byte, error) {
	if !l.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(l.Items)
}

// Strings returns the text of every element, substituting def for missing ones.
func Strings(l List[Text], def string) []string {
	out := make([]string, 0, len(l.Items))
	for _, t := range l.Items {
		out = append(out, t.Or(def))
	}
	return out
}

// decodeObject decodes data into v only when data is a JSON object. Anything
// else leaves v untouched.
func decodeObject(data []byte, v any) error {
	if !IsObject(data) {
		return nil
	}
	return json.Unmarshal(data, v)
}

// IsObject reports whether data holds a JSON object.
func IsObject(data []byte) bool {
	data = bytes.TrimSpace(data)
	return len(data) > 0 && data[0] == '{'
}
