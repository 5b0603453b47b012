package prompt

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// ValueKind tags the representation held by a Value.
type ValueKind int

const (
	KindString ValueKind = iota
	KindNumber
	KindBool
	KindJSON
)

// Value is a template variable: a string, number, boolean, or pre-serialized JSON text.
type Value struct {
	kind ValueKind
	text string
	flag bool
}

// Variables maps placeholder names to their values.
type Variables map[string]Value

// String returns a string value.
func String(s string) Value { return Value{kind: KindString, text: s} }

// Number returns a numeric value.
func Number(n float64) Value {
	return Value{kind: KindNumber, text: strconv.FormatFloat(n, 'f', -1, 64)}
}

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, flag: b} }

// JSON returns a value holding already-serialized JSON (objects, arrays, null).
func JSON(raw []byte) Value { return Value{kind: KindJSON, text: string(raw)} }

// Kind reports which representation the value holds.
func (v Value) Kind() ValueKind { return v.kind }

// Render returns the value as pretty-printed JSON with a two-space indent.
func (v Value) Render() string {
	switch v.kind {
	case KindNumber:
		return v.text
	case KindBool:
		return strconv.FormatBool(v.flag)
	case KindJSON:
		var buf bytes.Buffer
		if err := json.Indent(&buf, []byte(strings.TrimSpace(v.text)), "", "  "); err != nil {
			return v.text
		}
		return buf.String()
	default:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(v.text); err != nil {
			return strconv.Quote(v.text)
		}
		return strings.TrimSuffix(buf.String(), "\n")
	}
}

// MarshalJSON encodes the value as the JSON it stands for.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNumber:
		return []byte(v.text), nil
	case KindBool:
		return json.Marshal(v.flag)
	case KindJSON:
		if !json.Valid([]byte(v.text)) {
			return json.Marshal(v.text)
		}
		return []byte(v.text), nil
	default:
		return json.Marshal(v.text)
	}
}

// UnmarshalJSON accepts any JSON value. Strings, numbers and booleans keep
// their type; everything else is held as raw JSON text.
func (v *Value) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	var decoded any
	if err := dec.Decode(&decoded); err != nil {
		return err
	}
	switch typed := decoded.(type) {
	case string:
		*v = String(typed)
	case json.Number:
		f, err := strconv.ParseFloat(typed.String(), 64)
		if err != nil {
			*v = Value{kind: KindNumber, text: typed.String()}
			return nil
		}
		*v = Number(f)
	case bool:
		*v = Bool(typed)
	default:
		*v = JSON(append([]byte(nil), trimmed...))
	}
	return nil
}

// ParseValue interprets s as JSON when it is valid JSON and as a plain string otherwise.
func ParseValue(s string) Value {
	var v Value
	if json.Valid([]byte(s)) {
		if err := v.UnmarshalJSON([]byte(s)); err == nil {
			return v
		}
	}
	return String(s)
}
