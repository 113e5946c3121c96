// Package value implements the schemaless tagged-value union used for node,
// edge, and task properties throughout the engine.
package value

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Value is an open payload value: string, number, bool, list, or map.
// It mirrors the dynamic dictionaries the engine's properties are built
// from, while keeping a single well-known Go type flowing through the
// graph, planner, and executor packages.
type Value struct {
	s    string
	n    float64
	b    bool
	list []Value
	m    map[string]Value
	kind kind
}

type kind int

const (
	kindNull kind = iota
	kindString
	kindNumber
	kindBool
	kindList
	kindMap
)

// Null is the zero Value.
var Null = Value{kind: kindNull}

func String(s string) Value { return Value{kind: kindString, s: s} }
func Number(n float64) Value { return Value{kind: kindNumber, n: n} }
func Bool(b bool) Value     { return Value{kind: kindBool, b: b} }
func List(items ...Value) Value {
	return Value{kind: kindList, list: items}
}
func Map(m map[string]Value) Value {
	if m == nil {
		m = map[string]Value{}
	}
	return Value{kind: kindMap, m: m}
}

// From converts a native Go value (string, int/float variants, bool,
// []any, map[string]any, or Value) into a Value. Unsupported types are
// stringified via fmt.Sprintf so no property write can panic.
func From(v any) Value {
	switch t := v.(type) {
	case Value:
		return t
	case nil:
		return Null
	case string:
		return String(t)
	case bool:
		return Bool(t)
	case int:
		return Number(float64(t))
	case int32:
		return Number(float64(t))
	case int64:
		return Number(float64(t))
	case float32:
		return Number(float64(t))
	case float64:
		return Number(t)
	case []any:
		items := make([]Value, len(t))
		for i, e := range t {
			items[i] = From(e)
		}
		return List(items...)
	case []Value:
		return List(t...)
	case map[string]any:
		m := make(map[string]Value, len(t))
		for k, e := range t {
			m[k] = From(e)
		}
		return Map(m)
	case map[string]Value:
		return Map(t)
	default:
		return String(fmt.Sprintf("%v", t))
	}
}

// IsNull reports whether the value is the zero/null value.
func (v Value) IsNull() bool { return v.kind == kindNull }

// String returns the string representation of the value. Non-string
// values are rendered with their natural textual form.
func (v Value) String() string {
	switch v.kind {
	case kindString:
		return v.s
	case kindNumber:
		return formatNumber(v.n)
	case kindBool:
		if v.b {
			return "true"
		}
		return "false"
	case kindList:
		parts := make([]string, len(v.list))
		for i, e := range v.list {
			parts[i] = e.String()
		}
		return fmt.Sprintf("%v", parts)
	case kindMap:
		keys := make([]string, 0, len(v.m))
		for k := range v.m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return fmt.Sprintf("%v", keys)
	default:
		return ""
	}
}

func formatNumber(n float64) string {
	if n == float64(int64(n)) {
		return fmt.Sprintf("%d", int64(n))
	}
	return fmt.Sprintf("%g", n)
}

// Number returns the numeric value and whether the value was numeric.
func (v Value) Number() (float64, bool) {
	if v.kind != kindNumber {
		return 0, false
	}
	return v.n, true
}

// Bool returns the boolean value and whether the value was boolean.
func (v Value) Bool() (bool, bool) {
	if v.kind != kindBool {
		return false, false
	}
	return v.b, true
}

// List returns the list elements and whether the value was a list.
func (v Value) List() ([]Value, bool) {
	if v.kind != kindList {
		return nil, false
	}
	return v.list, true
}

// Map returns the map entries and whether the value was a map.
func (v Value) Map() (map[string]Value, bool) {
	if v.kind != kindMap {
		return nil, false
	}
	return v.m, true
}

// Native converts the Value back into a plain Go value suitable for JSON
// marshalling or passing to expr.Env.
func (v Value) Native() any {
	switch v.kind {
	case kindString:
		return v.s
	case kindNumber:
		return v.n
	case kindBool:
		return v.b
	case kindList:
		out := make([]any, len(v.list))
		for i, e := range v.list {
			out[i] = e.Native()
		}
		return out
	case kindMap:
		out := make(map[string]any, len(v.m))
		for k, e := range v.m {
			out[k] = e.Native()
		}
		return out
	default:
		return nil
	}
}

// MarshalJSON encodes the value in its native JSON form.
func (v Value) MarshalJSON() ([]byte, error) { return json.Marshal(v.Native()) }

// UnmarshalJSON decodes a native JSON value back into a Value.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*v = From(raw)
	return nil
}

// Props is the open property bag attached to nodes, edges, and tasks.
type Props map[string]Value

// Clone returns a deep-enough copy suitable for mutation without aliasing
// the original map.
func (p Props) Clone() Props {
	out := make(Props, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// NativeMap converts Props to a plain map[string]any.
func (p Props) NativeMap() map[string]any {
	out := make(map[string]any, len(p))
	for k, v := range p {
		out[k] = v.Native()
	}
	return out
}

// FromNativeMap builds Props from a plain map[string]any.
func FromNativeMap(m map[string]any) Props {
	out := make(Props, len(m))
	for k, v := range m {
		out[k] = From(v)
	}
	return out
}
