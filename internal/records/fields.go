// Package records turns loosely-typed documents from the hosted store into
// display-ready values: dates, addresses, status colors, time windows and
// cross-collection joins. Every field is treated as optional.
package records

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Lookup returns the value at a dotted path such as "timeWindow.start".
func Lookup(data map[string]any, path string) (any, bool) {
	if data == nil {
		return nil, false
	}
	parts := strings.Split(path, ".")
	var cur any = data
	for _, p := range parts {
		m, ok := asMap(cur)
		if !ok {
			return nil, false
		}
		v, ok := m[p]
		if !ok || v == nil {
			return nil, false
		}
		cur = v
	}
	return cur, true
}

// FirstValue returns the first present, non-empty value among keys.
func FirstValue(data map[string]any, keys ...string) (any, bool) {
	for _, k := range keys {
		v, ok := Lookup(data, k)
		if !ok {
			continue
		}
		if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
			continue
		}
		return v, true
	}
	return nil, false
}

// String returns the first non-empty scalar among keys rendered as a string.
func String(data map[string]any, keys ...string) string {
	for _, k := range keys {
		v, ok := Lookup(data, k)
		if !ok {
			continue
		}
		if s := scalarString(v); s != "" {
			return s
		}
	}
	return ""
}

// Bool reports whether key holds a true boolean (or the string "true").
func Bool(data map[string]any, key string) bool {
	v, ok := Lookup(data, key)
	if !ok {
		return false
	}
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return strings.EqualFold(strings.TrimSpace(b), "true")
	}
	return false
}

// List returns v as a slice when it is any kind of JSON-ish array.
func List(v any) []any {
	switch l := v.(type) {
	case []any:
		return l
	case []string:
		out := make([]any, len(l))
		for i, s := range l {
			out[i] = s
		}
		return out
	case []map[string]any:
		out := make([]any, len(l))
		for i, m := range l {
			out[i] = m
		}
		return out
	}
	return nil
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[string]string:
		out := make(map[string]any, len(m))
		for k, s := range m {
			out[k] = s
		}
		return out, true
	}
	return nil, false
}

func scalarString(v any) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case json.Number:
		return s.String()
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool, map[string]any, []any:
		return ""
	case fmt.Stringer:
		return s.String()
	}
	return ""
}
