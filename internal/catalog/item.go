package catalog

import (
	"encoding/json"
	"strconv"
)

// Fields is a loosely-typed JSON object as decoded from the upstream API.
// Numbers are kept as json.Number so their textual form survives untouched.
type Fields map[string]any

// RawItem is one catalog entry exactly as the upstream returned it.
type RawItem = Fields

// Lookup reports the value stored under key. A JSON null counts as absent.
func (f Fields) Lookup(key string) (any, bool) {
	if f == nil {
		return nil, false
	}
	v, ok := f[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// Text returns the value under key coerced to a string, or "" when absent.
// Nested objects and arrays are not text and also yield "".
func (f Fields) Text(key string) string {
	v, ok := f.Lookup(key)
	if !ok {
		return ""
	}
	return toText(v)
}

// TextOr is Text with a caller-supplied default for absent or empty values.
func (f Fields) TextOr(key, def string) string {
	if s := f.Text(key); s != "" {
		return s
	}
	return def
}

// Has reports whether key carries a non-empty scalar value.
func (f Fields) Has(key string) bool {
	return f.Text(key) != ""
}

// Object returns the nested object under key, or nil.
func (f Fields) Object(key string) Fields {
	v, ok := f.Lookup(key)
	if !ok {
		return nil
	}
	switch o := v.(type) {
	case map[string]any:
		return Fields(o)
	case Fields:
		return o
	}
	return nil
}

// List returns the objects of the array under key, skipping non-object entries.
func (f Fields) List(key string) []Fields {
	v, ok := f.Lookup(key)
	if !ok {
		return nil
	}
	arr, ok := v.([]any)
	if !ok {
		return nil
	}

	out := make([]Fields, 0, len(arr))
	for _, e := range arr {
		switch o := e.(type) {
		case map[string]any:
			out = append(out, Fields(o))
		case Fields:
			out = append(out, o)
		}
	}
	return out
}

func toText(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	}
	return ""
}
