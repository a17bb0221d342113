// Package normalize rewrites nested documents into the portable form used by
// on-disk manifests: mappings stay mappings, and every sequence, including
// fixed-size tuples, becomes a plain []any.
//
// YAML encoders render Go arrays and named tuple types with format-specific
// tags or custom marshalers. Manifests must never contain those, so every
// document is passed through Normalize before it is written.
package normalize

import "reflect"

// Tuple is a fixed-size ordered value, such as the dimensions of an array
// entry as reported by a container reader.
type Tuple []any

// MapItem is a single key/value pair of a MapSlice.
type MapItem struct {
	Key   string
	Value any
}

// MapSlice is a mapping that preserves insertion order.
type MapSlice []MapItem

// Get returns the value stored under key.
func (m MapSlice) Get(key string) (any, bool) {
	for _, item := range m {
		if item.Key == key {
			return item.Value, true
		}
	}
	return nil, false
}

// Keys returns the keys in insertion order.
func (m MapSlice) Keys() []string {
	keys := make([]string, len(m))
	for i, item := range m {
		keys[i] = item.Key
	}
	return keys
}

// Normalize returns a copy of v in which every tuple, array and typed slice
// has been replaced by a []any. Mappings keep their keys (and, for MapSlice,
// their order); scalars are returned unchanged.
//
// Normalize is idempotent. Cyclic values are not supported.
func Normalize(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case MapSlice:
		out := make(MapSlice, len(val))
		for i, item := range val {
			out[i] = MapItem{Key: item.Key, Value: Normalize(item.Value)}
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = Normalize(item)
		}
		return out
	case Tuple:
		return sequence(len(val), func(i int) any { return val[i] })
	case []any:
		return sequence(len(val), func(i int) any { return val[i] })
	case string, bool, int, int64, uint64, float64, []byte:
		return v
	}

	return normalizeValue(reflect.ValueOf(v), v)
}

// normalizeValue handles the typed containers that the fast path in
// Normalize does not cover.
func normalizeValue(rv reflect.Value, orig any) any {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil
		}
		return Normalize(rv.Elem().Interface())
	case reflect.Slice:
		if rv.IsNil() {
			return []any{}
		}
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return orig
		}
		return sequence(rv.Len(), func(i int) any { return rv.Index(i).Interface() })
	case reflect.Array:
		return sequence(rv.Len(), func(i int) any { return rv.Index(i).Interface() })
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return orig
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = Normalize(iter.Value().Interface())
		}
		return out
	default:
		return orig
	}
}

func sequence(n int, at func(int) any) []any {
	out := make([]any, n)
	for i := 0; i < n; i++ {
		out[i] = Normalize(at(i))
	}
	return out
}
