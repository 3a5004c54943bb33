package params

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// ParameterSet is the canonical shareable parameter mapping. Values are
// scalars (string, bool, int64, float64) or arrays of scalars ([]any).
// Every value is representable as a string, so the whole set serializes
// losslessly into a single address.
type ParameterSet map[string]any

// Clone returns a shallow copy of the set. Array values are copied so the
// clone can be mutated independently.
func (p ParameterSet) Clone() ParameterSet {
	out := make(ParameterSet, len(p))
	for k, v := range p {
		if arr, ok := v.([]any); ok {
			dup := make([]any, len(arr))
			copy(dup, arr)
			out[k] = dup
			continue
		}
		out[k] = v
	}
	return out
}

// Merge shallow-merges partial into p. Keys mapped to nil are deleted.
// The receiver is mutated and returned for chaining.
func (p ParameterSet) Merge(partial ParameterSet) ParameterSet {
	for k, v := range partial {
		if v == nil {
			delete(p, k)
			continue
		}
		p[k] = v
	}
	return p
}

// Equal reports structural equality between two sets by comparing their
// canonical serializations.
func (p ParameterSet) Equal(other ParameterSet) bool {
	return Serialize(p) == Serialize(other)
}

// Serialize encodes the set as a percent-encoded query string with keys in
// sorted order. Arrays are comma-joined within one key. The encoding is
// canonical: equal sets always serialize identically.
func Serialize(p ParameterSet) string {
	values := url.Values{}
	for k, v := range p {
		if v == nil {
			continue
		}
		values.Set(k, encodeValue(v))
	}
	return values.Encode()
}

// Deserialize parses a query string (with or without a leading "?") back
// into a ParameterSet. Numeric strings become numbers, "true"/"false" become
// booleans and comma-joined strings become arrays. Malformed pairs are
// dropped, never reported as an error.
func Deserialize(raw string) ParameterSet {
	raw = strings.TrimPrefix(strings.TrimSpace(raw), "?")
	set := ParameterSet{}
	if raw == "" {
		return set
	}
	// ParseQuery reports the first malformed pair but still returns every
	// pair it could parse; the partial result is exactly what we want.
	values, _ := url.ParseQuery(raw)
	for k, vs := range values {
		if len(vs) == 0 {
			continue
		}
		// Repeated keys collapse into one comma-joined value.
		joined := strings.Join(vs, ",")
		if strings.Contains(joined, ",") {
			parts := strings.Split(joined, ",")
			arr := make([]any, 0, len(parts))
			for _, part := range parts {
				arr = append(arr, coerceScalar(part))
			}
			set[k] = arr
			continue
		}
		set[k] = coerceScalar(joined)
	}
	return set
}

func encodeValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.FormatInt(int64(val), 10)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case []string:
		return strings.Join(val, ",")
	case []any:
		parts := make([]string, len(val))
		for i, item := range val {
			parts[i] = encodeValue(item)
		}
		return strings.Join(parts, ",")
	default:
		return cast.ToString(val)
	}
}

// coerceScalar maps an external string to its semantic value. The order
// matters: booleans are only the literal true/false, integers win over
// floats so "2" round-trips as 2 rather than 2.0.
func coerceScalar(s string) any {
	switch s {
	case "true":
		return true
	case "false":
		return false
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}
