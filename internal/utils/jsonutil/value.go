package jsonutil

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Kind identifies the JSON variant held by a decoded value
type Kind int

const (
	KindInvalid Kind = iota
	KindNull
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "invalid"
	}
}

// KindOf reports the JSON variant of v. Values that have no plain JSON
// representation report KindInvalid.
func KindOf(v interface{}) Kind {
	switch n := v.(type) {
	case nil:
		return KindNull
	case bool:
		return KindBool
	case json.Number:
		return KindNumber
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return KindInvalid
		}
		return KindNumber
	case float32:
		if math.IsNaN(float64(n)) || math.IsInf(float64(n), 0) {
			return KindInvalid
		}
		return KindNumber
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return KindNumber
	case string:
		return KindString
	case []interface{}:
		return KindArray
	case map[string]interface{}:
		return KindObject
	default:
		return KindInvalid
	}
}

// AsObject returns v as an object
func AsObject(v interface{}) (map[string]interface{}, bool) {
	m, ok := v.(map[string]interface{})
	return m, ok
}

// AsArray returns v as an array
func AsArray(v interface{}) ([]interface{}, bool) {
	a, ok := v.([]interface{})
	return a, ok
}

// AsString returns v as a string
func AsString(v interface{}) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

// NonBlankString returns the trimmed string when v is a string with
// non-whitespace content
func NonBlankString(v interface{}) (string, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

// Clone deep-copies a value keeping only plain JSON variants. Members that
// cannot be represented as JSON are dropped from their container; an
// unrepresentable top-level value yields nil.
func Clone(v interface{}) interface{} {
	out, _ := clone(v)
	return out
}

func clone(v interface{}) (interface{}, bool) {
	switch KindOf(v) {
	case KindNull:
		return nil, true
	case KindBool, KindString:
		return v, true
	case KindNumber:
		return toNumber(v), true
	case KindArray:
		src := v.([]interface{})
		dst := make([]interface{}, 0, len(src))
		for _, item := range src {
			if c, ok := clone(item); ok {
				dst = append(dst, c)
			}
		}
		return dst, true
	case KindObject:
		src := v.(map[string]interface{})
		dst := make(map[string]interface{}, len(src))
		for key, item := range src {
			if c, ok := clone(item); ok {
				dst[key] = c
			}
		}
		return dst, true
	default:
		return nil, false
	}
}

// toNumber converts any numeric Go value to json.Number so integers keep
// their exact textual form
func toNumber(v interface{}) json.Number {
	switch n := v.(type) {
	case json.Number:
		return n
	case float64:
		return json.Number(strconv.FormatFloat(n, 'g', -1, 64))
	case float32:
		return json.Number(strconv.FormatFloat(float64(n), 'g', -1, 32))
	case int:
		return json.Number(strconv.FormatInt(int64(n), 10))
	case int8:
		return json.Number(strconv.FormatInt(int64(n), 10))
	case int16:
		return json.Number(strconv.FormatInt(int64(n), 10))
	case int32:
		return json.Number(strconv.FormatInt(int64(n), 10))
	case int64:
		return json.Number(strconv.FormatInt(n, 10))
	case uint:
		return json.Number(strconv.FormatUint(uint64(n), 10))
	case uint8:
		return json.Number(strconv.FormatUint(uint64(n), 10))
	case uint16:
		return json.Number(strconv.FormatUint(uint64(n), 10))
	case uint32:
		return json.Number(strconv.FormatUint(uint64(n), 10))
	case uint64:
		return json.Number(strconv.FormatUint(n, 10))
	}
	return json.Number("0")
}
