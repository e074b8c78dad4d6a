package jsonutil

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ParseBool accepts boolean literals and the strings "true", "1", "yes",
// "false", "0" and "no" (case-insensitive). ok is false when v has none of
// these forms, which is distinct from a parsed false.
func ParseBool(v interface{}) (value bool, ok bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "true", "1", "yes":
			return true, true
		case "false", "0", "no":
			return false, true
		}
	}
	return false, false
}

// ParseNumber accepts JSON numbers and numeric strings. Booleans, NaN and
// infinities are not numbers here. ok is false when v cannot be parsed.
func ParseNumber(v interface{}) (value float64, ok bool) {
	var f float64
	switch n := v.(type) {
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		if KindOf(v) != KindNumber {
			return 0, false
		}
		parsed, err := toNumber(v).Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Stringify renders a non-string JSON value as text. Containers are
// rendered as compact JSON.
func Stringify(v interface{}) string {
	switch s := v.(type) {
	case string:
		return s
	case nil:
		return "null"
	case bool:
		return strconv.FormatBool(s)
	}

	if KindOf(v) == KindNumber {
		return toNumber(v).String()
	}

	data, err := Canonical(Clone(v))
	if err != nil {
		return ""
	}
	return string(data)
}
