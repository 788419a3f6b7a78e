package silver

import (
	"math"
	"strconv"
	"strings"

	"cinelake/internal/contracts"
	"cinelake/internal/textutil"
)

// applyTransforms runs the mapping's declared transforms over a string
// value, in order.
func applyTransforms(value string, transforms []string) string {
	for _, transform := range transforms {
		switch transform {
		case contracts.TransformTrim:
			value = strings.TrimSpace(value)
		case contracts.TransformCollapseWS:
			value = textutil.CollapseWhitespace(value)
		case contracts.TransformLower:
			value = strings.ToLower(value)
		case contracts.TransformTitleCase:
			value = textutil.TitleCase(value)
		}
	}
	return value
}

// coerce converts a raw value to its declared contract type. CSV delivers
// strings; JSON delivers strings, float64s, and bools.
func coerce(value any, fieldType contracts.FieldType) (any, bool) {
	switch fieldType {
	case contracts.FieldString:
		switch v := value.(type) {
		case string:
			return v, true
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64), true
		case bool:
			return strconv.FormatBool(v), true
		default:
			return nil, false
		}
	case contracts.FieldInt:
		switch v := value.(type) {
		case string:
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return nil, false
			}
			return n, true
		case float64:
			if v != math.Trunc(v) {
				return nil, false
			}
			return int(v), true
		default:
			return nil, false
		}
	case contracts.FieldFloat:
		switch v := value.(type) {
		case string:
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return nil, false
			}
			return f, true
		case float64:
			return v, true
		default:
			return nil, false
		}
	}
	return nil, false
}

// isAbsent reports whether a raw value counts as not delivered: nil, or a
// string that is empty once trimmed.
func isAbsent(value any) bool {
	if value == nil {
		return true
	}
	if s, ok := value.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}
