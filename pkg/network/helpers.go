package network

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// numberRe extracts decimal numbers from color strings like "rgb(255, 0, 0)".
var numberRe = regexp.MustCompile(`\d*\.?\d+`)

// RGBString converts a color slice to a CSS rgb()/rgba() string.
//
// Components may be normalized floats in [0, 1] or 8-bit values in [0, 255];
// if every component is <= 1.0 the slice is treated as normalized and scaled
// to 0-255. Slices with more than three components produce rgba(), otherwise
// rgb(). Empty or nil input yields "rgb(0,0,0)".
func RGBString(values []float64) string {
	if len(values) == 0 {
		return "rgb(0,0,0)"
	}

	normalized := true
	for _, v := range values {
		if v > 1.0 {
			normalized = false
			break
		}
	}

	parts := make([]string, len(values))
	for i, v := range values {
		if normalized {
			v *= 255
		}
		parts[i] = strconv.Itoa(int(v))
	}

	if len(parts) > 3 {
		return fmt.Sprintf("rgba(%s)", strings.Join(parts, ","))
	}
	return fmt.Sprintf("rgb(%s)", strings.Join(parts[:3], ","))
}

// ParseRGBString parses an rgb()/rgba() color string into a normalized
// [r, g, b] or [r, g, b, a] slice with RGB components in [0, 1].
//
// Any string containing at least three numbers is accepted. If any of the
// first three components exceeds 1.0 the input is assumed to be 8-bit and
// the RGB components are divided by 255 (alpha is left untouched).
// Unparseable input yields [0, 0, 0].
func ParseRGBString(s string) []float64 {
	if s == "" {
		return []float64{0, 0, 0}
	}

	nums := numberRe.FindAllString(s, -1)
	if len(nums) < 3 {
		return []float64{0, 0, 0}
	}

	res := make([]float64, len(nums))
	for i, n := range nums {
		res[i], _ = strconv.ParseFloat(n, 64)
	}

	for _, v := range res[:3] {
		if v > 1.0 {
			for i := 0; i < 3; i++ {
				res[i] /= 255.0
			}
			break
		}
	}
	return res
}

// EnforceType coerces a raw attribute value to the given GEXF type
// descriptor. Values that cannot be converted become the type's zero value
// (0, 0.0, false) rather than failing, since attribute data in the wild is
// frequently sloppy. A nil value stays nil, and unknown descriptors pass
// the value through unchanged.
//
// Supported descriptors: "boolean", "integer"/"long"/"int",
// "float"/"double", "liststring" (pipe-separated).
func EnforceType(value any, targetType string) any {
	if value == nil {
		return nil
	}

	switch strings.ToLower(targetType) {
	case "boolean":
		return strings.EqualFold(fmt.Sprint(value), "true")
	case "integer", "long", "int":
		i, err := strconv.Atoi(strings.TrimSpace(fmt.Sprint(value)))
		if err != nil {
			return 0
		}
		return i
	case "float", "double":
		f, err := strconv.ParseFloat(strings.TrimSpace(fmt.Sprint(value)), 64)
		if err != nil {
			return 0.0
		}
		return f
	case "liststring":
		s, ok := value.(string)
		if !ok || s == "" {
			return []string{}
		}
		return strings.Split(s, "|")
	}
	return value
}

// InferGEXFType infers the GEXF attribute type descriptor for a value.
// Booleans map to "boolean", integer kinds to "integer", float kinds to
// "float", and everything else to "string".
func InferGEXFType(value any) string {
	switch value.(type) {
	case bool:
		return "boolean"
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return "integer"
	case float32, float64:
		return "float"
	default:
		return "string"
	}
}
