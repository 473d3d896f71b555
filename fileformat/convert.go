package fileformat

import (
	"slices"
	"strconv"
	"strings"
	"time"
)

// isoLayouts are the timestamp shapes accepted in DateTime cells. The API
// itself emits the first form.
var isoLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseCell converts a raw cell value to its payload representation
// according to the column's kind. Empty cells yield nil. The returned
// message is non-empty when the value does not match the kind; it names the
// expectation so the codec can attach line/column context.
func ParseCell(spec ColumnSpec, raw string) (any, string) {
	if raw == "" {
		return nil, ""
	}
	switch spec.Kind {
	case String:
		return raw, ""
	case Float:
		f, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
		if err != nil {
			return nil, "should be a number, but " + strconv.Quote(raw) + " is not"
		}
		return f, ""
	case Bool:
		switch strings.ToLower(raw) {
		case "1", "true":
			return true, ""
		case "0", "false":
			return false, ""
		}
		return nil, "should be 1/true or 0/false, but is " + strconv.Quote(raw)
	case DateTime:
		for _, layout := range isoLayouts {
			if t, err := time.Parse(layout, raw); err == nil {
				return t.Format("2006-01-02T15:04:05"), ""
			}
		}
		return nil, "should be an ISO-8601 timestamp, but " + strconv.Quote(raw) + " is not"
	case Enum, Country:
		if slices.Contains(spec.Values, raw) {
			return raw, ""
		}
		return nil, "should be one of " + ellipsize(strings.Join(spec.Values, ", "), 60) +
			", but is " + strconv.Quote(raw)
	}
	return raw, ""
}

// FormatValue renders a payload value as a cell. Floats use the decimal
// comma the file format expects; nil becomes the empty cell.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		if x {
			return "true"
		}
		return "false"
	case float64:
		return strings.ReplaceAll(strconv.FormatFloat(x, 'f', -1, 64), ".", ",")
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	default:
		return ""
	}
}

func ellipsize(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max/2] + "..." + s[len(s)-max/2:]
}
