package annotate

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// The spec JSON is decoded into untyped values; these helpers coerce them
// the same way for every key so annotations behave predictably whether a
// width arrives as 3, 3.0 or "3".

func valueToF64(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func valueToInt(v any) (int, bool) {
	f, ok := valueToF64(v)
	if !ok {
		return 0, false
	}
	return int(math.Round(f)), true
}

func valueToBool(v any, def bool) bool {
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "1", "true", "yes", "on":
			return true
		case "0", "false", "no", "off":
			return false
		}
	}
	return def
}

func valueToString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		return s, s != ""
	case nil:
		return "", false
	default:
		return fmt.Sprintf("%v", t), true
	}
}

// parseOffset accepts [dx, dy] arrays and "dx, dy" strings.
func parseOffset(v any) (dx, dy float64, ok bool) {
	switch t := v.(type) {
	case []any:
		if len(t) < 2 {
			return 0, 0, false
		}
		dx, okX := valueToF64(t[0])
		dy, okY := valueToF64(t[1])
		return dx, dy, okX && okY
	case string:
		parts := strings.Split(t, ",")
		if len(parts) < 2 {
			return 0, 0, false
		}
		dx, errX := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		dy, errY := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if errX != nil || errY != nil {
			return 0, 0, false
		}
		return dx, dy, true
	default:
		return 0, 0, false
	}
}
