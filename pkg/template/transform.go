package template

import (
	"encoding/json"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
)

var (
	toFixedRe = regexp.MustCompile(`^toFixed\((\d+)\)$`)
	arithRe   = regexp.MustCompile(`^([*/+-])\s*([0-9]*\.?[0-9]+)$`)
)

// applyTransform implements the whitelist:
// toFixed(n), * n, / n, + n, - n, toUpperCase[()], toLowerCase[()],
// trim[()], !. No arbitrary expressions are evaluated; an unrecognized
// transform is logged and the value is passed through unchanged.
func applyTransform(value any, transform string) any {
	transform = strings.TrimSpace(transform)
	if transform == "" {
		return value
	}

	if m := toFixedRe.FindStringSubmatch(transform); m != nil {
		n, _ := strconv.Atoi(m[1])
		if f, ok := asFloat(value); ok {
			return strconv.FormatFloat(f, 'f', n, 64)
		}
		return value
	}

	if m := arithRe.FindStringSubmatch(transform); m != nil {
		f, ok := asFloat(value)
		operand, _ := strconv.ParseFloat(m[2], 64)
		if !ok {
			return value
		}
		switch m[1] {
		case "*":
			return f * operand
		case "/":
			return f / operand
		case "+":
			return f + operand
		case "-":
			return f - operand
		}
	}

	switch transform {
	case "toUpperCase", "toUpperCase()":
		if s, ok := value.(string); ok {
			return strings.ToUpper(s)
		}
		return value
	case "toLowerCase", "toLowerCase()":
		if s, ok := value.(string); ok {
			return strings.ToLower(s)
		}
		return value
	case "trim", "trim()":
		if s, ok := value.(string); ok {
			return strings.TrimSpace(s)
		}
		return value
	case "!":
		if b, ok := value.(bool); ok {
			return !b
		}
		return value
	}

	slog.Default().Warn("template: unknown transform", "transform", transform)
	return value
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
