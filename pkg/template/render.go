package template

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/minimact/client-go/pkg/vdom"
	"github.com/valyala/fasttemplate"
)

// FormatValue renders a raw state value for substitution into a template:
// null/undefined -> "", string verbatim, number/boolean -> String(v),
// array -> comma-joined formatted items, object -> canonical JSON.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int, int32, int64, uint, uint32, uint64:
		return fmt.Sprintf("%d", val)
	case json.Number:
		return val.String()
	case []any:
		parts := make([]string, len(val))
		for i, item := range val {
			parts[i] = FormatValue(item)
		}
		return strings.Join(parts, ",")
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(b)
	}
}

// RenderTemplate substitutes each "{i}" placeholder with the formatted
// i-th param.
func RenderTemplate(tmpl string, params []any) (string, error) {
	t, err := fasttemplate.NewTemplate(tmpl, "{", "}")
	if err != nil {
		return "", fmt.Errorf("template: parse %q: %w", tmpl, err)
	}
	out := t.ExecuteFuncString(func(w io.Writer, tag string) (int, error) {
		idx, err := strconv.Atoi(tag)
		if err != nil || idx < 0 || idx >= len(params) {
			return w.Write([]byte("{" + tag + "}"))
		}
		return w.Write([]byte(FormatValue(params[idx])))
	})
	return out, nil
}

// ApplyBinding looks up a binding's raw state value and applies its
// transform, if any.
func ApplyBinding(stateValues map[string]any, b vdom.Binding) any {
	raw := stateValues[b.StateKey]
	if b.Transform == "" {
		return raw
	}
	return applyTransform(raw, b.Transform)
}

// RenderTemplatePatch renders a TemplatePatch against the current state
// values, including the conditional lookup-and-recurse rule.
func RenderTemplatePatch(tp *vdom.TemplatePatch, stateValues map[string]any) (string, error) {
	if tp.HasConditional {
		if tp.ConditionalBindingIndex < 0 || tp.ConditionalBindingIndex >= len(tp.Bindings) {
			return "", fmt.Errorf("template: conditionalBindingIndex %d out of range", tp.ConditionalBindingIndex)
		}
		selector := ApplyBinding(stateValues, tp.Bindings[tp.ConditionalBindingIndex])
		key := FormatValue(selector)
		if sub, ok := tp.ConditionalTemplates[key]; ok {
			if !strings.Contains(sub, "{") {
				return sub, nil
			}
			recursed := *tp
			recursed.Template = sub
			recursed.HasConditional = false
			return RenderTemplatePatch(&recursed, stateValues)
		}
	}

	params := make([]any, len(tp.Bindings))
	for i, b := range tp.Bindings {
		params[i] = ApplyBinding(stateValues, b)
	}
	return RenderTemplate(tp.Template, params)
}
