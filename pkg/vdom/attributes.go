package vdom

import "strings"

// IsReservedAttr reports whether attr is a framework-owned attribute that
// UpdateProps must preserve regardless of the incoming props map
// (data-minimact-* attributes are never removed).
func IsReservedAttr(name string) bool {
	return strings.HasPrefix(name, "data-minimact-")
}

// IsHandlerAttr reports whether attr is an event-handler attribute
// ("on*"), which UpdateProps must never set as a plain attribute.
func IsHandlerAttr(name string) bool {
	return strings.HasPrefix(name, "on")
}

// MergeProps computes the attribute set UpdateProps should leave on an
// element: newProps, plus any reserved attrs from current that newProps
// didn't already specify, minus anything that isn't in either.
func MergeProps(current, next Props) Props {
	merged := make(Props, len(next))
	for k, v := range next {
		if IsHandlerAttr(k) {
			continue
		}
		merged[k] = v
	}
	for k, v := range current {
		if IsReservedAttr(k) {
			if _, ok := merged[k]; !ok {
				merged[k] = v
			}
		}
	}
	return merged
}
