// Package minimacterr provides structured, actionable errors for the
// minimact client runtime: a category, a stable code, a plain-language
// message, and an optional fix suggestion, rendered for terminal
// display by Format.
//
// Grounded on vango-go-vango's internal/errors package (Category +
// registry-of-codes + WithLocation/WithSuggestion builder + colorized
// Format), generalized from compiler diagnostics (file:line:column) to
// runtime diagnostics (component id, node path, invocation target).
package minimacterr
