package minimacterr

import "fmt"

// Category classifies where in the runtime an error originated.
type Category string

const (
	CategoryTransport   Category = "transport"
	CategoryProtocol    Category = "protocol"
	CategoryHydration   Category = "hydration"
	CategoryPatch       Category = "patch"
	CategoryHint        Category = "hint"
	CategoryServerTask  Category = "servertask"
	CategoryValidation  Category = "validation"
	CategoryCLI         Category = "cli"
)

// Location pinpoints where in the live component tree an error applies.
type Location struct {
	ComponentID string
	NodePath    string
	Target      string // invocation target, e.g. "ApplyPatches"
}

// String formats the location for display.
func (l *Location) String() string {
	if l == nil {
		return ""
	}
	switch {
	case l.ComponentID != "" && l.NodePath != "":
		return fmt.Sprintf("component %s, path %s", l.ComponentID, l.NodePath)
	case l.ComponentID != "":
		return fmt.Sprintf("component %s", l.ComponentID)
	case l.Target != "":
		return fmt.Sprintf("target %s", l.Target)
	default:
		return ""
	}
}

// Error is a structured runtime error with a stable code, a category, a
// plain-language message, and optional fix guidance.
type Error struct {
	Code     string
	Category Category
	Message  string
	Detail   string
	Location *Location
	DocURL   string

	Suggestion string
	Wrapped    error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}

// Unwrap supports errors.Is/errors.As against the wrapped cause.
func (e *Error) Unwrap() error {
	return e.Wrapped
}

// New looks up code in the registry and returns a populated Error. An
// unregistered code still produces a usable Error with Message set to
// the code itself.
func New(code string) *Error {
	tmpl, ok := registry[code]
	if !ok {
		return &Error{Code: code, Category: CategoryValidation, Message: code}
	}
	return &Error{
		Code:     code,
		Category: tmpl.Category,
		Message:  tmpl.Message,
		Detail:   tmpl.Detail,
		DocURL:   tmpl.DocURL,
	}
}

// Wrap builds an Error around cause, attributing it to code.
func Wrap(code string, cause error) *Error {
	e := New(code)
	e.Wrapped = cause
	return e
}

// WithLocation attaches a Location to the error.
func (e *Error) WithLocation(loc Location) *Error {
	e.Location = &loc
	return e
}

// WithSuggestion attaches a one-line fix suggestion.
func (e *Error) WithSuggestion(suggestion string) *Error {
	e.Suggestion = suggestion
	return e
}
