// Package telemetry wraps getsentry/sentry-go for fatal-error reporting
// from the minimact client runtime.
//
// Grounded on pkg/bubbly/observability.SentryReporter from the example
// pack (Hub-scoped ReportError/ReportPanic with tags/extras/breadcrumbs,
// functional-option client configuration, Flush before shutdown),
// generalized from UI component panics to minimacterr.Error-tagged
// runtime failures (transport drops, protocol violations, hydration
// mismatches).
package telemetry
