package telemetry

import (
	"errors"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/minimact/client-go/internal/minimacterr"
)

// Option configures the Sentry client during Init.
type Option func(*sentry.ClientOptions)

// WithEnvironment tags every event with the deployment environment.
func WithEnvironment(env string) Option {
	return func(o *sentry.ClientOptions) { o.Environment = env }
}

// WithRelease tags every event with the client build version.
func WithRelease(release string) Option {
	return func(o *sentry.ClientOptions) { o.Release = release }
}

// WithDebug enables Sentry's own debug logging to stderr.
func WithDebug(debug bool) Option {
	return func(o *sentry.ClientOptions) { o.Debug = debug }
}

// Reporter reports minimacterr.Errors to Sentry with structured tags and
// extras, using the SDK's Hub API for concurrency-safe scoping.
type Reporter struct {
	hub *sentry.Hub
}

// NewReporter initializes the Sentry SDK against dsn and returns a
// Reporter bound to the current hub. An empty dsn disables sending
// (useful in tests and local development).
func NewReporter(dsn string, opts ...Option) (*Reporter, error) {
	clientOpts := sentry.ClientOptions{Dsn: dsn}
	for _, opt := range opts {
		opt(&clientOpts)
	}
	if err := sentry.Init(clientOpts); err != nil {
		return nil, fmt.Errorf("telemetry: init sentry: %w", err)
	}
	return &Reporter{hub: sentry.CurrentHub()}, nil
}

// ReportError sends err to Sentry, tagging it with its
// minimacterr category/code and location when err is (or wraps) a
// *minimacterr.Error.
func (r *Reporter) ReportError(err error) {
	r.hub.WithScope(func(scope *sentry.Scope) {
		var me *minimacterr.Error
		if errors.As(err, &me) {
			scope.SetTag("category", string(me.Category))
			scope.SetTag("code", me.Code)
			if me.Location != nil {
				if me.Location.ComponentID != "" {
					scope.SetTag("component_id", me.Location.ComponentID)
				}
				if me.Location.Target != "" {
					scope.SetTag("target", me.Location.Target)
				}
				if me.Location.NodePath != "" {
					scope.SetExtra("node_path", me.Location.NodePath)
				}
			}
			if me.Suggestion != "" {
				scope.SetExtra("suggestion", me.Suggestion)
			}
		}
		r.hub.CaptureException(err)
	})
}

// Flush blocks until pending events are sent or timeout elapses.
func (r *Reporter) Flush(timeout time.Duration) {
	sentry.Flush(timeout)
}
