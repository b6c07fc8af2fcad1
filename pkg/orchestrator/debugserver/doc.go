// Package debugserver exposes an Orchestrator's Prometheus metrics and a
// JSON state snapshot over a small chi router, for use by `minimact
// inspect` and ad-hoc debugging. Grounded on the chi.Mux +
// promhttp.Handler() wiring style found across the example pack (e.g.
// internal/adapters/http.Server.setupRoutes registering
// "/metrics" -> promhttp.Handler()).
package debugserver
