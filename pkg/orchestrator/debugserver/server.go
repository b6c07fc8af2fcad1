package debugserver

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/minimact/client-go/pkg/orchestrator"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// New builds a router exposing:
//
//	GET /metrics   Prometheus exposition format
//	GET /snapshot  JSON orchestrator.Snapshot
//	GET /healthz   plain "ok"
func New(o *orchestrator.Orchestrator) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Handle("/metrics", promhttp.HandlerFor(o.Registry, promhttp.HandlerOpts{}))

	r.Get("/snapshot", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(o.Snapshot())
	})

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte("ok"))
	})

	return r
}

// ListenAndServe starts the debug HTTP server on addr.
func ListenAndServe(addr string, o *orchestrator.Orchestrator) error {
	return http.ListenAndServe(addr, New(o))
}
