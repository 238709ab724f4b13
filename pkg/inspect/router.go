package inspect

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler returns the inspector's HTTP API:
//
//	GET /healthz        liveness
//	GET /views          snapshot of every registered view
//	GET /views/{name}   current value of one view
//	GET /ws             websocket feed of snapshots
//	GET /metrics        Prometheus metrics
func (i *Inspector) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	r.Get("/views", i.handleViews)
	r.Get("/views/{name}", i.handleView)
	r.Get("/ws", i.feed.HandleWebSocket)
	r.Handle("/metrics", promhttp.HandlerFor(i.gatherer, promhttp.HandlerOpts{}))

	return r
}

func (i *Inspector) handleViews(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, i.Snapshot())
}

func (i *Inspector) handleView(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	value, ok := i.lookup(name)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown view: " + name})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"name": name, "value": value})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
