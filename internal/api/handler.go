package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gyaneshwarpardhi/indoornav/internal/engine"
	"github.com/gyaneshwarpardhi/indoornav/internal/graph"
	"github.com/gyaneshwarpardhi/indoornav/internal/mapdata"
	"github.com/gyaneshwarpardhi/indoornav/internal/metrics"
	"github.com/gyaneshwarpardhi/indoornav/internal/route"
)

// Handler holds all HTTP handler dependencies.
type Handler struct {
	eng *engine.Engine
	src *mapdata.Source
	mux *http.ServeMux
}

// New creates an HTTP handler and registers all routes.
// src may be nil, in which case map reload is unavailable.
func New(eng *engine.Engine, src *mapdata.Source) http.Handler {
	h := &Handler{eng: eng, src: src, mux: http.NewServeMux()}

	h.mux.HandleFunc("POST /v1/routes", h.findRoute)
	h.mux.HandleFunc("POST /v1/routes/batch", h.findRoutes)
	h.mux.HandleFunc("GET /v1/graph/stats", h.graphStats)
	h.mux.HandleFunc("GET /v1/graph/nodes", h.graphNodes)
	h.mux.HandleFunc("GET /v1/graph/nodes/{id}", h.graphNode)
	h.mux.HandleFunc("POST /v1/graph/reload", h.reloadGraph)
	h.mux.HandleFunc("GET /healthz", h.healthz)
	h.mux.HandleFunc("GET /readyz", h.readyz)
	h.mux.Handle("GET /metrics", promhttp.Handler())

	return requestIDMiddleware(loggingMiddleware(h.mux))
}

// POST /v1/routes: synchronous single route search.
func (h *Handler) findRoute(w http.ResponseWriter, r *http.Request) {
	var req route.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %s", err))
		return
	}
	if req.ID == "" {
		req.ID = RequestID(r.Context())
	}
	req.ReceivedAt = time.Now()

	res, err := h.eng.Route(r.Context(), &req)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// POST /v1/routes/batch: concurrent route searches, results in request order.
func (h *Handler) findRoutes(w http.ResponseWriter, r *http.Request) {
	var reqs []*route.Request
	if err := json.NewDecoder(r.Body).Decode(&reqs); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %s", err))
		return
	}
	if len(reqs) == 0 {
		writeError(w, http.StatusBadRequest, "batch must contain at least one route request")
		return
	}

	now := time.Now()
	for i, req := range reqs {
		if req == nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("batch[%d] is null", i))
			return
		}
		if req.ID == "" {
			req.ID = uuid.New().String()
		}
		req.ReceivedAt = now
	}

	results, err := h.eng.RouteBatch(r.Context(), reqs)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	found, failed := 0, 0
	for _, res := range results {
		switch {
		case res.Error != "":
			failed++
		case res.Found:
			found++
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"job_id":  uuid.New().String(),
		"total":   len(results),
		"found":   found,
		"failed":  failed,
		"results": results,
	})
}

// GET /v1/graph/stats: statistics of the active graph.
func (h *Handler) graphStats(w http.ResponseWriter, r *http.Request) {
	st, err := h.eng.Stats()
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// GET /v1/graph/nodes?type=Cabinet: node ids and types, optionally filtered by type.
func (h *Handler) graphNodes(w http.ResponseWriter, r *http.Request) {
	var typ graph.NodeType
	if raw := r.URL.Query().Get("type"); raw != "" {
		t, ok := graph.ParseNodeType(raw)
		if !ok {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown node type %q", raw))
			return
		}
		typ = t
	}
	nodes, err := h.eng.Nodes(typ)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(nodes),
		"nodes": nodes,
	})
}

// GET /v1/graph/nodes/{id}: one node with type, coordinates and neighbors.
func (h *Handler) graphNode(w http.ResponseWriter, r *http.Request) {
	n, err := h.eng.Node(r.PathValue("id"))
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, n)
}

// POST /v1/graph/reload: rebuild the graph from the map file and swap it in.
func (h *Handler) reloadGraph(w http.ResponseWriter, r *http.Request) {
	if h.src == nil {
		writeError(w, http.StatusNotImplemented, "map reload is not configured")
		return
	}
	g, rep, err := h.src.Load(r.Context())
	if err != nil {
		metrics.GraphReloads.WithLabelValues("error").Inc()
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	h.eng.SwapGraph(g)
	metrics.GraphReloads.WithLabelValues("success").Inc()
	metrics.MapSkippedFeatures.Set(float64(len(rep.Skipped)))
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"reloaded": true,
		"report":   rep,
	})
}

// GET /healthz: always 200, used for liveness.
func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GET /readyz: 503 without a graph or with the route queue >80% full.
func (h *Handler) readyz(w http.ResponseWriter, r *http.Request) {
	if h.eng.Graph() == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{"status": "no graph"})
		return
	}
	util := h.eng.QueueUtilization()
	metrics.QueueUtilization.Set(util)
	if util > 0.8 {
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":            "overloaded",
			"queue_utilization": util,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":            "ready",
		"queue_utilization": util,
	})
}
