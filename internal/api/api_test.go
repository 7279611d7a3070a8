package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyaneshwarpardhi/indoornav/internal/api"
	"github.com/gyaneshwarpardhi/indoornav/internal/config"
	"github.com/gyaneshwarpardhi/indoornav/internal/engine"
	"github.com/gyaneshwarpardhi/indoornav/internal/graph"
	"github.com/gyaneshwarpardhi/indoornav/internal/mapdata"
)

const smallMap = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "geometry": {"type": "Point", "coordinates": [0, 0]}, "properties": {"alt_name": "wp_a"}},
    {"type": "Feature", "geometry": {"type": "Point", "coordinates": [1, 0]}, "properties": {"alt_name": "fossil_b"}},
    {"type": "Feature", "geometry": {"type": "LineString", "coordinates": [[0,0],[1,0]]},
     "properties": {"source": "wp_a", "target": "fossil_b"}}
  ]
}`

func museum(t *testing.T) *graph.Graph {
	t.Helper()
	b := graph.NewBuilder()
	for _, id := range []string{"wp_001", "wp_002", "wp_003"} {
		require.NoError(t, b.AddNode(id, graph.Waypoint, nil))
	}
	require.NoError(t, b.AddNode("di_box_1", graph.DiBox, []float64{0, 1}))
	require.NoError(t, b.AddNode("cabinet_1", graph.Cabinet, nil))
	require.NoError(t, b.AddNode("isolated", graph.Fossil, nil))
	for _, e := range [][2]string{
		{"wp_001", "wp_002"}, {"wp_002", "wp_003"},
		{"di_box_1", "wp_001"}, {"cabinet_1", "wp_003"},
		{"di_box_1", "cabinet_1"},
	} {
		require.NoError(t, b.AddEdge(e[0], e[1]))
	}
	return b.Build()
}

func newServer(t *testing.T, g *graph.Graph, src *mapdata.Source) (*httptest.Server, *engine.Engine) {
	t.Helper()
	cfg := config.Default()
	cfg.Engine.Workers = 2
	cfg.Engine.QueueDepth = 8
	cfg.Engine.MaxBatch = 3
	eng := engine.New(context.Background(), g, cfg.Engine, cfg.Search)
	srv := httptest.NewServer(api.New(eng, src))
	t.Cleanup(func() {
		srv.Close()
		eng.Shutdown()
	})
	return srv, eng
}

func do(t *testing.T, method, url, body string) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, r)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, out
}

func TestFindRoute(t *testing.T) {
	srv, _ := newServer(t, museum(t), nil)

	resp, body := do(t, http.MethodPost, srv.URL+"/v1/routes", `{"from":"di_box_1","to":"cabinet_1"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var res engine.Result
	require.NoError(t, json.Unmarshal(body, &res))
	assert.True(t, res.Found)
	assert.Equal(t, []string{"di_box_1", "wp_001", "wp_002", "wp_003", "cabinet_1"}, []string(res.Path))
	require.NotNil(t, res.Details)
	assert.Equal(t, 4, res.Details.Summary.Hops)
	assert.Equal(t, graph.Cabinet, res.Details.Summary.End.Type)
	// The request id header doubles as the route id when the body has none.
	assert.Equal(t, resp.Header.Get(api.RequestIDHeader), res.RequestID)
}

func TestFindRoute_PropagatesRequestID(t *testing.T) {
	srv, _ := newServer(t, museum(t), nil)

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/v1/routes", strings.NewReader(`{"from":"wp_001","to":"wp_003"}`))
	require.NoError(t, err)
	req.Header.Set(api.RequestIDHeader, "trace-me")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var res engine.Result
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	assert.Equal(t, "trace-me", resp.Header.Get(api.RequestIDHeader))
	assert.Equal(t, "trace-me", res.RequestID)
}

func TestFindRoute_NoPathIsOK(t *testing.T) {
	srv, _ := newServer(t, museum(t), nil)

	resp, body := do(t, http.MethodPost, srv.URL+"/v1/routes", `{"from":"isolated","to":"wp_001"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var res engine.Result
	require.NoError(t, json.Unmarshal(body, &res))
	assert.False(t, res.Found)
	assert.Nil(t, res.Path)
}

func TestFindRoute_ErrorStatuses(t *testing.T) {
	srv, _ := newServer(t, museum(t), nil)

	cases := []struct {
		name string
		body string
		want int
	}{
		{"bad json", `{"from":`, http.StatusBadRequest},
		{"missing to", `{"from":"wp_001"}`, http.StatusBadRequest},
		{"negative depth", `{"from":"wp_001","to":"wp_002","max_depth":-1}`, http.StatusBadRequest},
		{"unknown node", `{"from":"ghost","to":"wp_002"}`, http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, body := do(t, http.MethodPost, srv.URL+"/v1/routes", tc.body)
			assert.Equal(t, tc.want, resp.StatusCode)
			var e struct {
				Error string `json:"error"`
			}
			require.NoError(t, json.Unmarshal(body, &e))
			assert.NotEmpty(t, e.Error)
		})
	}
}

func TestFindRoute_NoGraph(t *testing.T) {
	srv, _ := newServer(t, nil, nil)

	resp, _ := do(t, http.MethodPost, srv.URL+"/v1/routes", `{"from":"a","to":"b"}`)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	resp, _ = do(t, http.MethodGet, srv.URL+"/readyz", "")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	resp, _ = do(t, http.MethodGet, srv.URL+"/v1/graph/stats", "")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestFindRoutes_Batch(t *testing.T) {
	srv, _ := newServer(t, museum(t), nil)

	resp, body := do(t, http.MethodPost, srv.URL+"/v1/routes/batch",
		`[{"from":"di_box_1","to":"cabinet_1"},{"from":"ghost","to":"wp_001"},{"from":"isolated","to":"wp_001"}]`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		JobID   string           `json:"job_id"`
		Total   int              `json:"total"`
		Found   int              `json:"found"`
		Failed  int              `json:"failed"`
		Results []*engine.Result `json:"results"`
	}
	require.NoError(t, json.Unmarshal(body, &out))
	assert.NotEmpty(t, out.JobID)
	assert.Equal(t, 3, out.Total)
	assert.Equal(t, 1, out.Found)
	assert.Equal(t, 1, out.Failed)
	require.Len(t, out.Results, 3)
	for _, r := range out.Results {
		assert.NotEmpty(t, r.RequestID)
	}

	resp, _ = do(t, http.MethodPost, srv.URL+"/v1/routes/batch", `[]`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, http.MethodPost, srv.URL+"/v1/routes/batch",
		`[{"from":"a","to":"b"},{"from":"a","to":"b"},{"from":"a","to":"b"},{"from":"a","to":"b"}]`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGraphEndpoints(t *testing.T) {
	srv, _ := newServer(t, museum(t), nil)

	resp, body := do(t, http.MethodGet, srv.URL+"/v1/graph/stats", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var st graph.Stats
	require.NoError(t, json.Unmarshal(body, &st))
	assert.Equal(t, 6, st.NodeCount)
	assert.Equal(t, 5, st.EdgeCount)
	assert.Equal(t, 3, st.NodesByType[graph.Waypoint])

	resp, body = do(t, http.MethodGet, srv.URL+"/v1/graph/nodes/di_box_1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var n engine.NodeInfo
	require.NoError(t, json.Unmarshal(body, &n))
	assert.Equal(t, graph.DiBox, n.Type)
	assert.Equal(t, []string{"wp_001", "cabinet_1"}, n.Neighbors)
	require.NotNil(t, n.Coordinates)
	assert.Equal(t, 1.0, n.Coordinates.Lat)

	resp, _ = do(t, http.MethodGet, srv.URL+"/v1/graph/nodes/ghost", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = do(t, http.MethodGet, srv.URL+"/v1/graph/nodes?type=waypoint", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list struct {
		Count int `json:"count"`
		Nodes []struct {
			ID   string         `json:"id"`
			Type graph.NodeType `json:"type"`
		} `json:"nodes"`
	}
	require.NoError(t, json.Unmarshal(body, &list))
	assert.Equal(t, 3, list.Count)
	assert.Equal(t, "wp_001", list.Nodes[0].ID)

	resp, _ = do(t, http.MethodGet, srv.URL+"/v1/graph/nodes?type=elevator", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestReloadGraph(t *testing.T) {
	path := filepath.Join(t.TempDir(), "map.geojson")
	require.NoError(t, os.WriteFile(path, []byte(smallMap), 0o644))
	src := mapdata.NewSource(path, mapdata.DefaultOptions())

	srv, eng := newServer(t, museum(t), src)
	before := eng.Graph()

	resp, body := do(t, http.MethodPost, srv.URL+"/v1/graph/reload", "")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.NotSame(t, before, eng.Graph())
	assert.Equal(t, 2, eng.Graph().NodeCount())

	resp, _ = do(t, http.MethodPost, srv.URL+"/v1/routes", `{"from":"wp_a","to":"fossil_b"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// A broken file keeps the current graph.
	current := eng.Graph()
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o644))
	resp, _ = do(t, http.MethodPost, srv.URL+"/v1/graph/reload", "")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Same(t, current, eng.Graph())
}

func TestReloadGraph_NotConfigured(t *testing.T) {
	srv, _ := newServer(t, museum(t), nil)
	resp, _ := do(t, http.MethodPost, srv.URL+"/v1/graph/reload", "")
	assert.Equal(t, http.StatusNotImplemented, resp.StatusCode)
}

func TestProbesAndMetrics(t *testing.T) {
	srv, _ := newServer(t, museum(t), nil)

	resp, _ := do(t, http.MethodGet, srv.URL+"/healthz", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := do(t, http.MethodGet, srv.URL+"/readyz", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"ready"`)

	do(t, http.MethodPost, srv.URL+"/v1/routes", `{"from":"wp_001","to":"wp_002"}`)
	resp, body = do(t, http.MethodGet, srv.URL+"/metrics", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, bytes.Contains(body, []byte("indoornav_routes_processed_total")))
}

func TestMethodNotAllowed(t *testing.T) {
	srv, _ := newServer(t, museum(t), nil)
	resp, _ := do(t, http.MethodGet, srv.URL+"/v1/routes", "")
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}
