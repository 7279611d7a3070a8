package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gyaneshwarpardhi/indoornav/internal/config"
	"github.com/gyaneshwarpardhi/indoornav/internal/engine"
	"github.com/gyaneshwarpardhi/indoornav/internal/graph"
	"github.com/gyaneshwarpardhi/indoornav/internal/route"
)

const sampleConfig = "../../configs/indoornav.yaml"

func run(t *testing.T, args ...string) []byte {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(append([]string{"--config", sampleConfig}, args...))
	require.NoError(t, root.ExecuteContext(context.Background()))
	return out.Bytes()
}

func TestRouteCommand(t *testing.T) {
	var res engine.Result
	require.NoError(t, json.Unmarshal(run(t, "route", "--from", "di_box_1", "--to", "col_3_cab_1"), &res))
	require.True(t, res.Found)
	require.Equal(t, []string{"di_box_1", "wp_001", "wp_002", "wp_003", "col_3_cab_1"}, []string(res.Path))
}

func TestRouteCommand_Exclude(t *testing.T) {
	var res engine.Result
	require.NoError(t, json.Unmarshal(run(t, "route", "--from", "di_box_1", "--to", "fossil_trex", "--exclude", "wp_002"), &res))
	require.False(t, res.Found)
}

func TestStatsCommand(t *testing.T) {
	var st graph.Stats
	require.NoError(t, json.Unmarshal(run(t, "stats"), &st))
	require.Equal(t, 6, st.NodeCount)
	require.Equal(t, 6, st.EdgeCount)
	require.Equal(t, 1, st.PolygonCount)
	require.Equal(t, 1, st.NodesByType[graph.Cabinet])
}

func TestRouteCommand_RequiresEndpoints(t *testing.T) {
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"--config", sampleConfig, "route", "--from", "wp_001"})
	require.Error(t, root.Execute())
}

func TestStopEngine_DrainsBeforeCancel(t *testing.T) {
	b := graph.NewBuilder()
	require.NoError(t, b.AddNode("wp_1", graph.Waypoint, nil))
	cfg := config.Default()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	eng := engine.New(ctx, b.Build(), cfg.Engine, cfg.Search)

	cancelled := false
	stopEngine(eng, func() {
		// The pool is already drained when the worker context goes away.
		_, err := eng.Route(context.Background(), &route.Request{From: "wp_1", To: "wp_1"})
		require.ErrorIs(t, err, engine.ErrQueueFull)
		cancelled = true
		cancel()
	})
	require.True(t, cancelled)
}
