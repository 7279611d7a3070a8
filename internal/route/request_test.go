package route_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gyaneshwarpardhi/indoornav/internal/route"
)

func TestRequest_DecodeOverrides(t *testing.T) {
	var r route.Request
	err := json.Unmarshal([]byte(`{"from":"di_box_1","to":"cabinet_1","max_depth":0,"allow_direct_fixture_connections":false,"exclude_nodes":["wp_9"]}`), &r)
	require.NoError(t, err)
	require.NotNil(t, r.MaxDepth)
	require.Zero(t, *r.MaxDepth)
	require.NotNil(t, r.AllowDirectFixtureConnections)
	require.False(t, *r.AllowDirectFixtureConnections)
	require.Equal(t, []string{"wp_9"}, r.ExcludeNodes)
	require.NoError(t, r.Validate())

	var bare route.Request
	require.NoError(t, json.Unmarshal([]byte(`{"from":"a","to":"b"}`), &bare))
	require.Nil(t, bare.MaxDepth)
	require.Nil(t, bare.AllowDirectFixtureConnections)
}

func TestRequest_Validate(t *testing.T) {
	neg := -1
	cases := []struct {
		name string
		req  route.Request
		msg  string
	}{
		{"missing from", route.Request{To: "b"}, "from is required"},
		{"missing to", route.Request{From: "a"}, "to is required"},
		{"negative depth", route.Request{From: "a", To: "b", MaxDepth: &neg}, "max_depth must not be negative"},
		{"negative alternatives", route.Request{From: "a", To: "b", Alternatives: -2}, "alternatives must not be negative"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.req.Validate()
			require.ErrorIs(t, err, route.ErrInvalidRequest)
			require.ErrorContains(t, err, tc.msg)
		})
	}
}
