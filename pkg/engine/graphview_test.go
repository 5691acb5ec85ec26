package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shevchenkoxx/lore-mcp/pkg/response"
)

func TestGraphViewRendersNodesAndEdges(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.Relate(RelateInput{Subject: "Rust", Predicate: "creator", Object: "Graydon Hoare"})
	require.NoError(t, err)

	res, err := e.GraphView(QueryGraphInput{Subject: "Rust"})
	require.NoError(t, err)

	sg := res.Data.(*response.SlimGraph)
	require.Contains(t, sg.Nodes, "Rust")
	require.Contains(t, sg.Nodes, "Graydon Hoare")
	require.Len(t, sg.Edges, 1)
	require.Equal(t, "creator", sg.Edges[0].Type)
}
