package editor

import (
	"slices"
	"testing"

	"github.com/meikuraledutech/nodegraph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddNode_DefaultValues(t *testing.T) {
	e, _ := newTestEditor(t, Options{})

	id, res := e.AddNode("add", nodegraph.Point{X: 5, Y: 7})
	require.True(t, res.Changed)

	n := res.Graph.Nodes[id]
	require.NotNil(t, n)
	assert.Equal(t, "Add", n.Name)
	assert.Equal(t, "add", n.Type)
	assert.Equal(t, nodegraph.Point{X: 5, Y: 7}, n.Position)
	assert.Equal(t, map[string]any{"a": 1.0}, n.Values, "ports without a default are omitted")
	assert.Empty(t, n.Connections.Inputs)
	assert.Empty(t, n.Connections.Outputs)
}

func TestAddNode_UnregisteredType(t *testing.T) {
	e, _ := newTestEditor(t, Options{})

	id, res := e.AddNode("mystery", nodegraph.Point{})
	require.True(t, res.Committed)
	n := res.Graph.Nodes[id]
	assert.Equal(t, "mystery", n.Name)
	assert.Empty(t, n.Values)
}

func TestAddNode_RootFlag(t *testing.T) {
	e, _ := newTestEditor(t, Options{})
	id, res := e.AddNode("output", nodegraph.Point{})
	assert.True(t, res.Graph.Nodes[id].Root)
}

func TestRemoveNodes_EmptyIsNoop(t *testing.T) {
	e, rec := newTestEditor(t, Options{})
	addNode(t, e, "number", 0, 0)

	res := e.RemoveNodes()
	assert.False(t, res.Changed)
	assert.Equal(t, 1, rec.count())
}

func TestRemoveNodes_StripsConnectionsOnNeighbours(t *testing.T) {
	e, _ := newTestEditor(t, Options{})
	a := addNode(t, e, "number", 0, 0)
	b := addNode(t, e, "add", 100, 0)
	c := addNode(t, e, "add", 200, 0)
	connect(t, e, a, "out", b, "a")
	connect(t, e, b, "sum", c, "b")
	connect(t, e, a, "out", c, "a")

	res := e.RemoveNodes(b)
	require.True(t, res.Committed)
	g := res.Graph

	assert.NotContains(t, g.Nodes, b)
	require.Contains(t, g.Nodes, a)
	require.Contains(t, g.Nodes, c)
	for _, n := range g.Nodes {
		for _, conn := range slices.Concat(n.Connections.Inputs, n.Connections.Outputs) {
			assert.NotEqual(t, b, conn.Node, "dangling reference on %s", n.ID)
		}
	}
	// The unrelated a -> c edge survives.
	assert.Len(t, g.Nodes[a].Connections.Outputs, 1)
	assert.Len(t, g.Nodes[c].Connections.Inputs, 1)
	requireConsistent(t, g)
}

func TestRemoveNodes_RootIsProtectedButPruned(t *testing.T) {
	e, _ := newTestEditor(t, Options{})
	a := addNode(t, e, "number", 0, 0)
	root := addNode(t, e, "output", 300, 0)
	connect(t, e, a, "out", root, "in")

	res := e.RemoveNodes(root)
	assert.False(t, res.Changed, "root nodes cannot be removed")

	res = e.RemoveNodes(a)
	require.True(t, res.Changed)
	require.Contains(t, res.Graph.Nodes, root)
	assert.Empty(t, res.Graph.Nodes[root].Connections.Inputs)
	requireConsistent(t, res.Graph)
}

func TestRemoveNodes_SkipsUnknownIDs(t *testing.T) {
	e, _ := newTestEditor(t, Options{})
	a := addNode(t, e, "number", 0, 0)
	b := addNode(t, e, "number", 0, 0)

	res := e.RemoveNodes("ghost", a)
	require.True(t, res.Changed)
	assert.NotContains(t, res.Graph.Nodes, a)
	assert.Contains(t, res.Graph.Nodes, b)

	res = e.RemoveNodes("ghost")
	assert.False(t, res.Changed)
}

func TestRemoveNodes_ClearsWholeSelection(t *testing.T) {
	e, _ := newTestEditor(t, Options{})
	a := addNode(t, e, "number", 0, 0)
	b := addNode(t, e, "number", 0, 0)
	e.AddNodesToSelection(a, b)
	e.AddWaypointToSelection(nodegraph.WaypointRef{SrcNode: a, SrcPort: "out", DstNode: b, DstPort: "in"})

	e.RemoveNodes(a)
	assert.True(t, e.Selection().Empty())
}

func TestCloneNode(t *testing.T) {
	e, rec := newTestEditor(t, Options{})
	a := addNode(t, e, "number", 10, 10)
	b := addNode(t, e, "add", 100, 10)
	connect(t, e, a, "out", b, "a")
	e.UpdateNodeValues(b, map[string]any{"a": 3.0})

	id, res := e.CloneNode(b)
	require.True(t, res.Committed)
	require.NotEqual(t, b, id)

	c := res.Graph.Nodes[id]
	require.NotNil(t, c)
	assert.Equal(t, nodegraph.Point{X: 120, Y: 30}, c.Position)
	assert.Empty(t, c.Connections.Inputs)
	assert.Empty(t, c.Connections.Outputs)
	assert.Equal(t, map[string]any{"a": 3.0}, c.Values)

	e.UpdateNodeValues(id, map[string]any{"a": 9.0})
	assert.Equal(t, 3.0, e.State().Nodes[b].Values["a"])

	count := rec.count()
	id, res = e.CloneNode("missing")
	assert.Empty(t, id)
	assert.False(t, res.Changed)
	assert.Equal(t, count, rec.count())
}

func TestCloneSelection(t *testing.T) {
	e, _ := newTestEditor(t, Options{})
	a := addNode(t, e, "number", 0, 0)
	b := addNode(t, e, "number", 50, 0)
	e.AddNodesToSelection(a, b)

	ids, res := e.CloneSelection()
	require.True(t, res.Committed)
	require.Len(t, ids, 2)
	assert.Len(t, res.Graph.Nodes, 4)
	assert.ElementsMatch(t, ids, e.Selection().Nodes())

	e.ClearSelection()
	ids, res = e.CloneSelection()
	assert.Empty(t, ids)
	assert.False(t, res.Changed)
}

func TestUpdateNodeValues_ReplacesWholesale(t *testing.T) {
	e, _ := newTestEditor(t, Options{})
	a := addNode(t, e, "number", 0, 0)
	b := addNode(t, e, "add", 100, 0)
	connect(t, e, a, "out", b, "a")

	values := map[string]any{"b": 2.0}
	res := e.UpdateNodeValues(b, values)
	require.True(t, res.Committed)
	assert.Equal(t, map[string]any{"b": 2.0}, res.Graph.Nodes[b].Values)
	assert.Len(t, res.Graph.Nodes[b].Connections.Inputs, 1)

	values["b"] = 3.0
	assert.Equal(t, 2.0, e.State().Nodes[b].Values["b"], "editor keeps its own copy")
}

func TestSetNodeSize(t *testing.T) {
	e, _ := newTestEditor(t, Options{})
	a := addNode(t, e, "number", 0, 0)

	res := e.SetNodeSize(a, nodegraph.Size{Width: 80, Height: 40})
	require.True(t, res.Changed)
	assert.Equal(t, &nodegraph.Size{Width: 80, Height: 40}, res.Graph.Nodes[a].Size)

	res = e.SetNodeSize(a, nodegraph.Size{Width: 80, Height: 40})
	assert.False(t, res.Changed)
}

func TestDeleteSelection(t *testing.T) {
	e, rec := newTestEditor(t, Options{})
	a := addNode(t, e, "number", 0, 0)
	b := addNode(t, e, "add", 100, 0)
	c := addNode(t, e, "add", 200, 0)
	connect(t, e, a, "out", b, "a")
	connect(t, e, b, "sum", c, "a")
	edge := nodegraph.EdgeKey{SrcNode: a, SrcPort: "out", DstNode: b, DstPort: "a"}
	e.AddWaypoint(edge, nodegraph.Point{X: 10, Y: 10})
	e.AddWaypoint(edge, nodegraph.Point{X: 20, Y: 20})
	e.AddWaypoint(edge, nodegraph.Point{X: 30, Y: 30})

	e.AddWaypointToSelection(edge.Waypoint(0))
	e.AddWaypointToSelection(edge.Waypoint(2))
	e.AddNodesToSelection(c)
	count := rec.count()

	res := e.DeleteSelection()
	require.True(t, res.Committed)
	assert.Equal(t, count+1, rec.count(), "one transition")
	assert.NotContains(t, res.Graph.Nodes, c)
	assert.Equal(t, []nodegraph.Point{{X: 20, Y: 20}}, res.Graph.Nodes[a].Connections.Outputs[0].Waypoints)
	assert.Empty(t, res.Graph.Nodes[b].Connections.Outputs)
	assert.True(t, e.Selection().Empty())
	requireConsistent(t, res.Graph)

	assert.False(t, e.DeleteSelection().Changed)
}
