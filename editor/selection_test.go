package editor

import (
	"encoding/json"
	"testing"

	"github.com/meikuraledutech/nodegraph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ref(src, dst string, i int) nodegraph.WaypointRef {
	return nodegraph.WaypointRef{SrcNode: src, SrcPort: "out", DstNode: dst, DstPort: "in", WaypointIndex: i}
}

func TestSelection_NodesAddRemove(t *testing.T) {
	e, _ := newTestEditor(t, Options{})

	e.AddNodesToSelection("b", "a")
	e.AddNodesToSelection("a", "c")
	assert.Equal(t, []string{"a", "b", "c"}, e.Selection().Nodes())

	e.RemoveNodesFromSelection("b", "zzz")
	assert.Equal(t, []string{"a", "c"}, e.Selection().Nodes())

	e.ClearSelection()
	assert.True(t, e.Selection().Empty())
}

func TestSelection_IsImmutable(t *testing.T) {
	e, _ := newTestEditor(t, Options{})
	before := e.AddNodesToSelection("a")
	e.AddNodesToSelection("b")
	e.AddWaypointToSelection(ref("a", "b", 0))

	assert.Equal(t, []string{"a"}, before.Nodes())
	assert.Empty(t, before.Waypoints())
}

func TestSelectAllNodes(t *testing.T) {
	e, _ := newTestEditor(t, Options{})
	a := addNode(t, e, "number", 0, 0)
	b := addNode(t, e, "number", 0, 0)
	e.AddWaypointToSelection(ref(a, b, 0))

	sel := e.SelectAllNodes()
	assert.ElementsMatch(t, []string{a, b}, sel.Nodes())
	assert.Len(t, sel.Waypoints(), 1)
}

func TestSelection_Waypoints(t *testing.T) {
	e, _ := newTestEditor(t, Options{})
	w := ref("a", "b", 1)

	e.AddWaypointToSelection(w)
	e.AddWaypointToSelection(w)
	assert.Len(t, e.Selection().Waypoints(), 1, "structural equality deduplicates")
	assert.True(t, e.IsWaypointSelected(w))

	other := w
	other.WaypointIndex = 0
	assert.False(t, e.IsWaypointSelected(other))

	e.RemoveWaypointFromSelection(w)
	assert.False(t, e.IsWaypointSelected(w))
}

func TestIsWaypointSelected_Malformed(t *testing.T) {
	e, _ := newTestEditor(t, Options{})
	e.AddWaypointToSelection(nodegraph.WaypointRef{SrcNode: "a"})
	assert.Empty(t, e.Selection().Waypoints())
	assert.False(t, e.IsWaypointSelected(nodegraph.WaypointRef{SrcNode: "a"}))
	assert.False(t, e.IsWaypointSelected(nodegraph.WaypointRef{}))
}

func TestProcessAreaSelection(t *testing.T) {
	area := nodegraph.Rect{X: 0, Y: 0, Width: 100, Height: 100}
	w1, w2 := ref("a", "b", 0), ref("a", "b", 1)

	tests := []struct {
		name          string
		mode          AreaMode
		nodes         []string
		waypoints     []nodegraph.WaypointRef
		wantNodes     []string
		wantWaypoints []nodegraph.WaypointRef
		wantOK        bool
	}{
		{"select replaces", AreaSelect, []string{"c"}, []nodegraph.WaypointRef{w2}, []string{"c"}, []nodegraph.WaypointRef{w2}, true},
		{"select nothing clears", AreaSelect, nil, nil, []string{}, []nodegraph.WaypointRef{}, true},
		{"add unions", AreaAdd, []string{"c", "a"}, []nodegraph.WaypointRef{w2}, []string{"a", "b", "c"}, []nodegraph.WaypointRef{w1, w2}, true},
		{"remove subtracts", AreaRemove, []string{"a", "z"}, []nodegraph.WaypointRef{w1}, []string{"b"}, []nodegraph.WaypointRef{}, true},
		{"unknown mode", AreaMode("select-toggle"), []string{"c"}, nil, []string{"a", "b"}, []nodegraph.WaypointRef{w1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newTestEditor(t, Options{})
			e.AddNodesToSelection("a", "b")
			e.AddWaypointToSelection(w1)

			sel, ok := e.ProcessAreaSelection(area, tt.mode, tt.nodes, tt.waypoints)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantNodes, sel.Nodes())
			assert.Equal(t, tt.wantWaypoints, sel.Waypoints())
			assert.Equal(t, sel, e.Selection())
		})
	}
}

func TestSelection_MarshalJSON(t *testing.T) {
	sel := Selection{}.withNodes([]string{"b", "a"}).withWaypoints([]nodegraph.WaypointRef{ref("a", "b", 0)})
	data, err := json.Marshal(sel)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"nodes": ["a", "b"],
		"waypoints": [{"src_node": "a", "src_port": "out", "dst_node": "b", "dst_port": "in", "waypoint_index": 0}]
	}`, string(data))
}
