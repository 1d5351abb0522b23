package editor

import (
	"encoding/json"
	"log/slog"
	"slices"

	"github.com/meikuraledutech/nodegraph"
)

// AreaMode is how an area selection combines with the current selection.
type AreaMode string

const (
	AreaSelect AreaMode = "select"
	AreaAdd    AreaMode = "select-add"
	AreaRemove AreaMode = "select-remove"
)

// Selection is the set of selected nodes and waypoints. The zero value is
// empty. Methods never modify the receiver; they return a new Selection.
type Selection struct {
	nodes     map[string]struct{}
	waypoints []nodegraph.WaypointRef
}

// Nodes returns the selected node IDs in sorted order.
func (s Selection) Nodes() []string {
	ids := make([]string, 0, len(s.nodes))
	for id := range s.nodes {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Waypoints returns the selected waypoint references.
func (s Selection) Waypoints() []nodegraph.WaypointRef {
	return append([]nodegraph.WaypointRef{}, s.waypoints...)
}

// HasNode reports whether id is selected.
func (s Selection) HasNode(id string) bool {
	_, ok := s.nodes[id]
	return ok
}

// HasWaypoint reports whether ref is selected. Malformed references are
// never selected.
func (s Selection) HasWaypoint(ref nodegraph.WaypointRef) bool {
	return ref.Valid() && slices.Contains(s.waypoints, ref)
}

// Empty reports whether nothing is selected.
func (s Selection) Empty() bool {
	return len(s.nodes) == 0 && len(s.waypoints) == 0
}

// MarshalJSON encodes the selection as sorted node IDs plus waypoint refs.
func (s Selection) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Nodes     []string                `json:"nodes"`
		Waypoints []nodegraph.WaypointRef `json:"waypoints"`
	}{s.Nodes(), s.Waypoints()})
}

func (s Selection) withNodes(ids []string) Selection {
	s.nodes = make(map[string]struct{}, len(ids))
	for _, id := range ids {
		s.nodes[id] = struct{}{}
	}
	return s
}

func (s Selection) addNodes(ids []string) Selection {
	nodes := make(map[string]struct{}, len(s.nodes)+len(ids))
	for id := range s.nodes {
		nodes[id] = struct{}{}
	}
	for _, id := range ids {
		nodes[id] = struct{}{}
	}
	s.nodes = nodes
	return s
}

func (s Selection) removeNodes(ids []string) Selection {
	nodes := make(map[string]struct{}, len(s.nodes))
	for id := range s.nodes {
		if !slices.Contains(ids, id) {
			nodes[id] = struct{}{}
		}
	}
	s.nodes = nodes
	return s
}

func (s Selection) withWaypoints(refs []nodegraph.WaypointRef) Selection {
	s.waypoints = nil
	return s.addWaypoints(refs)
}

func (s Selection) addWaypoints(refs []nodegraph.WaypointRef) Selection {
	out := append([]nodegraph.WaypointRef{}, s.waypoints...)
	for _, ref := range refs {
		if ref.Valid() && !slices.Contains(out, ref) {
			out = append(out, ref)
		}
	}
	s.waypoints = out
	return s
}

func (s Selection) removeWaypoints(refs []nodegraph.WaypointRef) Selection {
	out := make([]nodegraph.WaypointRef, 0, len(s.waypoints))
	for _, ref := range s.waypoints {
		if !slices.Contains(refs, ref) {
			out = append(out, ref)
		}
	}
	s.waypoints = out
	return s
}

// area combines the current selection with the contents of a selection
// rectangle. ok is false for an unknown mode.
func (s Selection) area(mode AreaMode, nodes []string, waypoints []nodegraph.WaypointRef) (Selection, bool) {
	switch mode {
	case AreaSelect:
		if len(nodes) == 0 && len(waypoints) == 0 {
			return Selection{}, true
		}
		return Selection{}.withNodes(nodes).withWaypoints(waypoints), true
	case AreaAdd:
		return s.addNodes(nodes).addWaypoints(waypoints), true
	case AreaRemove:
		return s.removeNodes(nodes).removeWaypoints(waypoints), true
	default:
		return s, false
	}
}

// prune drops nodes that no longer exist and waypoint refs whose edge or
// index no longer resolves.
func (s Selection) prune(g *nodegraph.Graph) Selection {
	var ids []string
	for id := range s.nodes {
		if _, ok := g.Nodes[id]; ok {
			ids = append(ids, id)
		}
	}
	var refs []nodegraph.WaypointRef
	for _, ref := range s.waypoints {
		if waypointExists(g, ref) {
			refs = append(refs, ref)
		}
	}
	return Selection{}.withNodes(ids).withWaypoints(refs)
}

func waypointExists(g *nodegraph.Graph, ref nodegraph.WaypointRef) bool {
	src, ok := g.Nodes[ref.SrcNode]
	if !ok {
		return false
	}
	for _, c := range src.Connections.Outputs {
		if c.Matches(ref.SrcPort, ref.DstNode, ref.DstPort) {
			return ref.WaypointIndex >= 0 && ref.WaypointIndex < len(c.Waypoints)
		}
	}
	return false
}

// Selection returns the current selection.
func (e *Editor) Selection() Selection {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selection
}

func (e *Editor) updateSelection(fn func(Selection) Selection) Selection {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.selection = fn(e.selection)
	return e.selection
}

// ClearSelection deselects everything.
func (e *Editor) ClearSelection() Selection {
	return e.updateSelection(func(Selection) Selection { return Selection{} })
}

// SelectAllNodes selects every node in the document. Waypoint selection is
// left as it is.
func (e *Editor) SelectAllNodes() Selection {
	e.mu.Lock()
	defer e.mu.Unlock()
	ids := make([]string, 0, len(e.graph.Nodes))
	for id := range e.graph.Nodes {
		ids = append(ids, id)
	}
	e.selection = e.selection.withNodes(ids)
	return e.selection
}

// AddNodesToSelection adds ids to the selected nodes.
func (e *Editor) AddNodesToSelection(ids ...string) Selection {
	return e.updateSelection(func(s Selection) Selection { return s.addNodes(ids) })
}

// RemoveNodesFromSelection deselects ids.
func (e *Editor) RemoveNodesFromSelection(ids ...string) Selection {
	return e.updateSelection(func(s Selection) Selection { return s.removeNodes(ids) })
}

// AddWaypointToSelection selects ref. Malformed references are ignored.
func (e *Editor) AddWaypointToSelection(ref nodegraph.WaypointRef) Selection {
	return e.updateSelection(func(s Selection) Selection {
		return s.addWaypoints([]nodegraph.WaypointRef{ref})
	})
}

// RemoveWaypointFromSelection deselects ref.
func (e *Editor) RemoveWaypointFromSelection(ref nodegraph.WaypointRef) Selection {
	return e.updateSelection(func(s Selection) Selection {
		return s.removeWaypoints([]nodegraph.WaypointRef{ref})
	})
}

// IsWaypointSelected reports whether ref is selected; false for malformed refs.
func (e *Editor) IsWaypointSelected(ref nodegraph.WaypointRef) bool {
	return e.Selection().HasWaypoint(ref)
}

// ProcessAreaSelection applies a rubber-band selection. The renderer works
// out which nodes and waypoints fall inside area. Unknown modes leave the
// selection untouched and return false.
func (e *Editor) ProcessAreaSelection(area nodegraph.Rect, mode AreaMode, nodes []string, waypoints []nodegraph.WaypointRef) (Selection, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	next, ok := e.selection.area(mode, nodes, waypoints)
	if !ok {
		e.logger.Debug("editor: unknown area selection mode", slog.String("mode", string(mode)))
		return e.selection, false
	}
	e.logger.Debug("editor: area selection",
		slog.String("mode", string(mode)),
		slog.Any("area", area),
		slog.Int("nodes", len(nodes)),
		slog.Int("waypoints", len(waypoints)))
	e.selection = next
	return next, true
}
