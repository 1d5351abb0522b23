package editor

import "github.com/meikuraledutech/nodegraph"

// MoveRequest is one pointer sample of a node drag.
type MoveRequest struct {
	NodeID   string
	Position nodegraph.Point
	Commit   bool
}

// Move feeds a drag sample through the drag throttle. Intermediate samples
// may be dropped, but they are applied in the order they were given. A
// committing sample (drag end) is applied before Move returns.
func (e *Editor) Move(id string, position nodegraph.Point, commit bool) {
	e.drag.Invoke(MoveRequest{NodeID: id, Position: position, Commit: commit})
	if commit {
		e.drag.Flush()
	}
}

// MoveNow drags node id to position without throttling.
//
// If the node is not selected the selection collapses to it. With grid
// snapping the dragged node lands on the grid and every other selected node
// moves by the same, snapped, delta. Selected waypoints on output
// connections of moved nodes move by that delta too.
func (e *Editor) MoveNow(id string, position nodegraph.Point, commit bool) Result {
	return e.apply(commit, func(tx *txn) bool {
		dragged, ok := tx.get(id)
		if !ok {
			return false
		}
		collapsed := !tx.sel.HasNode(id)
		if collapsed {
			tx.sel = Selection{}.withNodes([]string{id})
		}

		target := position
		if e.grid.Enabled {
			target = nodegraph.SnapToGrid(position, e.grid.Size)
		}
		delta := target.Sub(dragged.Position)
		if delta == (nodegraph.Point{}) {
			// Nothing moves, but a drag end still has to commit.
			return commit || collapsed
		}

		moved := make(map[string]bool)
		for _, sid := range tx.sel.Nodes() {
			n, ok := tx.edit(sid)
			if !ok {
				continue
			}
			if sid == id {
				n.Position = target
			} else {
				n.Position = n.Position.Add(delta)
			}
			moved[sid] = true
		}

		for _, ref := range tx.sel.waypoints {
			if !moved[ref.SrcNode] {
				continue
			}
			c, ok := tx.editOutput(ref.Edge())
			if !ok || ref.WaypointIndex < 0 || ref.WaypointIndex >= len(c.Waypoints) {
				continue
			}
			c.Waypoints[ref.WaypointIndex] = c.Waypoints[ref.WaypointIndex].Add(delta)
		}
		return true
	})
}
