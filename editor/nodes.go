package editor

import (
	"cmp"
	"log/slog"
	"slices"

	"github.com/meikuraledutech/nodegraph"
)

// AddNode places a new node of nodeType at position. Its values start from
// the default value of each declared input; ports without a default are
// left out. Returns the new node's ID.
func (e *Editor) AddNode(nodeType string, position nodegraph.Point) (string, Result) {
	typ, ok := e.registry.Lookup(nodeType)
	if !ok {
		e.logger.Warn("editor: adding node of unregistered type", slog.String("type", nodeType))
	}
	name := typ.Label
	if name == "" {
		name = nodeType
	}
	n := nodegraph.MustValidNode(&nodegraph.Node{
		ID:       nodegraph.NewID(),
		Name:     name,
		Type:     nodeType,
		Root:     typ.Root,
		Position: position,
		Values:   typ.DefaultValues(),
		Connections: nodegraph.Connections{
			Inputs:  []nodegraph.Connection{},
			Outputs: []nodegraph.Connection{},
		},
	})
	res := e.apply(true, func(tx *txn) bool {
		tx.put(n)
		return true
	})
	return n.ID, res
}

// RemoveNodes deletes the given nodes and strips every connection record
// elsewhere in the graph that pointed at them. Root nodes and unknown IDs
// are skipped. Any removal clears the whole selection.
func (e *Editor) RemoveNodes(ids ...string) Result {
	if len(ids) == 0 {
		return Result{Graph: e.State()}
	}
	return e.apply(true, func(tx *txn) bool {
		if !e.removeNodes(tx, ids) {
			return false
		}
		tx.sel = Selection{}
		return true
	})
}

// removeNodes applies the removal inside tx and reports whether anything
// was deleted.
func (e *Editor) removeNodes(tx *txn, ids []string) bool {
	doomed := make(map[string]bool, len(ids))
	for _, id := range ids {
		n, ok := tx.get(id)
		if !ok {
			continue
		}
		if e.isRoot(n) {
			e.logger.Debug("editor: root node is protected from removal", slog.String("node", id))
			continue
		}
		doomed[id] = true
	}
	if len(doomed) == 0 {
		return false
	}

	for id := range doomed {
		n, _ := tx.get(id)
		neighbours := make(map[string]bool)
		for _, c := range n.Connections.Outputs {
			neighbours[c.Node] = true
		}
		for _, c := range n.Connections.Inputs {
			neighbours[c.Node] = true
		}
		for other := range neighbours {
			if doomed[other] {
				continue
			}
			o, ok := tx.edit(other)
			if !ok {
				continue
			}
			o.Connections.Inputs = dropNode(o.Connections.Inputs, id)
			o.Connections.Outputs = dropNode(o.Connections.Outputs, id)
		}
	}
	for id := range doomed {
		tx.remove(id)
	}
	return true
}

func dropNode(records []nodegraph.Connection, id string) []nodegraph.Connection {
	return slices.DeleteFunc(records, func(c nodegraph.Connection) bool { return c.Node == id })
}

// CloneNode copies a node under a fresh ID, offset by (+20, +20). The copy
// has no connections. Returns "" when id does not exist.
func (e *Editor) CloneNode(id string) (string, Result) {
	var cloneID string
	res := e.apply(true, func(tx *txn) bool {
		n, ok := tx.get(id)
		if !ok {
			return false
		}
		c := cloneDetached(n)
		tx.put(c)
		cloneID = c.ID
		return true
	})
	return cloneID, res
}

// CloneSelection clones every selected node and selects the clones.
func (e *Editor) CloneSelection() ([]string, Result) {
	var ids []string
	res := e.apply(true, func(tx *txn) bool {
		for _, id := range tx.sel.Nodes() {
			n, ok := tx.get(id)
			if !ok {
				continue
			}
			c := cloneDetached(n)
			tx.put(c)
			ids = append(ids, c.ID)
		}
		if len(ids) == 0 {
			return false
		}
		tx.sel = Selection{}.withNodes(ids)
		return true
	})
	return ids, res
}

func cloneDetached(n *nodegraph.Node) *nodegraph.Node {
	c := n.Clone()
	c.ID = nodegraph.NewID()
	c.Root = false
	c.Position = n.Position.Add(cloneOffset)
	c.Connections = nodegraph.Connections{
		Inputs:  []nodegraph.Connection{},
		Outputs: []nodegraph.Connection{},
	}
	return c
}

// UpdateNodeValues replaces a node's values wholesale. Ports and
// connections are left alone even if the new values change which ports the
// node's type declares.
func (e *Editor) UpdateNodeValues(id string, values map[string]any) Result {
	return e.apply(true, func(tx *txn) bool {
		n, ok := tx.edit(id)
		if !ok {
			return false
		}
		n.Values = nodegraph.CopyValues(values)
		return true
	})
}

// SetNodeSize records a node's rendered size. Measurements are local and
// never notify the host.
func (e *Editor) SetNodeSize(id string, size nodegraph.Size) Result {
	return e.apply(false, func(tx *txn) bool {
		n, ok := tx.get(id)
		if !ok || (n.Size != nil && *n.Size == size) {
			return false
		}
		n, _ = tx.edit(id)
		n.Size = &size
		return true
	})
}

// DeleteSelection removes the selected waypoints and then the selected
// nodes in a single transition, and clears the selection.
func (e *Editor) DeleteSelection() Result {
	return e.apply(true, func(tx *txn) bool {
		changed := removeWaypoints(tx, tx.sel.waypoints)
		if e.removeNodes(tx, tx.sel.Nodes()) {
			changed = true
		}
		if !changed {
			return false
		}
		tx.sel = Selection{}
		return true
	})
}

// removeWaypoints deletes refs highest index first per edge, so that earlier
// deletions do not shift the indices of later ones.
func removeWaypoints(tx *txn, refs []nodegraph.WaypointRef) bool {
	sorted := append([]nodegraph.WaypointRef{}, refs...)
	slices.SortFunc(sorted, func(a, b nodegraph.WaypointRef) int {
		return cmp.Compare(b.WaypointIndex, a.WaypointIndex)
	})
	changed := false
	for _, ref := range sorted {
		c, ok := tx.editOutput(ref.Edge())
		if !ok || ref.WaypointIndex < 0 || ref.WaypointIndex >= len(c.Waypoints) {
			continue
		}
		c.Waypoints = slices.Delete(c.Waypoints, ref.WaypointIndex, ref.WaypointIndex+1)
		changed = true
	}
	return changed
}
