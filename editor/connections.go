package editor

import (
	"log/slog"
	"slices"

	"github.com/meikuraledutech/nodegraph"
)

// PortRef addresses one port on one node.
type PortRef struct {
	NodeID   string `json:"nodeId"`
	PortName string `json:"portName"`
}

// Connect wires source's output port to target's input port. The request
// is dropped without error when it would create a self-loop, when either
// node or port cannot be resolved, or when the port types differ. Connecting
// an already connected pair changes nothing.
func (e *Editor) Connect(source, target PortRef) Result {
	return e.apply(true, func(tx *txn) bool {
		if source.NodeID == target.NodeID {
			e.logger.Debug("editor: connect rejected, self-loop", slog.String("node", source.NodeID))
			return false
		}
		src, ok := tx.get(source.NodeID)
		if !ok {
			return false
		}
		dst, ok := tx.get(target.NodeID)
		if !ok {
			return false
		}
		out, ok := e.resolvePort(src, source.PortName, true)
		if !ok {
			e.logger.Debug("editor: connect rejected, unknown output port",
				slog.String("node", src.ID), slog.String("port", source.PortName))
			return false
		}
		in, ok := e.resolvePort(dst, target.PortName, false)
		if !ok {
			e.logger.Debug("editor: connect rejected, unknown input port",
				slog.String("node", dst.ID), slog.String("port", target.PortName))
			return false
		}
		if out.Type != in.Type {
			e.logger.Debug("editor: connect rejected, port type mismatch",
				slog.String("output", out.Type), slog.String("input", in.Type))
			return false
		}

		changed := false
		if !hasConnection(src.Connections.Outputs, out.Name, dst.ID, in.Name) {
			s, _ := tx.edit(src.ID)
			s.Connections.Outputs = append(s.Connections.Outputs, nodegraph.Connection{
				Name:      out.Name,
				Node:      dst.ID,
				Port:      in.Name,
				Type:      out.Type,
				Waypoints: []nodegraph.Point{},
			})
			changed = true
		}
		if !hasConnection(dst.Connections.Inputs, in.Name, src.ID, out.Name) {
			d, _ := tx.edit(dst.ID)
			d.Connections.Inputs = append(d.Connections.Inputs, nodegraph.Connection{
				Name: in.Name,
				Node: src.ID,
				Port: out.Name,
				Type: in.Type,
			})
			changed = true
		}
		return changed
	})
}

// resolvePort looks a port up in the node type's declaration given the
// node's current values.
func (e *Editor) resolvePort(n *nodegraph.Node, name string, output bool) (nodegraph.PortDescriptor, bool) {
	typ, ok := e.registry.Lookup(n.Type)
	if !ok {
		return nodegraph.PortDescriptor{}, false
	}
	var ports []nodegraph.PortDescriptor
	if output {
		ports = typ.OutputPorts(n.Values, n.Connections.Inputs)
	} else {
		ports = typ.InputPorts(n.Values, n.Connections.Inputs)
	}
	return nodegraph.FindPort(ports, name)
}

func hasConnection(records []nodegraph.Connection, name, node, port string) bool {
	return slices.ContainsFunc(records, func(c nodegraph.Connection) bool {
		return c.Matches(name, node, port)
	})
}

// RemoveConnectionFromOutput removes the edge between srcNode.srcPort and
// dstNode.dstPort from both endpoints.
func (e *Editor) RemoveConnectionFromOutput(srcNode, srcPort, dstNode, dstPort string) Result {
	return e.apply(true, func(tx *txn) bool {
		src, ok := tx.get(srcNode)
		if !ok {
			return false
		}
		dst, ok := tx.get(dstNode)
		if !ok {
			return false
		}
		oi := slices.IndexFunc(src.Connections.Outputs, func(c nodegraph.Connection) bool {
			return c.Matches(srcPort, dstNode, dstPort)
		})
		ii := slices.IndexFunc(dst.Connections.Inputs, func(c nodegraph.Connection) bool {
			return c.Matches(dstPort, srcNode, srcPort)
		})
		if oi < 0 && ii < 0 {
			return false
		}
		if oi >= 0 {
			s, _ := tx.edit(srcNode)
			s.Connections.Outputs = slices.Delete(s.Connections.Outputs, oi, oi+1)
		}
		if ii >= 0 {
			d, _ := tx.edit(dstNode)
			d.Connections.Inputs = slices.Delete(d.Connections.Inputs, ii, ii+1)
		}
		return true
	})
}

// AddWaypoint appends a routing point to the edge.
func (e *Editor) AddWaypoint(edge nodegraph.EdgeKey, p nodegraph.Point) Result {
	return e.apply(true, func(tx *txn) bool {
		c, ok := tx.editOutput(edge)
		if !ok {
			return false
		}
		c.Waypoints = append(c.Waypoints, p)
		return true
	})
}

// UpdateWaypointPosition moves the waypoint at index. Out-of-range indices
// are ignored. Pass commit=false for intermediate drag frames.
func (e *Editor) UpdateWaypointPosition(edge nodegraph.EdgeKey, index int, p nodegraph.Point, commit bool) Result {
	return e.apply(commit, func(tx *txn) bool {
		i, ok := tx.outputIndex(edge)
		if !ok {
			return false
		}
		src, _ := tx.get(edge.SrcNode)
		if index < 0 || index >= len(src.Connections.Outputs[i].Waypoints) {
			return false
		}
		c, _ := tx.editOutput(edge)
		c.Waypoints[index] = p
		return true
	})
}

// RemoveWaypoint deletes the waypoint at index; later waypoints shift down
// by one, so references to them now designate their predecessors' slots.
func (e *Editor) RemoveWaypoint(edge nodegraph.EdgeKey, index int) Result {
	return e.apply(true, func(tx *txn) bool {
		return removeWaypoints(tx, []nodegraph.WaypointRef{edge.Waypoint(index)})
	})
}
