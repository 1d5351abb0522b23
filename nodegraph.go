package nodegraph

import (
	"maps"
	"slices"
)

// Graph is the editable document: every node keyed by ID plus the
// canvas pan offset and zoom scale.
// Nodes reference each other by ID only, so a Graph serializes without cycles.
type Graph struct {
	Nodes    map[string]*Node `json:"nodes"`
	Position Point            `json:"position"`
	Scale    float64          `json:"scale"`
}

// Node is a placed, typed unit on the canvas.
// Type indexes into a Registry which declares the node's ports.
type Node struct {
	ID          string         `json:"id" validate:"required"`
	Name        string         `json:"name" validate:"required"`
	Type        string         `json:"type" validate:"required"`
	Root        bool           `json:"root,omitempty"`
	Position    Point          `json:"position"`
	Size        *Size          `json:"size,omitempty"`
	Values      map[string]any `json:"values"`
	Connections Connections    `json:"connections"`
}

// Connections holds both directions of a node's wiring.
type Connections struct {
	Inputs  []Connection `json:"inputs"`
	Outputs []Connection `json:"outputs"`
}

// Connection is one side of an edge. On an output record Name is the local
// output port and Node/Port address the destination input; on an input record
// Name is the local input port and Node/Port address the source output.
// Waypoints are only kept on the output record.
type Connection struct {
	Name      string  `json:"name"`
	Node      string  `json:"node"`
	Port      string  `json:"port"`
	Type      string  `json:"type,omitempty"`
	Waypoints []Point `json:"waypoints,omitempty"`
}

// Edge is a connection flattened to a single record, as persisted.
type Edge struct {
	FromNode  string  `json:"from_node"`
	FromPort  string  `json:"from_port"`
	ToNode    string  `json:"to_node"`
	ToPort    string  `json:"to_port"`
	Type      string  `json:"type,omitempty"`
	Waypoints []Point `json:"waypoints,omitempty"`
}

// WaypointRef identifies a waypoint by the edge it belongs to and its index.
// It is not stable: inserting or removing waypoints on the same edge shifts it.
type WaypointRef struct {
	SrcNode       string `json:"src_node"`
	SrcPort       string `json:"src_port"`
	DstNode       string `json:"dst_node"`
	DstPort       string `json:"dst_port"`
	WaypointIndex int    `json:"waypoint_index"`
}

// Valid reports whether every field of the reference is populated.
func (r WaypointRef) Valid() bool {
	return r.SrcNode != "" && r.SrcPort != "" && r.DstNode != "" && r.DstPort != "" && r.WaypointIndex >= 0
}

// New creates an empty graph at the origin with a scale of 1.
func New() *Graph {
	return &Graph{Nodes: make(map[string]*Node), Scale: 1}
}

// Clone returns a deep copy of the graph.
func (g *Graph) Clone() *Graph {
	out := &Graph{
		Nodes:    make(map[string]*Node, len(g.Nodes)),
		Position: g.Position,
		Scale:    g.Scale,
	}
	for id, n := range g.Nodes {
		out.Nodes[id] = n.Clone()
	}
	return out
}

// Clone returns a deep copy of the node. Values are copied one level deep.
func (n *Node) Clone() *Node {
	out := *n
	if n.Size != nil {
		s := *n.Size
		out.Size = &s
	}
	out.Values = CopyValues(n.Values)
	out.Connections = Connections{
		Inputs:  cloneConnections(n.Connections.Inputs),
		Outputs: cloneConnections(n.Connections.Outputs),
	}
	return &out
}

// CopyValues returns a shallow copy of a value bag. A nil bag yields an empty map.
func CopyValues(values map[string]any) map[string]any {
	out := make(map[string]any, len(values))
	for k, v := range values {
		out[k] = v
	}
	return out
}

func cloneConnections(in []Connection) []Connection {
	out := make([]Connection, len(in))
	for i, c := range in {
		out[i] = c.Clone()
	}
	return out
}

// Clone returns a copy of the connection with its own waypoint slice.
func (c Connection) Clone() Connection {
	if c.Waypoints != nil {
		c.Waypoints = append([]Point(nil), c.Waypoints...)
	}
	return c
}

// Matches reports whether an output record points at dstNode/dstPort from srcPort.
func (c Connection) Matches(port, node, otherPort string) bool {
	return c.Name == port && c.Node == node && c.Port == otherPort
}

// Edges flattens the output side of every connection in the graph, ordered
// by source node ID. Returns an empty slice (not nil) if the graph has no
// connections.
func (g *Graph) Edges() []Edge {
	edges := []Edge{}
	for _, id := range slices.Sorted(maps.Keys(g.Nodes)) {
		n := g.Nodes[id]
		for _, c := range n.Connections.Outputs {
			edges = append(edges, Edge{
				FromNode:  id,
				FromPort:  c.Name,
				ToNode:    c.Node,
				ToPort:    c.Port,
				Type:      c.Type,
				Waypoints: append([]Point{}, c.Waypoints...),
			})
		}
	}
	return edges
}

// Link builds a graph from nodes and flattened edges, writing both sides of
// every edge. Any connections already present on the nodes are discarded.
// Edges whose endpoints are missing are reported with ErrDanglingConnection.
func Link(nodes []Node, edges []Edge) (map[string]*Node, error) {
	out := make(map[string]*Node, len(nodes))
	for i := range nodes {
		n := nodes[i].Clone()
		n.Connections = Connections{Inputs: []Connection{}, Outputs: []Connection{}}
		out[n.ID] = n
	}
	for _, e := range edges {
		src, ok := out[e.FromNode]
		if !ok {
			return nil, danglingError(e.FromNode, e)
		}
		dst, ok := out[e.ToNode]
		if !ok {
			return nil, danglingError(e.ToNode, e)
		}
		waypoints := append([]Point{}, e.Waypoints...)
		src.Connections.Outputs = append(src.Connections.Outputs, Connection{
			Name: e.FromPort, Node: e.ToNode, Port: e.ToPort, Type: e.Type, Waypoints: waypoints,
		})
		dst.Connections.Inputs = append(dst.Connections.Inputs, Connection{
			Name: e.ToPort, Node: e.FromNode, Port: e.FromPort, Type: e.Type,
		})
	}
	return out, nil
}

// CheckConnections verifies that every output record has a matching input
// record on the destination with the same type tag and vice versa, and that
// no record references a node outside the graph.
func (g *Graph) CheckConnections() error {
	for id, n := range g.Nodes {
		for _, c := range n.Connections.Outputs {
			dst, ok := g.Nodes[c.Node]
			if !ok {
				return danglingError(c.Node, Edge{FromNode: id, FromPort: c.Name, ToNode: c.Node, ToPort: c.Port})
			}
			if !hasRecord(dst.Connections.Inputs, c.Port, id, c.Name, c.Type) {
				return danglingError(c.Node, Edge{FromNode: id, FromPort: c.Name, ToNode: c.Node, ToPort: c.Port})
			}
		}
		for _, c := range n.Connections.Inputs {
			src, ok := g.Nodes[c.Node]
			if !ok {
				return danglingError(c.Node, Edge{FromNode: c.Node, FromPort: c.Port, ToNode: id, ToPort: c.Name})
			}
			if !hasRecord(src.Connections.Outputs, c.Port, id, c.Name, c.Type) {
				return danglingError(c.Node, Edge{FromNode: c.Node, FromPort: c.Port, ToNode: id, ToPort: c.Name})
			}
		}
	}
	return nil
}

func hasRecord(records []Connection, name, node, port, typ string) bool {
	for _, r := range records {
		if r.Matches(name, node, port) && r.Type == typ {
			return true
		}
	}
	return false
}

// EdgeKey addresses one edge by both of its endpoints.
type EdgeKey struct {
	SrcNode string `json:"src_node"`
	SrcPort string `json:"src_port"`
	DstNode string `json:"dst_node"`
	DstPort string `json:"dst_port"`
}

// Waypoint returns a reference to the i-th waypoint of the edge.
func (k EdgeKey) Waypoint(i int) WaypointRef {
	return WaypointRef{SrcNode: k.SrcNode, SrcPort: k.SrcPort, DstNode: k.DstNode, DstPort: k.DstPort, WaypointIndex: i}
}

// Edge returns the edge the waypoint belongs to.
func (r WaypointRef) Edge() EdgeKey {
	return EdgeKey{SrcNode: r.SrcNode, SrcPort: r.SrcPort, DstNode: r.DstNode, DstPort: r.DstPort}
}
