package editor

import (
	"maps"

	"github.com/meikuraledutech/nodegraph"
)

// txn is a copy-on-write view of a graph and selection. Nodes are shared
// with the base graph until edit copies them.
type txn struct {
	nodes    map[string]*nodegraph.Node
	owned    map[string]bool
	position nodegraph.Point
	scale    float64
	sel      Selection
}

func newTxn(g *nodegraph.Graph, sel Selection) *txn {
	return &txn{
		nodes:    maps.Clone(g.Nodes),
		owned:    make(map[string]bool),
		position: g.Position,
		scale:    g.Scale,
		sel:      sel,
	}
}

// get returns a node for reading. The caller must not modify it.
func (t *txn) get(id string) (*nodegraph.Node, bool) {
	n, ok := t.nodes[id]
	return n, ok
}

// edit returns a node that is private to this transaction.
func (t *txn) edit(id string) (*nodegraph.Node, bool) {
	n, ok := t.nodes[id]
	if !ok {
		return nil, false
	}
	if !t.owned[id] {
		n = n.Clone()
		t.nodes[id] = n
		t.owned[id] = true
	}
	return n, true
}

func (t *txn) put(n *nodegraph.Node) {
	t.nodes[n.ID] = n
	t.owned[n.ID] = true
}

func (t *txn) remove(id string) {
	delete(t.nodes, id)
	delete(t.owned, id)
}

func (t *txn) graph() *nodegraph.Graph {
	return &nodegraph.Graph{Nodes: t.nodes, Position: t.position, Scale: t.scale}
}

// outputIndex locates the output record for edge on its source node.
func (t *txn) outputIndex(edge nodegraph.EdgeKey) (int, bool) {
	src, ok := t.get(edge.SrcNode)
	if !ok {
		return 0, false
	}
	for i, c := range src.Connections.Outputs {
		if c.Matches(edge.SrcPort, edge.DstNode, edge.DstPort) {
			return i, true
		}
	}
	return 0, false
}

// editOutput returns the editable output record for edge.
func (t *txn) editOutput(edge nodegraph.EdgeKey) (*nodegraph.Connection, bool) {
	i, ok := t.outputIndex(edge)
	if !ok {
		return nil, false
	}
	src, _ := t.edit(edge.SrcNode)
	return &src.Connections.Outputs[i], true
}
