package memstore

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/meikuraledutech/nodegraph"
)

// Store keeps one deep copy of each saved graph, keyed by graph ID.
//
// Every read returns a fresh copy so callers can never reach into the stored
// document. A single RWMutex guards the map; documents are written whole, so
// there is no finer-grained state to lock.
type Store struct {
	mu     sync.RWMutex
	graphs map[string]*nodegraph.Graph
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{graphs: make(map[string]*nodegraph.Graph)}
}

var _ nodegraph.Store = (*Store)(nil)

// CreateSchema is a no-op; the store needs no setup.
func (s *Store) CreateSchema(ctx context.Context) error {
	return nil
}

// DropSchema discards every stored graph.
func (s *Store) DropSchema(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.graphs)
	return nil
}

// SaveGraph stores a copy of g under graphID, replacing any previous version.
// Graphs with one-sided or dangling connections are rejected.
func (s *Store) SaveGraph(ctx context.Context, graphID string, g *nodegraph.Graph) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := g.CheckConnections(); err != nil {
		return fmt.Errorf("memstore: save graph %s: %w", graphID, err)
	}
	for id, n := range g.Nodes {
		if id != n.ID {
			return fmt.Errorf("%w: key %s holds node %s", nodegraph.ErrInvalidNode, id, n.ID)
		}
		if err := n.Validate(); err != nil {
			return err
		}
	}

	cp := g.Clone()
	s.mu.Lock()
	s.graphs[graphID] = cp
	s.mu.Unlock()
	return nil
}

// GetGraph returns a copy of the stored graph.
// Returns nil, nil if the graph does not exist.
func (s *Store) GetGraph(ctx context.Context, graphID string) (*nodegraph.Graph, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.graphs[graphID]
	if !ok {
		return nil, nil
	}
	return g.Clone(), nil
}

// DeleteGraph removes a graph. No error if it doesn't exist.
func (s *Store) DeleteGraph(ctx context.Context, graphID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.graphs, graphID)
	return nil
}

// GetNode fetches a single node of a graph.
// Returns nil, nil if the graph or node is not found.
func (s *Store) GetNode(ctx context.Context, graphID, nodeID string) (*nodegraph.Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.graphs[graphID]
	if !ok {
		return nil, nil
	}
	n, ok := g.Nodes[nodeID]
	if !ok {
		return nil, nil
	}
	return n.Clone(), nil
}

// ListNodes returns every node of a graph ordered by ID.
// Returns an empty slice (not nil) if none found.
func (s *Store) ListNodes(ctx context.Context, graphID string) ([]nodegraph.Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	nodes := []nodegraph.Node{}
	g, ok := s.graphs[graphID]
	if !ok {
		return nodes, nil
	}
	for _, id := range slices.Sorted(maps.Keys(g.Nodes)) {
		nodes = append(nodes, *g.Nodes[id].Clone())
	}
	return nodes, nil
}

// ListEdges returns the flattened connections of a graph, ordered by
// source node and port. Returns an empty slice (not nil) if none found.
func (s *Store) ListEdges(ctx context.Context, graphID string) ([]nodegraph.Edge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.graphs[graphID]
	if !ok {
		return []nodegraph.Edge{}, nil
	}
	edges := g.Edges()
	slices.SortStableFunc(edges, func(a, b nodegraph.Edge) int {
		return cmp.Or(
			cmp.Compare(a.FromNode, b.FromNode),
			cmp.Compare(a.FromPort, b.FromPort),
		)
	})
	return edges, nil
}
