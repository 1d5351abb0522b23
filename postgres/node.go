package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/meikuraledutech/nodegraph"
)

// nodeData is the JSONB payload of a graph_nodes row: everything about a
// node except its identity columns and its connections.
type nodeData struct {
	Root     bool            `json:"root,omitempty"`
	Position nodegraph.Point `json:"position"`
	Size     *nodegraph.Size `json:"size,omitempty"`
	Values   map[string]any  `json:"values"`
}

func encodeNodeData(n *nodegraph.Node) ([]byte, error) {
	data, err := json.Marshal(nodeData{
		Root:     n.Root,
		Position: n.Position,
		Size:     n.Size,
		Values:   nodegraph.CopyValues(n.Values),
	})
	if err != nil {
		return nil, fmt.Errorf("nodegraph: encode node %s: %w", n.ID, err)
	}
	return data, nil
}

func decodeNodeData(n *nodegraph.Node, raw []byte) error {
	var d nodeData
	if err := json.Unmarshal(raw, &d); err != nil {
		return fmt.Errorf("nodegraph: decode node %s: %w", n.ID, err)
	}
	n.Root = d.Root
	n.Position = d.Position
	n.Size = d.Size
	n.Values = nodegraph.CopyValues(d.Values)
	n.Connections = nodegraph.Connections{
		Inputs:  []nodegraph.Connection{},
		Outputs: []nodegraph.Connection{},
	}
	return nil
}

// GetNode fetches a single node by its ID. Only the node's own fields are
// loaded; its connections are left empty (use GetGraph for wiring).
// Returns nil, nil if not found.
func (s *PGStore) GetNode(ctx context.Context, graphID, nodeID string) (*nodegraph.Node, error) {
	var n nodegraph.Node
	var raw []byte
	err := s.db.QueryRow(ctx,
		`SELECT id, name, type, data FROM graph_nodes WHERE graph_id = $1 AND id = $2`, graphID, nodeID,
	).Scan(&n.ID, &n.Name, &n.Type, &raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("nodegraph: get node: %w", err)
	}
	if err := decodeNodeData(&n, raw); err != nil {
		return nil, err
	}
	return &n, nil
}

// ListNodes returns all nodes for a graphID, ordered by ID, without their
// connections. Returns an empty slice (not nil) if none found.
func (s *PGStore) ListNodes(ctx context.Context, graphID string) ([]nodegraph.Node, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, name, type, data FROM graph_nodes WHERE graph_id = $1 ORDER BY id`, graphID)
	if err != nil {
		return nil, fmt.Errorf("nodegraph: list nodes: %w", err)
	}
	defer rows.Close()

	nodes := []nodegraph.Node{}
	for rows.Next() {
		var n nodegraph.Node
		var raw []byte
		if err := rows.Scan(&n.ID, &n.Name, &n.Type, &raw); err != nil {
			return nil, fmt.Errorf("nodegraph: scan node: %w", err)
		}
		if err := decodeNodeData(&n, raw); err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("nodegraph: rows nodes: %w", err)
	}

	return nodes, nil
}
