package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/meikuraledutech/nodegraph"
)

// SaveGraph saves a full graph (nodes + connections) in one transaction,
// replacing whatever was stored under graphID. Each connection is stored
// once, from its output side.
// Returns ErrDanglingConnection if the graph's connection records disagree.
func (s *PGStore) SaveGraph(ctx context.Context, graphID string, g *nodegraph.Graph) error {
	if err := g.CheckConnections(); err != nil {
		return err
	}
	for id, n := range g.Nodes {
		if id != n.ID {
			return fmt.Errorf("%w: key %s holds node %s", nodegraph.ErrInvalidNode, id, n.ID)
		}
		if err := n.Validate(); err != nil {
			return err
		}
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("nodegraph: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`INSERT INTO graphs (id, position_x, position_y, scale) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO UPDATE
		 SET position_x = EXCLUDED.position_x, position_y = EXCLUDED.position_y,
		     scale = EXCLUDED.scale, updated_at = NOW()`,
		graphID, g.Position.X, g.Position.Y, g.Scale,
	); err != nil {
		return fmt.Errorf("nodegraph: upsert graph: %w", err)
	}

	// Replace semantics: connections go with their nodes.
	if _, err := tx.Exec(ctx, `DELETE FROM graph_nodes WHERE graph_id = $1`, graphID); err != nil {
		return fmt.Errorf("nodegraph: delete nodes: %w", err)
	}

	for _, n := range g.Nodes {
		data, err := encodeNodeData(n)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO graph_nodes (graph_id, id, name, type, data) VALUES ($1, $2, $3, $4, $5)`,
			graphID, n.ID, n.Name, n.Type, data,
		); err != nil {
			return fmt.Errorf("nodegraph: insert node %s: %w", n.ID, err)
		}
	}

	for i, e := range g.Edges() {
		waypoints, err := encodeWaypoints(e.Waypoints)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO graph_connections (graph_id, from_node, from_port, to_node, to_port, type, waypoints, ordinal)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			graphID, e.FromNode, e.FromPort, e.ToNode, e.ToPort, e.Type, waypoints, i,
		); err != nil {
			return fmt.Errorf("nodegraph: insert connection %s.%s -> %s.%s: %w", e.FromNode, e.FromPort, e.ToNode, e.ToPort, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("nodegraph: commit: %w", err)
	}
	return nil
}

// GetGraph retrieves a full graph by its ID, with both sides of every
// connection rebuilt from the stored output records.
// Returns nil, nil if the graph does not exist.
func (s *PGStore) GetGraph(ctx context.Context, graphID string) (*nodegraph.Graph, error) {
	g := nodegraph.New()
	err := s.db.QueryRow(ctx,
		`SELECT position_x, position_y, scale FROM graphs WHERE id = $1`, graphID,
	).Scan(&g.Position.X, &g.Position.Y, &g.Scale)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("nodegraph: get graph: %w", err)
	}

	nodes, err := s.ListNodes(ctx, graphID)
	if err != nil {
		return nil, err
	}
	edges, err := s.ListEdges(ctx, graphID)
	if err != nil {
		return nil, err
	}

	g.Nodes, err = nodegraph.Link(nodes, edges)
	if err != nil {
		return nil, fmt.Errorf("nodegraph: load graph %s: %w", graphID, err)
	}
	return g, nil
}

// DeleteGraph removes a graph with all its nodes and connections.
// No error if the graphID doesn't exist.
func (s *PGStore) DeleteGraph(ctx context.Context, graphID string) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM graphs WHERE id = $1`, graphID); err != nil {
		return fmt.Errorf("nodegraph: delete graph: %w", err)
	}
	return nil
}
