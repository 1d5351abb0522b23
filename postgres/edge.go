package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/meikuraledutech/nodegraph"
)

func encodeWaypoints(points []nodegraph.Point) ([]byte, error) {
	if points == nil {
		points = []nodegraph.Point{}
	}
	data, err := json.Marshal(points)
	if err != nil {
		return nil, fmt.Errorf("nodegraph: encode waypoints: %w", err)
	}
	return data, nil
}

func decodeWaypoints(raw []byte) ([]nodegraph.Point, error) {
	points := []nodegraph.Point{}
	if len(raw) == 0 {
		return points, nil
	}
	if err := json.Unmarshal(raw, &points); err != nil {
		return nil, fmt.Errorf("nodegraph: decode waypoints: %w", err)
	}
	return points, nil
}

// ListEdges returns all connections of a graphID in the order they were
// saved. Returns an empty slice (not nil) if none found.
func (s *PGStore) ListEdges(ctx context.Context, graphID string) ([]nodegraph.Edge, error) {
	rows, err := s.db.Query(ctx,
		`SELECT from_node, from_port, to_node, to_port, type, waypoints
		 FROM graph_connections WHERE graph_id = $1 ORDER BY ordinal`, graphID)
	if err != nil {
		return nil, fmt.Errorf("nodegraph: list edges: %w", err)
	}
	defer rows.Close()

	edges := []nodegraph.Edge{}
	for rows.Next() {
		var e nodegraph.Edge
		var raw []byte
		if err := rows.Scan(&e.FromNode, &e.FromPort, &e.ToNode, &e.ToPort, &e.Type, &raw); err != nil {
			return nil, fmt.Errorf("nodegraph: scan edge: %w", err)
		}
		if e.Waypoints, err = decodeWaypoints(raw); err != nil {
			return nil, err
		}
		edges = append(edges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("nodegraph: rows edges: %w", err)
	}

	return edges, nil
}
