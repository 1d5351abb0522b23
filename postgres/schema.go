package postgres

import "context"

const schemaSQL = `
CREATE TABLE IF NOT EXISTS graphs (
    id         TEXT PRIMARY KEY,
    position_x DOUBLE PRECISION NOT NULL DEFAULT 0,
    position_y DOUBLE PRECISION NOT NULL DEFAULT 0,
    scale      DOUBLE PRECISION NOT NULL DEFAULT 1,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS graph_nodes (
    graph_id TEXT NOT NULL REFERENCES graphs(id) ON DELETE CASCADE,
    id       TEXT NOT NULL,
    name     TEXT NOT NULL,
    type     TEXT NOT NULL,
    data     JSONB NOT NULL DEFAULT '{}',
    PRIMARY KEY (graph_id, id)
);

CREATE TABLE IF NOT EXISTS graph_connections (
    graph_id  TEXT NOT NULL,
    from_node TEXT NOT NULL,
    from_port TEXT NOT NULL,
    to_node   TEXT NOT NULL,
    to_port   TEXT NOT NULL,
    type      TEXT NOT NULL DEFAULT '',
    waypoints JSONB NOT NULL DEFAULT '[]',
    ordinal   INTEGER NOT NULL,
    PRIMARY KEY (graph_id, from_node, from_port, to_node, to_port),
    FOREIGN KEY (graph_id, from_node) REFERENCES graph_nodes(graph_id, id) ON DELETE CASCADE,
    FOREIGN KEY (graph_id, to_node)   REFERENCES graph_nodes(graph_id, id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_graph_connections_to ON graph_connections(graph_id, to_node);
`

// CreateSchema creates the graphs, graph_nodes and graph_connections tables
// if they don't exist.
func (s *PGStore) CreateSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, schemaSQL)
	return err
}

// DropSchema drops the graph_connections, graph_nodes and graphs tables.
func (s *PGStore) DropSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `DROP TABLE IF EXISTS graph_connections, graph_nodes, graphs CASCADE;`)
	return err
}
