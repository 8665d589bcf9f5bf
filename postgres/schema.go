package postgres

import "context"

const schemaSQL = `
CREATE TABLE IF NOT EXISTS workflow_graphs (
    id         TEXT PRIMARY KEY,
    name       TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS workflow_nodes (
    id          TEXT PRIMARY KEY,
    graph_id    TEXT NOT NULL REFERENCES workflow_graphs(id) ON DELETE CASCADE,
    kind        TEXT NOT NULL,
    label       TEXT NOT NULL DEFAULT '',
    description TEXT NOT NULL DEFAULT '',
    position_x  DOUBLE PRECISION NOT NULL DEFAULT 0,
    position_y  DOUBLE PRECISION NOT NULL DEFAULT 0,
    params      JSONB NOT NULL DEFAULT '{}',
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS workflow_edges (
    id            TEXT PRIMARY KEY,
    graph_id      TEXT NOT NULL REFERENCES workflow_graphs(id) ON DELETE CASCADE,
    source        TEXT NOT NULL REFERENCES workflow_nodes(id) ON DELETE CASCADE,
    source_handle TEXT NOT NULL DEFAULT '',
    target        TEXT NOT NULL REFERENCES workflow_nodes(id) ON DELETE CASCADE,
    target_handle TEXT NOT NULL DEFAULT '',
    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_workflow_nodes_graph_id ON workflow_nodes(graph_id);
CREATE INDEX IF NOT EXISTS idx_workflow_edges_graph_id ON workflow_edges(graph_id);
CREATE INDEX IF NOT EXISTS idx_workflow_edges_source   ON workflow_edges(source);
CREATE INDEX IF NOT EXISTS idx_workflow_edges_target   ON workflow_edges(target);
`

// CreateSchema creates the workflow tables if they don't exist.
func (s *PGStore) CreateSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, schemaSQL)
	return err
}

// DropSchema drops the workflow tables.
func (s *PGStore) DropSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `DROP TABLE IF EXISTS workflow_edges, workflow_nodes, workflow_graphs CASCADE;`)
	return err
}
