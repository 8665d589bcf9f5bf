package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	workflow "github.com/caojiachen1/CommandFlow-rs-sub000"
)

// SaveGraph persists a full graph (nodes + edges) in one transaction,
// replacing any previous content stored under the same graph id. Nodes and
// edges without IDs get auto-generated UUIDs. Loop-back wires are legal in
// a workflow graph, so no acyclicity check is applied.
// Returns the graph with all IDs filled in.
func (s *PGStore) SaveGraph(ctx context.Context, g *workflow.Graph) (*workflow.Graph, error) {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	for i := range g.Nodes {
		if g.Nodes[i].ID == "" {
			g.Nodes[i].ID = uuid.NewString()
		}
	}
	for i := range g.Edges {
		if g.Edges[i].ID == "" {
			g.Edges[i].ID = uuid.NewString()
		}
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("workflow: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		INSERT INTO workflow_graphs (id, name) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, updated_at = NOW()`,
		g.ID, g.Name,
	); err != nil {
		return nil, fmt.Errorf("workflow: upsert graph: %w", err)
	}

	// Replace semantics: clear previous nodes and edges first.
	if _, err := tx.Exec(ctx, `DELETE FROM workflow_edges WHERE graph_id = $1`, g.ID); err != nil {
		return nil, fmt.Errorf("workflow: delete edges: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM workflow_nodes WHERE graph_id = $1`, g.ID); err != nil {
		return nil, fmt.Errorf("workflow: delete nodes: %w", err)
	}

	for i := range g.Nodes {
		n := &g.Nodes[i]
		params, err := marshalParams(n.Params)
		if err != nil {
			return nil, fmt.Errorf("workflow: encode params of node %s: %w", n.ID, err)
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO workflow_nodes (id, graph_id, kind, label, description, position_x, position_y, params)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			n.ID, g.ID, string(n.Kind), n.Label, n.Description, n.Position.X, n.Position.Y, params,
		); err != nil {
			return nil, fmt.Errorf("workflow: insert node %s: %w", n.ID, err)
		}
	}

	for _, e := range g.Edges {
		if _, err := tx.Exec(ctx, `
			INSERT INTO workflow_edges (id, graph_id, source, source_handle, target, target_handle)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			e.ID, g.ID, e.Source, e.SourceHandle, e.Target, e.TargetHandle,
		); err != nil {
			return nil, fmt.Errorf("workflow: insert edge %s: %w", e.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("workflow: commit: %w", err)
	}

	return g, nil
}

// GetGraph retrieves a full graph (nodes + edges) by its ID.
// Returns nil, nil if the graph doesn't exist.
func (s *PGStore) GetGraph(ctx context.Context, graphID string) (*workflow.Graph, error) {
	g := &workflow.Graph{ID: graphID, Nodes: []workflow.Node{}, Edges: []workflow.Edge{}}

	err := s.db.QueryRow(ctx,
		`SELECT name FROM workflow_graphs WHERE id = $1`, graphID,
	).Scan(&g.Name)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("workflow: get graph: %w", err)
	}

	if g.Nodes, err = s.ListNodes(ctx, graphID); err != nil {
		return nil, err
	}
	if g.Edges, err = s.ListEdges(ctx, graphID); err != nil {
		return nil, err
	}
	return g, nil
}

// ListGraphs returns id/name entries for all stored graphs, newest first.
func (s *PGStore) ListGraphs(ctx context.Context) ([]workflow.GraphInfo, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, name FROM workflow_graphs ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("workflow: list graphs: %w", err)
	}
	defer rows.Close()

	infos := []workflow.GraphInfo{}
	for rows.Next() {
		var info workflow.GraphInfo
		if err := rows.Scan(&info.ID, &info.Name); err != nil {
			return nil, fmt.Errorf("workflow: scan graph: %w", err)
		}
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("workflow: rows graphs: %w", err)
	}
	return infos, nil
}

// DeleteGraph removes a graph and, via cascade, its nodes and edges.
// No error if the graph doesn't exist.
func (s *PGStore) DeleteGraph(ctx context.Context, graphID string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM workflow_graphs WHERE id = $1`, graphID)
	if err != nil {
		return fmt.Errorf("workflow: delete graph: %w", err)
	}
	return nil
}

func marshalParams(params map[string]any) ([]byte, error) {
	if params == nil {
		return []byte(`{}`), nil
	}
	return json.Marshal(params)
}
