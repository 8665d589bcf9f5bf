package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	workflow "github.com/caojiachen1/CommandFlow-rs-sub000"
)

// AddEdge inserts a single edge into a graph.
// If edge.ID is empty, a UUID is auto-generated.
// Returns the edge ID (generated or provided).
func (s *PGStore) AddEdge(ctx context.Context, graphID string, edge *workflow.Edge) (string, error) {
	if edge.ID == "" {
		edge.ID = uuid.NewString()
	}

	_, err := s.db.Exec(ctx, `
		INSERT INTO workflow_edges (id, graph_id, source, source_handle, target, target_handle)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		edge.ID, graphID, edge.Source, edge.SourceHandle, edge.Target, edge.TargetHandle,
	)
	if err != nil {
		return "", fmt.Errorf("workflow: insert edge: %w", err)
	}
	return edge.ID, nil
}

// DeleteEdge deletes an edge by its ID.
// No error if the edge doesn't exist.
func (s *PGStore) DeleteEdge(ctx context.Context, edgeID string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM workflow_edges WHERE id = $1`, edgeID)
	if err != nil {
		return fmt.Errorf("workflow: delete edge: %w", err)
	}
	return nil
}

// ListEdges returns all edges of a graph, ordered by created_at.
// Returns an empty slice (not nil) if none found.
func (s *PGStore) ListEdges(ctx context.Context, graphID string) ([]workflow.Edge, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, source, source_handle, target, target_handle
		FROM workflow_edges WHERE graph_id = $1 ORDER BY created_at`, graphID)
	if err != nil {
		return nil, fmt.Errorf("workflow: list edges: %w", err)
	}
	defer rows.Close()

	edges := []workflow.Edge{}
	for rows.Next() {
		var e workflow.Edge
		if err := rows.Scan(&e.ID, &e.Source, &e.SourceHandle, &e.Target, &e.TargetHandle); err != nil {
			return nil, fmt.Errorf("workflow: scan edge: %w", err)
		}
		edges = append(edges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("workflow: rows edges: %w", err)
	}
	return edges, nil
}
