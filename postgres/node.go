package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	workflow "github.com/caojiachen1/CommandFlow-rs-sub000"
)

// AddNode inserts a single node into a graph.
// If node.ID is empty, a UUID is auto-generated.
// Returns the node ID (generated or provided).
func (s *PGStore) AddNode(ctx context.Context, graphID string, node *workflow.Node) (string, error) {
	if node.ID == "" {
		node.ID = uuid.NewString()
	}
	params, err := marshalParams(node.Params)
	if err != nil {
		return "", fmt.Errorf("workflow: encode params: %w", err)
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO workflow_nodes (id, graph_id, kind, label, description, position_x, position_y, params)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		node.ID, graphID, string(node.Kind), node.Label, node.Description,
		node.Position.X, node.Position.Y, params,
	)
	if err != nil {
		return "", fmt.Errorf("workflow: insert node: %w", err)
	}
	return node.ID, nil
}

// UpdateNode updates an existing node's kind, label, position and params.
// Returns ErrNodeNotFound if the node doesn't exist.
func (s *PGStore) UpdateNode(ctx context.Context, node *workflow.Node) error {
	params, err := marshalParams(node.Params)
	if err != nil {
		return fmt.Errorf("workflow: encode params: %w", err)
	}

	ct, err := s.db.Exec(ctx, `
		UPDATE workflow_nodes
		SET kind = $1, label = $2, description = $3, position_x = $4, position_y = $5, params = $6
		WHERE id = $7`,
		string(node.Kind), node.Label, node.Description,
		node.Position.X, node.Position.Y, params, node.ID,
	)
	if err != nil {
		return fmt.Errorf("workflow: update node: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return workflow.ErrNodeNotFound
	}
	return nil
}

// DeleteNode deletes a node by its ID.
// Associated edges are cascade-deleted by the DB.
// No error if the node doesn't exist.
func (s *PGStore) DeleteNode(ctx context.Context, nodeID string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM workflow_nodes WHERE id = $1`, nodeID)
	if err != nil {
		return fmt.Errorf("workflow: delete node: %w", err)
	}
	return nil
}

// ListNodes returns all nodes of a graph, ordered by created_at.
// Returns an empty slice (not nil) if none found.
func (s *PGStore) ListNodes(ctx context.Context, graphID string) ([]workflow.Node, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, kind, label, description, position_x, position_y, params
		FROM workflow_nodes WHERE graph_id = $1 ORDER BY created_at`, graphID)
	if err != nil {
		return nil, fmt.Errorf("workflow: list nodes: %w", err)
	}
	defer rows.Close()

	nodes := []workflow.Node{}
	for rows.Next() {
		var n workflow.Node
		var kind string
		var params []byte
		if err := rows.Scan(&n.ID, &kind, &n.Label, &n.Description,
			&n.Position.X, &n.Position.Y, &params); err != nil {
			return nil, fmt.Errorf("workflow: scan node: %w", err)
		}
		n.Kind = workflow.Kind(kind)
		if err := json.Unmarshal(params, &n.Params); err != nil {
			return nil, fmt.Errorf("workflow: decode params of node %s: %w", n.ID, err)
		}
		nodes = append(nodes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("workflow: rows nodes: %w", err)
	}
	return nodes, nil
}
