package workflow

import (
	"context"
	"errors"
)

var (
	ErrGraphNotFound   = errors.New("workflow: graph not found")
	ErrNodeNotFound    = errors.New("workflow: node not found")
	ErrEdgeNotFound    = errors.New("workflow: edge not found")
	ErrVersionMismatch = errors.New("workflow: unsupported file version")
	ErrMalformedFile   = errors.New("workflow: malformed workflow file")
)

// Store defines the contract for persisting and retrieving workflow graphs.
type Store interface {
	// Schema
	CreateSchema(ctx context.Context) error
	DropSchema(ctx context.Context) error

	// Graphs (bulk operations, replace semantics)
	SaveGraph(ctx context.Context, g *Graph) (*Graph, error)
	GetGraph(ctx context.Context, graphID string) (*Graph, error)
	ListGraphs(ctx context.Context) ([]GraphInfo, error)
	DeleteGraph(ctx context.Context, graphID string) error

	// Nodes
	AddNode(ctx context.Context, graphID string, node *Node) (string, error)
	UpdateNode(ctx context.Context, node *Node) error
	DeleteNode(ctx context.Context, nodeID string) error
	ListNodes(ctx context.Context, graphID string) ([]Node, error)

	// Edges
	AddEdge(ctx context.Context, graphID string, edge *Edge) (string, error)
	DeleteEdge(ctx context.Context, edgeID string) error
	ListEdges(ctx context.Context, graphID string) ([]Edge, error)
}

// GraphInfo is a listing entry for a stored graph.
type GraphInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
