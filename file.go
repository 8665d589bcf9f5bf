package workflow

import (
	"encoding/json"
	"fmt"
	"time"
)

// FileVersion is the only workflow file format version this package reads
// and writes.
const FileVersion = "1.0.0"

// File is the versioned on-disk envelope around a workflow graph.
type File struct {
	Version   string    `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Graph     Graph     `json:"graph"`
}

// EncodeFile serializes a graph into the versioned file envelope.
func EncodeFile(g *Graph) ([]byte, error) {
	now := time.Now().UTC()
	f := File{
		Version:   FileVersion,
		CreatedAt: now,
		UpdatedAt: now,
		Graph:     g.Clone(),
	}
	out, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("workflow: encode file: %w", err)
	}
	return out, nil
}

// DecodeFile parses and validates a workflow file. The whole file is
// rejected before any graph is returned: a version mismatch or a missing
// required graph field must never result in a partial import.
func DecodeFile(data []byte) (*Graph, error) {
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFile, err)
	}
	if f.Version != FileVersion {
		return nil, fmt.Errorf("%w: got %q, want %q", ErrVersionMismatch, f.Version, FileVersion)
	}
	if err := validateGraph(&f.Graph); err != nil {
		return nil, err
	}
	g := f.Graph.Clone()
	return &g, nil
}

func validateGraph(g *Graph) error {
	if g.ID == "" {
		return fmt.Errorf("%w: graph id is empty", ErrMalformedFile)
	}
	if g.Nodes == nil || g.Edges == nil {
		return fmt.Errorf("%w: graph nodes/edges missing", ErrMalformedFile)
	}
	byID := make(map[string]bool, len(g.Nodes))
	for i := range g.Nodes {
		n := &g.Nodes[i]
		if n.ID == "" {
			return fmt.Errorf("%w: node without id", ErrMalformedFile)
		}
		if n.Kind == "" {
			return fmt.Errorf("%w: node %q without kind", ErrMalformedFile, n.ID)
		}
		byID[n.ID] = true
	}
	for i := range g.Edges {
		e := &g.Edges[i]
		if e.ID == "" {
			return fmt.Errorf("%w: edge without id", ErrMalformedFile)
		}
		if !byID[e.Source] || !byID[e.Target] {
			return fmt.Errorf("%w: edge %q references a missing node", ErrMalformedFile, e.ID)
		}
	}
	return nil
}
