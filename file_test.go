package workflow

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleGraph() Graph {
	return Graph{
		ID:   "g1",
		Name: "demo",
		Nodes: []Node{
			{ID: "a", Kind: KindManualTrigger, Label: "Manual Trigger", Params: map[string]any{}},
			{ID: "b", Kind: KindShowMessage, Label: "Show Message", Params: map[string]any{"message": "hi"}},
		},
		Edges: []Edge{
			{ID: "e1", Source: "a", SourceHandle: "next", Target: "b", TargetHandle: "in"},
		},
	}
}

func TestFileRoundTrip(t *testing.T) {
	g := sampleGraph()
	data, err := EncodeFile(&g)
	require.NoError(t, err)

	var f File
	require.NoError(t, json.Unmarshal(data, &f))
	assert.Equal(t, FileVersion, f.Version)
	assert.False(t, f.CreatedAt.IsZero())

	decoded, err := DecodeFile(data)
	require.NoError(t, err)
	assert.Equal(t, g, *decoded)
}

func TestDecodeFileRejectsWholeFile(t *testing.T) {
	mustEncode := func(f File) []byte {
		out, err := json.Marshal(f)
		require.NoError(t, err)
		return out
	}

	t.Run("malformed json", func(t *testing.T) {
		_, err := DecodeFile([]byte(`{"version": "1.0.0", "graph": {`))
		assert.ErrorIs(t, err, ErrMalformedFile)
	})

	t.Run("version mismatch", func(t *testing.T) {
		_, err := DecodeFile(mustEncode(File{Version: "2.0.0", Graph: sampleGraph()}))
		assert.ErrorIs(t, err, ErrVersionMismatch)
	})

	t.Run("missing graph id", func(t *testing.T) {
		g := sampleGraph()
		g.ID = ""
		_, err := DecodeFile(mustEncode(File{Version: FileVersion, Graph: g}))
		assert.ErrorIs(t, err, ErrMalformedFile)
	})

	t.Run("node without kind", func(t *testing.T) {
		g := sampleGraph()
		g.Nodes[0].Kind = ""
		_, err := DecodeFile(mustEncode(File{Version: FileVersion, Graph: g}))
		assert.ErrorIs(t, err, ErrMalformedFile)
	})

	t.Run("edge references missing node", func(t *testing.T) {
		g := sampleGraph()
		g.Edges[0].Target = "ghost"
		_, err := DecodeFile(mustEncode(File{Version: FileVersion, Graph: g}))
		assert.ErrorIs(t, err, ErrMalformedFile)
	})
}

func TestGraphCloneIsIndependent(t *testing.T) {
	g := sampleGraph()
	g.Nodes[1].Params["nested"] = map[string]any{"k": []any{"v"}}

	c := g.Clone()
	c.Nodes[1].Params["message"] = "changed"
	c.Nodes[1].Params["nested"].(map[string]any)["k"].([]any)[0] = "changed"
	c.Edges[0].Target = "elsewhere"

	assert.Equal(t, "hi", g.Nodes[1].Params["message"])
	assert.Equal(t, "v", g.Nodes[1].Params["nested"].(map[string]any)["k"].([]any)[0])
	assert.Equal(t, "b", g.Edges[0].Target)
}

func TestCloneParamsNilYieldsEmpty(t *testing.T) {
	out := CloneParams(nil)
	require.NotNil(t, out)
	assert.Empty(t, out)
}
