package engine

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	workflow "github.com/caojiachen1/CommandFlow-rs-sub000"
)

func testGraph() workflow.Graph {
	return workflow.Graph{
		ID:   "g1",
		Name: "demo",
		Nodes: []workflow.Node{
			{
				ID: "n1", Kind: workflow.KindMouseClick, Label: "Mouse Click",
				Position: workflow.Position{X: 120, Y: 240},
				Params:   map[string]any{"x": float64(10), "y": float64(20)},
			},
		},
		Edges: []workflow.Edge{
			{ID: "e1", Source: "n1", SourceHandle: "next", Target: "n1", TargetHandle: "in"},
		},
	}
}

func TestRunSendsWireShape(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/run", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(map[string]string{"message": "workflow finished"})
	}))
	defer srv.Close()

	g := testGraph()
	msg, err := NewClient(srv.URL, nil).Run(context.Background(), &g)
	require.NoError(t, err)
	assert.Equal(t, "workflow finished", msg)

	nodes := got["nodes"].([]any)
	require.Len(t, nodes, 1)
	n := nodes[0].(map[string]any)
	assert.Equal(t, float64(120), n["position_x"])
	assert.Equal(t, float64(240), n["position_y"])
	assert.Equal(t, "mouseClick", n["kind"])

	edges := got["edges"].([]any)
	require.Len(t, edges, 1)
	e := edges[0].(map[string]any)
	assert.Equal(t, "next", e["source_handle"])
	assert.Equal(t, "in", e["target_handle"])
}

func TestRunSurfacesEngineErrors(t *testing.T) {
	t.Run("error field in ok response", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]string{"error": "no trigger node"})
		}))
		defer srv.Close()

		g := testGraph()
		_, err := NewClient(srv.URL, nil).Run(context.Background(), &g)
		assert.ErrorContains(t, err, "no trigger node")
	})

	t.Run("error status with body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"error": "malformed workflow"})
		}))
		defer srv.Close()

		g := testGraph()
		_, err := NewClient(srv.URL, nil).Run(context.Background(), &g)
		assert.ErrorContains(t, err, "malformed workflow")
	})

	t.Run("error status without body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		g := testGraph()
		_, err := NewClient(srv.URL, nil).Run(context.Background(), &g)
		assert.ErrorContains(t, err, "unexpected status")
	})
}

func TestExecuteNodePostsSingleNode(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/step", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(map[string]string{"message": "ok"})
	}))
	defer srv.Close()

	node := testGraph().Nodes[0]
	err := NewClient(srv.URL, nil).ExecuteNode(context.Background(), node)
	require.NoError(t, err)
	assert.Equal(t, "n1", got["id"])
	assert.Equal(t, float64(120), got["position_x"])
}

func TestStopAndHealth(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	require.NoError(t, c.Stop(context.Background()))
	require.NoError(t, c.Health(context.Background()))
	assert.Equal(t, []string{"/stop", "/health"}, paths)
}

func TestHealthFailsOnBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	assert.Error(t, NewClient(srv.URL, nil).Health(context.Background()))
}

func TestListWindowsIsBestEffort(t *testing.T) {
	t.Run("returns titles", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/windows", r.URL.Path)
			json.NewEncoder(w).Encode([]string{"Notepad", "Terminal"})
		}))
		defer srv.Close()

		titles := NewClient(srv.URL, nil).ListWindows(context.Background())
		assert.Equal(t, []string{"Notepad", "Terminal"}, titles)
	})

	t.Run("server error yields empty list", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		titles := NewClient(srv.URL, nil).ListWindows(context.Background())
		require.NotNil(t, titles)
		assert.Empty(t, titles)
	})

	t.Run("unreachable engine yields empty list", func(t *testing.T) {
		titles := NewClient("http://127.0.0.1:1", nil).ListWindows(context.Background())
		require.NotNil(t, titles)
		assert.Empty(t, titles)
	})

	t.Run("null body yields empty list", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("null"))
		}))
		defer srv.Close()

		titles := NewClient(srv.URL, nil).ListWindows(context.Background())
		require.NotNil(t, titles)
		assert.Empty(t, titles)
	})
}
