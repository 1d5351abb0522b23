package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/meikuraledutech/nodegraph"
	"github.com/meikuraledutech/nodegraph/clipboard"
	"github.com/meikuraledutech/nodegraph/editor"
	"github.com/meikuraledutech/nodegraph/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testGraphID = "test"

type testHost struct {
	app   *fiber.App
	ed    *editor.Editor
	store *memstore.Store
	p     *persister
}

func newTestHost(t *testing.T) *testHost {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memstore.New()
	p := newPersister(store, testGraphID, time.Hour, logger)
	ed := editor.New(nil, editor.Options{
		Registry:  builtinTypes(),
		Clipboard: clipboard.NewMemory(),
		Logger:    logger,
		OnChange:  p.commit,
	})
	t.Cleanup(func() {
		ed.Close()
		p.save.Cancel()
	})
	return &testHost{app: newApp(ed, p, logger), ed: ed, store: store, p: p}
}

// do sends a JSON request and decodes a JSON response into out when non-nil.
func (h *testHost) do(t *testing.T, method, path string, body, out any) int {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	resp, err := h.app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (h *testHost) addNode(t *testing.T, typ string, x, y float64) string {
	t.Helper()
	var created struct {
		ID string `json:"id"`
	}
	status := h.do(t, http.MethodPost, "/nodes", fiber.Map{"type": typ, "position": fiber.Map{"x": x, "y": y}}, &created)
	require.Equal(t, http.StatusCreated, status)
	require.NotEmpty(t, created.ID)
	return created.ID
}

func TestNodes(t *testing.T) {
	h := newTestHost(t)
	id := h.addNode(t, "add", 10, 20)

	var g nodegraph.Graph
	require.Equal(t, http.StatusOK, h.do(t, http.MethodGet, "/graph", nil, &g))
	require.Contains(t, g.Nodes, id)

	var n nodegraph.Node
	require.Equal(t, http.StatusOK, h.do(t, http.MethodGet, "/nodes/"+id, nil, &n))
	assert.Equal(t, "Add", n.Name)
	assert.Equal(t, http.StatusNotFound, h.do(t, http.MethodGet, "/nodes/missing", nil, nil))
	assert.Equal(t, nodegraph.Point{X: 10, Y: 20}, g.Nodes[id].Position)
	assert.Equal(t, map[string]any{"a": 0.0, "b": 0.0}, g.Nodes[id].Values)

	assert.Equal(t, http.StatusBadRequest, h.do(t, http.MethodPost, "/nodes", fiber.Map{"type": "add"}, nil))

	var res resultResponse
	require.Equal(t, http.StatusOK, h.do(t, http.MethodPut, "/nodes/"+id+"/values", fiber.Map{"values": fiber.Map{"a": 4}}, &res))
	assert.True(t, res.Committed)
	assert.Equal(t, map[string]any{"a": 4.0}, h.ed.State().Nodes[id].Values)
	assert.Equal(t, http.StatusNotFound, h.do(t, http.MethodPut, "/nodes/missing/values", fiber.Map{"values": fiber.Map{}}, nil))

	var cloned struct {
		ID string `json:"id"`
	}
	require.Equal(t, http.StatusCreated, h.do(t, http.MethodPost, "/nodes/"+id+"/clone", nil, &cloned))
	assert.Equal(t, nodegraph.Point{X: 30, Y: 40}, h.ed.State().Nodes[cloned.ID].Position)
	assert.Equal(t, http.StatusNotFound, h.do(t, http.MethodPost, "/nodes/missing/clone", nil, nil))

	require.Equal(t, http.StatusOK, h.do(t, http.MethodDelete, "/nodes", fiber.Map{"ids": []string{id, cloned.ID}}, &res))
	assert.True(t, res.Changed)
	assert.Empty(t, h.ed.State().Nodes)
}

func TestMove(t *testing.T) {
	h := newTestHost(t)
	id := h.addNode(t, "number", 0, 0)

	status := h.do(t, http.MethodPost, "/nodes/"+id+"/move", fiber.Map{"position": fiber.Map{"x": 50, "y": 60}, "commit": true}, nil)
	assert.Equal(t, http.StatusAccepted, status)
	assert.Equal(t, nodegraph.Point{X: 50, Y: 60}, h.ed.State().Nodes[id].Position)
	assert.Equal(t, []string{id}, h.ed.Selection().Nodes())
}

func TestConnectionsAndWaypoints(t *testing.T) {
	h := newTestHost(t)
	a := h.addNode(t, "number", 0, 0)
	b := h.addNode(t, "add", 100, 0)

	var res resultResponse
	connect := fiber.Map{
		"source": fiber.Map{"nodeId": a, "portName": "out"},
		"target": fiber.Map{"nodeId": b, "portName": "a"},
	}
	require.Equal(t, http.StatusOK, h.do(t, http.MethodPost, "/connections", connect, &res))
	assert.True(t, res.Changed)

	edge := nodegraph.EdgeKey{SrcNode: a, SrcPort: "out", DstNode: b, DstPort: "a"}
	require.Equal(t, http.StatusOK, h.do(t, http.MethodPost, "/waypoints", fiber.Map{"edge": edge, "position": fiber.Map{"x": 5, "y": 5}}, &res))
	assert.True(t, res.Changed)
	require.Equal(t, http.StatusOK, h.do(t, http.MethodPut, "/waypoints", fiber.Map{"edge": edge, "index": 0, "position": fiber.Map{"x": 7, "y": 8}, "commit": true}, &res))
	assert.True(t, res.Committed)
	assert.Equal(t, []nodegraph.Point{{X: 7, Y: 8}}, h.ed.State().Nodes[a].Connections.Outputs[0].Waypoints)

	assert.Equal(t, http.StatusBadRequest, h.do(t, http.MethodDelete, "/waypoints", fiber.Map{"edge": edge, "index": -1}, nil))
	require.Equal(t, http.StatusOK, h.do(t, http.MethodDelete, "/waypoints", fiber.Map{"edge": edge, "index": 0}, &res))
	assert.True(t, res.Changed)

	require.Equal(t, http.StatusOK, h.do(t, http.MethodDelete, "/connections", edge, &res))
	assert.True(t, res.Changed)
	assert.Empty(t, h.ed.State().Nodes[b].Connections.Inputs)
}

func TestSelectionRoutes(t *testing.T) {
	h := newTestHost(t)
	a := h.addNode(t, "number", 0, 0)
	b := h.addNode(t, "number", 50, 0)

	var sel struct {
		Nodes     []string                `json:"nodes"`
		Waypoints []nodegraph.WaypointRef `json:"waypoints"`
	}
	require.Equal(t, http.StatusOK, h.do(t, http.MethodPost, "/selection/all", nil, &sel))
	assert.ElementsMatch(t, []string{a, b}, sel.Nodes)

	require.Equal(t, http.StatusOK, h.do(t, http.MethodDelete, "/selection/nodes", fiber.Map{"ids": []string{a}}, &sel))
	assert.Equal(t, []string{b}, sel.Nodes)

	area := fiber.Map{"area": fiber.Map{"x": 0, "y": 0, "width": 10, "height": 10}, "mode": "select", "nodes": []string{a}}
	require.Equal(t, http.StatusOK, h.do(t, http.MethodPost, "/selection/area", area, &sel))
	assert.Equal(t, []string{a}, sel.Nodes)

	area["mode"] = "lasso"
	assert.Equal(t, http.StatusUnprocessableEntity, h.do(t, http.MethodPost, "/selection/area", area, nil))

	var res resultResponse
	require.Equal(t, http.StatusOK, h.do(t, http.MethodPost, "/selection/delete", nil, &res))
	assert.True(t, res.Changed)
	assert.NotContains(t, h.ed.State().Nodes, a)

	require.Equal(t, http.StatusOK, h.do(t, http.MethodGet, "/selection", nil, &sel))
	assert.Empty(t, sel.Nodes)
}

func TestClipboardRoutes(t *testing.T) {
	h := newTestHost(t)

	assert.Equal(t, http.StatusUnprocessableEntity, h.do(t, http.MethodPost, "/clipboard/paste", fiber.Map{}, nil))

	a := h.addNode(t, "number", 10, 10)
	var copied struct {
		Copied int `json:"copied"`
	}
	require.Equal(t, http.StatusOK, h.do(t, http.MethodPost, "/clipboard/copy", fiber.Map{"ids": []string{a}}, &copied))
	assert.Equal(t, 1, copied.Copied)

	var pasted struct {
		IDs []string `json:"ids"`
	}
	require.Equal(t, http.StatusCreated, h.do(t, http.MethodPost, "/clipboard/paste", fiber.Map{"pointer": fiber.Map{"x": 200, "y": 100}}, &pasted))
	require.Len(t, pasted.IDs, 1)
	assert.Equal(t, nodegraph.Point{X: 200, Y: 100}, h.ed.State().Nodes[pasted.IDs[0]].Position)
	assert.Equal(t, pasted.IDs, h.ed.Selection().Nodes())
}

func TestViewport(t *testing.T) {
	h := newTestHost(t)
	var res resultResponse
	require.Equal(t, http.StatusOK, h.do(t, http.MethodPost, "/viewport", fiber.Map{"position": fiber.Map{"x": 3, "y": 4}, "scale": 2}, &res))
	assert.True(t, res.Changed)
	assert.Equal(t, 2.0, h.ed.State().Scale)

	assert.Equal(t, http.StatusBadRequest, h.do(t, http.MethodPost, "/viewport", fiber.Map{"scale": 0}, nil))
}

func TestPutGraph(t *testing.T) {
	h := newTestHost(t)

	dangling := fiber.Map{"nodes": fiber.Map{
		"a": fiber.Map{"id": "a", "name": "A", "type": "number", "connections": fiber.Map{
			"outputs": []fiber.Map{{"name": "out", "node": "zzz", "port": "a"}},
		}},
	}}
	assert.Equal(t, http.StatusUnprocessableEntity, h.do(t, http.MethodPut, "/graph", dangling, nil))

	valid := fiber.Map{"scale": 1, "nodes": fiber.Map{
		"a": fiber.Map{"id": "a", "name": "A", "type": "number"},
	}}
	var res resultResponse
	require.Equal(t, http.StatusOK, h.do(t, http.MethodPut, "/graph", valid, &res))
	assert.True(t, res.Changed)
	assert.Contains(t, h.ed.State().Nodes, "a")

	h.p.flush()
	saved, err := h.store.GetGraph(context.Background(), testGraphID)
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Contains(t, saved.Nodes, "a")
}

func TestCommitsArePersisted(t *testing.T) {
	h := newTestHost(t)
	assert.Equal(t, http.StatusNotFound, h.do(t, http.MethodGet, "/graph/saved", nil, nil))

	a := h.addNode(t, "number", 0, 0)
	b := h.addNode(t, "number", 1, 1)
	assert.True(t, h.p.save.Pending(), "persistence is debounced")

	h.p.flush()
	saved, err := h.store.GetGraph(context.Background(), testGraphID)
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Len(t, saved.Nodes, 2)
	assert.Contains(t, saved.Nodes, a)
	assert.Contains(t, saved.Nodes, b)

	var g nodegraph.Graph
	require.Equal(t, http.StatusOK, h.do(t, http.MethodGet, "/graph/saved", nil, &g))
	assert.Len(t, g.Nodes, 2)
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestHost(t)
	h.addNode(t, "number", 0, 0)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp, err := h.app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "nodegraph_editor_operations_total")
	assert.Contains(t, string(body), "nodegraph_editor_commits_total")
}
