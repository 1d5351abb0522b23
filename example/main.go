package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/meikuraledutech/nodegraph"
	"github.com/meikuraledutech/nodegraph/editor"
	"github.com/meikuraledutech/nodegraph/memstore"
	"github.com/meikuraledutech/nodegraph/postgres"
)

var registry = nodegraph.Registry{
	"number": {
		Type:    "number",
		Label:   "Number",
		Inputs:  nodegraph.Ports(nodegraph.PortDescriptor{Name: "value", Type: "number", DefaultValue: 1.0, HidePort: true}),
		Outputs: nodegraph.Ports(nodegraph.PortDescriptor{Name: "out", Type: "number"}),
	},
	"add": {
		Type:  "add",
		Label: "Add",
		Inputs: nodegraph.Ports(
			nodegraph.PortDescriptor{Name: "a", Type: "number", DefaultValue: 0.0},
			nodegraph.PortDescriptor{Name: "b", Type: "number", DefaultValue: 0.0},
		),
		Outputs: nodegraph.Ports(nodegraph.PortDescriptor{Name: "sum", Type: "number"}),
	},
	"output": {
		Type:   "output",
		Label:  "Output",
		Root:   true,
		Inputs: nodegraph.Ports(nodegraph.PortDescriptor{Name: "value", Type: "number"}),
	},
}

func main() {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	// Postgres when DATABASE_URL is set, memory otherwise.
	var store nodegraph.Store = memstore.New()
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		pool, err := pgxpool.New(ctx, dbURL)
		if err != nil {
			log.Fatalf("connect: %v", err)
		}
		defer pool.Close()
		store = postgres.New(pool)
	}

	// 1. Create tables
	if err := store.CreateSchema(ctx); err != nil {
		log.Fatalf("schema: %v", err)
	}
	fmt.Println("schema created")

	// Every committed state is saved as it happens.
	ed := editor.New(nil, editor.Options{
		Registry: registry,
		Logger:   logger,
		Grid:     editor.Grid{Enabled: true, Size: 10},
		OnChange: func(g *nodegraph.Graph) {
			if err := store.SaveGraph(ctx, "scene", g); err != nil {
				log.Fatalf("save: %v", err)
			}
		},
	})
	defer ed.Close()

	// ── Build: two numbers summed into the output ─────────────────────
	x, _ := ed.AddNode("number", nodegraph.Point{X: 0, Y: 0})
	y, _ := ed.AddNode("number", nodegraph.Point{X: 0, Y: 100})
	sum, _ := ed.AddNode("add", nodegraph.Point{X: 200, Y: 50})
	out, _ := ed.AddNode("output", nodegraph.Point{X: 400, Y: 50})

	ed.Connect(editor.PortRef{NodeID: x, PortName: "out"}, editor.PortRef{NodeID: sum, PortName: "a"})
	ed.Connect(editor.PortRef{NodeID: y, PortName: "out"}, editor.PortRef{NodeID: sum, PortName: "b"})
	ed.Connect(editor.PortRef{NodeID: sum, PortName: "sum"}, editor.PortRef{NodeID: out, PortName: "value"})

	edge := nodegraph.EdgeKey{SrcNode: sum, SrcPort: "sum", DstNode: out, DstPort: "value"}
	ed.AddWaypoint(edge, nodegraph.Point{X: 300, Y: 20})
	ed.UpdateNodeValues(x, map[string]any{"value": 2.0})
	fmt.Println("graph built")
	printJSON(ed.State().Edges())

	// ── Drag: both inputs move together, snapped to the grid ──────────
	ed.AddNodesToSelection(x, y)
	ed.Move(x, nodegraph.Point{X: 33, Y: 7}, true)
	fmt.Printf("\nmoved: x=%v y=%v\n", ed.State().Nodes[x].Position, ed.State().Nodes[y].Position)

	// ── Copy and paste the inputs and the adder ───────────────────────
	ed.AddNodesToSelection(sum)
	if _, err := ed.CopySelection(ctx); err != nil {
		log.Fatalf("copy: %v", err)
	}
	pasted, err := ed.PasteNodes(ctx, nodegraph.Point{X: 0, Y: 300})
	if err != nil {
		log.Fatalf("paste: %v", err)
	}
	fmt.Printf("\npasted %d nodes, %d selected\n", len(pasted.NodeIDs), len(ed.Selection().Nodes()))

	// ── Delete: the output node is protected ──────────────────────────
	ed.RemoveNodes(out, sum)
	fmt.Printf("\nafter delete: %d nodes, output kept: %v\n", len(ed.State().Nodes), ed.State().Nodes[out] != nil)

	// ── Retrieve ──────────────────────────────────────────────────────
	saved, err := store.GetGraph(ctx, "scene")
	if err != nil {
		log.Fatalf("get graph: %v", err)
	}
	fmt.Printf("\nstored graph has %d nodes\n", len(saved.Nodes))

	edges, err := store.ListEdges(ctx, "scene")
	if err != nil {
		log.Fatalf("list edges: %v", err)
	}
	fmt.Printf("\nedges (%d):\n", len(edges))
	printJSON(edges)

	// ── Cleanup ───────────────────────────────────────────────────────
	if err := store.DeleteGraph(ctx, "scene"); err != nil {
		log.Fatalf("delete: %v", err)
	}
	fmt.Println("\ngraph deleted")
}

func printJSON(v any) {
	out, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(out))
}
