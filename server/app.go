package main

import (
	"errors"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/meikuraledutech/nodegraph"
	"github.com/meikuraledutech/nodegraph/editor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// structValidator plugs the shared validator into Fiber's binder.
type structValidator struct {
	v *validator.Validate
}

func (s structValidator) Validate(out any) error {
	return s.v.Struct(out)
}

type resultResponse struct {
	Changed   bool `json:"changed"`
	Committed bool `json:"committed"`
}

func respond(c fiber.Ctx, op string, res editor.Result) error {
	observe(op, res)
	return c.JSON(resultResponse{Changed: res.Changed, Committed: res.Committed})
}

type idsBody struct {
	IDs []string `json:"ids" validate:"required"`
}

type addNodeBody struct {
	Type     string           `json:"type" validate:"required"`
	Position *nodegraph.Point `json:"position" validate:"required"`
}

type valuesBody struct {
	Values map[string]any `json:"values" validate:"required"`
}

type moveBody struct {
	Position *nodegraph.Point `json:"position" validate:"required"`
	Commit   bool             `json:"commit"`
}

type connectBody struct {
	Source editor.PortRef `json:"source"`
	Target editor.PortRef `json:"target"`
}

type waypointBody struct {
	Edge     nodegraph.EdgeKey `json:"edge"`
	Index    int               `json:"index" validate:"gte=0"`
	Position nodegraph.Point   `json:"position"`
	Commit   bool              `json:"commit"`
}

type areaBody struct {
	Area      nodegraph.Rect          `json:"area"`
	Mode      editor.AreaMode         `json:"mode" validate:"required"`
	Nodes     []string                `json:"nodes"`
	Waypoints []nodegraph.WaypointRef `json:"waypoints"`
}

type copyBody struct {
	IDs []string `json:"ids"`
}

type pasteBody struct {
	Pointer nodegraph.Point `json:"pointer"`
}

type viewportBody struct {
	Position nodegraph.Point `json:"position"`
	Scale    float64         `json:"scale" validate:"gt=0"`
	Commit   bool            `json:"commit"`
}

// pasteReason maps a paste validation error to a metrics label; "" means
// the error is not a validation failure.
func pasteReason(err error) string {
	switch {
	case errors.Is(err, nodegraph.ErrClipboardEmpty):
		return "empty"
	case errors.Is(err, nodegraph.ErrUnknownNodeType):
		return "unknown_type"
	case errors.Is(err, nodegraph.ErrMissingPosition):
		return "missing_position"
	case errors.Is(err, nodegraph.ErrDanglingConnection):
		return "dangling_connection"
	case errors.Is(err, nodegraph.ErrInvalidNode):
		return "invalid_node"
	default:
		return ""
	}
}

// newApp exposes every editor operation over HTTP. p receives wholesale
// document replacements from PUT /graph; committed edits reach it through
// the editor's OnChange hook.
func newApp(ed *editor.Editor, p *persister, logger *slog.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		StructValidator: structValidator{v: nodegraph.Validator()},
	})

	bad := func(c fiber.Ctx, err error) error {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// ── Graph ─────────────────────────────────────────────────────────
	app.Get("/graph", func(c fiber.Ctx) error {
		return c.JSON(ed.State())
	})

	app.Put("/graph", func(c fiber.Ctx) error {
		var g nodegraph.Graph
		if err := c.Bind().JSON(&g); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid body"})
		}
		if g.Nodes == nil {
			g.Nodes = map[string]*nodegraph.Node{}
		}
		for id, n := range g.Nodes {
			if n == nil || n.ID != id || n.Validate() != nil {
				return c.Status(422).JSON(fiber.Map{"error": "invalid node " + id})
			}
		}
		if err := g.CheckConnections(); err != nil {
			return c.Status(422).JSON(fiber.Map{"error": err.Error()})
		}
		res := ed.Load(&g)
		p.commit(res.Graph)
		logger.Info("graph loaded", slog.Int("nodes", len(res.Graph.Nodes)))
		return respond(c, "load", res)
	})

	// Last persisted version, which lags the live document by the
	// persistence debounce.
	app.Get("/graph/saved", func(c fiber.Ctx) error {
		g, err := p.store.GetGraph(c.Context(), p.graphID)
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		if g == nil {
			return c.Status(404).JSON(fiber.Map{"error": nodegraph.ErrGraphNotFound.Error()})
		}
		return c.JSON(g)
	})

	// ── Nodes ─────────────────────────────────────────────────────────
	app.Get("/nodes/:id", func(c fiber.Ctx) error {
		n, ok := ed.State().Nodes[c.Params("id")]
		if !ok {
			return c.Status(404).JSON(fiber.Map{"error": nodegraph.ErrNodeNotFound.Error()})
		}
		return c.JSON(n)
	})

	app.Post("/nodes", func(c fiber.Ctx) error {
		var body addNodeBody
		if err := c.Bind().JSON(&body); err != nil {
			return bad(c, err)
		}
		id, res := ed.AddNode(body.Type, *body.Position)
		observe("add_node", res)
		return c.Status(201).JSON(fiber.Map{"id": id})
	})

	app.Delete("/nodes", func(c fiber.Ctx) error {
		var body idsBody
		if err := c.Bind().JSON(&body); err != nil {
			return bad(c, err)
		}
		return respond(c, "remove_nodes", ed.RemoveNodes(body.IDs...))
	})

	app.Post("/nodes/:id/clone", func(c fiber.Ctx) error {
		id, res := ed.CloneNode(c.Params("id"))
		observe("clone_node", res)
		if !res.Changed {
			return c.Status(404).JSON(fiber.Map{"error": nodegraph.ErrNodeNotFound.Error()})
		}
		return c.Status(201).JSON(fiber.Map{"id": id})
	})

	app.Put("/nodes/:id/values", func(c fiber.Ctx) error {
		var body valuesBody
		if err := c.Bind().JSON(&body); err != nil {
			return bad(c, err)
		}
		res := ed.UpdateNodeValues(c.Params("id"), body.Values)
		if !res.Changed {
			observe("update_values", res)
			return c.Status(404).JSON(fiber.Map{"error": nodegraph.ErrNodeNotFound.Error()})
		}
		return respond(c, "update_values", res)
	})

	app.Post("/nodes/:id/move", func(c fiber.Ctx) error {
		var body moveBody
		if err := c.Bind().JSON(&body); err != nil {
			return bad(c, err)
		}
		ed.Move(c.Params("id"), *body.Position, body.Commit)
		operationsTotal.WithLabelValues("move", "deferred").Inc()
		return c.SendStatus(202)
	})

	// ── Connections ───────────────────────────────────────────────────
	app.Post("/connections", func(c fiber.Ctx) error {
		var body connectBody
		if err := c.Bind().JSON(&body); err != nil {
			return bad(c, err)
		}
		return respond(c, "connect", ed.Connect(body.Source, body.Target))
	})

	app.Delete("/connections", func(c fiber.Ctx) error {
		var edge nodegraph.EdgeKey
		if err := c.Bind().JSON(&edge); err != nil {
			return bad(c, err)
		}
		res := ed.RemoveConnectionFromOutput(edge.SrcNode, edge.SrcPort, edge.DstNode, edge.DstPort)
		return respond(c, "disconnect", res)
	})

	// ── Waypoints ─────────────────────────────────────────────────────
	app.Post("/waypoints", func(c fiber.Ctx) error {
		var body waypointBody
		if err := c.Bind().JSON(&body); err != nil {
			return bad(c, err)
		}
		return respond(c, "add_waypoint", ed.AddWaypoint(body.Edge, body.Position))
	})

	app.Put("/waypoints", func(c fiber.Ctx) error {
		var body waypointBody
		if err := c.Bind().JSON(&body); err != nil {
			return bad(c, err)
		}
		return respond(c, "update_waypoint", ed.UpdateWaypointPosition(body.Edge, body.Index, body.Position, body.Commit))
	})

	app.Delete("/waypoints", func(c fiber.Ctx) error {
		var body waypointBody
		if err := c.Bind().JSON(&body); err != nil {
			return bad(c, err)
		}
		return respond(c, "remove_waypoint", ed.RemoveWaypoint(body.Edge, body.Index))
	})

	// ── Selection ─────────────────────────────────────────────────────
	app.Get("/selection", func(c fiber.Ctx) error {
		return c.JSON(ed.Selection())
	})

	app.Delete("/selection", func(c fiber.Ctx) error {
		return c.JSON(ed.ClearSelection())
	})

	app.Post("/selection/all", func(c fiber.Ctx) error {
		return c.JSON(ed.SelectAllNodes())
	})

	app.Post("/selection/nodes", func(c fiber.Ctx) error {
		var body idsBody
		if err := c.Bind().JSON(&body); err != nil {
			return bad(c, err)
		}
		return c.JSON(ed.AddNodesToSelection(body.IDs...))
	})

	app.Delete("/selection/nodes", func(c fiber.Ctx) error {
		var body idsBody
		if err := c.Bind().JSON(&body); err != nil {
			return bad(c, err)
		}
		return c.JSON(ed.RemoveNodesFromSelection(body.IDs...))
	})

	app.Post("/selection/waypoints", func(c fiber.Ctx) error {
		var ref nodegraph.WaypointRef
		if err := c.Bind().JSON(&ref); err != nil {
			return bad(c, err)
		}
		return c.JSON(ed.AddWaypointToSelection(ref))
	})

	app.Delete("/selection/waypoints", func(c fiber.Ctx) error {
		var ref nodegraph.WaypointRef
		if err := c.Bind().JSON(&ref); err != nil {
			return bad(c, err)
		}
		return c.JSON(ed.RemoveWaypointFromSelection(ref))
	})

	app.Post("/selection/area", func(c fiber.Ctx) error {
		var body areaBody
		if err := c.Bind().JSON(&body); err != nil {
			return bad(c, err)
		}
		sel, ok := ed.ProcessAreaSelection(body.Area, body.Mode, body.Nodes, body.Waypoints)
		if !ok {
			return c.Status(422).JSON(fiber.Map{"error": "unknown area selection mode"})
		}
		return c.JSON(sel)
	})

	app.Post("/selection/delete", func(c fiber.Ctx) error {
		return respond(c, "delete_selection", ed.DeleteSelection())
	})

	app.Post("/selection/clone", func(c fiber.Ctx) error {
		ids, res := ed.CloneSelection()
		observe("clone_selection", res)
		return c.Status(201).JSON(fiber.Map{"ids": ids})
	})

	// ── Clipboard ─────────────────────────────────────────────────────
	app.Post("/clipboard/copy", func(c fiber.Ctx) error {
		var body copyBody
		if len(c.Body()) > 0 {
			if err := c.Bind().JSON(&body); err != nil {
				return bad(c, err)
			}
		}
		var n int
		var err error
		if len(body.IDs) > 0 {
			n, err = ed.CopyNodes(c.Context(), body.IDs)
		} else {
			n, err = ed.CopySelection(c.Context())
		}
		if err != nil {
			return c.Status(502).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(fiber.Map{"copied": n})
	})

	app.Post("/clipboard/paste", func(c fiber.Ctx) error {
		var body pasteBody
		if len(c.Body()) > 0 {
			if err := c.Bind().JSON(&body); err != nil {
				return bad(c, err)
			}
		}
		res, err := ed.PasteNodes(c.Context(), body.Pointer)
		observe("paste", res.Result)
		if err != nil {
			if reason := pasteReason(err); reason != "" {
				pasteRejections.WithLabelValues(reason).Inc()
				return c.Status(422).JSON(fiber.Map{"error": err.Error()})
			}
			return c.Status(502).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(201).JSON(fiber.Map{"ids": res.NodeIDs})
	})

	// ── Viewport ──────────────────────────────────────────────────────
	app.Post("/viewport", func(c fiber.Ctx) error {
		var body viewportBody
		if err := c.Bind().JSON(&body); err != nil {
			return bad(c, err)
		}
		return respond(c, "set_transform", ed.SetTransform(body.Position, body.Scale, body.Commit))
	})

	return app
}
