package editor

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/meikuraledutech/nodegraph"
)

// clipNode is a node as read back from the clipboard. Position is a pointer
// so that a missing position can be told apart from the origin.
type clipNode struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Type        string           `json:"type" validate:"required"`
	Root        bool             `json:"root"`
	Position    *nodegraph.Point `json:"position" validate:"required"`
	Size        *nodegraph.Size  `json:"size"`
	Values      map[string]any   `json:"values"`
	Connections struct {
		Inputs  []nodegraph.Connection `json:"inputs"`
		Outputs []nodegraph.Connection `json:"outputs"`
	} `json:"connections"`
}

// PasteResult is the outcome of a paste.
type PasteResult struct {
	Result
	// NodeIDs are the identities of the pasted nodes, now selected.
	NodeIDs []string
}

// CopyNodes writes the given nodes to the clipboard as a node-ID keyed JSON
// object. Unknown IDs are skipped. Returns how many nodes were copied; when
// none exist nothing is written.
func (e *Editor) CopyNodes(ctx context.Context, ids []string) (int, error) {
	g := e.State()
	subset := make(map[string]*nodegraph.Node, len(ids))
	for _, id := range ids {
		n, ok := g.Nodes[id]
		if !ok {
			e.logger.Warn("editor: copy skipped missing node", slog.String("node", id))
			continue
		}
		subset[id] = n
	}
	if len(subset) == 0 {
		e.logger.Debug("editor: nothing to copy")
		return 0, nil
	}

	text, err := json.Marshal(subset)
	if err != nil {
		return 0, fmt.Errorf("editor: encode clipboard: %w", err)
	}
	if err := e.clipboard.Write(ctx, string(text)); err != nil {
		e.logger.Error("editor: clipboard write failed", slog.Any("error", err))
		return 0, fmt.Errorf("editor: write clipboard: %w", err)
	}
	return len(subset), nil
}

// CopySelection copies the selected nodes.
func (e *Editor) CopySelection(ctx context.Context) (int, error) {
	return e.CopyNodes(ctx, e.Selection().Nodes())
}

// PasteNodes reads the clipboard and adds its nodes under fresh IDs so that
// the leftmost pasted node lands on pointer (in screen coordinates).
//
// Reading the clipboard may block; the document is read after the clipboard
// resolves, so changes made in the meantime are kept. Root nodes in the
// payload are ignored and connections to nodes outside the payload are
// dropped. If any node fails validation nothing is pasted. On success the
// selection becomes exactly the pasted nodes and their waypoints.
func (e *Editor) PasteNodes(ctx context.Context, pointer nodegraph.Point) (PasteResult, error) {
	text, err := e.clipboard.Read(ctx)
	if err != nil {
		e.logger.Error("editor: clipboard read failed", slog.Any("error", err))
		return PasteResult{Result: Result{Graph: e.State()}}, fmt.Errorf("editor: read clipboard: %w", err)
	}
	clips, err := e.decodeClipboard(text)
	if err != nil {
		e.logger.Warn("editor: paste rejected", slog.Any("error", err))
		return PasteResult{Result: Result{Graph: e.State()}}, err
	}

	var ids []string
	var pasteErr error
	res := e.apply(true, func(tx *txn) bool {
		viewport := e.viewport.Bounds()
		target := nodegraph.ScreenToWorld(pointer, viewport, tx.position, tx.scale)
		nodes, refs, err := placeClips(clips, target)
		if err != nil {
			pasteErr = err
			return false
		}
		for _, n := range nodes {
			tx.put(n)
			ids = append(ids, n.ID)
		}
		tx.sel = Selection{}.withNodes(ids).withWaypoints(refs)
		return true
	})
	if pasteErr != nil {
		e.logger.Warn("editor: paste rejected", slog.Any("error", pasteErr))
		return PasteResult{Result: res}, pasteErr
	}
	return PasteResult{Result: res, NodeIDs: ids}, nil
}

// decodeClipboard parses and validates a clipboard payload. Root nodes are
// dropped; the remaining nodes must all have a known type and a position.
func (e *Editor) decodeClipboard(text string) (map[string]*clipNode, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nodegraph.ErrClipboardEmpty
	}
	var raw map[string]*clipNode
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("editor: decode clipboard: %w", err)
	}

	clips := make(map[string]*clipNode, len(raw))
	for id, c := range raw {
		if c == nil {
			return nil, fmt.Errorf("%w: %s is null", nodegraph.ErrInvalidNode, id)
		}
		typ, known := e.registry.Lookup(c.Type)
		if c.Root || (known && typ.Root) {
			continue
		}
		if err := validateClip(id, c); err != nil {
			return nil, err
		}
		if !known {
			return nil, fmt.Errorf("%w: %q on node %s", nodegraph.ErrUnknownNodeType, c.Type, id)
		}
		if c.Name == "" {
			c.Name = cmp.Or(typ.Label, c.Type)
		}
		if c.Connections.Inputs == nil {
			c.Connections.Inputs = []nodegraph.Connection{}
		}
		if c.Connections.Outputs == nil {
			c.Connections.Outputs = []nodegraph.Connection{}
		}
		clips[id] = c
	}
	if len(clips) == 0 {
		return nil, nodegraph.ErrClipboardEmpty
	}
	return clips, nil
}

func validateClip(id string, c *clipNode) error {
	err := nodegraph.Validator().Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			switch fe.Field() {
			case "Position":
				return fmt.Errorf("%w: %s", nodegraph.ErrMissingPosition, id)
			case "Type":
				return fmt.Errorf("%w: node %s has no type", nodegraph.ErrUnknownNodeType, id)
			}
		}
	}
	return fmt.Errorf("%w: %s: %v", nodegraph.ErrInvalidNode, id, err)
}

// placeClips assigns fresh IDs, remaps internal connections, drops
// connections leaving the payload and translates everything so the anchor
// (smallest X) lands on target.
func placeClips(clips map[string]*clipNode, target nodegraph.Point) ([]*nodegraph.Node, []nodegraph.WaypointRef, error) {
	oldIDs := make([]string, 0, len(clips))
	for id := range clips {
		oldIDs = append(oldIDs, id)
	}
	slices.Sort(oldIDs)

	anchor := *clips[oldIDs[0]].Position
	for _, id := range oldIDs[1:] {
		if p := *clips[id].Position; p.X < anchor.X {
			anchor = p
		}
	}
	offset := target.Sub(anchor)

	remap := make(map[string]string, len(oldIDs))
	for _, id := range oldIDs {
		remap[id] = nodegraph.NewID()
	}

	pasted := nodegraph.New()
	nodes := make([]*nodegraph.Node, 0, len(oldIDs))
	for _, oldID := range oldIDs {
		c := clips[oldID]
		n := &nodegraph.Node{
			ID:       remap[oldID],
			Name:     c.Name,
			Type:     c.Type,
			Position: c.Position.Add(offset),
			Values:   nodegraph.CopyValues(c.Values),
			Connections: nodegraph.Connections{
				Inputs:  []nodegraph.Connection{},
				Outputs: []nodegraph.Connection{},
			},
		}
		if c.Size != nil {
			s := *c.Size
			n.Size = &s
		}
		for _, in := range c.Connections.Inputs {
			newID, ok := remap[in.Node]
			if !ok {
				continue
			}
			in = in.Clone()
			in.Node = newID
			in.Waypoints = nil
			n.Connections.Inputs = append(n.Connections.Inputs, in)
		}
		for _, out := range c.Connections.Outputs {
			newID, ok := remap[out.Node]
			if !ok {
				continue
			}
			out = out.Clone()
			out.Node = newID
			waypoints := make([]nodegraph.Point, len(out.Waypoints))
			for i, wp := range out.Waypoints {
				waypoints[i] = wp.Add(offset)
			}
			out.Waypoints = waypoints
			n.Connections.Outputs = append(n.Connections.Outputs, out)
		}
		nodes = append(nodes, nodegraph.MustValidNode(n))
		pasted.Nodes[n.ID] = n
	}

	if err := pasted.CheckConnections(); err != nil {
		return nil, nil, fmt.Errorf("editor: clipboard connections are inconsistent: %w", err)
	}

	var refs []nodegraph.WaypointRef
	for _, n := range nodes {
		for _, out := range n.Connections.Outputs {
			for i := range out.Waypoints {
				refs = append(refs, nodegraph.WaypointRef{
					SrcNode:       n.ID,
					SrcPort:       out.Name,
					DstNode:       out.Node,
					DstPort:       out.Port,
					WaypointIndex: i,
				})
			}
		}
	}
	return nodes, refs, nil
}
