package editor

import (
	"log/slog"
	"sync"
	"time"

	"github.com/meikuraledutech/nodegraph"
	"github.com/meikuraledutech/nodegraph/clipboard"
	"github.com/meikuraledutech/nodegraph/ratelimit"
)

// DefaultDragThrottle bounds drag updates to roughly 60 per second.
const DefaultDragThrottle = 16 * time.Millisecond

// cloneOffset is how far a cloned node is placed from its original.
var cloneOffset = nodegraph.Point{X: 20, Y: 20}

// Grid configures snapping of dragged nodes.
type Grid struct {
	Enabled bool
	Size    float64
}

// Options configures an Editor. Only Registry is required.
type Options struct {
	Registry  nodegraph.Registry
	Clipboard nodegraph.Clipboard
	Viewport  nodegraph.Viewport
	Logger    *slog.Logger
	Grid      Grid

	// DragThrottle is the throttle window for Move. Zero means DefaultDragThrottle.
	DragThrottle time.Duration

	// OnChange receives every committed state. It runs outside the editor
	// lock but must not perform committing operations on the same Editor.
	OnChange func(*nodegraph.Graph)
}

// Result describes the outcome of one operation.
type Result struct {
	// Changed is true when a new state was published.
	Changed bool
	// Committed is true when the new state was handed to OnChange.
	Committed bool
	// Graph is the current state after the operation. Treat as read-only.
	Graph *nodegraph.Graph
}

// Editor is the graph state engine. It is safe for concurrent use, although
// hosts normally drive it from a single input loop.
type Editor struct {
	registry  nodegraph.Registry
	clipboard nodegraph.Clipboard
	viewport  nodegraph.Viewport
	logger    *slog.Logger
	grid      Grid
	onChange  func(*nodegraph.Graph)

	mu        sync.Mutex
	graph     *nodegraph.Graph
	selection Selection

	notifyMu sync.Mutex
	drag     *ratelimit.Throttle[MoveRequest]
}

// New creates an Editor over g. A nil g starts from an empty document.
func New(g *nodegraph.Graph, opts Options) *Editor {
	if g == nil {
		g = nodegraph.New()
	}
	if opts.Clipboard == nil {
		opts.Clipboard = clipboard.NewMemory()
	}
	if opts.Viewport == nil {
		opts.Viewport = nodegraph.FixedViewport{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.DragThrottle <= 0 {
		opts.DragThrottle = DefaultDragThrottle
	}
	if opts.Registry == nil {
		opts.Registry = nodegraph.Registry{}
	}

	e := &Editor{
		registry:  opts.Registry,
		clipboard: opts.Clipboard,
		viewport:  opts.Viewport,
		logger:    opts.Logger,
		grid:      opts.Grid,
		onChange:  opts.OnChange,
		graph:     normalize(g.Clone()),
	}
	e.drag = ratelimit.NewThrottle(opts.DragThrottle, func(r MoveRequest) {
		e.MoveNow(r.NodeID, r.Position, r.Commit)
	})
	return e
}

// State returns the current document. Treat as read-only.
func (e *Editor) State() *nodegraph.Graph {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.graph
}

// Registry returns the node-type registry the editor resolves ports with.
func (e *Editor) Registry() nodegraph.Registry {
	return e.registry
}

// Load replaces the whole document, for example after reading it from a
// Store. Selection entries that no longer resolve are pruned. Loading does
// not notify the host.
func (e *Editor) Load(g *nodegraph.Graph) Result {
	next := normalize(g.Clone())
	e.mu.Lock()
	e.graph = next
	e.selection = e.selection.prune(next)
	e.mu.Unlock()
	return Result{Changed: true, Graph: next}
}

// SetTransform stores the canvas pan offset and zoom scale.
// A non-positive scale is ignored.
func (e *Editor) SetTransform(position nodegraph.Point, scale float64, commit bool) Result {
	return e.apply(commit, func(tx *txn) bool {
		if scale <= 0 || (tx.position == position && tx.scale == scale) {
			return false
		}
		tx.position = position
		tx.scale = scale
		return true
	})
}

// Close cancels any pending drag update. Call it when the interaction that
// owns the editor ends.
func (e *Editor) Close() {
	e.drag.Cancel()
}

// apply runs fn against a copy-on-write transaction and publishes the
// result if fn reports a change.
func (e *Editor) apply(commit bool, fn func(tx *txn) bool) Result {
	e.mu.Lock()
	tx := newTxn(e.graph, e.selection)
	if !fn(tx) {
		g := e.graph
		e.mu.Unlock()
		return Result{Graph: g}
	}
	next := tx.graph()
	e.graph = next
	e.selection = tx.sel
	if !commit || e.onChange == nil {
		e.mu.Unlock()
		return Result{Changed: true, Committed: commit, Graph: next}
	}
	// Holding notifyMu across the unlock keeps notifications in commit order.
	e.notifyMu.Lock()
	e.mu.Unlock()
	defer e.notifyMu.Unlock()
	e.onChange(next)
	return Result{Changed: true, Committed: true, Graph: next}
}

func (e *Editor) isRoot(n *nodegraph.Node) bool {
	if n.Root {
		return true
	}
	t, ok := e.registry.Lookup(n.Type)
	return ok && t.Root
}

// normalize makes sure the maps and slices the editor appends to exist.
func normalize(g *nodegraph.Graph) *nodegraph.Graph {
	if g.Nodes == nil {
		g.Nodes = make(map[string]*nodegraph.Node)
	}
	if g.Scale <= 0 {
		g.Scale = 1
	}
	for _, n := range g.Nodes {
		if n.Values == nil {
			n.Values = map[string]any{}
		}
		if n.Connections.Inputs == nil {
			n.Connections.Inputs = []nodegraph.Connection{}
		}
		if n.Connections.Outputs == nil {
			n.Connections.Outputs = []nodegraph.Connection{}
		}
	}
	return g
}
