package nodegraph

import "context"

// Clipboard is the external text clipboard. Implementations block until the
// underlying read or write resolves or ctx is done; failures are returned,
// never panicked.
type Clipboard interface {
	Write(ctx context.Context, text string) error
	Read(ctx context.Context) (string, error)
}

// Viewport supplies the editing surface's bounding rectangle in screen
// coordinates.
type Viewport interface {
	Bounds() Rect
}

// FixedViewport is a Viewport with constant bounds.
type FixedViewport Rect

// Bounds implements Viewport.
func (v FixedViewport) Bounds() Rect { return Rect(v) }
