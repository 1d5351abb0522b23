// Package editor is the graph state engine behind a node editor canvas.
//
// An Editor owns one document (a nodegraph.Graph) and the current selection.
// Every operation is a transition from the previous state to a wholly new
// one: nodes touched by an operation are copied before they change, so a
// *nodegraph.Graph obtained from State or a Result is never modified
// afterwards and readers never observe a torn update.
//
// Operations return a Result. Committed results are also delivered to the
// host's OnChange callback; local results (intermediate drag frames, node
// measurements) are not.
//
// Connections are written on both endpoints inside the same transition.
// There is no operation that touches only one side of an edge.
package editor
