package nodegraph

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrNodeNotFound       = errors.New("nodegraph: node not found")
	ErrGraphNotFound      = errors.New("nodegraph: graph not found")
	ErrUnknownNodeType    = errors.New("nodegraph: unknown node type")
	ErrMissingPosition    = errors.New("nodegraph: node has no position")
	ErrClipboardEmpty     = errors.New("nodegraph: clipboard is empty")
	ErrDanglingConnection = errors.New("nodegraph: connection references a missing node")
	ErrInvalidNode        = errors.New("nodegraph: invalid node")
)

func danglingError(missing string, e Edge) error {
	return fmt.Errorf("%w: %s (%s.%s -> %s.%s)", ErrDanglingConnection, missing, e.FromNode, e.FromPort, e.ToNode, e.ToPort)
}

// Store defines the contract for persisting and retrieving graph documents.
type Store interface {
	// Schema
	CreateSchema(ctx context.Context) error
	DropSchema(ctx context.Context) error

	// Graph (bulk operations)
	SaveGraph(ctx context.Context, graphID string, g *Graph) error
	GetGraph(ctx context.Context, graphID string) (*Graph, error)
	DeleteGraph(ctx context.Context, graphID string) error

	// Nodes
	GetNode(ctx context.Context, graphID, nodeID string) (*Node, error)
	ListNodes(ctx context.Context, graphID string) ([]Node, error)

	// Edges
	ListEdges(ctx context.Context, graphID string) ([]Edge, error)
}
