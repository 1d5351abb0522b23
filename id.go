package nodegraph

import "github.com/google/uuid"

// NewID returns a fresh, globally unique node identity.
func NewID() string {
	return uuid.NewString()
}
