package nodegraph

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validator returns the shared validator instance so that other packages
// check their payloads with the same rules.
func Validator() *validator.Validate {
	return validate
}

// Validate checks the identity fields every node must carry.
func (n *Node) Validate() error {
	if err := validate.Struct(n); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidNode, err)
	}
	return nil
}

// MustValidNode panics if n lacks an identity, name or type. A node built
// without them means a collaborator broke its contract.
func MustValidNode(n *Node) *Node {
	if err := n.Validate(); err != nil {
		panic(err)
	}
	return n
}
