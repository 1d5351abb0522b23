package nodegraph

// PortDescriptor declares one input or output port of a node type.
// A nil DefaultValue means the port contributes nothing to a new node's values.
type PortDescriptor struct {
	Name         string `json:"name" yaml:"name"`
	Type         string `json:"type" yaml:"type"`
	Label        string `json:"label" yaml:"label"`
	DefaultValue any    `json:"defaultValue,omitempty" yaml:"default"`
	HidePort     bool   `json:"hidePort,omitempty" yaml:"hide_port"`
}

// PortsFunc resolves a node's ports from its current values and the input
// connections it already has. Port lists may change as values change.
type PortsFunc func(values map[string]any, inputs []Connection) []PortDescriptor

// Ports returns a PortsFunc that always yields the given static list.
func Ports(ports ...PortDescriptor) PortsFunc {
	return func(map[string]any, []Connection) []PortDescriptor {
		return ports
	}
}

// NodeType describes a kind of node. Root types are protected from removal.
type NodeType struct {
	Type        string
	Label       string
	Category    string
	Description string
	Root        bool
	Inputs      PortsFunc
	Outputs     PortsFunc
}

// InputPorts resolves the input ports for a node of this type.
func (t NodeType) InputPorts(values map[string]any, inputs []Connection) []PortDescriptor {
	if t.Inputs == nil {
		return nil
	}
	return t.Inputs(values, inputs)
}

// OutputPorts resolves the output ports for a node of this type.
func (t NodeType) OutputPorts(values map[string]any, inputs []Connection) []PortDescriptor {
	if t.Outputs == nil {
		return nil
	}
	return t.Outputs(values, inputs)
}

// DefaultValues collects the default value of every input port that has one.
func (t NodeType) DefaultValues() map[string]any {
	values := make(map[string]any)
	for _, p := range t.InputPorts(map[string]any{}, nil) {
		if p.DefaultValue != nil {
			values[p.Name] = p.DefaultValue
		}
	}
	return values
}

// Registry maps type names to their declarations. It is read-only to the editor.
type Registry map[string]NodeType

// Lookup returns the declaration for a type name.
func (r Registry) Lookup(typ string) (NodeType, bool) {
	t, ok := r[typ]
	return t, ok
}

// FindPort returns the named port from a resolved port list.
func FindPort(ports []PortDescriptor, name string) (PortDescriptor, bool) {
	for _, p := range ports {
		if p.Name == name {
			return p, true
		}
	}
	return PortDescriptor{}, false
}
