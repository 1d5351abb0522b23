package config

import (
	"fmt"
	"os"

	"github.com/meikuraledutech/nodegraph"
	"gopkg.in/yaml.v3"
)

// NodeTypesFile is a YAML catalogue of node types with static port lists.
type NodeTypesFile struct {
	Version int            `yaml:"version"`
	Types   []NodeTypeSpec `yaml:"types" validate:"dive"`
}

// NodeTypeSpec is one catalogue entry.
type NodeTypeSpec struct {
	Type        string                     `yaml:"type" validate:"required"`
	Label       string                     `yaml:"label"`
	Category    string                     `yaml:"category"`
	Description string                     `yaml:"description"`
	Root        bool                       `yaml:"root"`
	Inputs      []nodegraph.PortDescriptor `yaml:"inputs"`
	Outputs     []nodegraph.PortDescriptor `yaml:"outputs"`
}

// LoadNodeTypes reads a catalogue file and builds a Registry from it.
func LoadNodeTypes(path string) (nodegraph.Registry, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseNodeTypes(b)
}

// ParseNodeTypes builds a Registry from catalogue YAML.
func ParseNodeTypes(b []byte) (nodegraph.Registry, error) {
	var f NodeTypesFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("config: parse node types: %w", err)
	}
	if f.Version != 1 {
		return nil, fmt.Errorf("unsupported node types version: %d", f.Version)
	}
	if err := nodegraph.Validator().Struct(f); err != nil {
		return nil, fmt.Errorf("config: node types: %w", err)
	}
	return f.Registry()
}

// Registry converts the catalogue. Duplicate type names are rejected.
func (f NodeTypesFile) Registry() (nodegraph.Registry, error) {
	reg := make(nodegraph.Registry, len(f.Types))
	for _, s := range f.Types {
		if _, dup := reg[s.Type]; dup {
			return nil, fmt.Errorf("config: duplicate node type %q", s.Type)
		}
		label := s.Label
		if label == "" {
			label = s.Type
		}
		reg[s.Type] = nodegraph.NodeType{
			Type:        s.Type,
			Label:       label,
			Category:    s.Category,
			Description: s.Description,
			Root:        s.Root,
			Inputs:      nodegraph.Ports(s.Inputs...),
			Outputs:     nodegraph.Ports(s.Outputs...),
		}
	}
	return reg, nil
}
