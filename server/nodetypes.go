package main

import "github.com/meikuraledutech/nodegraph"

// builtinTypes is the catalogue used when no node_types file is configured.
func builtinTypes() nodegraph.Registry {
	return nodegraph.Registry{
		"number": {
			Type:     "number",
			Label:    "Number",
			Category: "input",
			Inputs: nodegraph.Ports(
				nodegraph.PortDescriptor{Name: "value", Type: "number", Label: "Value", DefaultValue: 0.0, HidePort: true},
			),
			Outputs: nodegraph.Ports(
				nodegraph.PortDescriptor{Name: "out", Type: "number", Label: "Number"},
			),
		},
		"text": {
			Type:     "text",
			Label:    "Text",
			Category: "input",
			Inputs: nodegraph.Ports(
				nodegraph.PortDescriptor{Name: "text", Type: "text", Label: "Text", DefaultValue: "", HidePort: true},
			),
			Outputs: nodegraph.Ports(
				nodegraph.PortDescriptor{Name: "out", Type: "text", Label: "Text"},
			),
		},
		"add": {
			Type:     "add",
			Label:    "Add",
			Category: "math",
			Inputs: nodegraph.Ports(
				nodegraph.PortDescriptor{Name: "a", Type: "number", Label: "A", DefaultValue: 0.0},
				nodegraph.PortDescriptor{Name: "b", Type: "number", Label: "B", DefaultValue: 0.0},
			),
			Outputs: nodegraph.Ports(
				nodegraph.PortDescriptor{Name: "sum", Type: "number", Label: "Sum"},
			),
		},
		"output": {
			Type:        "output",
			Label:       "Output",
			Category:    "output",
			Description: "Graph result. Cannot be deleted.",
			Root:        true,
			Inputs: nodegraph.Ports(
				nodegraph.PortDescriptor{Name: "value", Type: "number", Label: "Value"},
			),
		},
	}
}
