package config

import (
	"encoding/json"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// Document is the root of a graph definition.
type Document struct {
	Name  string    `yaml:"name"`
	Nodes []NodeDef `yaml:"nodes"`
	Edges []EdgeDef `yaml:"edges"`
}

// NodeDef declares one node: a unique name, a registered type and the
// parameters handed to the type's builder.
type NodeDef struct {
	Name   string `yaml:"name"`
	Type   string `yaml:"type"`
	Params Params `yaml:"params"`
}

// EdgeDef wires an output port of one node to an input port of another.
// Ports default to zero.
type EdgeDef struct {
	From     string `yaml:"from"`
	To       string `yaml:"to"`
	FromPort int    `yaml:"from_port"`
	ToPort   int    `yaml:"to_port"`
}

// Validate checks the references the schema cannot see: node names must
// be unique and every edge endpoint must name a declared node.
func (d *Document) Validate() error {
	names := make(map[string]bool, len(d.Nodes))
	for _, n := range d.Nodes {
		if names[n.Name] {
			return fmt.Errorf("node %s declared twice", n.Name)
		}
		names[n.Name] = true
	}
	for _, e := range d.Edges {
		if !names[e.From] {
			return fmt.Errorf("edge from unknown node %s", e.From)
		}
		if !names[e.To] {
			return fmt.Errorf("edge to unknown node %s", e.To)
		}
	}
	return nil
}

const schema = `{
	"type": "object",
	"required": ["name", "nodes"],
	"additionalProperties": false,
	"properties": {
		"name": {"type": "string", "minLength": 1},
		"nodes": {
			"type": "array",
			"minItems": 1,
			"items": {
				"type": "object",
				"required": ["name", "type"],
				"additionalProperties": false,
				"properties": {
					"name": {"type": "string", "minLength": 1},
					"type": {"type": "string", "minLength": 1},
					"params": {"type": "object"}
				}
			}
		},
		"edges": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["from", "to"],
				"additionalProperties": false,
				"properties": {
					"from": {"type": "string", "minLength": 1},
					"to": {"type": "string", "minLength": 1},
					"from_port": {"type": "integer", "minimum": 0},
					"to_port": {"type": "integer", "minimum": 0}
				}
			}
		}
	}
}`

// validateShape checks the decoded document against the embedded JSON
// schema. The YAML decoder produces JSON-compatible values, so the
// document is re-encoded and handed to the validator as is.
func validateShape(doc map[string]interface{}) error {
	docJSON, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schema),
		gojsonschema.NewBytesLoader(docJSON),
	)
	if err != nil {
		return fmt.Errorf("schema: %w", err)
	}
	if !result.Valid() {
		var msg string
		for i, desc := range result.Errors() {
			if i > 0 {
				msg += "; "
			}
			msg += desc.String()
		}
		return fmt.Errorf("definition rejected: %s", msg)
	}
	return nil
}
