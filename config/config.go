// Package config assembles graphs from YAML documents. A document names
// its nodes by registered type and lists the edges between them; the
// document is checked against an embedded JSON schema before any node is
// built, so shape defects surface with a path into the document instead
// of a failure halfway through assembly. The file is consumed once, at
// load: there is no reload of a running graph.
package config

import (
	"fmt"
	"os"
	"sort"

	"github.com/goccy/go-yaml"

	"github.com/sigflow/sigflow"
)

// Builder constructs a node from its declared parameters. The name
// becomes the node's label in the graph.
type Builder func(name string, params Params) (sigflow.Node, error)

// Registry maps node type names to builders. Use Default for a registry
// with the builtin types, NewRegistry for an empty one.
type Registry struct {
	builders map[string]Builder
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{builders: make(map[string]Builder)}
}

// Register binds a node type name to a builder. Rebinding a taken name
// is rejected, so builtin types cannot be shadowed by accident.
func (r *Registry) Register(nodeType string, b Builder) error {
	if nodeType == "" || b == nil {
		return fmt.Errorf("node type and builder are required")
	}
	if _, ok := r.builders[nodeType]; ok {
		return fmt.Errorf("node type %s already registered", nodeType)
	}
	r.builders[nodeType] = b
	return nil
}

// Types returns the registered type names, sorted.
func (r *Registry) Types() []string {
	types := make([]string, 0, len(r.builders))
	for t := range r.builders {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Load assembles a graph from a YAML document. The document name becomes
// the graph name; options are applied on top of it and may override it.
func (r *Registry) Load(data []byte, options ...sigflow.Option) (*sigflow.Graph, error) {
	var shape map[string]interface{}
	if err := yaml.Unmarshal(data, &shape); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	if err := validateShape(shape); err != nil {
		return nil, err
	}
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	g := sigflow.New(append([]sigflow.Option{sigflow.WithName(doc.Name)}, options...)...)
	nodes := make(map[string]sigflow.Node, len(doc.Nodes))
	for _, def := range doc.Nodes {
		builder, ok := r.builders[def.Type]
		if !ok {
			return nil, fmt.Errorf("node %s: unknown node type %s", def.Name, def.Type)
		}
		n, err := builder(def.Name, def.Params)
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", def.Name, err)
		}
		if err := g.Add(n); err != nil {
			return nil, err
		}
		nodes[def.Name] = n
	}
	for _, e := range doc.Edges {
		if err := g.Connect(nodes[e.From], e.FromPort, nodes[e.To], e.ToPort); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// LoadFile assembles a graph from a YAML file.
func (r *Registry) LoadFile(path string, options ...sigflow.Option) (*sigflow.Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return r.Load(data, options...)
}
