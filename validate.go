package sigflow

import (
	"fmt"
	"math"
	"sort"

	"go.uber.org/multierr"

	"github.com/sigflow/sigflow/metric"
	"github.com/sigflow/sigflow/signal"
)

// validate checks the topology, establishes stream contexts and computes
// the execution order. It runs once, from start, and any error it returns
// blocks the run entirely.
func (g *Graph) validate() error {
	if err := g.validateStructure(); err != nil {
		return err
	}
	g.order = g.topoSort()
	if err := g.setupSources(); err != nil {
		return err
	}
	if err := g.pace(); err != nil {
		return err
	}
	return g.setupRest()
}

// validateStructure collects every structural defect before any node
// setup runs: missing sources, unconnected inputs, cycles, nodes no
// source can reach.
func (g *Graph) validateStructure() error {
	var errs error
	if len(g.nodes) == 0 {
		return &ConfigError{Err: fmt.Errorf("empty graph")}
	}
	sources := 0
	for _, n := range g.nodes {
		if n.source {
			sources++
			continue
		}
		for port, e := range n.ins {
			if e == nil {
				errs = multierr.Append(errs, &ConfigError{
					Node: n.label,
					Err:  fmt.Errorf("input port %d not connected", port),
				})
			}
		}
	}
	if sources == 0 {
		errs = multierr.Append(errs, &ConfigError{Err: fmt.Errorf("no source nodes")})
	}
	if errs != nil {
		return errs
	}
	if err := g.detectCycle(); err != nil {
		return err
	}
	for i, reachable := range g.markReachable() {
		if !reachable {
			errs = multierr.Append(errs, &ConfigError{
				Node: g.nodes[i].label,
				Err:  fmt.Errorf("not reachable from any source"),
			})
		}
	}
	return errs
}

// detectCycle runs a depth-first search keeping the recursion stack, so
// any edge back into the stack is a cycle.
func (g *Graph) detectCycle() error {
	visited := make([]bool, len(g.nodes))
	stacked := make([]bool, len(g.nodes))

	var visit func(int) error
	visit = func(i int) error {
		visited[i] = true
		stacked[i] = true
		for _, consumers := range g.nodes[i].outs {
			for _, e := range consumers {
				if !visited[e.to] {
					if err := visit(e.to); err != nil {
						return err
					}
				} else if stacked[e.to] {
					return &ConfigError{
						Node: g.nodes[e.to].label,
						Err:  fmt.Errorf("cycle detected"),
					}
				}
			}
		}
		stacked[i] = false
		return nil
	}

	for i := range g.nodes {
		if !visited[i] {
			if err := visit(i); err != nil {
				return err
			}
		}
	}
	return nil
}

// markReachable reports which nodes are reachable from a source.
func (g *Graph) markReachable() []bool {
	reachable := make([]bool, len(g.nodes))
	var mark func(int)
	mark = func(i int) {
		if reachable[i] {
			return
		}
		reachable[i] = true
		for _, consumers := range g.nodes[i].outs {
			for _, e := range consumers {
				mark(e.to)
			}
		}
	}
	for i, n := range g.nodes {
		if n.source {
			mark(i)
		}
	}
	return reachable
}

// topoSort orders nodes with Kahn's algorithm. The frontier is kept
// sorted by insertion index, so the order is deterministic and
// reproducible for identical configurations.
func (g *Graph) topoSort() []int {
	inDegree := make([]int, len(g.nodes))
	for _, n := range g.nodes {
		for _, e := range n.ins {
			if e != nil {
				inDegree[e.to]++
			}
		}
	}

	var frontier []int
	for i := range g.nodes {
		if inDegree[i] == 0 {
			frontier = append(frontier, i)
		}
	}

	order := make([]int, 0, len(g.nodes))
	for len(frontier) > 0 {
		i := frontier[0]
		frontier = frontier[1:]
		order = append(order, i)
		for _, consumers := range g.nodes[i].outs {
			for _, e := range consumers {
				inDegree[e.to]--
				if inDegree[e.to] == 0 {
					frontier = insertSorted(frontier, e.to)
				}
			}
		}
	}
	return order
}

// insertSorted inserts value into a sorted slice, keeping it sorted.
func insertSorted(s []int, value int) []int {
	at := sort.SearchInts(s, value)
	s = append(s, 0)
	copy(s[at+1:], s[at:])
	s[at] = value
	return s
}

// setupSources establishes source contexts and the base tick rate: the
// maximum source frame rate, which every source frame rate must divide
// integrally. A source with several output ports is stepped at the
// cadence of its fastest port.
func (g *Graph) setupSources() error {
	var errs error
	rates := make(map[*nodeInfo]float64)
	for _, n := range g.nodes {
		if !n.source {
			continue
		}
		if err := g.setupNode(n, nil); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		rate := 0.0
		for port := range n.outs {
			if r := n.outs[port][0].ctx.FrameRate(); r > rate {
				rate = r
			}
		}
		rates[n] = rate
		if rate > g.tickRate {
			g.tickRate = rate
		}
	}
	if errs != nil {
		return errs
	}
	g.liveSources = len(rates)
	for _, n := range g.nodes {
		rate, ok := rates[n]
		if !ok {
			continue
		}
		d := g.tickRate / rate
		if math.Abs(d-math.Round(d)) > 1e-9 {
			errs = multierr.Append(errs, &ConfigError{
				Node: n.label,
				Err:  fmt.Errorf("frame rate %v does not divide base tick rate %v", rate, g.tickRate),
			})
			continue
		}
		n.divisor = uint64(math.Round(d))
	}
	return errs
}

// pace hands the base tick rate to nodes that asked for it.
func (g *Graph) pace() error {
	var errs error
	for _, n := range g.nodes {
		if p, ok := n.node.(Pacer); ok {
			if err := p.Pace(g.tickRate); err != nil {
				errs = multierr.Append(errs, &ConfigError{Node: n.label, Err: err})
			}
		}
	}
	return errs
}

// setupRest runs setup on non-source nodes in execution order, so every
// node sees the contexts its producers just published.
func (g *Graph) setupRest() error {
	for _, i := range g.order {
		n := g.nodes[i]
		if n.source {
			continue
		}
		in := make([]signal.Context, len(n.ins))
		for port, e := range n.ins {
			in[port] = e.ctx.Clone()
		}
		if err := g.setupNode(n, in); err != nil {
			return err
		}
	}
	return nil
}

// setupNode invokes the node's setup, validates the published contexts
// and clones them onto the outgoing edges.
func (g *Graph) setupNode(n *nodeInfo, in []signal.Context) error {
	out, err := n.node.Setup(in)
	if err != nil {
		return &ConfigError{Node: n.label, Err: err}
	}
	if len(out) != len(n.outs) {
		return &ConfigError{
			Node: n.label,
			Err:  fmt.Errorf("setup published %d contexts for %d output ports", len(out), len(n.outs)),
		}
	}
	for port, ctx := range out {
		if err := ctx.Validate(); err != nil {
			return &ConfigError{
				Node: n.label,
				Err:  fmt.Errorf("output port %d: %w", port, err),
			}
		}
		if n.source && len(n.outs[port]) == 0 {
			return &ConfigError{
				Node: n.label,
				Err:  fmt.Errorf("output port %d not connected", port),
			}
		}
		for _, e := range n.outs[port] {
			e.ctx = ctx.Clone()
		}
	}

	n.inbuf = make([]signal.Frame, len(n.ins))
	n.selfTimed, _ = n.node.(SelfTimed)
	rate := 0.0
	switch {
	case len(out) > 0:
		rate = out[0].SampleRate
	case len(in) > 0:
		rate = in[0].SampleRate
	}
	n.meter = metric.Meter(n.label, rate)
	return nil
}
