package sigflow

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sigflow/sigflow/signal"
)

// start validates the graph, runs the start hooks and launches the tick
// loop. It is invoked by the state machine with the graph lock held.
func (g *Graph) start() error {
	if err := g.validate(); err != nil {
		return err
	}
	started := make([]Flusher, 0, len(g.nodes))
	for _, i := range g.order {
		n := g.nodes[i]
		if s, ok := n.node.(Starter); ok {
			if err := s.Start(); err != nil {
				// unwind nodes that already acquired resources
				for _, f := range started {
					if ferr := f.Flush(); ferr != nil {
						g.log.WithField("graph", g.name).Warnf("flush during unwind: %v", ferr)
					}
				}
				return &ConfigError{Node: n.label, Err: err}
			}
			if f, ok := n.node.(Flusher); ok {
				started = append(started, f)
			}
		}
		n.measure = n.meter()
	}
	g.cancel = make(chan struct{})
	g.log.WithFields(logrus.Fields{
		"graph":     g.name,
		"uid":       g.uid,
		"nodes":     len(g.nodes),
		"tick_rate": g.tickRate,
	}).Debug("starting")
	go g.loop()
	return nil
}

// loop drives ticks until a stop request, a fault or source exhaustion,
// then drains and flushes. It owns the timeline: nothing else advances
// ticks or steps nodes.
func (g *Graph) loop() {
	g.clock.Start()
	t := Tick{Rate: g.tickRate}
	var fatal error
loop:
	for {
		select {
		case <-g.cancel:
			break loop
		default:
		}
		g.clock.Wait(t, g.cancel)
		select {
		case <-g.cancel:
			break loop
		default:
		}
		if fatal = g.tick(t); fatal != nil {
			break loop
		}
		if g.liveSources == 0 {
			break loop
		}
		t.Index++
		t.Time = time.Duration(float64(t.Index) / t.Rate * float64(time.Second))
	}
	if fatal == nil {
		fatal = g.drain(t)
	} else {
		g.log.WithField("graph", g.name).WithError(fatal).Error("run aborted")
	}
	g.flush()
	g.dispatch(eventMessage{event: finished, err: fatal})
}

// tick advances the graph by one step. Nodes execute sequentially in the
// fixed topological order: sources aligned to their cadence, other nodes
// when fresh frames sit on their inputs or when they are self-timed. Any
// node error aborts the whole tick, because partially propagated frames
// are unsafe.
func (g *Graph) tick(t Tick) error {
	for _, i := range g.order {
		n := g.nodes[i]
		var in []signal.Frame
		if n.source {
			if n.exhausted || t.Index%n.divisor != 0 {
				continue
			}
		} else {
			var fresh bool
			in, fresh = g.gather(n)
			if !fresh && (n.selfTimed == nil || !n.selfTimed.SelfTimed()) {
				continue
			}
		}
		out, err := n.node.Step(t, in)
		if err != nil {
			if n.source {
				if errors.Is(err, io.EOF) {
					n.exhausted = true
					g.liveSources--
					g.log.WithField("node", n.label).Debug("source exhausted")
					continue
				}
				if errors.Is(err, ErrNoData) {
					continue
				}
			}
			return &ProcError{Node: n.label, Tick: t.Index, Err: err}
		}
		g.publish(n, out, t)
	}
	g.sweep()
	return nil
}

// gather collects the frames currently available on the node's input
// ports. Ports without fresh data hold an empty frame.
func (g *Graph) gather(n *nodeInfo) ([]signal.Frame, bool) {
	fresh := false
	for port, e := range n.ins {
		if e.fresh {
			n.inbuf[port] = e.frame
			fresh = true
		} else {
			n.inbuf[port] = signal.Frame{}
		}
	}
	return n.inbuf, fresh
}

// publish stamps the tick on the output frames and hands them to every
// consumer edge. The frame value is shared read-only across consumers.
func (g *Graph) publish(n *nodeInfo, out []signal.Frame, t Tick) {
	samples := int64(0)
	for port, consumers := range n.outs {
		if port >= len(out) || out[port].IsEmpty() {
			continue
		}
		f := out[port]
		f.Tick = t.Index
		if int64(f.Data.Size()) > samples {
			samples = int64(f.Data.Size())
		}
		for _, e := range consumers {
			e.frame = f
			e.fresh = true
		}
	}
	if samples == 0 {
		// sinks account for what they consumed
		for _, f := range n.inbuf {
			if int64(f.Data.Size()) > samples {
				samples = int64(f.Data.Size())
			}
		}
	}
	if samples > 0 {
		n.measure(samples)
	}
}

// sweep clears freshness after a full pass, so the next tick only sees
// frames produced on that tick.
func (g *Graph) sweep() {
	for _, n := range g.nodes {
		for _, e := range n.ins {
			e.fresh = false
		}
	}
}

// drain appends final ticks. Each finalizer emits its tail on a tick
// where its input is quiet, and tails propagate downstream in the same
// pass, so sinks see them before flushing. A node never steps and
// finalizes within one tick: an edge holds one frame per tick.
func (g *Graph) drain(t Tick) error {
	finalized := make([]bool, len(g.nodes))
	for {
		t.Index++
		t.Time = time.Duration(float64(t.Index) / t.Rate * float64(time.Second))
		active := false
		for _, i := range g.order {
			n := g.nodes[i]
			if in, fresh := g.gather(n); fresh {
				out, err := n.node.Step(t, in)
				if err != nil {
					return &ProcError{Node: n.label, Tick: t.Index, Err: err}
				}
				g.publish(n, out, t)
				active = true
				continue
			}
			if f, ok := n.node.(Finalizer); ok && !finalized[i] {
				finalized[i] = true
				out, err := f.Finalize(t)
				if err != nil {
					return &ProcError{Node: n.label, Tick: t.Index, Err: err}
				}
				g.publish(n, out, t)
				active = true
			}
		}
		g.sweep()
		if !active {
			return nil
		}
	}
}

// flush releases node resources. Sink failures degrade the sink: they are
// logged, collected as warnings and never abort the teardown of the
// remaining nodes.
func (g *Graph) flush() {
	for _, i := range g.order {
		n := g.nodes[i]
		f, ok := n.node.(Flusher)
		if !ok {
			continue
		}
		if err := f.Flush(); err != nil {
			g.log.WithFields(logrus.Fields{
				"graph": g.name,
				"node":  n.label,
			}).WithError(err).Warn("sink degraded")
			g.mu.Lock()
			g.warnings = append(g.warnings, fmt.Errorf("%s: %w", n.label, err))
			g.mu.Unlock()
		}
	}
}
