package sigflow

// state identifies one of the possible lifecycle states of a graph.
type state interface {
	transition(*Graph, eventMessage) (state, error)
}

// states
type (
	idleReady     struct{}
	activeRunning struct{}
	idleDone      struct{}
)

// state variables
var (
	ready   idleReady     // Ready means the graph can be started.
	running activeRunning // Running means the graph is executing.
	done    idleDone      // Done means the run is over and resources are released.
)

// event identifies the type of event.
type event int

// types of events.
const (
	run event = iota
	stop
	finished
)

// eventMessage is dispatched into the graph's state when the user or the
// tick loop acts.
type eventMessage struct {
	event
	err error // terminal error, finished only
	target
}

// target carries the channel that reports when the requested state is
// reached.
type target struct {
	errc chan error
}

// dismiss closes the feedback channel without an error.
func (t target) dismiss() {
	if t.errc != nil {
		close(t.errc)
	}
}

// handle delivers the error, if any, and closes the feedback channel.
func (t target) handle(err error) {
	if t.errc == nil {
		return
	}
	if err != nil {
		t.errc <- err
	}
	close(t.errc)
}

// Run validates the graph and starts the tick loop. The returned channel
// delivers the terminal error of the run: a configuration error before any
// tick, a processing fault that stopped the run, or nothing for a clean
// stop. Use Wait to block on it.
func (g *Graph) Run() <-chan error {
	errc := make(chan error, 1)
	g.dispatch(eventMessage{event: run, target: target{errc: errc}})
	return errc
}

// Stop requests a stop at the next tick boundary. It is safe to call from
// any goroutine and at any time; stopping a graph that is not running
// succeeds immediately. The returned channel closes once the graph has
// drained and flushed.
func (g *Graph) Stop() <-chan error {
	errc := make(chan error, 1)
	g.dispatch(eventMessage{event: stop, target: target{errc: errc}})
	return errc
}

// Wait blocks until the channel delivers an error or closes.
func Wait(errc <-chan error) error {
	for err := range errc {
		if err != nil {
			return err
		}
	}
	return nil
}

// dispatch applies an event to the current state.
func (g *Graph) dispatch(e eventMessage) {
	g.mu.Lock()
	defer g.mu.Unlock()
	s, err := g.state.transition(g, e)
	if err != nil {
		e.target.handle(err)
		return
	}
	g.state = s
}

func (s idleReady) transition(g *Graph, e eventMessage) (state, error) {
	switch e.event {
	case run:
		if err := g.start(); err != nil {
			return s, err
		}
		g.waiters = append(g.waiters, e.target)
		return running, nil
	case stop:
		// nothing runs, nothing to stop
		e.target.dismiss()
		return s, nil
	}
	return s, ErrInvalidState
}

func (s activeRunning) transition(g *Graph, e eventMessage) (state, error) {
	switch e.event {
	case stop:
		g.interrupt()
		g.waiters = append(g.waiters, e.target)
		return s, nil
	case finished:
		for _, t := range g.waiters {
			t.handle(e.err)
		}
		g.waiters = nil
		return done, nil
	}
	return s, ErrInvalidState
}

func (s idleDone) transition(g *Graph, e eventMessage) (state, error) {
	switch e.event {
	case stop:
		e.target.dismiss()
		return s, nil
	}
	return s, ErrInvalidState
}

// interrupt asks the tick loop to exit at the next boundary. Consequent
// calls do nothing.
func (g *Graph) interrupt() {
	g.stopOnce.Do(func() {
		close(g.cancel)
	})
}
