package sigflow

import "github.com/sirupsen/logrus"

// Option configures a graph at construction.
type Option func(*Graph)

// WithName sets the graph name used in log fields.
func WithName(name string) Option {
	return func(g *Graph) {
		g.name = name
	}
}

// WithLogger replaces the default logger.
func WithLogger(l *logrus.Logger) Option {
	return func(g *Graph) {
		g.log = l
	}
}

// WithClock selects the pacing of the tick loop. The default is Offline.
func WithClock(c Clock) Option {
	return func(g *Graph) {
		g.clock = c
	}
}
