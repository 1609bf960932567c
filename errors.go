package sigflow

import (
	"errors"
	"fmt"
)

var (
	// ErrNoData is returned by a source that has nothing to emit on this
	// tick. It is not a fault: the scheduler skips the source and carries
	// on. Exhausted sources return io.EOF instead.
	ErrNoData = errors.New("no data")

	// ErrInvalidState is returned if a graph method cannot be executed at
	// this moment.
	ErrInvalidState = errors.New("invalid state")
)

// ConfigError reports a configuration problem found before the first
// tick: invalid topology, incompatible rates, missing context metadata or
// malformed node parameters. It always blocks startup.
type ConfigError struct {
	Node string
	Err  error
}

func (e *ConfigError) Error() string {
	if e.Node == "" {
		return fmt.Sprintf("configuration: %v", e.Err)
	}
	return fmt.Sprintf("configuration of %s: %v", e.Node, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// ProcError reports a node failing during a tick. The tick is aborted and
// the run stops: partial frames are unsafe to propagate.
type ProcError struct {
	Node string
	Tick uint64
	Err  error
}

func (e *ProcError) Error() string {
	return fmt.Sprintf("%s at tick %d: %v", e.Node, e.Tick, e.Err)
}

func (e *ProcError) Unwrap() error {
	return e.Err
}
