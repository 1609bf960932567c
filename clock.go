package sigflow

import "time"

// Clock paces the tick loop. Start is called once when the run begins,
// Wait before every tick.
type Clock interface {
	Start()
	Wait(t Tick, cancel <-chan struct{})
}

// Offline returns a clock that never waits: ticks run as fast as the
// nodes allow. This is the default.
func Offline() Clock {
	return offline{}
}

type offline struct{}

func (offline) Start() {}

func (offline) Wait(Tick, <-chan struct{}) {}

// RealTime returns a clock that paces ticks against the wall clock. Every
// deadline is computed from the run origin, never from the previous tick,
// so sleep jitter does not accumulate into drift. When the loop falls
// behind it proceeds without sleeping until it catches up.
func RealTime() Clock {
	return &realTime{}
}

type realTime struct {
	origin time.Time
}

func (c *realTime) Start() {
	c.origin = time.Now()
}

func (c *realTime) Wait(t Tick, cancel <-chan struct{}) {
	d := time.Until(c.origin.Add(t.Time))
	if d < time.Millisecond {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-cancel:
	}
}
