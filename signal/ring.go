package signal

import "sync"

// Ring is a bounded FIFO of frames with drop-oldest overflow. It is safe
// for concurrent use, so externally clocked producers can push into a
// graph while the scheduler pops. Dropped frames are counted as overruns
// and reported through the optional hook; order of the surviving frames is
// always preserved.
type Ring struct {
	mu       sync.Mutex
	frames   []Frame
	head     int
	size     int
	overruns uint64
	onDrop   func()
}

// NewRing returns a ring holding at most capacity frames. The hook, when
// not nil, runs once per dropped frame, outside the caller's fast path but
// under the ring lock.
func NewRing(capacity int, onDrop func()) *Ring {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring{
		frames: make([]Frame, capacity),
		onDrop: onDrop,
	}
}

// Push appends a frame, dropping the oldest one when the ring is full.
func (r *Ring) Push(f Frame) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.size == len(r.frames) {
		r.frames[r.head] = Frame{}
		r.head = (r.head + 1) % len(r.frames)
		r.size--
		r.overruns++
		if r.onDrop != nil {
			r.onDrop()
		}
	}
	r.frames[(r.head+r.size)%len(r.frames)] = f
	r.size++
}

// Pop removes and returns the oldest frame. The second return value is
// false when the ring is empty.
func (r *Ring) Pop() (Frame, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.size == 0 {
		return Frame{}, false
	}
	f := r.frames[r.head]
	r.frames[r.head] = Frame{}
	r.head = (r.head + 1) % len(r.frames)
	r.size--
	return f, true
}

// Len returns the number of buffered frames.
func (r *Ring) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.size
}

// Overruns returns the number of frames dropped so far.
func (r *Ring) Overruns() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.overruns
}
