package notify

import (
	"context"
	"sync"
)

// Recorder keeps every notification it receives.
type Recorder struct {
	mu     sync.Mutex
	events []Notification
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Attach subscribes the recorder to each kind on bus.
func (r *Recorder) Attach(bus *Bus, kinds ...string) *Recorder {
	for _, kind := range kinds {
		bus.Subscribe(kind, "recorder", r.Handle)
	}
	return r
}

// Handle records n.
func (r *Recorder) Handle(_ context.Context, n Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, n)
	return nil
}

// Events returns the recorded notifications in arrival order.
func (r *Recorder) Events() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.events...)
}

// Kinds returns the kinds of the recorded notifications in arrival order.
func (r *Recorder) Kinds() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, n := range r.events {
		out[i] = n.Kind()
	}
	return out
}

// Last returns the most recent notification, or nil.
func (r *Recorder) Last() Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		return nil
	}
	return r.events[len(r.events)-1]
}

// Reset drops everything recorded so far.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
