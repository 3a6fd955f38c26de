// Package circuit tracks consecutive delivery outcomes for one downstream and
// decides when its errors stop being worth reporting.
package circuit

import "sync"

// Transition is the position change caused by one recorded outcome.
type Transition int

const (
	Unchanged Transition = iota
	Tripped
	Recovered
)

// Breaker opens after Trip consecutive failures. While open, errors are
// suppressed; Heal consecutive successes close it again.
type Breaker struct {
	mu     sync.Mutex
	name   string
	open   bool
	streak int
	trip   int
	heal   int
}

// Option configures a Breaker.
type Option func(*Breaker)

// WithTrip sets how many consecutive failures open the circuit.
func WithTrip(n int) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.trip = n
		}
	}
}

// WithHeal sets how many consecutive successes close an open circuit.
func WithHeal(n int) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.heal = n
		}
	}
}

// New returns a closed breaker for the named downstream.
func New(name string, opts ...Option) *Breaker {
	b := &Breaker{name: name, trip: 5, heal: 3}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Breaker) Name() string { return b.name }

func (b *Breaker) IsOpen() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.open
}

// Record counts the outcome of one call. suppress reports whether a non-nil
// err should be swallowed, which holds while the circuit is open and for the
// failure that opens it.
func (b *Breaker) Record(err error) (suppress bool, t Transition) {
	b.mu.Lock()
	defer b.mu.Unlock()

	// streak counts failures while closed and successes while open.
	switch {
	case !b.open && err == nil:
		b.streak = 0
	case !b.open:
		b.streak++
		if b.streak >= b.trip {
			b.open, b.streak = true, 0
			return true, Tripped
		}
	case err != nil:
		b.streak = 0
		return true, Unchanged
	default:
		b.streak++
		if b.streak >= b.heal {
			b.open, b.streak = false, 0
			return false, Recovered
		}
	}
	return false, Unchanged
}
