// Package resource provides the view-state synchronizer shared by every page:
// a remote value that is fetched, rendered in one of a few states, and
// reconciled after each mutating action.
package resource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
)

// State is the render state of a resource.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateReady
	StateEmpty
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateEmpty:
		return "empty"
	case StateError:
		return "error"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

var (
	// ErrBusy is returned when an action is triggered while it is still running.
	ErrBusy = errors.New("action already in progress")
	// ErrStale is returned to a caller whose fetch was superseded by a newer one.
	ErrStale = errors.New("response superseded by a newer request")
)

// Fetcher reads the remote value.
type Fetcher[T any] func(ctx context.Context) (T, error)

// Snapshot is a point-in-time copy of a resource.
type Snapshot[T any] struct {
	State      State
	Value      T
	Err        error
	Generation uint64
	Busy       map[string]bool
}

// Loading reports whether a fetch is in flight.
func (s Snapshot[T]) Loading() bool { return s.State == StateLoading }

// IsBusy reports whether the named action is running.
func (s Snapshot[T]) IsBusy(action string) bool { return s.Busy[action] }

// Option customizes a Resource.
type Option[T any] func(*Resource[T])

// WithEmpty sets the predicate that marks a successful value as empty.
func WithEmpty[T any](isEmpty func(T) bool) Option[T] {
	return func(r *Resource[T]) { r.isEmpty = isEmpty }
}

// WithReporter sets where failures are sent.
func WithReporter[T any](rep Reporter) Option[T] {
	return func(r *Resource[T]) {
		if rep != nil {
			r.reporter = rep
		}
	}
}

// WithLogger sets the debug logger.
func WithLogger[T any](logger *log.Logger) Option[T] {
	return func(r *Resource[T]) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Resource mediates between one remote value and whatever renders it.
// Each Load gets a generation number and only the newest generation may
// write the value, so out-of-order completions never overwrite newer data.
type Resource[T any] struct {
	name     string
	fetch    Fetcher[T]
	isEmpty  func(T) bool
	reporter Reporter
	logger   *log.Logger

	mu    sync.Mutex
	gen   uint64
	state State
	value T
	err   error
	busy  map[string]bool
}

// New creates an idle resource. Nothing is fetched until Load is called.
func New[T any](name string, fetch Fetcher[T], opts ...Option[T]) *Resource[T] {
	r := &Resource[T]{
		name:     name,
		fetch:    fetch,
		isEmpty:  func(T) bool { return false },
		logger:   log.New(io.Discard, "", 0),
		busy:     make(map[string]bool),
		reporter: Discard,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Name returns the label used in logs and reports.
func (r *Resource[T]) Name() string { return r.name }

// Ticket identifies one fetch. Only the newest ticket may write the value.
type Ticket uint64

// Load fetches the value and applies it if no newer Load started meanwhile.
// On failure the previous value is kept and the error is reported.
func (r *Resource[T]) Load(ctx context.Context) (T, error) {
	return r.Finish(ctx, r.Begin(), r.fetch)
}

// Begin marks the resource loading and issues a new ticket. Callers that
// must pin request parameters to a generation (a platform toggle, say)
// take the ticket under their own lock and pass it to Finish.
func (r *Resource[T]) Begin() Ticket {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gen++
	r.state = StateLoading
	return Ticket(r.gen)
}

// Finish runs fetch for ticket t and applies the result unless a newer
// ticket has been issued, in which case ErrStale is returned.
func (r *Resource[T]) Finish(ctx context.Context, t Ticket, fetch Fetcher[T]) (T, error) {
	gen := uint64(t)
	r.logger.Printf("%s: load #%d started", r.name, gen)
	value, err := fetch(ctx)

	r.mu.Lock()
	if gen != r.gen {
		current := r.gen
		r.mu.Unlock()
		r.logger.Printf("%s: load #%d discarded (current #%d)", r.name, gen, current)
		var zero T
		return zero, ErrStale
	}
	if err != nil {
		r.state = StateError
		r.err = err
		r.mu.Unlock()
		r.reporter.Report(r.name+": load", err)
		var zero T
		return zero, err
	}
	r.value = value
	r.err = nil
	if r.isEmpty(value) {
		r.state = StateEmpty
	} else {
		r.state = StateReady
	}
	r.mu.Unlock()
	r.logger.Printf("%s: load #%d applied", r.name, gen)
	return value, nil
}

// Mutate runs a write action and re-fetches on success. The action is
// marked busy for its whole duration; triggering it again meanwhile
// returns ErrBusy without calling fn. Failures are reported and leave the
// current value untouched.
func (r *Resource[T]) Mutate(ctx context.Context, action string, fn func(ctx context.Context) error) error {
	r.mu.Lock()
	if r.busy[action] {
		r.mu.Unlock()
		return ErrBusy
	}
	r.busy[action] = true
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		delete(r.busy, action)
		r.mu.Unlock()
	}()

	r.logger.Printf("%s: %s started", r.name, action)
	if err := fn(ctx); err != nil {
		r.reporter.Report(r.name+": "+action, err)
		return err
	}
	if _, err := r.Load(ctx); err != nil && !errors.Is(err, ErrStale) {
		return fmt.Errorf("failed to refresh after %s: %w", action, err)
	}
	return nil
}

// Busy reports whether the named action is running.
func (r *Resource[T]) Busy(action string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.busy[action]
}

// Snapshot copies the current state.
func (r *Resource[T]) Snapshot() Snapshot[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	busy := make(map[string]bool, len(r.busy))
	for k, v := range r.busy {
		busy[k] = v
	}
	return Snapshot[T]{
		State:      r.state,
		Value:      r.value,
		Err:        r.err,
		Generation: r.gen,
		Busy:       busy,
	}
}
