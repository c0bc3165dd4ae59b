package tlrouter

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

const (
	// DefaultTranslateTimeout bounds a single translation call.
	DefaultTranslateTimeout = 30 * time.Second
	// DefaultAnalyzeTimeout bounds a single analysis call.
	DefaultAnalyzeTimeout = 60 * time.Second
)

var (
	errCallTimeout = errors.New("per-call timeout elapsed")

	// ErrSuperseded is the cancellation cause recorded when a newer operation
	// takes over a Slot.
	ErrSuperseded = errors.New("superseded by a newer request")
)

// invoke runs one adapter call racing a per-call timeout against the caller's
// context. Whichever fires first cancels the in-flight request. A cancelled
// parent yields ErrAborted; the per-call timer yields *TimeoutError.
func invoke[T any](parent context.Context, provider ProviderID, timeout time.Duration, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if err := parent.Err(); err != nil {
		return zero, aborted(parent)
	}

	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if timeout > 0 {
		ctx, cancel = context.WithTimeoutCause(parent, timeout, errCallTimeout)
	} else {
		ctx, cancel = context.WithCancel(parent)
	}
	defer cancel()

	result, err := fn(ctx)
	if err == nil {
		return result, nil
	}

	if parent.Err() != nil {
		return zero, aborted(parent)
	}
	if errors.Is(context.Cause(ctx), errCallTimeout) {
		return zero, &TimeoutError{Provider: provider, Timeout: timeout}
	}
	return zero, err
}

// aborted wraps the parent's cancellation cause under ErrAborted.
func aborted(parent context.Context) error {
	cause := context.Cause(parent)
	if cause == nil {
		cause = context.Canceled
	}
	return fmt.Errorf("%w: %w", ErrAborted, cause)
}

// Slot allows at most one in-flight operation per logical slot: beginning a
// new operation cancels the previous one. The zero value is ready to use.
type Slot struct {
	mu     sync.Mutex
	gen    uint64
	cancel context.CancelCauseFunc
}

// Begin cancels the operation currently holding the slot, if any, and returns
// a context for the new operation. The returned release function must be
// called when the operation settles; it is safe to call more than once.
func (s *Slot) Begin(parent context.Context) (context.Context, func()) {
	ctx, cancel := context.WithCancelCause(parent)

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel(ErrSuperseded)
	}
	s.gen++
	gen := s.gen
	s.cancel = cancel
	s.mu.Unlock()

	release := func() {
		s.mu.Lock()
		if s.gen == gen {
			s.cancel = nil
		}
		s.mu.Unlock()
		cancel(nil)
	}
	return ctx, release
}

// Cancel aborts the operation currently holding the slot.
func (s *Slot) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel(context.Canceled)
		s.cancel = nil
	}
}

// idle reports whether no operation holds the slot.
func (s *Slot) idle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel == nil
}

// Slots is a set of named Slots, safe for concurrent use. A slot exists only
// while an operation holds it.
type Slots struct {
	mu    sync.Mutex
	slots map[string]*Slot
}

// Begin starts an operation on the slot called name, superseding the one
// currently holding it. The returned release function drops the slot once
// no newer operation holds it.
func (s *Slots) Begin(parent context.Context, name string) (context.Context, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.slots == nil {
		s.slots = make(map[string]*Slot)
	}
	slot, ok := s.slots[name]
	if !ok {
		slot = &Slot{}
		s.slots[name] = slot
	}
	ctx, release := slot.Begin(parent)

	var once sync.Once
	return ctx, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			release()
			if slot.idle() && s.slots[name] == slot {
				delete(s.slots, name)
			}
		})
	}
}

// Len returns the number of slots currently held.
func (s *Slots) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.slots)
}
