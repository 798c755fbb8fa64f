package registry

import (
	"context"
	"fmt"
	"sort"

	"github.com/botcanvas/blockcore/internal/block"
	"github.com/botcanvas/blockcore/internal/log"
	"github.com/botcanvas/blockcore/internal/pubsub"
)

// Listener observes registry mutations. Every register, unregister,
// enable/disable and reset calls each listener synchronously with the full
// current definition list. Returning an error does not undo the mutation.
type Listener func(defs []block.Definition) error

// ListenerFailure describes one listener that errored or panicked during a
// notification round.
type ListenerFailure struct {
	Listener int // registration number from AddListener
	Err      error
}

// AddListener registers fn and returns its removal function. Safe to call
// concurrently with mutations; fn starts receiving from the next mutation.
func (r *Registry) AddListener(fn Listener) func() {
	r.mu.Lock()
	id := r.nextListener
	r.nextListener++
	r.listeners[id] = fn
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		delete(r.listeners, id)
		r.mu.Unlock()
	}
}

// Failures exposes listener errors on a side channel. Mutations never fail
// because of a listener; callers who care subscribe here. The channel closes
// when ctx is done.
func (r *Registry) Failures(ctx context.Context) <-chan pubsub.Event[ListenerFailure] {
	return r.failures.Subscribe(ctx)
}

// listener holds a snapshot of one registered listener for a notify round.
type listenerRef struct {
	id int
	fn Listener
}

// listenersLocked snapshots the listener set in registration order, so a
// notify round is unaffected by concurrent AddListener/remove calls.
func (r *Registry) listenersLocked() []listenerRef {
	if len(r.listeners) == 0 {
		return nil
	}
	refs := make([]listenerRef, 0, len(r.listeners))
	for id, fn := range r.listeners {
		refs = append(refs, listenerRef{id: id, fn: fn})
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].id < refs[j].id })
	return refs
}

// notify calls every listener outside the registry lock. A listener error or
// panic is logged and published on the failures channel; it never stops the
// round or the mutation that triggered it.
func (r *Registry) notify(refs []listenerRef, defs []block.Definition) {
	for _, ref := range refs {
		if err := r.callListener(ref.fn, defs); err != nil {
			log.ErrorErr(log.CatRegistry, "registry listener failed", err, "listener", ref.id)
			r.failures.Publish(pubsub.FailedEvent, ListenerFailure{Listener: ref.id, Err: err})
		}
	}
}

func (r *Registry) callListener(fn Listener, defs []block.Definition) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return fn(defs)
}
