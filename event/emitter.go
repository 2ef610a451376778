// Package event provides a small publish/subscribe registry used by
// the map and its layers. Subscriptions are explicit: a handler is
// added with On or Once and removed with the Subscription returned at
// registration time. Emitters are not safe for concurrent use; the
// engine fires all events from its update goroutine.
package event

// Handler receives the payload passed to Fire.
type Handler func(data any)

// Subscription identifies a registered handler so it can be removed.
type Subscription struct {
	event string
	id    int
}

type registration struct {
	id   int
	fn   Handler
	once bool
}

// Emitter dispatches named events to registered handlers in
// registration order.
type Emitter struct {
	handlers map[string][]registration
	nextID   int
}

// NewEmitter returns an empty emitter.
func NewEmitter() *Emitter {
	return &Emitter{handlers: make(map[string][]registration)}
}

// On registers fn for the named event and returns its Subscription.
func (e *Emitter) On(name string, fn Handler) Subscription {
	return e.add(name, fn, false)
}

// Once registers fn to run at most one time; the registration is
// removed before fn is invoked.
func (e *Emitter) Once(name string, fn Handler) Subscription {
	return e.add(name, fn, true)
}

func (e *Emitter) add(name string, fn Handler, once bool) Subscription {
	e.nextID++
	e.handlers[name] = append(e.handlers[name], registration{
		id:   e.nextID,
		fn:   fn,
		once: once,
	})
	return Subscription{event: name, id: e.nextID}
}

// Off removes the handler identified by sub. Removing an unknown or
// already removed subscription is a no-op.
func (e *Emitter) Off(sub Subscription) {
	regs := e.handlers[sub.event]
	for i, reg := range regs {
		if reg.id == sub.id {
			e.handlers[sub.event] = append(regs[:i:i], regs[i+1:]...)
			return
		}
	}
}

// Listens reports whether any handler is registered for the event.
func (e *Emitter) Listens(name string) bool {
	return len(e.handlers[name]) > 0
}

// Fire invokes all handlers registered for the event with data.
// Handlers may register or remove subscriptions during dispatch; such
// changes take effect on the next Fire.
func (e *Emitter) Fire(name string, data any) {
	regs := e.handlers[name]
	if len(regs) == 0 {
		return
	}

	// Snapshot so handler mutations do not affect this dispatch.
	snapshot := make([]registration, len(regs))
	copy(snapshot, regs)

	for _, reg := range snapshot {
		if reg.once {
			e.Off(Subscription{event: name, id: reg.id})
		}
		reg.fn(data)
	}
}
