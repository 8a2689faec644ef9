package event

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

const defaultMaxCascade = 256

var (
	// ErrCascadeLimit is recorded when a single dispatch emits more events
	// than the bus allows. The excess events are dropped.
	ErrCascadeLimit = errors.New("event: cascade limit exceeded") //nolint:gochecknoglobals // sentinel error

	// ErrHandlerPanic wraps a recovered handler panic.
	ErrHandlerPanic = errors.New("event: handler panicked") //nolint:gochecknoglobals // sentinel error
)

// Handler reacts to one event. A returned error is recorded and observed but
// never reaches the producer or sibling handlers.
type Handler func(ctx context.Context, ev Event) error

// Result is the outcome of one handler invocation.
type Result struct {
	Event      Name
	Subscriber string
	Err        error
	Duration   time.Duration
}

// Report collects the results of one Emit call. Queued is true when the
// event was appended to an already running dispatch.
type Report struct {
	Results []Result
	Queued  bool
}

// Failed returns the failed results in delivery order.
func (r Report) Failed() []Result {
	var failed []Result
	for _, res := range r.Results {
		if res.Err != nil {
			failed = append(failed, res)
		}
	}
	return failed
}

// Observer receives every Result as it is produced.
type Observer func(ctx context.Context, r Result)

// Subscriber is the registration side of a Bus. Consumers take it instead of
// *Bus so tests can record their subscriptions.
type Subscriber interface {
	Subscribe(name Name, subscriber string, h Handler)
}

type subscription struct {
	subscriber string
	handler    Handler
}

// Bus is a synchronous in-process dispatcher. Handlers for a name run in
// registration order and each runs in isolation.
//
// An Emit issued from inside a handler, with the handler's context, is queued
// on the running dispatch and returns at once. The outermost Emit drains the
// queue before returning, so every cascaded effect is visible when it does.
// Concurrent top-level Emit calls each get their own queue.
//
// A handler therefore never observes the effects of its own nested Emit: the
// queued event is dispatched only after the handler returns, and its results
// go to the Observer and the outer Report rather than back to the handler. Code that needs the
// cascaded state must read it after the outermost Emit returns.
type Bus struct {
	mu         sync.RWMutex
	handlers   map[Name][]subscription
	observer   Observer
	maxCascade int
}

// Option configures a Bus.
type Option func(*Bus)

// WithObserver replaces the default logging observer.
func WithObserver(o Observer) Option {
	return func(b *Bus) {
		b.observer = o
	}
}

// WithMaxCascade bounds the number of events one dispatch may carry,
// including the event that started it.
func WithMaxCascade(n int) Option {
	return func(b *Bus) {
		if n > 0 {
			b.maxCascade = n
		}
	}
}

// New creates a Bus.
func New(opts ...Option) *Bus {
	b := &Bus{
		handlers:   make(map[Name][]subscription),
		observer:   LogObserver,
		maxCascade: defaultMaxCascade,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers h for name. Subscriptions are meant to be set up once
// at startup, before the first Emit.
func (b *Bus) Subscribe(name Name, subscriber string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[name] = append(b.handlers[name], subscription{subscriber: subscriber, handler: h})
}

// Subscribers returns the subscriber names registered for name, in order.
func (b *Bus) Subscribers(name Name) []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	subs := b.handlers[name]
	out := make([]string, 0, len(subs))
	for _, s := range subs {
		out = append(out, s.subscriber)
	}
	return out
}

type dispatchKey struct{}

type dispatch struct {
	mu       sync.Mutex
	queue    []Event
	accepted int
	done     bool
	dropped  []Result
}

// enqueue appends ev unless the dispatch is finished. The second return is
// false when the cascade limit rejected the event.
func (d *dispatch) enqueue(ev Event, limit int) (queued, allowed bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.done {
		return false, true
	}
	if d.accepted >= limit {
		return true, false
	}
	d.accepted++
	d.queue = append(d.queue, ev)
	return true, true
}

func (d *dispatch) drop(res Result) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dropped = append(d.dropped, res)
}

func (d *dispatch) next() (Event, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.queue) == 0 {
		d.done = true
		return nil, false
	}
	ev := d.queue[0]
	d.queue[0] = nil
	d.queue = d.queue[1:]
	return ev, true
}

// Emit delivers ev to every handler subscribed to its name. It never returns
// an error; failures are reported in the Report and to the observer.
func (b *Bus) Emit(ctx context.Context, ev Event) Report {
	if ev == nil {
		return Report{}
	}

	if d, ok := ctx.Value(dispatchKey{}).(*dispatch); ok {
		queued, allowed := d.enqueue(ev, b.maxCascade)
		if !allowed {
			res := Result{
				Event:      ev.EventName(),
				Subscriber: "event.Bus",
				Err:        fmt.Errorf("event.Bus.Emit(%q): %w (limit %d)", ev.EventName(), ErrCascadeLimit, b.maxCascade),
			}
			b.observe(ctx, res)
			d.drop(res)
			return Report{Results: []Result{res}}
		}
		if queued {
			return Report{Queued: true}
		}
		// The dispatch already finished (e.g. a goroutine outlived its
		// handler); start a fresh one below.
	}

	d := &dispatch{}
	d.enqueue(ev, b.maxCascade)
	ctx = context.WithValue(ctx, dispatchKey{}, d)

	var report Report
	for {
		next, ok := d.next()
		if !ok {
			break
		}
		report.Results = append(report.Results, b.deliver(ctx, next)...)
	}

	d.mu.Lock()
	report.Results = append(report.Results, d.dropped...)
	d.mu.Unlock()

	return report
}

func (b *Bus) deliver(ctx context.Context, ev Event) []Result {
	b.mu.RLock()
	subs := b.handlers[ev.EventName()]
	b.mu.RUnlock()

	results := make([]Result, 0, len(subs))
	for _, sub := range subs {
		start := time.Now()
		err := invoke(ctx, sub.handler, ev)
		res := Result{
			Event:      ev.EventName(),
			Subscriber: sub.subscriber,
			Err:        err,
			Duration:   time.Since(start),
		}
		b.observe(ctx, res)
		results = append(results, res)
	}
	return results
}

func invoke(ctx context.Context, h Handler, ev Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrHandlerPanic, r)
		}
	}()
	return h(ctx, ev)
}

func (b *Bus) observe(ctx context.Context, res Result) {
	if b.observer != nil {
		b.observer(ctx, res)
	}
}
