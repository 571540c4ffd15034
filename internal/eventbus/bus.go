// Package eventbus implements the topic-keyed publish/subscribe bus
// (spec §4.E): synchronous, single-threaded delivery with unsubscribe
// handles and scoped topics.
package eventbus

import (
	"strings"
	"sync"
	"sync/atomic"

	"github.com/CalistaVerner/kalitech/internal/logging"
)

// Handler receives a topic emission.
type Handler func(payload any)

// Unsubscribe removes a previously registered handler.
type Unsubscribe func()

type subscription struct {
	id      uint64
	handler Handler
	once    bool
	removed atomic.Bool
}

// Bus is a synchronous, single-threaded event bus.
type Bus struct {
	mu        sync.Mutex
	nextID    uint64
	subs      map[string][]*subscription
	separator string
	log       *logging.Logger
	onMetric  func(topic string)
}

// Option configures a Bus at construction time.
type Option func(*Bus)

// WithSeparator overrides the default "." scope separator.
func WithSeparator(sep string) Option {
	return func(b *Bus) { b.separator = sep }
}

// WithLogger attaches a logger used to report subscriber panics/errors.
func WithLogger(log *logging.Logger) Option {
	return func(b *Bus) { b.log = log }
}

// WithMetricHook attaches a callback invoked once per Emit with the topic,
// used to feed internal/metrics.Metrics.EventsEmitted without importing
// the metrics package here.
func WithMetricHook(fn func(topic string)) Option {
	return func(b *Bus) { b.onMetric = fn }
}

// New creates an empty Bus.
func New(opts ...Option) *Bus {
	b := &Bus{subs: make(map[string][]*subscription), separator: "."}
	for _, opt := range opts {
		opt(b)
	}
	if b.log == nil {
		b.log = logging.NewFromEnv("eventbus")
	}
	return b
}

// On registers fn for topic, returning a handle to remove it later.
func (b *Bus) On(topic string, fn Handler) Unsubscribe {
	return b.add(topic, fn, false)
}

// Once registers fn for a single delivery of topic.
func (b *Bus) Once(topic string, fn Handler) Unsubscribe {
	return b.add(topic, fn, true)
}

func (b *Bus) add(topic string, fn Handler, once bool) Unsubscribe {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	sub := &subscription{id: b.nextID, handler: fn, once: once}
	b.subs[topic] = append(b.subs[topic], sub)
	id := sub.id
	return func() { b.removeByID(topic, id) }
}

func (b *Bus) removeByID(topic string, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	list := b.subs[topic]
	for i, s := range list {
		if s.id == id {
			s.removed.Store(true)
			b.subs[topic] = append(list[:i], list[i+1:]...)
			return
		}
	}
}

// Off removes the first subscriber on topic whose handler pointer matches
// fn (Go has no function equality, so this only works with comparable
// closures created once and stored; most callers should prefer the
// Unsubscribe returned by On/Once). Returns whether a handler was removed.
func (b *Bus) Off(topic string, fn Handler) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	list := b.subs[topic]
	target := handlerPtr(fn)
	for i, s := range list {
		if handlerPtr(s.handler) == target {
			s.removed.Store(true)
			b.subs[topic] = append(list[:i], list[i+1:]...)
			return true
		}
	}
	return false
}

// Emit delivers payload synchronously to every subscriber registered on
// topic *before* this call began (spec §4.E: subscribers added during an
// emit are delivered starting with the next emit). A subscriber removed
// by an earlier handler in this same emit (its removed flag set before
// its own slot is reached) is skipped, even though it's still present in
// the pre-emit snapshot. A panicking subscriber is recovered, logged, and
// does not block remaining subscribers.
func (b *Bus) Emit(topic string, payload any) {
	b.mu.Lock()
	snapshot := append([]*subscription(nil), b.subs[topic]...)
	b.mu.Unlock()

	if b.onMetric != nil {
		b.onMetric(topic)
	}

	var onceIDs []uint64
	for _, sub := range snapshot {
		if sub.removed.Load() {
			continue
		}
		b.deliver(topic, sub, payload)
		if sub.once {
			onceIDs = append(onceIDs, sub.id)
		}
	}
	for _, id := range onceIDs {
		b.removeByID(topic, id)
	}
}

func (b *Bus) deliver(topic string, sub *subscription, payload any) {
	defer func() {
		if r := recover(); r != nil {
			b.log.WithField("topic", topic).Warnf("event subscriber panicked: %v", r)
		}
	}()
	sub.handler(payload)
}

// Scope returns a handle bound to "<scope><separator><topic>", so
// scope("player").On("move", fn) is equivalent to On("player.move", fn).
func (b *Bus) Scope(scope string) *Scoped {
	return &Scoped{bus: b, prefix: scope + b.separator}
}

// Scoped is a topic-prefixed view over a Bus.
type Scoped struct {
	bus    *Bus
	prefix string
}

func (s *Scoped) On(topic string, fn Handler) Unsubscribe { return s.bus.On(s.prefix+topic, fn) }
func (s *Scoped) Once(topic string, fn Handler) Unsubscribe {
	return s.bus.Once(s.prefix+topic, fn)
}
func (s *Scoped) Emit(topic string, payload any) { s.bus.Emit(s.prefix+topic, payload) }
func (s *Scoped) Off(topic string, fn Handler) bool {
	return s.bus.Off(s.prefix+topic, fn)
}

// TopicPrefix reports whether topic starts with prefix, e.g. one of the
// diagnostic namespaces spec §6 names ("sky:", "editor.pick.", "render:").
func TopicPrefix(topic, prefix string) bool {
	return strings.HasPrefix(topic, prefix)
}
