package adapter

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/gagliardetto/solana-go"
)

// Event names the adapter event vocabulary. No other events are emitted.
type Event string

const (
	EventConnect        Event = "connect"
	EventDisconnect     Event = "disconnect"
	EventAccountChanged Event = "accountChanged"
	EventError          Event = "error"
)

// Topic is a typed publish/subscribe channel for a single event
type Topic[P any] struct {
	name   Event
	logger *slog.Logger

	mu       sync.Mutex
	nextID   uint64
	handlers map[uint64]func(P)
}

// NewTopic creates a topic that logs handler panics under the given event name
func NewTopic[P any](name Event, logger *slog.Logger) *Topic[P] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Topic[P]{
		name:     name,
		logger:   logger,
		handlers: make(map[uint64]func(P)),
	}
}

// On registers fn and returns a function that removes exactly that registration
func (t *Topic[P]) On(fn func(P)) func() {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := t.nextID
	t.nextID++
	t.handlers[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			t.mu.Lock()
			defer t.mu.Unlock()
			delete(t.handlers, id)
		})
	}
}

// Emit delivers payload to a snapshot of the current handlers in registration order.
// A panicking handler is logged and skipped; Emit itself never panics.
func (t *Topic[P]) Emit(payload P) {
	t.mu.Lock()
	ids := make([]uint64, 0, len(t.handlers))
	for id := range t.handlers {
		ids = append(ids, id)
	}
	snapshot := make([]func(P), 0, len(ids))
	slices.Sort(ids)
	for _, id := range ids {
		snapshot = append(snapshot, t.handlers[id])
	}
	t.mu.Unlock()

	for _, fn := range snapshot {
		t.invoke(fn, payload)
	}
}

func (t *Topic[P]) invoke(fn func(P), payload P) {
	defer func() {
		if r := recover(); r != nil {
			t.logger.Error("wallet event listener failed", "event", t.name, "panic", fmt.Sprint(r))
		}
	}()
	fn(payload)
}

// Len returns the number of registered handlers
func (t *Topic[P]) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.handlers)
}

// Clear removes all handlers
func (t *Topic[P]) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.handlers = make(map[uint64]func(P))
}

// Events groups the four adapter topics
type Events struct {
	Connect        *Topic[solana.PublicKey]
	Disconnect     *Topic[struct{}]
	AccountChanged *Topic[*solana.PublicKey]
	Error          *Topic[*WalletError]
}

// NewEvents creates an empty set of adapter topics
func NewEvents(logger *slog.Logger) *Events {
	return &Events{
		Connect:        NewTopic[solana.PublicKey](EventConnect, logger),
		Disconnect:     NewTopic[struct{}](EventDisconnect, logger),
		AccountChanged: NewTopic[*solana.PublicKey](EventAccountChanged, logger),
		Error:          NewTopic[*WalletError](EventError, logger),
	}
}
