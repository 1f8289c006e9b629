package store

import (
	"context"
	"slices"
	"sync"
)

// MemoryBackend is an in-process Backend for tests and single-node use.
type MemoryBackend struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: make(map[string][]byte)}
}

func (b *MemoryBackend) Get(ctx context.Context, key string) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	data, ok := b.data[key]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (b *MemoryBackend) Set(ctx context.Context, key string, value []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	stored := make([]byte, len(value))
	copy(stored, value)
	b.data[key] = stored
	return nil
}

func (b *MemoryBackend) Del(ctx context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.data, key)
	return nil
}

// Corrupt overwrites a key with an unparseable blob. Test helper.
func (b *MemoryBackend) Corrupt(key string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data[key] = []byte("{not json")
}

// Notification is one recorded change signal.
type Notification struct {
	Event   string
	Payload any
}

// MemoryNotifier records signals and fans them out to subscribers.
type MemoryNotifier struct {
	mu          sync.Mutex
	events      []Notification
	subscribers map[string][]func(payload any)
}

func NewMemoryNotifier() *MemoryNotifier {
	return &MemoryNotifier{subscribers: make(map[string][]func(payload any))}
}

func (n *MemoryNotifier) Notify(ctx context.Context, event string, payload any) {
	n.mu.Lock()
	n.events = append(n.events, Notification{Event: event, Payload: payload})
	subs := slices.Clone(n.subscribers[event])
	n.mu.Unlock()

	for _, fn := range subs {
		fn(payload)
	}
}

// Subscribe registers a callback for a named event.
func (n *MemoryNotifier) Subscribe(event string, fn func(payload any)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.subscribers[event] = append(n.subscribers[event], fn)
}

// Events returns a copy of every recorded notification.
func (n *MemoryNotifier) Events() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Notification(nil), n.events...)
}
