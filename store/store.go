// Package store is the persistent collection store shared by the cart
// and wishlist managers: named, per-customer ordered lists persisted as
// JSON blobs, with a change-notification channel observed by anything
// that renders derived counts.
//
// Writers follow "load fresh before mutate, save whole collection
// after mutate". Concurrent writers are last-write-wins; the change
// signal lets observers converge after a lost update.
package store

import (
	"context"
	"encoding/json"
)

// Backend is a raw key/value blob store. Get returns nil with no error
// when the key is absent.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Del(ctx context.Context, key string) error
}

// Notifier fires a named signal after a collection changes. Delivery
// is best-effort; implementations log failures and never block the
// caller on observer errors.
type Notifier interface {
	Notify(ctx context.Context, event string, payload any)
}

// Collection persists an ordered list of T per owner under the key
// "<name>:<owner>" and fires its event after every save or clear.
type Collection[T any] struct {
	backend  Backend
	notifier Notifier
	name     string
	event    string
}

func NewCollection[T any](backend Backend, notifier Notifier, name, event string) *Collection[T] {
	return &Collection[T]{
		backend:  backend,
		notifier: notifier,
		name:     name,
		event:    event,
	}
}

// Event is the change-notification name this collection fires.
func (c *Collection[T]) Event() string { return c.event }

func (c *Collection[T]) key(owner string) string {
	return c.name + ":" + owner
}

// Load returns the stored list for owner. A missing key or an
// unparseable blob both load as an empty list, never an error; only
// backend failures surface.
func (c *Collection[T]) Load(ctx context.Context, owner string) ([]T, error) {
	data, err := c.backend.Get(ctx, c.key(owner))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return []T{}, nil
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		// Corrupt stored content degrades to an empty collection.
		return []T{}, nil
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// Save fully replaces the stored list for owner and fires the change
// event. payload rides along on the notification and may be nil.
func (c *Collection[T]) Save(ctx context.Context, owner string, items []T, payload any) error {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return err
	}
	if err := c.backend.Set(ctx, c.key(owner), data); err != nil {
		return err
	}
	c.notifier.Notify(ctx, c.event, payload)
	return nil
}

// Clear removes the stored list for owner and fires the change event.
// Clearing an already-empty collection is a no-op that still notifies.
func (c *Collection[T]) Clear(ctx context.Context, owner string, payload any) error {
	if err := c.backend.Del(ctx, c.key(owner)); err != nil {
		return err
	}
	c.notifier.Notify(ctx, c.event, payload)
	return nil
}
