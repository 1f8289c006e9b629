// Package cart holds the customer's line items: one line per product
// id, quantity always >= 1. Every mutation loads the collection fresh,
// rewrites it whole, and fires the cart change signal.
package cart

import (
	"context"

	"github.com/craftandcart/storefront/models"
	"github.com/craftandcart/storefront/store"
)

const (
	// StorageKey prefixes the per-customer collection key.
	StorageKey = "cartItems"
	// UpdateEvent is fired after every cart mutation.
	UpdateEvent = "cartUpdate"
)

type Manager struct {
	items *store.Collection[models.CartItem]
}

func NewManager(backend store.Backend, notifier store.Notifier) *Manager {
	return &Manager{
		items: store.NewCollection[models.CartItem](backend, notifier, StorageKey, UpdateEvent),
	}
}

// Items returns the current cart lines for owner.
func (m *Manager) Items(ctx context.Context, owner string) ([]models.CartItem, error) {
	return m.items.Load(ctx, owner)
}

// Add increments the quantity of an existing line for the product, or
// appends a new line with quantity 1.
func (m *Manager) Add(ctx context.Context, owner string, p models.Product) ([]models.CartItem, error) {
	return m.AddAll(ctx, owner, []models.Product{p})
}

// AddAll applies Add semantics for every product against the live cart
// state, persisting once so observers never see an intermediate cart.
func (m *Manager) AddAll(ctx context.Context, owner string, products []models.Product) ([]models.CartItem, error) {
	items, err := m.items.Load(ctx, owner)
	if err != nil {
		return nil, err
	}

	for _, p := range products {
		found := false
		for i, existing := range items {
			if existing.Product.ID == p.ID {
				items[i].Quantity++
				found = true
				break
			}
		}
		if !found {
			items = append(items, models.CartItem{Product: p, Quantity: 1})
		}
	}

	if err := m.items.Save(ctx, owner, items, nil); err != nil {
		return nil, err
	}
	return items, nil
}

// SetQuantity replaces a line's quantity. Zero or below removes the
// line instead of storing an invalid quantity.
func (m *Manager) SetQuantity(ctx context.Context, owner, productID string, quantity int) ([]models.CartItem, error) {
	if quantity <= 0 {
		return m.Remove(ctx, owner, productID)
	}

	items, err := m.items.Load(ctx, owner)
	if err != nil {
		return nil, err
	}
	for i, existing := range items {
		if existing.Product.ID == productID {
			items[i].Quantity = quantity
			break
		}
	}
	if err := m.items.Save(ctx, owner, items, nil); err != nil {
		return nil, err
	}
	return items, nil
}

// Remove filters out the matching line. An absent product id is a
// no-op, not an error.
func (m *Manager) Remove(ctx context.Context, owner, productID string) ([]models.CartItem, error) {
	items, err := m.items.Load(ctx, owner)
	if err != nil {
		return nil, err
	}

	kept := items[:0]
	for _, item := range items {
		if item.Product.ID != productID {
			kept = append(kept, item)
		}
	}
	if err := m.items.Save(ctx, owner, kept, nil); err != nil {
		return nil, err
	}
	return kept, nil
}

// Clear empties the cart. Idempotent.
func (m *Manager) Clear(ctx context.Context, owner string) error {
	return m.items.Clear(ctx, owner, nil)
}

// Total returns the sum of price * quantity over all lines.
func (m *Manager) Total(ctx context.Context, owner string) (int64, error) {
	items, err := m.items.Load(ctx, owner)
	if err != nil {
		return 0, err
	}
	return TotalOf(items), nil
}

// ItemCount returns the sum of quantities over all lines.
func (m *Manager) ItemCount(ctx context.Context, owner string) (int, error) {
	items, err := m.items.Load(ctx, owner)
	if err != nil {
		return 0, err
	}
	return CountOf(items), nil
}

// TotalOf sums price * quantity over a snapshot of lines.
func TotalOf(items []models.CartItem) int64 {
	var total int64
	for _, item := range items {
		total += item.Product.Price * int64(item.Quantity)
	}
	return total
}

// CountOf sums quantities over a snapshot of lines.
func CountOf(items []models.CartItem) int {
	count := 0
	for _, item := range items {
		count += item.Quantity
	}
	return count
}
