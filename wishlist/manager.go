// Package wishlist holds the customer's saved products with set
// semantics: a product id appears at most once, independent of cart
// membership.
package wishlist

import (
	"context"
	"net/url"
	"strings"

	"github.com/craftandcart/storefront/cart"
	"github.com/craftandcart/storefront/models"
	"github.com/craftandcart/storefront/store"
)

const (
	// StorageKey prefixes the per-customer collection key.
	StorageKey = "wishlistItems"
	// UpdateEvent is fired after every wishlist mutation.
	UpdateEvent = "wishlistUpdate"
)

// changePayload rides on the wishlist change signal.
type changePayload struct {
	Action  string         `json:"action"`
	Product models.Product `json:"product"`
}

type Manager struct {
	products *store.Collection[models.Product]
}

func NewManager(backend store.Backend, notifier store.Notifier) *Manager {
	return &Manager{
		products: store.NewCollection[models.Product](backend, notifier, StorageKey, UpdateEvent),
	}
}

// Items returns the saved products for owner.
func (m *Manager) Items(ctx context.Context, owner string) ([]models.Product, error) {
	return m.products.Load(ctx, owner)
}

// Contains reports whether the product id is saved.
func (m *Manager) Contains(ctx context.Context, owner, productID string) (bool, error) {
	items, err := m.products.Load(ctx, owner)
	if err != nil {
		return false, err
	}
	for _, p := range items {
		if p.ID == productID {
			return true, nil
		}
	}
	return false, nil
}

// Add saves the product. Adding an already-saved product is a no-op
// that does not re-notify.
func (m *Manager) Add(ctx context.Context, owner string, p models.Product) error {
	items, err := m.products.Load(ctx, owner)
	if err != nil {
		return err
	}
	for _, existing := range items {
		if existing.ID == p.ID {
			return nil
		}
	}
	items = append(items, p)
	return m.products.Save(ctx, owner, items, changePayload{Action: "add", Product: p})
}

// Remove drops the product. An absent id is a no-op, not an error.
func (m *Manager) Remove(ctx context.Context, owner, productID string) error {
	items, err := m.products.Load(ctx, owner)
	if err != nil {
		return err
	}

	var removed *models.Product
	kept := items[:0]
	for _, p := range items {
		if p.ID == productID {
			removed = &p
			continue
		}
		kept = append(kept, p)
	}
	if removed == nil {
		return nil
	}
	return m.products.Save(ctx, owner, kept, changePayload{Action: "remove", Product: *removed})
}

// Toggle adds the product if absent and removes it if present,
// reporting whether it is saved afterwards.
func (m *Manager) Toggle(ctx context.Context, owner string, p models.Product) (bool, error) {
	saved, err := m.Contains(ctx, owner, p.ID)
	if err != nil {
		return false, err
	}
	if saved {
		return false, m.Remove(ctx, owner, p.ID)
	}
	return true, m.Add(ctx, owner, p)
}

// Clear empties the wishlist. Idempotent.
func (m *Manager) Clear(ctx context.Context, owner string) error {
	return m.products.Clear(ctx, owner, nil)
}

// AddAllToCart applies the cart's add semantics for every saved
// product against the live cart state, batched into a single persist.
func (m *Manager) AddAllToCart(ctx context.Context, owner string, cm *cart.Manager) ([]models.CartItem, error) {
	items, err := m.products.Load(ctx, owner)
	if err != nil {
		return nil, err
	}
	return cm.AddAll(ctx, owner, items)
}

// ShareLink builds a storefront URL carrying the saved product ids.
func (m *Manager) ShareLink(ctx context.Context, owner, baseURL string) (string, error) {
	items, err := m.products.Load(ctx, owner)
	if err != nil {
		return "", err
	}
	ids := make([]string, 0, len(items))
	for _, p := range items {
		ids = append(ids, p.ID)
	}

	q := url.Values{}
	q.Set("ids", strings.Join(ids, ","))
	return strings.TrimRight(baseURL, "/") + "/wishlist/shared?" + q.Encode(), nil
}
