package wishlist

import (
	"context"
	"strings"
	"testing"

	"github.com/craftandcart/storefront/cart"
	"github.com/craftandcart/storefront/models"
	"github.com/craftandcart/storefront/store"
)

const owner = "alice@example.com"

func newTestManager() (*Manager, *store.MemoryBackend, *store.MemoryNotifier) {
	backend := store.NewMemoryBackend()
	notifier := store.NewMemoryNotifier()
	return NewManager(backend, notifier), backend, notifier
}

func product(id string, price int64) models.Product {
	return models.Product{ID: id, Title: "Product " + id, Price: price}
}

func TestAddIsSetLike(t *testing.T) {
	m, _, notifier := newTestManager()
	ctx := context.Background()

	if err := m.Add(ctx, owner, product("p1", 500)); err != nil {
		t.Fatalf("Add returned error: %v", err)
	}
	if err := m.Add(ctx, owner, product("p1", 500)); err != nil {
		t.Fatalf("duplicate Add returned error: %v", err)
	}

	items, err := m.Items(ctx, owner)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 {
		t.Fatalf("expected product id to appear at most once, got %d entries", len(items))
	}
	// duplicate add is a no-op and must not re-notify
	if got := len(notifier.Events()); got != 1 {
		t.Fatalf("expected 1 wishlistUpdate, got %d", got)
	}
}

func TestToggle(t *testing.T) {
	m, _, _ := newTestManager()
	ctx := context.Background()

	saved, err := m.Toggle(ctx, owner, product("p1", 500))
	if err != nil || !saved {
		t.Fatalf("first toggle: saved=%v err=%v", saved, err)
	}
	saved, err = m.Toggle(ctx, owner, product("p1", 500))
	if err != nil || saved {
		t.Fatalf("second toggle: saved=%v err=%v", saved, err)
	}

	items, _ := m.Items(ctx, owner)
	if len(items) != 0 {
		t.Fatalf("expected empty wishlist after double toggle, got %d", len(items))
	}
}

func TestNotificationCarriesActionAndProduct(t *testing.T) {
	m, _, notifier := newTestManager()
	ctx := context.Background()

	if err := m.Add(ctx, owner, product("p1", 500)); err != nil {
		t.Fatal(err)
	}
	if err := m.Remove(ctx, owner, "p1"); err != nil {
		t.Fatal(err)
	}

	events := notifier.Events()
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	add, ok := events[0].Payload.(changePayload)
	if !ok || add.Action != "add" || add.Product.ID != "p1" {
		t.Fatalf("unexpected add payload: %+v", events[0].Payload)
	}
	rem, ok := events[1].Payload.(changePayload)
	if !ok || rem.Action != "remove" || rem.Product.ID != "p1" {
		t.Fatalf("unexpected remove payload: %+v", events[1].Payload)
	}
}

func TestRemoveAbsentIsNoop(t *testing.T) {
	m, _, notifier := newTestManager()

	if err := m.Remove(context.Background(), owner, "missing"); err != nil {
		t.Fatalf("Remove of absent id must not error, got: %v", err)
	}
	if got := len(notifier.Events()); got != 0 {
		t.Fatalf("no-op remove must not notify, got %d events", got)
	}
}

func TestAddAllToCartMergesWithLiveCart(t *testing.T) {
	backend := store.NewMemoryBackend()
	notifier := store.NewMemoryNotifier()
	wl := NewManager(backend, notifier)
	cm := cart.NewManager(backend, notifier)
	ctx := context.Background()

	// p1 already in the cart; wishlist holds p1 and p2
	if _, err := cm.Add(ctx, owner, product("p1", 500)); err != nil {
		t.Fatal(err)
	}
	if err := wl.Add(ctx, owner, product("p1", 500)); err != nil {
		t.Fatal(err)
	}
	if err := wl.Add(ctx, owner, product("p2", 1200)); err != nil {
		t.Fatal(err)
	}

	before := len(notifier.Events())
	items, err := wl.AddAllToCart(ctx, owner, cm)
	if err != nil {
		t.Fatalf("AddAllToCart returned error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 cart lines, got %d", len(items))
	}
	if items[0].Product.ID != "p1" || items[0].Quantity != 2 {
		t.Fatalf("expected p1 incremented to 2, got %+v", items[0])
	}
	if items[1].Product.ID != "p2" || items[1].Quantity != 1 {
		t.Fatalf("expected p2 appended with quantity 1, got %+v", items[1])
	}

	// the whole batch persists through a single cartUpdate
	after := notifier.Events()[before:]
	if len(after) != 1 || after[0].Event != cart.UpdateEvent {
		t.Fatalf("expected exactly one cartUpdate for the batch, got %+v", after)
	}
}

func TestShareLink(t *testing.T) {
	m, _, _ := newTestManager()
	ctx := context.Background()

	if err := m.Add(ctx, owner, product("p1", 500)); err != nil {
		t.Fatal(err)
	}
	if err := m.Add(ctx, owner, product("p2", 1200)); err != nil {
		t.Fatal(err)
	}

	link, err := m.ShareLink(ctx, owner, "https://shop.example/")
	if err != nil {
		t.Fatalf("ShareLink returned error: %v", err)
	}
	if !strings.HasPrefix(link, "https://shop.example/wishlist/shared?") {
		t.Fatalf("unexpected link prefix: %s", link)
	}
	if !strings.Contains(link, "p1%2Cp2") && !strings.Contains(link, "p1,p2") {
		t.Fatalf("link missing product ids: %s", link)
	}
}
