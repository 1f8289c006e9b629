package checkout

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/craftandcart/storefront/cart"
	"github.com/craftandcart/storefront/orders"
	"github.com/craftandcart/storefront/payment"
)

// Registry hosts the live checkout flows, one per started checkout.
type Registry struct {
	cart   *cart.Manager
	bridge *payment.Bridge
	writer *orders.Writer
	log    *zap.Logger

	mu    sync.Mutex
	flows map[string]*Flow
}

func NewRegistry(cm *cart.Manager, bridge *payment.Bridge, writer *orders.Writer, log *zap.Logger) *Registry {
	return &Registry{
		cart:   cm,
		bridge: bridge,
		writer: writer,
		log:    log,
		flows:  make(map[string]*Flow),
	}
}

// Start creates a flow for the customer's cart. On an empty cart the
// flow resolves to Abandoned, is not registered, and ErrCartEmpty
// tells the caller to return to the cart view.
func (r *Registry) Start(ctx context.Context, owner, identityEmail string) (*Flow, error) {
	f := &Flow{
		ID:            uuid.NewString(),
		owner:         owner,
		identityEmail: identityEmail,
		cart:          r.cart,
		bridge:        r.bridge,
		writer:        r.writer,
		log:           r.log,
		fieldErrors:   map[string]string{},
	}
	if err := f.begin(ctx); err != nil {
		return f, err
	}

	r.mu.Lock()
	r.flows[f.ID] = f
	r.mu.Unlock()
	return f, nil
}

// Get returns a registered flow.
func (r *Registry) Get(id string) (*Flow, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.flows[id]
	return f, ok
}

// Remove drops a flow, cancelling any pending payment wait.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	f, ok := r.flows[id]
	delete(r.flows, id)
	r.mu.Unlock()

	if ok {
		f.mu.Lock()
		f.cancelPaymentLocked()
		f.mu.Unlock()
	}
}
