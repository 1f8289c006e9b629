package payment

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

// ErrUnknownSession is returned when a callback references a gateway
// order with no pending payment, including sessions already resolved
// or abandoned.
var ErrUnknownSession = errors.New("no pending payment for gateway order")

const themeColor = "#8b5e34"

// Bridge opens gateway payment sessions and parks them until the
// gateway callback (or the payer walking away) resolves them. The
// callback may arrive arbitrarily late or never; a waiter escapes by
// cancelling its context, which counts as a user cancel.
type Bridge struct {
	client    Client
	currency  string
	storeName string
	log       *zap.Logger

	mu      sync.Mutex
	pending map[string]chan Result
}

func NewBridge(client Client, currency, storeName string, log *zap.Logger) *Bridge {
	return &Bridge{
		client:    client,
		currency:  currency,
		storeName: storeName,
		log:       log,
		pending:   make(map[string]chan Result),
	}
}

// Session is one pending payment attempt.
type Session struct {
	Order  GatewayOrder
	bridge *Bridge
	ch     chan Result
}

// Open creates a gateway order for the major-unit amount and registers
// a pending session keyed by the gateway order id.
func (b *Bridge) Open(ctx context.Context, amountMajor int64, customer Customer, description string) (*Session, error) {
	req := CheckoutRequest{
		Amount:      MinorUnits(amountMajor, b.currency),
		Currency:    b.currency,
		Name:        b.storeName,
		Description: description,
		Prefill:     customer,
		Theme:       Theme{Color: themeColor},
	}

	order, err := b.client.CreateOrder(ctx, req)
	if err != nil {
		return nil, err
	}

	ch := make(chan Result, 1)
	b.mu.Lock()
	b.pending[order.ID] = ch
	b.mu.Unlock()

	b.log.Info("payment session opened",
		zap.String("gateway_order_id", order.ID),
		zap.Int64("amount_minor", req.Amount),
		zap.String("currency", req.Currency),
	)
	return &Session{Order: order, bridge: b, ch: ch}, nil
}

// Wait blocks until the session is resolved or ctx is cancelled.
// Cancellation abandons the session and maps to a user cancel, so a
// callback that never fires cannot wedge the caller.
func (s *Session) Wait(ctx context.Context) Result {
	select {
	case res := <-s.ch:
		return res
	case <-ctx.Done():
		s.bridge.abandon(s.Order.ID)
		return Cancelled()
	}
}

// Close abandons a session nothing will ever wait on, so a late
// callback cannot resolve into the void.
func (s *Session) Close() {
	s.bridge.abandon(s.Order.ID)
}

// Resolve delivers an outcome to the pending session for the gateway
// order. A second resolve, or a resolve for an unknown order, returns
// ErrUnknownSession.
func (b *Bridge) Resolve(gatewayOrderID string, res Result) error {
	b.mu.Lock()
	ch, ok := b.pending[gatewayOrderID]
	if ok {
		delete(b.pending, gatewayOrderID)
	}
	b.mu.Unlock()

	if !ok {
		return ErrUnknownSession
	}
	ch <- res
	b.log.Info("payment session resolved",
		zap.String("gateway_order_id", gatewayOrderID),
		zap.String("outcome", string(res.Outcome)),
	)
	return nil
}

func (b *Bridge) abandon(gatewayOrderID string) {
	b.mu.Lock()
	delete(b.pending, gatewayOrderID)
	b.mu.Unlock()
	b.log.Info("payment session abandoned", zap.String("gateway_order_id", gatewayOrderID))
}

// Pay is Open followed by Wait: the blocking form of the handshake.
// Gateway unavailability normalizes to a Failed result, not an error.
func (b *Bridge) Pay(ctx context.Context, amountMajor int64, customer Customer, description string) Result {
	session, err := b.Open(ctx, amountMajor, customer, description)
	if err != nil {
		b.log.Error("gateway order creation failed", zap.Error(err))
		return Failed("order_create_failed", err.Error(), "gateway", "order_create", "error")
	}
	return session.Wait(ctx)
}
