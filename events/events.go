// Package events publishes order lifecycle events for downstream
// consumers. Publishing is best-effort: a broker failure is logged by
// the caller and never surfaced to the payer.
package events

import (
	"context"
	"time"
)

// OrderCreated is emitted after an order is durably written.
type OrderCreated struct {
	Event       string    `json:"event"`
	Email       string    `json:"email"`
	OrderNumber string    `json:"order_number"`
	Total       int64     `json:"total"`
	Timestamp   time.Time `json:"timestamp"`
}

type Publisher interface {
	PublishOrderCreated(ctx context.Context, event OrderCreated) error
}

// Noop discards events, for deployments without a broker.
type Noop struct{}

func (Noop) PublishOrderCreated(ctx context.Context, event OrderCreated) error { return nil }
