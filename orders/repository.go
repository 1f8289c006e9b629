package orders

import (
	"context"

	"github.com/craftandcart/storefront/models"
)

// HistoryRepository is the per-customer order-history document store.
// Get returns (nil, nil) when no history exists for the email.
// Append must atomically add the order and bump the count, creating
// the history if absent, so two concurrent checkouts from the same
// customer can never lose an order.
type HistoryRepository interface {
	Get(ctx context.Context, email string) (*models.OrderHistory, error)
	Create(ctx context.Context, history *models.OrderHistory) error
	Append(ctx context.Context, email string, order models.Order) error
}
