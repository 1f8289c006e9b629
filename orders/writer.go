package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/craftandcart/storefront/cart"
	"github.com/craftandcart/storefront/events"
	"github.com/craftandcart/storefront/models"
	"github.com/craftandcart/storefront/payment"
)

// ErrIdentityMissing is returned when no usable email can key the
// order: neither a signed-in identity nor a form-entered address.
var ErrIdentityMissing = errors.New("no customer identity available to key the order")

const eventOrderCreated = "order.created"

// Writer turns a completed payment into a durable order appended to
// the customer's history.
type Writer struct {
	repo      HistoryRepository
	publisher events.Publisher
	currency  string
	log       *zap.Logger
}

func NewWriter(repo HistoryRepository, publisher events.Publisher, currency string, log *zap.Logger) *Writer {
	return &Writer{
		repo:      repo,
		publisher: publisher,
		currency:  currency,
		log:       log,
	}
}

// Write snapshots the cart lines and the checkout draft into an
// immutable Order and appends it to the history keyed by email. The
// status is always completed; pending and failed belong to
// reconciliation tooling that does not run here.
func (w *Writer) Write(ctx context.Context, email string, draft models.CheckoutDraft, items []models.CartItem, confirmation payment.Result) (models.Order, error) {
	if email == "" {
		return models.Order{}, ErrIdentityMissing
	}

	now := time.Now().UTC()
	order := models.Order{
		OrderNumber: NewOrderNumber(now),
		CreatedAt:   now,
		Status:      models.OrderStatusCompleted,
		Total:       cart.TotalOf(items),
		Items:       snapshotLines(items),
		Customer:    snapshotCustomer(email, draft),
		Payment: models.PaymentRecord{
			PaymentID:      confirmation.PaymentID,
			GatewayOrderID: confirmation.GatewayOrderID,
			Signature:      confirmation.Signature,
			Method:         "gateway",
			Currency:       w.currency,
		},
	}

	if err := w.repo.Append(ctx, email, order); err != nil {
		return order, fmt.Errorf("append order %s for %s: %w", order.OrderNumber, email, err)
	}

	w.log.Info("order written",
		zap.String("order_number", order.OrderNumber),
		zap.String("email", email),
		zap.Int64("total", order.Total),
	)

	// Best-effort: a broker outage must not look like a failed order.
	if err := w.publisher.PublishOrderCreated(ctx, events.OrderCreated{
		Event:       eventOrderCreated,
		Email:       email,
		OrderNumber: order.OrderNumber,
		Total:       order.Total,
		Timestamp:   now,
	}); err != nil {
		w.log.Warn("order event publish failed", zap.String("order_number", order.OrderNumber), zap.Error(err))
	}

	return order, nil
}

func snapshotLines(items []models.CartItem) []models.OrderLine {
	lines := make([]models.OrderLine, 0, len(items))
	for _, item := range items {
		line := models.OrderLine{
			ProductID: item.Product.ID,
			Title:     item.Product.Title,
			Price:     item.Product.Price,
			Quantity:  item.Quantity,
		}
		if len(item.Product.Images) > 0 {
			line.Image = item.Product.Images[0]
		}
		lines = append(lines, line)
	}
	return lines
}

func snapshotCustomer(email string, draft models.CheckoutDraft) models.OrderCustomer {
	customer := models.OrderCustomer{
		Email:      draft.Email,
		FirstName:  draft.FirstName,
		LastName:   draft.LastName,
		Phone:      draft.Phone,
		Street:     draft.Street,
		City:       draft.City,
		State:      draft.State,
		PostalCode: draft.PostalCode,
		Country:    draft.Country,
	}
	if customer.Email == "" {
		customer.Email = email
	}
	return customer
}
