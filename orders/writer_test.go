package orders

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/craftandcart/storefront/events"
	"github.com/craftandcart/storefront/models"
	"github.com/craftandcart/storefront/payment"
)

// recordingPublisher captures published events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.OrderCreated
	err    error
}

func (p *recordingPublisher) PublishOrderCreated(ctx context.Context, e events.OrderCreated) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, e)
	return nil
}

var orderNumberPattern = regexp.MustCompile(`^ORD-\d{8}-[A-Z0-9]{6}$`)

func testDraft() models.CheckoutDraft {
	return models.CheckoutDraft{
		Email:      "alice@example.com",
		FirstName:  "Alice",
		LastName:   "Stone",
		Phone:      "5550100",
		Street:     "1 Pottery Lane",
		City:       "Jaipur",
		State:      "RJ",
		PostalCode: "302001",
		Country:    "IN",
	}
}

func testItems() []models.CartItem {
	return []models.CartItem{
		{Product: models.Product{ID: "p1", Title: "Mug", Price: 500, Images: []string{"mug.jpg"}}, Quantity: 2},
		{Product: models.Product{ID: "p2", Title: "Bowl", Price: 1200}, Quantity: 1},
	}
}

func TestOrderNumberFormat(t *testing.T) {
	for i := 0; i < 200; i++ {
		n := NewOrderNumber(time.Now())
		require.Regexp(t, orderNumberPattern, n)
	}
}

func TestWriteRequiresIdentity(t *testing.T) {
	w := NewWriter(NewMemoryHistoryRepository(), &recordingPublisher{}, "INR", zap.NewNop())

	_, err := w.Write(context.Background(), "", testDraft(), testItems(), payment.Succeeded("pay_1", "order_1", "sig"))
	require.ErrorIs(t, err, ErrIdentityMissing)
}

func TestWriteCreatesHistoryLazily(t *testing.T) {
	repo := NewMemoryHistoryRepository()
	pub := &recordingPublisher{}
	w := NewWriter(repo, pub, "INR", zap.NewNop())
	ctx := context.Background()

	order, err := w.Write(ctx, "alice@example.com", testDraft(), testItems(), payment.Succeeded("pay_1", "order_1", "sig"))
	require.NoError(t, err)
	require.Regexp(t, orderNumberPattern, order.OrderNumber)
	require.Equal(t, models.OrderStatusCompleted, order.Status)
	require.Equal(t, int64(2200), order.Total)
	require.Equal(t, "pay_1", order.Payment.PaymentID)
	require.Equal(t, "INR", order.Payment.Currency)

	history, err := repo.Get(ctx, "alice@example.com")
	require.NoError(t, err)
	require.NotNil(t, history)
	require.Equal(t, 1, history.TotalOrders)
	require.Len(t, history.Orders, 1)

	// second order appends to the same record
	_, err = w.Write(ctx, "alice@example.com", testDraft(), testItems(), payment.Succeeded("pay_2", "order_2", ""))
	require.NoError(t, err)

	history, err = repo.Get(ctx, "alice@example.com")
	require.NoError(t, err)
	require.Equal(t, 2, history.TotalOrders)
	require.Len(t, history.Orders, 2)

	require.Len(t, pub.events, 2)
	require.Equal(t, "order.created", pub.events[0].Event)
}

func TestWriteSnapshotsLines(t *testing.T) {
	repo := NewMemoryHistoryRepository()
	w := NewWriter(repo, &recordingPublisher{}, "INR", zap.NewNop())
	ctx := context.Background()

	items := testItems()
	order, err := w.Write(ctx, "alice@example.com", testDraft(), items, payment.Succeeded("pay_1", "", ""))
	require.NoError(t, err)

	// later catalog edits must not alter the stored order
	items[0].Product.Title = "Renamed"
	items[0].Product.Price = 9999

	history, err := repo.Get(ctx, "alice@example.com")
	require.NoError(t, err)
	stored := history.Orders[0]
	require.Equal(t, "Mug", stored.Items[0].Title)
	require.Equal(t, int64(500), stored.Items[0].Price)
	require.Equal(t, "mug.jpg", stored.Items[0].Image)
	require.Equal(t, order.OrderNumber, stored.OrderNumber)
	require.Equal(t, "Alice", stored.Customer.FirstName)
}

func TestWritePersistenceFailureStillCarriesPaymentID(t *testing.T) {
	repo := NewMemoryHistoryRepository()
	repo.FailNextAppend(errors.New("connection reset"))
	w := NewWriter(repo, &recordingPublisher{}, "INR", zap.NewNop())

	order, err := w.Write(context.Background(), "alice@example.com", testDraft(), testItems(), payment.Succeeded("pay_1", "order_1", "sig"))
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrIdentityMissing)
	// the caller still shows a confirmation with the gateway payment id
	require.Equal(t, "pay_1", order.Payment.PaymentID)
}

func TestPublishFailureDoesNotFailWrite(t *testing.T) {
	repo := NewMemoryHistoryRepository()
	pub := &recordingPublisher{err: errors.New("broker down")}
	w := NewWriter(repo, pub, "INR", zap.NewNop())

	_, err := w.Write(context.Background(), "alice@example.com", testDraft(), testItems(), payment.Succeeded("pay_1", "", ""))
	require.NoError(t, err)
}

func TestConcurrentAppendsLoseNothing(t *testing.T) {
	repo := NewMemoryHistoryRepository()
	w := NewWriter(repo, &recordingPublisher{}, "INR", zap.NewNop())
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := w.Write(ctx, "alice@example.com", testDraft(), testItems(), payment.Succeeded("pay", "", ""))
			if err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	history, err := repo.Get(ctx, "alice@example.com")
	require.NoError(t, err)
	require.Equal(t, 20, history.TotalOrders)
	require.Len(t, history.Orders, 20)
}
