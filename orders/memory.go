package orders

import (
	"context"
	"sync"
	"time"

	"github.com/craftandcart/storefront/models"
)

// MemoryHistoryRepository is an in-process HistoryRepository for
// tests. Append is atomic under the mutex, matching the list-append
// guarantee of the real backends.
type MemoryHistoryRepository struct {
	mu        sync.Mutex
	histories map[string]*models.OrderHistory
	failNext  error
}

func NewMemoryHistoryRepository() *MemoryHistoryRepository {
	return &MemoryHistoryRepository{histories: make(map[string]*models.OrderHistory)}
}

// FailNextAppend makes the next Append return err. Test helper.
func (r *MemoryHistoryRepository) FailNextAppend(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failNext = err
}

func (r *MemoryHistoryRepository) Get(ctx context.Context, email string) (*models.OrderHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.histories[email]
	if !ok {
		return nil, nil
	}
	copied := *h
	copied.Orders = append([]models.Order(nil), h.Orders...)
	return &copied, nil
}

func (r *MemoryHistoryRepository) Create(ctx context.Context, history *models.OrderHistory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *history
	copied.Orders = append([]models.Order(nil), history.Orders...)
	r.histories[history.Email] = &copied
	return nil
}

func (r *MemoryHistoryRepository) Append(ctx context.Context, email string, order models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failNext != nil {
		err := r.failNext
		r.failNext = nil
		return err
	}

	now := time.Now().UTC()
	h, ok := r.histories[email]
	if !ok {
		h = &models.OrderHistory{Email: email, CreatedAt: now}
		r.histories[email] = h
	}
	h.Orders = append(h.Orders, order)
	h.TotalOrders++
	h.UpdatedAt = now
	return nil
}
