// Package checkout drives the linear Information → Review → Payment
// flow as an explicit state machine, independent of any transport or
// rendering layer.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/craftandcart/storefront/cart"
	"github.com/craftandcart/storefront/models"
	"github.com/craftandcart/storefront/orders"
	"github.com/craftandcart/storefront/payment"
)

// State names the checkout phases.
type State string

const (
	StateInformation State = "information"
	StateReview      State = "review"
	StatePayment     State = "payment"
	StateCompleted   State = "completed"
	StateAbandoned   State = "abandoned"
)

var (
	// ErrCartEmpty signals the caller to send the customer back to
	// the cart view.
	ErrCartEmpty = errors.New("cart is empty")
	// ErrInvalidTransition rejects a step the linear flow does not
	// allow from the current state.
	ErrInvalidTransition = errors.New("invalid checkout transition")
	// ErrValidationFailed carries no detail; FieldErrors has the
	// per-field messages.
	ErrValidationFailed = errors.New("required fields are missing or invalid")
	// ErrPaymentInFlight rejects a second concurrent payment attempt.
	ErrPaymentInFlight = errors.New("a payment attempt is already in flight")
)

// Confirmation is shown after the flow completes. SupportNotice is set
// when the payment succeeded but the order record may not exist; the
// payer still sees a success with the raw gateway payment id.
type Confirmation struct {
	OrderNumber   string `json:"order_number,omitempty"`
	PaymentID     string `json:"payment_id"`
	SupportNotice bool   `json:"support_notice,omitempty"`
}

// Flow is one customer's checkout. All methods are safe for
// concurrent use; the payment wait runs outside the lock.
type Flow struct {
	ID string

	owner         string
	identityEmail string

	cart   *cart.Manager
	bridge *payment.Bridge
	writer *orders.Writer
	log    *zap.Logger

	mu             sync.Mutex
	state          State
	draft          models.CheckoutDraft
	fieldErrors    map[string]string
	items          []models.CartItem
	lastFailure    *payment.Result
	lastResult     payment.Result
	gatewayOrderID string
	confirmation   *Confirmation
	paying         bool
	payCancel      context.CancelFunc
	attemptDone    chan struct{}
}

// begin resolves the entry guard: an empty cart abandons the flow
// immediately and no draft is ever collected.
func (f *Flow) begin(ctx context.Context) error {
	items, err := f.cart.Items(ctx, f.owner)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(items) == 0 {
		f.state = StateAbandoned
		return ErrCartEmpty
	}
	f.items = items
	f.state = StateInformation
	return nil
}

// State returns the current phase.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Draft returns a copy of the form state.
func (f *Flow) Draft() models.CheckoutDraft {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draft
}

// Items returns the cart snapshot the flow is checking out.
func (f *Flow) Items() []models.CartItem {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.CartItem(nil), f.items...)
}

// FieldErrors returns a copy of the per-field validation messages.
func (f *Flow) FieldErrors() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]string, len(f.fieldErrors))
	for k, v := range f.fieldErrors {
		out[k] = v
	}
	return out
}

// LastFailure returns the failure shown as a banner in the Payment
// phase, if any. Cancels leave no banner.
func (f *Flow) LastFailure() *payment.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.lastFailure == nil {
		return nil
	}
	copied := *f.lastFailure
	return &copied
}

// GatewayOrderID returns the gateway handle of the current or most
// recent payment attempt.
func (f *Flow) GatewayOrderID() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.gatewayOrderID
}

// Confirmation returns the completion summary once the flow reaches
// Completed.
func (f *Flow) Confirmation() (Confirmation, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.confirmation == nil {
		return Confirmation{}, false
	}
	return *f.confirmation, true
}

// SubmitInformation validates the contact and address fields. Any
// failing field blocks the transition and lands in FieldErrors; on
// success the flow moves to Review.
func (f *Flow) SubmitInformation(draft models.CheckoutDraft) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StateInformation {
		return fmt.Errorf("%w: submit information from %s", ErrInvalidTransition, f.state)
	}

	f.draft = draft
	fieldErrors := validateDraft(draft)
	if len(fieldErrors) > 0 {
		f.fieldErrors = fieldErrors
		return ErrValidationFailed
	}
	f.fieldErrors = map[string]string{}
	f.state = StateReview
	return nil
}

// UpdateField edits one form field in the Information phase. The
// field's own error clears as soon as it becomes non-empty; other
// errors are untouched.
func (f *Flow) UpdateField(name, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StateInformation {
		return fmt.Errorf("%w: edit fields from %s", ErrInvalidTransition, f.state)
	}
	if err := setDraftField(&f.draft, name, value); err != nil {
		return err
	}
	if value != "" && f.fieldErrors != nil {
		delete(f.fieldErrors, name)
	}
	return nil
}

// ConfirmReview moves Review → Payment. Review is a confirmation, not
// a validation gate, so this never fails on content.
func (f *Flow) ConfirmReview() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StateReview {
		return fmt.Errorf("%w: confirm review from %s", ErrInvalidTransition, f.state)
	}
	f.state = StatePayment
	return nil
}

// Back steps backward along the line. Stepping back out of Payment
// cancels any pending gateway wait; the gateway callback never firing
// cannot trap the customer there.
func (f *Flow) Back() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch f.state {
	case StatePayment:
		f.cancelPaymentLocked()
		f.lastFailure = nil
		f.state = StateReview
		return nil
	case StateReview:
		f.state = StateInformation
		return nil
	default:
		return fmt.Errorf("%w: back from %s", ErrInvalidTransition, f.state)
	}
}

// Abandon exits a non-terminal flow.
func (f *Flow) Abandon() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == StateCompleted || f.state == StateAbandoned {
		return fmt.Errorf("%w: abandon from %s", ErrInvalidTransition, f.state)
	}
	f.cancelPaymentLocked()
	f.state = StateAbandoned
	return nil
}

func (f *Flow) cancelPaymentLocked() {
	if f.payCancel != nil {
		f.payCancel()
		f.payCancel = nil
	}
}

// StartPayment opens a gateway session for the current cart total and
// waits for the callback in the background. It returns the gateway
// order the hosted UI needs; the outcome lands on the flow when the
// bridge resolves (or the attempt is cancelled).
func (f *Flow) StartPayment(ctx context.Context) (payment.GatewayOrder, error) {
	items, err := f.cart.Items(ctx, f.owner)
	if err != nil {
		return payment.GatewayOrder{}, err
	}

	f.mu.Lock()
	if f.state != StatePayment {
		f.mu.Unlock()
		return payment.GatewayOrder{}, fmt.Errorf("%w: pay from %s", ErrInvalidTransition, f.state)
	}
	if f.paying {
		f.mu.Unlock()
		return payment.GatewayOrder{}, ErrPaymentInFlight
	}
	if len(items) == 0 {
		f.mu.Unlock()
		return payment.GatewayOrder{}, ErrCartEmpty
	}
	f.items = items
	f.lastFailure = nil
	total := cart.TotalOf(items)
	customer := payment.Customer{
		Name:    f.draft.FullName(),
		Email:   f.email(),
		Contact: f.draft.Phone,
	}
	description := fmt.Sprintf("Order of %d item(s)", cart.CountOf(items))
	f.mu.Unlock()

	session, err := f.bridge.Open(ctx, total, customer, description)
	if err != nil {
		failure := payment.Failed("order_create_failed", err.Error(), "gateway", "order_create", "error")
		f.mu.Lock()
		f.lastFailure = &failure
		f.lastResult = failure
		f.mu.Unlock()
		return payment.GatewayOrder{}, err
	}

	// The wait outlives the initiating request; only Back/Abandon
	// cancel it.
	waitCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	f.mu.Lock()
	if f.state != StatePayment {
		// flow moved on while the gateway order was being created;
		// drop the session so a late callback cannot resolve it
		state := f.state
		f.mu.Unlock()
		cancel()
		close(done)
		session.Close()
		return payment.GatewayOrder{}, fmt.Errorf("%w: pay from %s", ErrInvalidTransition, state)
	}
	f.paying = true
	f.payCancel = cancel
	f.gatewayOrderID = session.Order.ID
	f.attemptDone = done
	f.mu.Unlock()

	go func() {
		defer close(done)
		f.finish(session.Wait(waitCtx))
	}()
	return session.Order, nil
}

// Pay is the blocking form: StartPayment plus waiting out the attempt.
// Cancelling ctx abandons the wait and counts as a user cancel.
func (f *Flow) Pay(ctx context.Context) (payment.Result, error) {
	if _, err := f.StartPayment(ctx); err != nil {
		f.mu.Lock()
		res := f.lastResult
		f.mu.Unlock()
		return res, err
	}

	f.mu.Lock()
	done := f.attemptDone
	f.mu.Unlock()

	select {
	case <-done:
	case <-ctx.Done():
		f.mu.Lock()
		f.cancelPaymentLocked()
		f.mu.Unlock()
		<-done
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastResult, nil
}

// finish applies a normalized payment outcome. Failure and cancel
// leave the flow in Payment for another attempt; success completes the
// flow even when the order write fails, because the payment has
// already been captured.
func (f *Flow) finish(res payment.Result) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paying = false
	f.payCancel = nil
	f.lastResult = res

	switch res.Outcome {
	case payment.OutcomeCancelled:
		f.log.Info("payment cancelled", zap.String("checkout_id", f.ID))
	case payment.OutcomeFailed:
		failure := res
		f.lastFailure = &failure
		f.log.Warn("payment failed",
			zap.String("checkout_id", f.ID),
			zap.String("code", res.Code),
			zap.String("reason", res.Reason),
		)
	case payment.OutcomeSuccess:
		f.completeLocked(res)
	}
}

func (f *Flow) completeLocked(res payment.Result) {
	ctx := context.Background()

	order, err := f.writer.Write(ctx, f.email(), f.draft, f.items, res)
	if err != nil {
		// The payment succeeded; the payer must still see a success.
		// The confirmation carries the raw gateway payment id and a
		// note to contact support.
		f.log.Error("order persistence failed after successful payment",
			zap.String("checkout_id", f.ID),
			zap.String("payment_id", res.PaymentID),
			zap.Error(err),
		)
		f.confirmation = &Confirmation{PaymentID: res.PaymentID, SupportNotice: true}
	} else {
		f.confirmation = &Confirmation{OrderNumber: order.OrderNumber, PaymentID: res.PaymentID}
	}

	if err := f.cart.Clear(ctx, f.owner); err != nil {
		f.log.Error("cart clear failed after checkout", zap.String("checkout_id", f.ID), zap.Error(err))
	}
	f.state = StateCompleted
}

// email resolves the order key: the signed-in identity wins, then the
// form-entered address.
func (f *Flow) email() string {
	if f.identityEmail != "" {
		return f.identityEmail
	}
	return f.draft.Email
}

func setDraftField(draft *models.CheckoutDraft, name, value string) error {
	switch name {
	case "email":
		draft.Email = value
	case "first_name":
		draft.FirstName = value
	case "last_name":
		draft.LastName = value
	case "phone":
		draft.Phone = value
	case "street":
		draft.Street = value
	case "city":
		draft.City = value
	case "state":
		draft.State = value
	case "postal_code":
		draft.PostalCode = value
	case "country":
		draft.Country = value
	default:
		return fmt.Errorf("unknown checkout field %q", name)
	}
	return nil
}
