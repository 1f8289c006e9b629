// Package payment adapts the checkout flow's "pay now" intent onto the
// external gateway's request/callback protocol. The three gateway
// callback channels (success, failure, modal dismiss) are normalized
// into a single tagged Result so the checkout state machine never
// branches on gateway-specific shapes.
package payment

// Outcome tags a payment result.
type Outcome string

const (
	OutcomeSuccess   Outcome = "success"
	OutcomeCancelled Outcome = "cancelled"
	OutcomeFailed    Outcome = "failed"
)

// Result is the three-variant payment outcome. The payment fields are
// set only on success, the failure fields only on failure; a cancel
// carries nothing.
type Result struct {
	Outcome Outcome `json:"outcome"`

	PaymentID      string `json:"payment_id,omitempty"`
	GatewayOrderID string `json:"gateway_order_id,omitempty"`
	Signature      string `json:"signature,omitempty"`

	Code        string `json:"code,omitempty"`
	Description string `json:"description,omitempty"`
	Source      string `json:"source,omitempty"`
	Step        string `json:"step,omitempty"`
	Reason      string `json:"reason,omitempty"`
}

// Succeeded builds a success result from the gateway token triple.
func Succeeded(paymentID, gatewayOrderID, signature string) Result {
	return Result{
		Outcome:        OutcomeSuccess,
		PaymentID:      paymentID,
		GatewayOrderID: gatewayOrderID,
		Signature:      signature,
	}
}

// Cancelled builds the user-abort result. Not an error: the payer
// closed the gateway UI and may retry.
func Cancelled() Result {
	return Result{Outcome: OutcomeCancelled}
}

// Failed builds a gateway-error result.
func Failed(code, description, source, step, reason string) Result {
	return Result{
		Outcome:     OutcomeFailed,
		Code:        code,
		Description: description,
		Source:      source,
		Step:        step,
		Reason:      reason,
	}
}

// Customer is the contact summary prefilled into the gateway UI.
type Customer struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Contact string `json:"contact"`
}

// Theme styles the gateway-hosted UI.
type Theme struct {
	Color string `json:"color"`
}

// CheckoutRequest is the gateway's order-creation request. Amount is
// in the currency's minor units.
type CheckoutRequest struct {
	Amount      int64    `json:"amount"`
	Currency    string   `json:"currency"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Prefill     Customer `json:"prefill"`
	Theme       Theme    `json:"theme"`
}

// GatewayOrder is the gateway's handle for a payment attempt.
type GatewayOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// SuccessPayload is the raw success-callback body.
type SuccessPayload struct {
	GatewayPaymentID string `json:"gateway_payment_id" binding:"required"`
	GatewayOrderID   string `json:"gateway_order_id"`
	Signature        string `json:"signature"`
}

func (p SuccessPayload) Normalize() Result {
	return Succeeded(p.GatewayPaymentID, p.GatewayOrderID, p.Signature)
}

// FailurePayload is the raw failure-callback body.
type FailurePayload struct {
	GatewayOrderID string `json:"gateway_order_id"`
	Code           string `json:"code"`
	Description    string `json:"description"`
	Source         string `json:"source"`
	Step           string `json:"step"`
	Reason         string `json:"reason"`
}

func (p FailurePayload) Normalize() Result {
	return Failed(p.Code, p.Description, p.Source, p.Step, p.Reason)
}

// minorUnitFactors maps currencies to their minor-unit multiplier.
// Two-decimal currencies are the default.
var minorUnitFactors = map[string]int64{
	"JPY": 1,
	"KRW": 1,
	"VND": 1,
	"BHD": 1000,
	"KWD": 1000,
	"OMR": 1000,
}

// MinorUnits converts a major-unit amount to the gateway's minor-unit
// convention for the currency.
func MinorUnits(amountMajor int64, currency string) int64 {
	if factor, ok := minorUnitFactors[currency]; ok {
		return amountMajor * factor
	}
	return amountMajor * 100
}
