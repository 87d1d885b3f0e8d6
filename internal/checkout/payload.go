package checkout

import (
	"strings"
	"time"

	"github.com/gaprints/prints-backend/internal/cart"
	pkgerrors "github.com/gaprints/prints-backend/pkg/errors"
	"github.com/shopspring/decimal"
)

// InvalidPayloadMessage is the fixed message returned for rejected submissions.
const InvalidPayloadMessage = "Invalid payload"

// Customer is the contact and delivery data collected by the checkout form.
type Customer struct {
	FullName   string `json:"fullName"`
	Email      string `json:"email"`
	Phone      string `json:"phone,omitempty"`
	Address1   string `json:"address1"`
	Address2   string `json:"address2,omitempty"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
	Notes      string `json:"notes,omitempty"`
}

// SubmittedTotals are the totals the client computed. Only Shipping is read;
// subtotal and total are always recomputed.
type SubmittedTotals struct {
	Subtotal *float64 `json:"subtotal,omitempty"`
	Shipping *float64 `json:"shipping,omitempty"`
	Total    *float64 `json:"total,omitempty"`
}

// Payload is one checkout submission.
type Payload struct {
	Customer Customer         `json:"customer"`
	Items    []cart.LineItem  `json:"items"`
	Totals   *SubmittedTotals `json:"totals,omitempty"`
}

// Validate rejects submissions without a customer email or without items.
// Individual line items are not inspected.
func (p Payload) Validate() error {
	if strings.TrimSpace(p.Customer.Email) == "" || len(p.Items) == 0 {
		return ErrInvalidPayload()
	}
	return nil
}

// ErrInvalidPayload builds the validation error surfaced as a 400.
func ErrInvalidPayload() error {
	return pkgerrors.New(pkgerrors.CodeValidation, InvalidPayloadMessage)
}

func (p Payload) shipping() decimal.Decimal {
	if p.Totals == nil || p.Totals.Shipping == nil {
		return decimal.Zero
	}
	return decimal.NewFromFloat(*p.Totals.Shipping)
}

// Totals are the server-side amounts of an order.
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Shipping decimal.Decimal `json:"shipping"`
	Total    decimal.Decimal `json:"total"`
}

// ComputeTotals sums price times quantity over items and adds shipping.
func ComputeTotals(items []cart.LineItem, shipping decimal.Decimal) Totals {
	subtotal := cart.Subtotal(items)
	return Totals{
		Subtotal: subtotal,
		Shipping: shipping,
		Total:    subtotal.Add(shipping),
	}
}

// Order is an accepted submission. It lives only for the duration of the request.
type Order struct {
	ID       string
	Customer Customer
	Items    cart.Snapshot
	Totals   Totals
	PlacedAt time.Time
}
