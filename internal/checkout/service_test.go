package checkout

import (
	"bytes"
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/gaprints/prints-backend/internal/cart"
	"github.com/gaprints/prints-backend/pkg/config"
	pkgerrors "github.com/gaprints/prints-backend/pkg/errors"
	"github.com/gaprints/prints-backend/pkg/logger"
	"github.com/gaprints/prints-backend/pkg/mailer"
	"github.com/gaprints/prints-backend/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var placedAt = time.Date(2026, 3, 14, 18, 30, 0, 0, time.UTC)

type recordingSender struct {
	sent   []mailer.Message
	failOn int
	err    error
}

func (r *recordingSender) Send(_ context.Context, msg mailer.Message) error {
	r.sent = append(r.sent, msg)
	if r.failOn > 0 && len(r.sent) == r.failOn {
		return r.err
	}
	return nil
}

type serviceHarness struct {
	svc      *Service
	sender   *recordingSender
	registry *prometheus.Registry
	logs     *bytes.Buffer
}

func newHarness(t *testing.T, strict bool, suffixBytes ...byte) *serviceHarness {
	t.Helper()
	if len(suffixBytes) == 0 {
		suffixBytes = []byte{0xab, 0x12, 0x3c, 0x4d}
	}
	renderer, err := NewRenderer(config.BrandConfig{Name: "George Adamos Prints", URL: "https://georgeadamos.com"}, nil, time.UTC)
	require.NoError(t, err)

	ids := NewIDGenerator("GA")
	ids.random = bytes.NewReader(suffixBytes)

	logs := &bytes.Buffer{}
	logg := logger.New(logger.Options{ServiceName: "test", Output: logs})
	reg := prometheus.NewRegistry()
	sender := &recordingSender{}

	svc, err := NewService(
		sender,
		renderer,
		ids,
		config.OrderConfig{To: "shop@example.com", From: "orders@example.com", BCC: "archive@example.com"},
		config.CheckoutConfig{StrictShipping: strict},
		metrics.NewCheckoutMetrics(reg),
		logg,
	)
	require.NoError(t, err)
	svc.now = func() time.Time { return placedAt }
	return &serviceHarness{svc: svc, sender: sender, registry: reg, logs: logs}
}

func floatPtr(v float64) *float64 { return &v }

func validPayload() Payload {
	return Payload{
		Customer: Customer{
			FullName:   "Maria Papadopoulou",
			Email:      "maria@example.com",
			Address1:   "Ermou 12",
			City:       "Athens",
			PostalCode: "10563",
			Country:    "Greece",
		},
		Items: []cart.LineItem{
			{ID: "p1@8x10", PrintID: "p1", Title: "Meteora", Size: "8x10", Price: 50, Qty: 2},
			{ID: "p2@11x14", PrintID: "p2", Title: "Santorini", Size: "11x14", Price: 30, Qty: 1},
		},
		Totals: &SubmittedTotals{Subtotal: floatPtr(1), Shipping: floatPtr(5), Total: floatPtr(2)},
	}
}

func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if labelsMatch(m, labels) {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func labelsMatch(m *dto.Metric, want map[string]string) bool {
	for k, v := range want {
		found := false
		for _, pair := range m.GetLabel() {
			if pair.GetName() == k && pair.GetValue() == v {
				found = true
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func TestSubmitRecomputesTotals(t *testing.T) {
	h := newHarness(t, false)

	order, err := h.svc.Submit(context.Background(), validPayload())
	require.NoError(t, err)

	assert.True(t, order.Totals.Subtotal.Equal(decimal.NewFromInt(130)), order.Totals.Subtotal.String())
	assert.True(t, order.Totals.Shipping.Equal(decimal.NewFromInt(5)))
	assert.True(t, order.Totals.Total.Equal(decimal.NewFromInt(135)), order.Totals.Total.String())
}

func TestSubmitDefaultsShippingToZero(t *testing.T) {
	h := newHarness(t, false)
	payload := validPayload()
	payload.Totals = nil

	order, err := h.svc.Submit(context.Background(), payload)
	require.NoError(t, err)
	assert.True(t, order.Totals.Shipping.IsZero())
	assert.True(t, order.Totals.Total.Equal(decimal.NewFromInt(130)))
}

func TestSubmitRejectsInvalidPayloadWithoutSending(t *testing.T) {
	cases := map[string]func(*Payload){
		"no items":      func(p *Payload) { p.Items = nil },
		"empty items":   func(p *Payload) { p.Items = []cart.LineItem{} },
		"missing email": func(p *Payload) { p.Customer.Email = "" },
		"blank email":   func(p *Payload) { p.Customer.Email = "   " },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			h := newHarness(t, false)
			payload := validPayload()
			mutate(&payload)

			order, err := h.svc.Submit(context.Background(), payload)
			require.Error(t, err)
			assert.Nil(t, order)
			assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
			assert.Equal(t, InvalidPayloadMessage, pkgerrors.As(err).Message())
			assert.Empty(t, h.sender.sent)
			assert.Equal(t, 1.0, counterValue(t, h.registry, "checkout_submissions_total", map[string]string{"outcome": metrics.OutcomeInvalid}))
		})
	}
}

func TestSubmitDoesNotInspectLineItems(t *testing.T) {
	h := newHarness(t, false)
	payload := validPayload()
	payload.Items = []cart.LineItem{{ID: "odd", Title: "Odd", Price: -10, Qty: 0}}

	_, err := h.svc.Submit(context.Background(), payload)
	require.NoError(t, err)
	assert.Len(t, h.sender.sent, 2)
}

func TestOrderIDFormat(t *testing.T) {
	h := newHarness(t, false)

	order, err := h.svc.Submit(context.Background(), validPayload())
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^GA-\d{8}-[0-9A-F]{4}$`), order.ID)
	assert.Equal(t, "GA-20260314-AB12", order.ID)
}

func TestIdenticalSubmissionsDifferOnlyInSuffix(t *testing.T) {
	h := newHarness(t, false, 0x1a, 0x2b, 0x3c, 0x4d)
	payload := Payload{
		Customer: validPayload().Customer,
		Items:    []cart.LineItem{{ID: "p1@8x10", PrintID: "p1", Title: "Meteora", Size: "8x10", Price: 100, Qty: 1}},
		Totals:   &SubmittedTotals{Shipping: floatPtr(15)},
	}

	first, err := h.svc.Submit(context.Background(), payload)
	require.NoError(t, err)
	second, err := h.svc.Submit(context.Background(), payload)
	require.NoError(t, err)

	assert.True(t, first.Totals.Total.Equal(decimal.NewFromInt(115)))
	assert.True(t, second.Totals.Total.Equal(decimal.NewFromInt(115)))
	assert.Equal(t, "GA-20260314-1A2B", first.ID)
	assert.Equal(t, "GA-20260314-3C4D", second.ID)
	assert.Len(t, h.sender.sent, 4)
}

func TestSubmitSendsMerchantThenCustomerWithSwappedReplyTo(t *testing.T) {
	h := newHarness(t, false)

	order, err := h.svc.Submit(context.Background(), validPayload())
	require.NoError(t, err)
	require.Len(t, h.sender.sent, 2)

	merchant, customer := h.sender.sent[0], h.sender.sent[1]
	assert.Equal(t, "shop@example.com", merchant.To)
	assert.Equal(t, "maria@example.com", merchant.ReplyTo)
	assert.Equal(t, "archive@example.com", merchant.BCC)
	assert.Equal(t, "orders@example.com", merchant.From)
	assert.Contains(t, merchant.Subject, order.ID)

	assert.Equal(t, "maria@example.com", customer.To)
	assert.Equal(t, "shop@example.com", customer.ReplyTo)
	assert.Empty(t, customer.BCC)
	assert.Equal(t, "orders@example.com", customer.From)
	assert.Equal(t, "Η παραγγελία σας — George Adamos Prints ("+order.ID+")", customer.Subject)

	assert.Equal(t, 1.0, counterValue(t, h.registry, "checkout_emails_total", map[string]string{"leg": metrics.LegMerchant, "result": "sent"}))
	assert.Equal(t, 1.0, counterValue(t, h.registry, "checkout_submissions_total", map[string]string{"outcome": metrics.OutcomeSuccess}))
}

func TestMerchantFailureSkipsCustomerEmail(t *testing.T) {
	h := newHarness(t, false)
	h.sender.failOn = 1
	h.sender.err = errors.New("535 authentication failed")

	order, err := h.svc.Submit(context.Background(), validPayload())
	require.Error(t, err)
	assert.Nil(t, order)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeTransport))
	assert.ErrorContains(t, err, "535 authentication failed")
	assert.Len(t, h.sender.sent, 1)
	assert.Equal(t, 0.0, counterValue(t, h.registry, "checkout_partial_failures_total", nil))
}

func TestCustomerFailureAfterMerchantIsReported(t *testing.T) {
	h := newHarness(t, false)
	h.sender.failOn = 2
	h.sender.err = errors.New("550 mailbox unavailable")

	order, err := h.svc.Submit(context.Background(), validPayload())
	require.Error(t, err)
	assert.Nil(t, order)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeTransport))
	assert.Len(t, h.sender.sent, 2)

	assert.Equal(t, 1.0, counterValue(t, h.registry, "checkout_partial_failures_total", nil))
	assert.Equal(t, 1.0, counterValue(t, h.registry, "checkout_emails_total", map[string]string{"leg": metrics.LegCustomer, "result": "failed"}))
	assert.Equal(t, 1.0, counterValue(t, h.registry, "checkout_submissions_total", map[string]string{"outcome": metrics.OutcomeFailed}))

	logs := h.logs.String()
	assert.Contains(t, logs, `"order_id":"GA-20260314-AB12"`)
	assert.Contains(t, logs, `"merchant_sent":true`)
	assert.Contains(t, logs, `"failed_leg":"customer"`)
}

func TestStrictShippingRequiresZoneRate(t *testing.T) {
	h := newHarness(t, true)
	payload := validPayload()
	payload.Totals = &SubmittedTotals{Shipping: floatPtr(1)}

	_, err := h.svc.Submit(context.Background(), payload)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	assert.Empty(t, h.sender.sent)

	payload.Totals = &SubmittedTotals{Shipping: floatPtr(15)}
	_, err = h.svc.Submit(context.Background(), payload)
	require.NoError(t, err)
}

func TestLenientShippingTrustsSubmittedAmount(t *testing.T) {
	h := newHarness(t, false)
	payload := validPayload()
	payload.Totals = &SubmittedTotals{Shipping: floatPtr(1)}

	order, err := h.svc.Submit(context.Background(), payload)
	require.NoError(t, err)
	assert.True(t, order.Totals.Total.Equal(decimal.NewFromInt(131)))
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	renderer, err := NewRenderer(config.BrandConfig{}, nil, nil)
	require.NoError(t, err)
	ids := NewIDGenerator("")
	order := config.OrderConfig{To: "shop@example.com"}

	_, err = NewService(nil, renderer, ids, order, config.CheckoutConfig{}, nil, nil)
	assert.Error(t, err)
	_, err = NewService(&recordingSender{}, nil, ids, order, config.CheckoutConfig{}, nil, nil)
	assert.Error(t, err)
	_, err = NewService(&recordingSender{}, renderer, ids, config.OrderConfig{}, config.CheckoutConfig{}, nil, nil)
	assert.Error(t, err)

	svc, err := NewService(&recordingSender{}, renderer, ids, order, config.CheckoutConfig{}, nil, nil)
	require.NoError(t, err)
	_, err = svc.Submit(context.Background(), validPayload())
	assert.NoError(t, err)
}

func TestSubmitTrimsCustomerEmailForAddressing(t *testing.T) {
	h := newHarness(t, false)
	payload := validPayload()
	payload.Customer.Email = "  maria@example.com \t"

	order, err := h.svc.Submit(context.Background(), payload)
	require.NoError(t, err)

	assert.Equal(t, "maria@example.com", order.Customer.Email)
	require.Len(t, h.sender.sent, 2)
	assert.Equal(t, "maria@example.com", h.sender.sent[0].ReplyTo)
	assert.Equal(t, "maria@example.com", h.sender.sent[1].To)
}

func TestOrderItemsAreDetachedFromPayload(t *testing.T) {
	h := newHarness(t, false)
	payload := validPayload()

	order, err := h.svc.Submit(context.Background(), payload)
	require.NoError(t, err)

	payload.Items[0].Qty = 99
	items := order.Items.Items()
	require.Equal(t, 2, order.Items.Len())
	assert.Equal(t, 2, items[0].Qty)
	assert.Equal(t, "130.00", order.Totals.Subtotal.StringFixed(2))
}
