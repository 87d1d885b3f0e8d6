// Package checkout turns a cart snapshot and customer details into a priced
// order and notifies the merchant and the customer.
package checkout

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gaprints/prints-backend/internal/cart"
	"github.com/gaprints/prints-backend/internal/shipping"
	"github.com/gaprints/prints-backend/pkg/config"
	pkgerrors "github.com/gaprints/prints-backend/pkg/errors"
	"github.com/gaprints/prints-backend/pkg/logger"
	"github.com/gaprints/prints-backend/pkg/mailer"
	"github.com/gaprints/prints-backend/pkg/metrics"
)

type idSource interface {
	At(t time.Time) (string, error)
}

type renderer interface {
	Render(order *Order, forCustomer bool) (Email, error)
}

// Service runs checkout submissions. Submissions share no state.
type Service struct {
	sender         mailer.Sender
	renderer       renderer
	ids            idSource
	order          config.OrderConfig
	strictShipping bool
	metrics        *metrics.CheckoutMetrics
	logg           *logger.Logger
	now            func() time.Time
}

// NewService wires the checkout pipeline. metrics may be nil.
func NewService(
	sender mailer.Sender,
	renderer *Renderer,
	ids *IDGenerator,
	orderCfg config.OrderConfig,
	checkoutCfg config.CheckoutConfig,
	m *metrics.CheckoutMetrics,
	logg *logger.Logger,
) (*Service, error) {
	if sender == nil {
		return nil, fmt.Errorf("mail sender required")
	}
	if renderer == nil {
		return nil, fmt.Errorf("renderer required")
	}
	if ids == nil {
		return nil, fmt.Errorf("order id generator required")
	}
	if orderCfg.To == "" {
		return nil, fmt.Errorf("order recipient required")
	}
	return &Service{
		sender:         sender,
		renderer:       renderer,
		ids:            ids,
		order:          orderCfg,
		strictShipping: checkoutCfg.StrictShipping,
		metrics:        m,
		logg:           logg,
		now:            time.Now,
	}, nil
}

// Submit validates the payload, prices it, and sends the merchant
// notification followed by the customer confirmation. The order is returned
// only when both emails were handed to the transport.
func (s *Service) Submit(ctx context.Context, payload Payload) (*Order, error) {
	started := s.now()

	order, err := s.prepare(payload, started)
	if err != nil {
		s.observe(metrics.OutcomeInvalid, started)
		return nil, err
	}
	if s.logg != nil {
		ctx = s.logg.WithOrderID(ctx, order.ID)
	}

	if err := s.dispatch(ctx, order); err != nil {
		s.observe(metrics.OutcomeFailed, started)
		return nil, err
	}

	s.observe(metrics.OutcomeSuccess, started)
	if s.logg != nil {
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{
			"items": order.Items.Len(),
			"total": order.Totals.Total.StringFixed(2),
		}), "order placed")
	}
	return order, nil
}

func (s *Service) prepare(payload Payload, placedAt time.Time) (*Order, error) {
	if err := payload.Validate(); err != nil {
		return nil, err
	}
	shippingAmount := payload.shipping()
	if s.strictShipping && !shipping.MatchesZoneRate(shippingAmount) {
		return nil, ErrInvalidPayload()
	}

	id, err := s.ids.At(placedAt)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate order id")
	}

	customer := payload.Customer
	customer.Email = strings.TrimSpace(customer.Email)
	items := cart.SnapshotOf(payload.Items)
	return &Order{
		ID:       id,
		Customer: customer,
		Items:    items,
		Totals:   ComputeTotals(items.Items(), shippingAmount),
		PlacedAt: placedAt,
	}, nil
}

func (s *Service) dispatch(ctx context.Context, order *Order) error {
	merchant, err := s.renderer.Render(order, false)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render merchant email")
	}
	customer, err := s.renderer.Render(order, true)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render customer email")
	}

	err = s.sender.Send(ctx, mailer.Message{
		From:    s.order.From,
		To:      s.order.To,
		ReplyTo: order.Customer.Email,
		BCC:     s.order.BCC,
		Subject: merchant.Subject,
		Text:    merchant.Text,
		HTML:    merchant.HTML,
	})
	s.metrics.IncEmail(metrics.LegMerchant, err == nil)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeTransport, err, "merchant notification failed")
	}

	err = s.sender.Send(ctx, mailer.Message{
		From:    s.order.From,
		To:      order.Customer.Email,
		ReplyTo: s.order.To,
		Subject: customer.Subject,
		Text:    customer.Text,
		HTML:    customer.HTML,
	})
	s.metrics.IncEmail(metrics.LegCustomer, err == nil)
	if err != nil {
		s.reportPartialFailure(ctx, order, err)
		return pkgerrors.Wrap(pkgerrors.CodeTransport, err, "customer confirmation failed")
	}
	return nil
}

// reportPartialFailure records a merchant notification that went out for an
// order whose customer confirmation did not. Nothing is rolled back.
func (s *Service) reportPartialFailure(ctx context.Context, order *Order, err error) {
	s.metrics.IncPartialFailure()
	if s.logg == nil {
		return
	}
	ctx = s.logg.WithCustomer(ctx, order.Customer.Email)
	ctx = s.logg.WithFields(ctx, map[string]any{
		"merchant_sent": true,
		"failed_leg":    metrics.LegCustomer,
		"total":         order.Totals.Total.StringFixed(2),
	})
	s.logg.Error(ctx, "customer confirmation failed after merchant notification", err)
}

func (s *Service) observe(outcome string, started time.Time) {
	s.metrics.ObserveSubmission(outcome, s.now().Sub(started))
}
