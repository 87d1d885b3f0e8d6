package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gaprints/prints-backend/api/middleware"
	"github.com/gaprints/prints-backend/api/responses"
	"github.com/gaprints/prints-backend/internal/checkout"
	pkgerrors "github.com/gaprints/prints-backend/pkg/errors"
	"github.com/gaprints/prints-backend/pkg/logger"
)

// CheckoutSubmitter places an order from a checkout payload.
type CheckoutSubmitter interface {
	Submit(ctx context.Context, payload checkout.Payload) (*checkout.Order, error)
}

// Checkout accepts a cart snapshot with customer details and answers with the
// {ok, orderId} or {ok, error} envelope. The session cart is cleared only
// after the order went through.
func Checkout(svc CheckoutSubmitter, sessions CartSessions, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var payload checkout.Payload
		body := http.MaxBytesReader(w, r.Body, middleware.MaxRequestBody)
		defer func() {
			_, _ = io.Copy(io.Discard, body)
		}()
		if err := json.NewDecoder(body).Decode(&payload); err != nil {
			responses.WriteCheckoutError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, checkout.InvalidPayloadMessage))
			return
		}

		order, err := svc.Submit(ctx, payload)
		if err != nil {
			responses.WriteCheckoutError(ctx, logg, w, err)
			return
		}

		if id := middleware.CartSessionFromContext(ctx); id != "" && sessions != nil {
			sessions.Session(id).Store.Clear(ctx)
		}
		responses.WriteCheckoutOK(w, order.ID)
	}
}
