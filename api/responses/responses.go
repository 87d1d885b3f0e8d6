package responses

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	pkgerrors "github.com/gaprints/prints-backend/pkg/errors"
	"github.com/gaprints/prints-backend/pkg/logger"
	"github.com/gaprints/prints-backend/pkg/types"
)

func WriteSuccess(w http.ResponseWriter, data any) {
	WriteSuccessStatus(w, http.StatusOK, data)
}

func WriteSuccessStatus(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, types.SuccessEnvelope{Data: data})
}

func WriteError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	typed := typedError(err)
	meta := pkgerrors.MetadataFor(typed.Code())

	msg := meta.PublicMessage
	switch typed.Code() {
	case pkgerrors.CodeValidation,
		pkgerrors.CodeNotFound,
		pkgerrors.CodeIdempotency,
		pkgerrors.CodeRateLimit:
		if m := typed.Message(); m != "" {
			msg = m
		}
	}

	payload := types.ErrorEnvelope{
		Error: types.APIError{
			Code:    string(typed.Code()),
			Message: msg,
		},
	}

	if meta.DetailsAllowed {
		if details := typed.Details(); details != nil {
			payload.Error.Details = details
		}
	}

	logRequestError(ctx, logg, err)
	writeJSON(w, meta.HTTPStatus, payload)
}

// WriteCheckoutOK writes the checkout success body.
func WriteCheckoutOK(w http.ResponseWriter, orderID string) {
	writeJSON(w, http.StatusOK, types.CheckoutResponse{OK: true, OrderID: orderID})
}

// WriteCheckoutError writes the checkout failure body. Validation failures
// carry their fixed message with a 400; anything else is a 500 carrying the
// underlying failure message.
func WriteCheckoutError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	typed := typedError(err)
	status := http.StatusInternalServerError
	msg := failureMessage(typed)

	switch typed.Code() {
	case pkgerrors.CodeValidation:
		status = http.StatusBadRequest
		msg = typed.Message()
	case pkgerrors.CodeRateLimit, pkgerrors.CodeIdempotency:
		status = pkgerrors.MetadataFor(typed.Code()).HTTPStatus
		msg = typed.Message()
	default:
		logRequestError(ctx, logg, err)
	}

	writeJSON(w, status, types.CheckoutResponse{OK: false, Error: msg})
}

func failureMessage(typed *pkgerrors.Error) string {
	if cause := errors.Unwrap(typed); cause != nil {
		return cause.Error()
	}
	if m := typed.Message(); m != "" {
		return m
	}
	return "Error"
}

func typedError(err error) *pkgerrors.Error {
	if err == nil {
		err = errors.New("unknown error")
	}
	typed := pkgerrors.As(err)
	if typed == nil {
		typed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unexpected error")
	}
	return typed
}

func logRequestError(ctx context.Context, logg *logger.Logger, err error) {
	if logg == nil {
		return
	}
	fields := pkgerrors.Dump(err).Fields()
	ctx = logg.WithFields(ctx, fields)
	logg.Error(ctx, "request.error", err)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf(`{"level":"error","msg":"failed to encode response","err":"%v"}`, err)
	}
}
