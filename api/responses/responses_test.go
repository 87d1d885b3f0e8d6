package responses

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	pkgerrors "github.com/gaprints/prints-backend/pkg/errors"
	"github.com/gaprints/prints-backend/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteSuccess(t *testing.T) {
	w := httptest.NewRecorder()
	WriteSuccess(w, map[string]string{"hello": "world"})

	require.Equal(t, http.StatusOK, w.Code)
	var body types.SuccessEnvelope
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "world", body.Data.(map[string]any)["hello"])
}

func TestWriteErrorMapsTypedError(t *testing.T) {
	w := httptest.NewRecorder()
	err := pkgerrors.New(pkgerrors.CodeValidation, "bad input").
		WithDetails(map[string]string{"field": "demo"})
	WriteError(t.Context(), nil, w, err)

	require.Equal(t, http.StatusBadRequest, w.Code)
	var body types.ErrorEnvelope
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, string(pkgerrors.CodeValidation), body.Error.Code)
	assert.Equal(t, "bad input", body.Error.Message)
	assert.NotNil(t, body.Error.Details)
}

func TestWriteErrorHidesInternalMessages(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(t.Context(), nil, w, errors.New("db password leaked"))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	var body types.ErrorEnvelope
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, string(pkgerrors.CodeInternal), body.Error.Code)
	assert.Equal(t, "internal server error", body.Error.Message)
}

func decodeCheckout(t *testing.T, w *httptest.ResponseRecorder) types.CheckoutResponse {
	t.Helper()
	var body types.CheckoutResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body
}

func TestWriteCheckoutOK(t *testing.T) {
	w := httptest.NewRecorder()
	WriteCheckoutOK(w, "GA-20260314-AB12")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true,"orderId":"GA-20260314-AB12"}`, w.Body.String())
}

func TestWriteCheckoutErrorInvalidPayload(t *testing.T) {
	w := httptest.NewRecorder()
	WriteCheckoutError(t.Context(), nil, w, pkgerrors.New(pkgerrors.CodeValidation, "Invalid payload"))

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"ok":false,"error":"Invalid payload"}`, w.Body.String())
}

func TestWriteCheckoutErrorCarriesTransportMessage(t *testing.T) {
	w := httptest.NewRecorder()
	cause := fmt.Errorf("smtp send to shop@example.com: %w", errors.New("535 auth failed"))
	WriteCheckoutError(t.Context(), nil, w, pkgerrors.Wrap(pkgerrors.CodeTransport, cause, "merchant notification failed"))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeCheckout(t, w)
	assert.False(t, body.OK)
	assert.Equal(t, "smtp send to shop@example.com: 535 auth failed", body.Error)
	assert.Empty(t, body.OrderID)
}

func TestWriteCheckoutErrorUntypedFailure(t *testing.T) {
	w := httptest.NewRecorder()
	WriteCheckoutError(t.Context(), nil, w, errors.New("boom"))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "boom", decodeCheckout(t, w).Error)
}
