package types

type SuccessEnvelope struct {
	Data any `json:"data"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// CheckoutResponse is the body of the checkout endpoint.
type CheckoutResponse struct {
	OK      bool   `json:"ok"`
	OrderID string `json:"orderId,omitempty"`
	Error   string `json:"error,omitempty"`
}
