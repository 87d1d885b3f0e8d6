package middleware

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	pkgerrors "github.com/gaprints/prints-backend/pkg/errors"
)

// MaxRequestBody caps any body a middleware buffers before the handler runs.
const MaxRequestBody = 1 << 20

// bufferBody reads the capped body and rewinds it for the next handler.
func bufferBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxRequestBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "request body too large")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request")
	}
	r.Body = io.NopCloser(bytes.NewReader(body))
	return body, nil
}
