package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaprints/prints-backend/pkg/logger"
)

func newBufferedLogger(buf *bytes.Buffer) *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: buf})
}

func TestRequestIDKeepsWellFormedInboundID(t *testing.T) {
	handler := RequestID(nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, "edge-1234.abc")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, "edge-1234.abc", rec.Header().Get(requestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, "bad id\nwith newline")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	_, err := uuid.Parse(rec.Header().Get(requestIDHeader))
	assert.NoError(t, err, "malformed inbound id must be replaced")
}

func TestRecovererWritesInternalError(t *testing.T) {
	var buf bytes.Buffer
	handler := Recoverer(newBufferedLogger(&buf))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/cart", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "INTERNAL_ERROR")
	assert.Contains(t, buf.String(), "panic.recovered")
}

func TestRecovererLeavesStartedResponseAlone(t *testing.T) {
	handler := Recoverer(nil)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("event: updated\ndata: {}\n\n"))
		panic("stream broke")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/cart/events", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "event: updated\ndata: {}\n\n", rec.Body.String())
}

func TestRecovererRepanicsAbortHandler(t *testing.T) {
	handler := Recoverer(nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	require.PanicsWithValue(t, http.ErrAbortHandler, func() {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

func TestLoggingRecordsStatusAndQuietsProbes(t *testing.T) {
	var buf bytes.Buffer
	logg := newBufferedLogger(&buf)
	handler := Logging(logg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/boom" {
			w.WriteHeader(http.StatusBadGateway)
		}
		_, _ = w.Write([]byte("ok"))
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.NotContains(t, buf.String(), "request.start")
	assert.Contains(t, buf.String(), `"level":"debug"`)

	buf.Reset()
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], `"status":502`)
	assert.Contains(t, lines[1], `"bytes":2`)
	assert.Contains(t, lines[1], `"level":"warn"`)
}
