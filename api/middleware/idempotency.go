package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	pkgerrors "github.com/gaprints/prints-backend/pkg/errors"
	"github.com/gaprints/prints-backend/pkg/logger"
	pkgredis "github.com/gaprints/prints-backend/pkg/redis"
)

const defaultIdempotencyTTL = 24 * time.Hour

type routeMatcher func(string) bool

type idempotencyRule struct {
	method  string
	matcher routeMatcher
}

var idempotencyRules = []idempotencyRule{
	{method: http.MethodPost, matcher: matchExact("/api/checkout")},
	{method: http.MethodPost, matcher: matchExact("/api/cart/items")},
}

// idempotencyPendingTTL bounds how long a claim survives a crashed request.
const idempotencyPendingTTL = 2 * time.Minute

type idempotencyRecord struct {
	Pending     bool              `json:"pending,omitempty"`
	Status      int               `json:"status,omitempty"`
	Body        string            `json:"body,omitempty"`
	Headers     map[string]string `json:"headers,omitempty"`
	RequestHash string            `json:"request_hash"`
}

// Idempotency replays the stored response of a request that repeats an
// Idempotency-Key on a matching route. The key is claimed before the handler
// runs, so a concurrent duplicate gets a conflict instead of a second order.
// Requests without the header pass through untouched.
func Idempotency(store pkgredis.IdempotencyStore, ttl time.Duration, logg *logger.Logger, write ErrorWriter) func(http.Handler) http.Handler {
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}
	write = orDefault(write)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			idempotencyKey := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
			if idempotencyKey == "" || store == nil || !routeMatches(r.Method, routePattern(r)) {
				next.ServeHTTP(w, r)
				return
			}

			body, err := bufferBody(w, r)
			if err != nil {
				write(r.Context(), logg, w, err)
				return
			}

			requestHash := hashBody(body)
			key := store.IdempotencyKey(buildScope(r), idempotencyKey)

			claimed, err := claim(r.Context(), store, key, requestHash)
			if err != nil {
				write(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "claim idempotency key"))
				return
			}
			if !claimed {
				replayOrReject(r.Context(), store, key, requestHash, logg, w, write)
				return
			}

			// Writes after the handler must land even if the client went away.
			bg := context.WithoutCancel(r.Context())
			finished := false
			defer func() {
				if !finished {
					release(bg, store, key, logg)
				}
			}()

			rec := &responseCapture{ResponseWriter: w}
			next.ServeHTTP(rec, r)
			finished = true

			status := defaultStatus(rec.status)
			if status >= http.StatusInternalServerError {
				// failed attempts stay retryable under the same key
				release(bg, store, key, logg)
				return
			}

			record := idempotencyRecord{
				Status:      status,
				Body:        base64.StdEncoding.EncodeToString(rec.body.Bytes()),
				RequestHash: requestHash,
			}
			if ct := rec.Header().Get("Content-Type"); ct != "" {
				record.Headers = map[string]string{"Content-Type": ct}
			}
			payload, marshalErr := json.Marshal(record)
			if marshalErr != nil {
				logError(bg, logg, "marshal idempotency record", marshalErr)
				release(bg, store, key, logg)
				return
			}
			if setErr := store.Set(bg, key, string(payload), ttl); setErr != nil {
				logError(bg, logg, "persist idempotency record", setErr)
			}
		})
	}
}

func claim(ctx context.Context, store pkgredis.IdempotencyStore, key, requestHash string) (bool, error) {
	marker, err := json.Marshal(idempotencyRecord{Pending: true, RequestHash: requestHash})
	if err != nil {
		return false, err
	}
	return store.SetNX(ctx, key, string(marker), idempotencyPendingTTL)
}

func release(ctx context.Context, store pkgredis.IdempotencyStore, key string, logg *logger.Logger) {
	if err := store.Del(ctx, key); err != nil {
		logError(ctx, logg, "release idempotency key", err)
	}
}

// replayOrReject answers a request whose key is already claimed: a finished
// record is replayed, a claim still in flight is a conflict.
func replayOrReject(ctx context.Context, store pkgredis.IdempotencyStore, key, requestHash string, logg *logger.Logger, w http.ResponseWriter, write ErrorWriter) {
	stored, err := store.Get(ctx, key)
	switch {
	case errors.Is(err, redis.Nil) || (err == nil && stored == ""):
		// released between our claim and this read
		write(ctx, logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "request with this idempotency key is in progress"))
		return
	case err != nil:
		write(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check idempotency"))
		return
	}

	record, err := decodeRecord(stored)
	if err != nil {
		write(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode idempotency record"))
		return
	}
	if record.RequestHash != requestHash {
		write(ctx, logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "idempotency key reused with different request body"))
		return
	}
	if record.Pending {
		write(ctx, logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "request with this idempotency key is in progress"))
		return
	}
	writeStoredResponse(w, record)
}

func buildScope(r *http.Request) string {
	parts := []string{
		CartSessionFromContext(r.Context()),
		r.Method,
		r.URL.Path,
	}
	return strings.Join(parts, "|")
}

func decodeRecord(payload string) (*idempotencyRecord, error) {
	var record idempotencyRecord
	if err := json.Unmarshal([]byte(payload), &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func writeStoredResponse(w http.ResponseWriter, record *idempotencyRecord) {
	if record == nil {
		return
	}
	if ct, ok := record.Headers["Content-Type"]; ok && ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.WriteHeader(record.Status)
	if decoded, err := base64.StdEncoding.DecodeString(record.Body); err == nil {
		_, _ = w.Write(decoded)
	}
}

func hashBody(payload []byte) string {
	sum := sha256.Sum256(payload)
	return base64.StdEncoding.EncodeToString(sum[:])
}

func defaultStatus(value int) int {
	if value == 0 {
		return http.StatusOK
	}
	return value
}

func routePattern(r *http.Request) string {
	if r == nil {
		return ""
	}
	if ctx := chi.RouteContext(r.Context()); ctx != nil {
		// Subrouter middleware sees a partial "/*" pattern until routing ends.
		if pattern := ctx.RoutePattern(); pattern != "" && !strings.HasSuffix(pattern, "/*") {
			return pattern
		}
	}
	return r.URL.Path
}

func routeMatches(method, pattern string) bool {
	if pattern == "" {
		return false
	}
	for _, rule := range idempotencyRules {
		if rule.method == method && rule.matcher(pattern) {
			return true
		}
	}
	return false
}

func matchExact(path string) routeMatcher {
	return func(pattern string) bool {
		return pattern == path
	}
}

type responseCapture struct {
	http.ResponseWriter
	body   bytes.Buffer
	status int
}

func (r *responseCapture) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseCapture) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func logError(ctx context.Context, logg *logger.Logger, msg string, err error) {
	if logg == nil || err == nil {
		return
	}
	logg.Error(ctx, msg, err)
}
