package middleware

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/angelmondragon/storefront-backend/api/responses"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/idempotency"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

const (
	defaultIdempotencyTTL  = 24 * time.Hour
	criticalIdempotencyTTL = 7 * 24 * time.Hour
	inFlightTTL            = 30 * time.Second

	idempotencyHeader    = "Idempotency-Key"
	replayedHeader       = "Idempotent-Replayed"
	maxIdempotencyKeyLen = 255
	maxIdempotentBody    = 1 << 20
)

type routeMatcher func(string) bool

type idempotencyRule struct {
	method  string
	matcher routeMatcher
	ttl     time.Duration
}

// JSON writes on these routes replay when they repeat an Idempotency-Key.
// Requests without the header are served normally.
var idempotencyRules = []idempotencyRule{
	{method: http.MethodPost, matcher: matchExact("/admin/cart/add"), ttl: defaultIdempotencyTTL},
	{method: http.MethodPost, matcher: matchPrefix("/admin/cart/submit/"), ttl: criticalIdempotencyTTL},
	{method: http.MethodPost, matcher: matchExact("/admin/user/create"), ttl: defaultIdempotencyTTL},
}

func Idempotency(store idempotency.Store, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ttl, ok := routeTTL(r.Method, r.URL.Path)
			key := strings.TrimSpace(r.Header.Get(idempotencyHeader))
			if !ok || store == nil || key == "" {
				next.ServeHTTP(w, r)
				return
			}
			ctx := r.Context()
			if len(key) > maxIdempotencyKeyLen {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "Idempotency-Key header too long").
					WithDetails(map[string]any{"max_length": maxIdempotencyKeyLen}))
				return
			}

			body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxIdempotentBody))
			if err != nil {
				var tooLarge *http.MaxBytesError
				if errors.As(err, &tooLarge) {
					responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodePayloadTooLarge, "request body too large").
						WithDetails(map[string]any{"max_bytes": maxIdempotentBody}))
					return
				}
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unable to read request body"))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			scope := r.Method + "|" + r.URL.Path
			if logg != nil {
				ctx = logg.WithField(ctx, "idempotency_key", key)
			}

			stored, err := store.Load(ctx, scope, key)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check idempotency"))
				return
			}
			if stored != nil {
				respondStored(ctx, logg, w, stored, body)
				return
			}

			claimed, err := store.Begin(ctx, scope, key, inFlightTTL)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "claim idempotency key"))
				return
			}
			if !claimed {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "a request with this idempotency key is still in progress"))
				return
			}

			// a request holding the key may have finished between Load and Begin
			stored, err = store.Load(ctx, scope, key)
			if err == nil && stored != nil {
				logError(ctx, logg, "release idempotency claim", store.Abandon(context.WithoutCancel(ctx), scope, key))
				respondStored(ctx, logg, w, stored, body)
				return
			}
			if err != nil {
				logError(ctx, logg, "release idempotency claim", store.Abandon(context.WithoutCancel(ctx), scope, key))
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check idempotency"))
				return
			}

			rec := &responseCapture{ResponseWriter: w}
			next.ServeHTTP(rec, r.WithContext(ctx))

			// server failures stay retryable
			status := rec.statusOrOK()
			if status >= http.StatusInternalServerError {
				logError(ctx, logg, "release idempotency claim", store.Abandon(context.WithoutCancel(ctx), scope, key))
				return
			}

			record := idempotency.Record{
				Status:      status,
				ContentType: rec.Header().Get("Content-Type"),
				Body:        rec.body.Bytes(),
				RequestHash: idempotency.HashBody(body),
			}
			logError(ctx, logg, "persist idempotency record", store.Save(context.WithoutCancel(ctx), scope, key, record, ttl))
		})
	}
}

func respondStored(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, stored *idempotency.Record, body []byte) {
	if !stored.Matches(body) {
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "idempotency key reused with different request body"))
		return
	}
	replay(w, stored)
}

func replay(w http.ResponseWriter, record *idempotency.Record) {
	if record.ContentType != "" {
		w.Header().Set("Content-Type", record.ContentType)
	}
	w.Header().Set(replayedHeader, "true")
	w.WriteHeader(record.Status)
	_, _ = w.Write(record.Body)
}

func routeTTL(method, path string) (time.Duration, bool) {
	if path == "" {
		return 0, false
	}
	for _, rule := range idempotencyRules {
		if rule.method == method && rule.matcher(path) {
			return rule.ttl, true
		}
	}
	return 0, false
}

func matchExact(path string) routeMatcher {
	return func(candidate string) bool {
		return candidate == path
	}
}

func matchPrefix(prefix string) routeMatcher {
	return func(candidate string) bool {
		return strings.HasPrefix(candidate, prefix) && len(candidate) > len(prefix)
	}
}

type responseCapture struct {
	http.ResponseWriter
	body   bytes.Buffer
	status int
}

func (r *responseCapture) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseCapture) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func (r *responseCapture) statusOrOK() int {
	if r.status == 0 {
		return http.StatusOK
	}
	return r.status
}

func logError(ctx context.Context, logg *logger.Logger, msg string, err error) {
	if logg == nil || err == nil {
		return
	}
	logg.Error(ctx, msg, err)
}
