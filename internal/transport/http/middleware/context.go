package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"hrdesk/internal/requestctx"
	"hrdesk/internal/transport/http/shared"
)

type ctxKey string

const ctxKeyUser ctxKey = "user"

const requestIDHeader = "X-Request-ID"

// RequestID assigns a request ID (reusing a sane inbound one) and records
// the client IP for downstream audit entries.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" || len(requestID) > 64 {
			requestID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, requestID)

		ctx := requestctx.WithRequestID(r.Context(), requestID)
		ctx = requestctx.WithClientIP(ctx, shared.ClientIP(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func GetRequestID(ctx context.Context) string {
	return requestctx.GetRequestID(ctx)
}
