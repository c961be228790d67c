package middleware

import (
	"context"
	"net/http"

	"hrmportal/internal/requestctx"
)

func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if reqID := r.Header.Get("X-Request-ID"); reqID != "" {
			ctx = requestctx.WithRequestID(ctx, reqID)
		}
		ctx, reqID := requestctx.Ensure(ctx)
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func GetRequestID(ctx context.Context) string {
	return requestctx.GetRequestID(ctx)
}
