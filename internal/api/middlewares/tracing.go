package middlewares

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/ballotchain/vote-submission-service/internal/observability/tracing"
)

const traceIdHeader = "X-Trace-Id"

func TracingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceId := r.Header.Get(traceIdHeader)
		if traceId == "" {
			traceId = uuid.NewString()
		}
		w.Header().Set(traceIdHeader, traceId)
		ctx, _ := tracing.AttachTracingIntoContext(r.Context(), traceId)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
