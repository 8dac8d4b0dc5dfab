package middlewares

import (
	"net/http"
	"strings"
	"time"

	"github.com/ballotchain/vote-submission-service/internal/observability/tracing"
	"github.com/rs/zerolog/log"
)

// Paths polled by tooling, not worth a line per request
var quietPrefixes = []string{"/swagger/", "/healthcheck"}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, prefix := range quietPrefixes {
			if strings.HasPrefix(r.URL.Path, prefix) {
				next.ServeHTTP(w, r)
				return
			}
		}

		startTime := time.Now()
		// Authorization holds the voter session token and is never logged
		logger := log.With().Str("path", r.URL.Path).Str("method", r.Method).Logger()
		if traceId := r.Context().Value(tracing.TraceIdKey); traceId != nil {
			logger = logger.With().Interface("traceId", traceId).Logger()
		}

		logger.Debug().Msg("request received")
		r = r.WithContext(logger.WithContext(r.Context()))

		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		event := logger.Info()
		if recorder.status >= http.StatusInternalServerError {
			event = logger.Warn()
		}
		if tracingInfo := r.Context().Value(tracing.TracingInfoKey); tracingInfo != nil {
			event = event.Interface("tracingInfo", tracingInfo)
		}
		event.Int("status", recorder.status).
			Int64("requestDuration", time.Since(startTime).Milliseconds()).
			Msg("request completed")
	})
}
