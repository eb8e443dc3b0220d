package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/roost-io/roost/pkg/metrics"
	"github.com/rs/zerolog"
)

// Middleware is a function that wraps an http.Handler.
type Middleware func(http.Handler) http.Handler

// Chain combines multiple middleware into a single middleware.
func Chain(middlewares ...Middleware) Middleware {
	return func(next http.Handler) http.Handler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			next = middlewares[i](next)
		}
		return next
	}
}

// Logging returns a middleware that logs each request. Heartbeats and
// metric scrapes arrive every few seconds, so requests log at debug.
func Logging(logger zerolog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapper := &responseWrapper{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(wrapper, r)

			logger.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", wrapper.status).
				Dur("duration", time.Since(start)).
				Msg("Request handled")
		})
	}
}

// Instrument returns a middleware that records request counts and
// latency in Prometheus.
func Instrument() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			timer := metrics.NewTimer()
			wrapper := &responseWrapper{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(wrapper, r)

			metrics.APIRequestsTotal.WithLabelValues(r.Method, strconv.Itoa(wrapper.status)).Inc()
			timer.ObserveDurationVec(metrics.APIRequestDuration, r.Method)
		})
	}
}

// Recovery returns a middleware that recovers from handler panics.
func Recovery(logger zerolog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error().Interface("panic", rec).Str("path", r.URL.Path).Msg("Panic recovered")
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// responseWrapper is a wrapper for http.ResponseWriter that captures
// the status code.
type responseWrapper struct {
	http.ResponseWriter
	status int
}

// WriteHeader captures the status code and passes it to the wrapped
// ResponseWriter.
func (rw *responseWrapper) WriteHeader(status int) {
	rw.status = status
	rw.ResponseWriter.WriteHeader(status)
}

// Flush forwards to the wrapped writer so event streaming works
// through the middleware chain.
func (rw *responseWrapper) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
