package observability

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// quietPaths are hit by scrapers and health checks. They are not traced and
// their access log drops to debug.
var quietPaths = map[string]bool{
	"/metrics": true,
	"/health":  true,
}

func shouldTraceRequest(r *http.Request) bool {
	return !quietPaths[r.URL.Path]
}

// RequestIDMiddleware keeps a well-formed inbound X-Request-ID, mints one
// otherwise, and echoes it on the response.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if !ValidRequestID(id) {
			id = NewRequestID()
		}
		w.Header().Set(RequestIDHeader, id)

		next.ServeHTTP(w, r.WithContext(ContextWithRequestID(r.Context(), id)))
	})
}

// LoggingMiddleware writes one access log line per request: error for 5xx,
// warn for 4xx, debug for scrapes and health checks and info for the rest.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := responseStatus(ww)
		fields := []zap.Field{
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("route", routePattern(r)),
			zap.Int("status", status),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
		}

		logger := LoggerFromContext(r.Context())
		switch {
		case status >= http.StatusInternalServerError:
			logger.Error("request completed", fields...)
		case status >= http.StatusBadRequest:
			logger.Warn("request completed", fields...)
		case quietPaths[r.URL.Path]:
			logger.Debug("request completed", fields...)
		default:
			logger.Info("request completed", fields...)
		}
	})
}

// TracingMiddleware opens a server span per request named "METHOD /path".
func TracingMiddleware(next http.Handler) http.Handler {
	return otelhttp.NewHandler(next, "calcapp.http",
		otelhttp.WithFilter(shouldTraceRequest),
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
}

// routePattern is the matched chi pattern, or the raw path when routing has
// not produced one. It is only complete after the router has run.
func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}

func responseStatus(ww middleware.WrapResponseWriter) int {
	if s := ww.Status(); s != 0 {
		return s
	}
	return http.StatusOK
}
