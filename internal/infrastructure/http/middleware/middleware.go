// Package middleware provides HTTP middleware components
// following the Chain of Responsibility pattern
package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/alchemorsel/patisserie/internal/infrastructure/config"
	"github.com/alchemorsel/patisserie/pkg/errors"
	"github.com/andybalholm/brotli"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// RequestIDHeader carries the request id in both directions
const RequestIDHeader = "X-Request-ID"

type ctxKey int

const requestIDKey ctxKey = iota

// Middleware provides all middleware functions
type Middleware struct {
	config   *config.Config
	logger   *zap.Logger
	limiters *clientLimiters
	tracer   trace.Tracer
}

// New creates a new middleware instance. tracer may be nil.
func New(cfg *config.Config, logger *zap.Logger, tracer trace.Tracer) *Middleware {
	return &Middleware{
		config: cfg,
		logger: logger.Named("http"),
		limiters: newClientLimiters(
			cfg.RateLimit.RequestsPerMin,
			cfg.RateLimit.BurstSize,
			cfg.RateLimit.CleanupInterval,
		),
		tracer: tracer,
	}
}

// RequestID adds a unique request ID to the context
func (m *Middleware) RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		w.Header().Set(RequestIDHeader, requestID)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, requestID)))
	})
}

// GetRequestID returns the request id stored by RequestID
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// Logger provides structured logging for requests
func (m *Middleware) Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		path := r.URL.Path
		if path == "/health" || path == m.config.Monitoring.MetricsPath {
			return
		}
		if r.URL.RawQuery != "" {
			path = path + "?" + r.URL.RawQuery
		}

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		fields := []zap.Field{
			zap.String("request_id", GetRequestID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", path),
			zap.String("route", routePattern(r)),
			zap.String("ip", r.RemoteAddr),
			zap.Int("status", status),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("latency", time.Since(start)),
			zap.String("user_agent", r.UserAgent()),
		}

		switch {
		case status >= 500:
			m.logger.Error("Server error", fields...)
		case status >= 400:
			m.logger.Warn("Client error", fields...)
		default:
			m.logger.Info("Request completed", fields...)
		}
	})
}

// Recovery recovers from panics and returns 500 error
func (m *Middleware) Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				m.logger.Error("Panic recovered",
					zap.String("request_id", GetRequestID(r.Context())),
					zap.Any("error", rec),
					zap.String("stack", string(debug.Stack())),
				)
				writeError(w, r, errors.NewInternalError(""))
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// CORS handles Cross-Origin Resource Sharing
func (m *Middleware) CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.config.Server.EnableCORS {
			next.ServeHTTP(w, r)
			return
		}

		origin := r.Header.Get("Origin")
		if origin != "" && m.isOriginAllowed(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Expose-Headers", "X-Request-ID")
			w.Header().Set("Access-Control-Max-Age", "86400")
			w.Header().Add("Vary", "Origin")
		}

		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RateLimit rejects requests beyond the configured per-client rate
func (m *Middleware) RateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.config.RateLimit.Enable || m.limiters.Allow(clientIP(r)) {
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("Retry-After", "60")
		writeError(w, r, errors.NewAppError(errors.CodeTooManyRequests, "Rate limit exceeded", ""))
	})
}

// Tracing starts a server span per request
func (m *Middleware) Tracing(next http.Handler) http.Handler {
	if m.tracer == nil || !m.config.Monitoring.EnableTracing {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := m.tracer.Start(r.Context(), fmt.Sprintf("%s %s", r.Method, r.URL.Path),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.request.method", r.Method),
				attribute.String("url.path", r.URL.Path),
				attribute.String("user_agent.original", r.UserAgent()),
				attribute.String("request.id", GetRequestID(r.Context())),
			),
		)
		defer span.End()

		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))

		if pattern := routePattern(r); pattern != "" {
			span.SetName(fmt.Sprintf("%s %s", r.Method, pattern))
			span.SetAttributes(attribute.String("http.route", pattern))
		}
		span.SetAttributes(
			attribute.Int("http.response.status_code", ww.Status()),
			attribute.Int("http.response.body.size", ww.BytesWritten()),
		)
		if ww.Status() >= 500 {
			span.SetStatus(codes.Error, http.StatusText(ww.Status()))
		}
	})
}

// Security adds security headers
func (m *Middleware) Security(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		if m.config.IsProduction() {
			w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		next.ServeHTTP(w, r)
	})
}

// compressibleTypes are the response types worth compressing
var compressibleTypes = []string{
	"application/json",
	"application/x-yaml",
	"text/csv",
	"text/plain",
}

// Compress negotiates brotli or gzip for text responses. A level of zero or
// less disables compression.
func (m *Middleware) Compress(level int) func(http.Handler) http.Handler {
	if level <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	compressor := chimiddleware.NewCompressor(level, compressibleTypes...)
	compressor.SetEncoder("br", func(w io.Writer, level int) io.Writer {
		return brotli.NewWriterLevel(w, level)
	})
	return compressor.Handler
}

// isOriginAllowed checks if origin is in allowed list
func (m *Middleware) isOriginAllowed(origin string) bool {
	if m.config.IsDevelopment() {
		return true
	}

	for _, allowed := range m.config.Server.AllowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		return rctx.RoutePattern()
	}
	return ""
}

func writeError(w http.ResponseWriter, r *http.Request, appErr *errors.AppError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.StatusCode())
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"success":    false,
		"error":      appErr.Code,
		"message":    appErr.Message,
		"request_id": GetRequestID(r.Context()),
	})
}
