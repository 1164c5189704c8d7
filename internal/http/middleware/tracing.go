package middleware

import (
	"context"
	"net/http"

	"go.opencensus.io/plugin/ochttp"
	"go.opencensus.io/trace"
)

// SessionHeader lets clients name the editor session on requests that carry
// it in neither the query nor a path
const SessionHeader = "X-Editor-Session"

// TracingMiddleware adds OpenCensus tracing to HTTP requests
func TracingMiddleware(next http.Handler) http.Handler {
	annotated := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if span := trace.FromContext(ctx); span != nil {
			span.AddAttributes(
				trace.StringAttribute("http.host", r.Host),
				trace.StringAttribute("http.user_agent", r.UserAgent()),
				trace.StringAttribute("http.method", r.Method),
				trace.StringAttribute("http.path", r.URL.Path),
			)

			if requestID := r.Header.Get("X-Request-ID"); requestID != "" {
				span.AddAttributes(trace.StringAttribute("http.request_id", requestID))
			}
			if sessionID := editorSession(r); sessionID != "" {
				span.AddAttributes(trace.StringAttribute("editor.session_id", sessionID))
			}
		}

		rw := &traceResponseWriter{
			ResponseWriter: w,
			ctx:            ctx,
		}
		next.ServeHTTP(rw, r)
	})

	return &ochttp.Handler{
		Handler: annotated,
		FormatSpanName: func(r *http.Request) string {
			return r.Method + " " + r.URL.Path
		},
		IsPublicEndpoint: true,
	}
}

func editorSession(r *http.Request) string {
	if id := r.Header.Get(SessionHeader); id != "" {
		return id
	}
	return r.URL.Query().Get("session_id")
}

// traceResponseWriter captures the status code for tracing
type traceResponseWriter struct {
	http.ResponseWriter
	ctx        context.Context
	statusCode int
}

func (trw *traceResponseWriter) WriteHeader(code int) {
	trw.statusCode = code

	if span := trace.FromContext(trw.ctx); span != nil {
		span.AddAttributes(trace.Int64Attribute("http.status_code", int64(code)))

		// rejected edits are expected traffic; only server faults mark the span
		if code >= 500 {
			span.SetStatus(trace.Status{
				Code:    trace.StatusCodeUnknown,
				Message: http.StatusText(code),
			})
		}
	}

	trw.ResponseWriter.WriteHeader(code)
}

var _ http.ResponseWriter = (*traceResponseWriter)(nil)
