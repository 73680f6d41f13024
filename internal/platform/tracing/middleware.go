package tracing

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
)

// EchoMiddleware extracts W3C tracecontext from the inbound request's
// headers and starts a server span as its child, so every outbound RPC the
// handler makes (via otelgrpc) carries the caller's trace id onward.
func EchoMiddleware(tracerName string) echo.MiddlewareFunc {
	tracer := otel.Tracer(tracerName)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			ctx := ExtractHTTP(req.Context(), propagationCarrier(req.Header))
			ctx, span := tracer.Start(ctx, req.Method+" "+c.Path())
			defer span.End()
			c.SetRequest(req.WithContext(ctx))
			return next(c)
		}
	}
}

type propagationCarrier http.Header

func (c propagationCarrier) Get(key string) string { return http.Header(c).Get(key) }
func (c propagationCarrier) Set(key, value string) { http.Header(c).Set(key, value) }
func (c propagationCarrier) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	return keys
}
