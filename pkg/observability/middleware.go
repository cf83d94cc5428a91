package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsMiddleware records RequestsTotal and RequestDuration for every
// request and keeps StreamingConnections up to date while a client holds
// an SSE stream open.
func MetricsMiddleware(next http.Handler) http.Handler {
	return promhttp.InstrumentHandlerCounter(RequestsTotal,
		promhttp.InstrumentHandlerDuration(RequestDuration,
			trackStreams(next)))
}

// trackStreams counts server-to-client streams, which MCP clients open
// with a GET accepting text/event-stream.
func trackStreams(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet && r.Header.Get("Accept") == "text/event-stream" {
			StreamingConnections.Inc()
			defer StreamingConnections.Dec()
		}
		next.ServeHTTP(w, r)
	})
}
