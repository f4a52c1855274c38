package middleware

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

// Stack returns the middleware chain every request passes through: client ip,
// a request scoped logger carrying a request id, one access line per request
// and panic recovery.
func Stack(log zerolog.Logger) []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		chimw.RealIP,
		hlog.NewHandler(log),
		hlog.RequestIDHandler("request_id", "X-Request-Id"),
		hlog.RemoteAddrHandler("ip"),
		hlog.UserAgentHandler("user_agent"),
		chimw.RequestLogger(accessFormatter{}),
		chimw.Recoverer,
	}
}

// accessFormatter feeds chi's request logger into the zerolog logger that
// hlog stored on the request.
type accessFormatter struct{}

func (accessFormatter) NewLogEntry(r *http.Request) chimw.LogEntry {
	return &accessEntry{log: hlog.FromRequest(r), method: r.Method, path: r.URL.Path}
}

type accessEntry struct {
	log    *zerolog.Logger
	method string
	path   string
}

func (e *accessEntry) Write(status, bytes int, _ http.Header, elapsed time.Duration, _ interface{}) {
	var ev *zerolog.Event
	switch {
	case status >= 500:
		ev = e.log.Error()
	case status >= 400:
		ev = e.log.Warn()
	default:
		ev = e.log.Info()
	}

	ev.
		Str("method", e.method).
		Str("path", e.path).
		Int("status", status).
		Int("size", bytes).
		Dur("latency", elapsed).
		Msg("API")
}

func (e *accessEntry) Panic(v interface{}, stack []byte) {
	e.log.Error().
		Interface("panic", v).
		Bytes("stack", stack).
		Msg("recovered from panic")
}
