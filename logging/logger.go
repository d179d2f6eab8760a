package logging

import (
	"io"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitLogger configures the global zerolog logger to write to out.
// LOG_LEVEL selects the level (default info) and LOG_FORMAT=json switches
// from the console writer to plain JSON lines.
func InitLogger(out io.Writer) {
	zerolog.TimeFieldFormat = time.RFC3339

	level := zerolog.InfoLevel
	if envLevel := os.Getenv("LOG_LEVEL"); envLevel != "" {
		if parsedLevel, err := zerolog.ParseLevel(envLevel); err == nil {
			level = parsedLevel
		}
	}
	zerolog.SetGlobalLevel(level)

	if os.Getenv("LOG_FORMAT") == "json" {
		log.Logger = zerolog.New(out).With().Timestamp().Logger()
		return
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339})
}

func Info() *zerolog.Event {
	return log.Info()
}

func Debug() *zerolog.Event {
	return log.Debug()
}

func Error() *zerolog.Event {
	return log.Error()
}

func Warn() *zerolog.Event {
	return log.Warn()
}

func Fatal() *zerolog.Event {
	return log.Fatal()
}

// Indexer returns a child logger tagged with the indexer label.
func Indexer(label string) zerolog.Logger {
	return log.With().Str("indexer", label).Logger()
}

// InfoWithRequest returns an info event carrying method, url and client IP.
func InfoWithRequest(r *http.Request) *zerolog.Event {
	return withRequest(log.Info(), r)
}

// ErrorWithRequest returns an error event carrying method, url and client IP.
func ErrorWithRequest(r *http.Request) *zerolog.Event {
	return withRequest(log.Error(), r)
}

// DebugWithRequest returns a debug event carrying method, url and client IP.
func DebugWithRequest(r *http.Request) *zerolog.Event {
	return withRequest(log.Debug(), r)
}

// WarnWithRequest returns a warn event carrying method, url and client IP.
func WarnWithRequest(r *http.Request) *zerolog.Event {
	return withRequest(log.Warn(), r)
}

func withRequest(e *zerolog.Event, r *http.Request) *zerolog.Event {
	return e.
		Str("method", r.Method).
		Str("url", r.URL.String()).
		Str("client_ip", getClientIP(r))
}

// getClientIP prefers proxy headers over RemoteAddr.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}
