package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRunID      = "run_id"
	KeyPage       = "page"
	KeyURL        = "url"
	KeySection    = "section"
	KeyProperty   = "property"
	KeyInherit    = "inherit"
	KeyState      = "state"
	KeyCount      = "count"
	KeyPath       = "path"
	KeyDurationMS = "duration_ms"
	KeyAttempt    = "attempt"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RunID(id string) slog.Attr        { return slog.String(KeyRunID, id) }
func Page(p string) slog.Attr          { return slog.String(KeyPage, p) }
func URL(u string) slog.Attr           { return slog.String(KeyURL, u) }
func Section(s string) slog.Attr       { return slog.String(KeySection, s) }
func Property(name string) slog.Attr   { return slog.String(KeyProperty, name) }
func Inherit(link string) slog.Attr    { return slog.String(KeyInherit, link) }
func State(s string) slog.Attr         { return slog.String(KeyState, s) }
func Count(n int) slog.Attr            { return slog.Int(KeyCount, n) }
func Path(p string) slog.Attr          { return slog.String(KeyPath, p) }
func DurationMS(ms float64) slog.Attr  { return slog.Float64(KeyDurationMS, ms) }
func Attempt(n int) slog.Attr          { return slog.Int(KeyAttempt, n) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}

// HTTP request fields.
func Method(m string) slog.Attr        { return slog.String("method", m) }
func Status(code int) slog.Attr        { return slog.Int("status", code) }
func UserAgent(ua string) slog.Attr    { return slog.String("user_agent", ua) }
func RemoteAddr(addr string) slog.Attr { return slog.String("remote_addr", addr) }
