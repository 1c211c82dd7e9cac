// Package audit provides structured logging for execution audit.
package audit

import "log/slog"

// Log writes an audit event with structured key/value attributes.
// args follow slog conventions: alternating keys and values.
func Log(event string, args ...any) {
	slog.With(args...).Info("[AUDIT] " + event)
}
