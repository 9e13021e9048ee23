// Package sysutil holds small process-level helpers used while bootstrapping
// the server: log level wiring and environment value interpretation.
package sysutil

import (
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// SetLogLevel sets the global zerolog level from its configured name.
// Any name zerolog knows (trace, debug, info, warn, error, fatal, panic,
// disabled) is accepted, plus "warning" as an alias for warn. Empty and
// unknown names keep the info default.
func SetLogLevel(name string) {
	s := strings.ToLower(strings.TrimSpace(name))
	if s == "warning" {
		s = "warn"
	}
	lvl, err := zerolog.ParseLevel(s)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}

// IsTruthy reports whether an environment value means "enabled". It accepts
// the strconv.ParseBool forms plus yes, y and on, case-insensitively.
func IsTruthy(v string) bool {
	s := strings.ToLower(strings.TrimSpace(v))
	switch s {
	case "yes", "y", "on":
		return true
	}
	b, err := strconv.ParseBool(s)
	return err == nil && b
}

// FirstNonEmpty returns the first value that is not blank, or "". Values
// containing only whitespace count as blank; the winner is returned
// unmodified.
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
