package logging

import (
	"strings"

	"log/slog"
)

// Encoding selects how log records are rendered.
type Encoding string

const (
	EncodingJSON   Encoding = "json"
	EncodingLogfmt Encoding = "logfmt"
	EncodingPlain  Encoding = "plain"
)

// LevelUnknown is returned by LevelFromString when the input doesn't match
// any known level name.
const LevelUnknown = slog.Level(99)

// LevelFromString maps a config/flag string onto a slog.Level, defaulting to
// LevelUnknown (rejected by Init) for anything unrecognized.
func LevelFromString(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case debugLevel:
		return LevelDebug
	case infoLevel, "":
		return LevelInfo
	case warnLevel, "warning":
		return LevelWarn
	case errorLevel:
		return LevelError
	case fatalLevel:
		return LevelFatal
	case panicLevel:
		return LevelPanic
	default:
		return LevelUnknown
	}
}
