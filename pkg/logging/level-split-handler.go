package logging

import (
	"context"
	"log/slog"
)

// levelSplitHandler routes records at or above sepLevel to errs and
// everything below to standard. sepLevel is caller-set (see
// WithErrorSepLevel) rather than fixed at LevelError, so Warn-level events
// such as ipfixd's transmit-backpressure warnings can be split onto the
// error output as well.
type levelSplitHandler struct {
	standard slog.Handler
	sepLevel slog.Level
	errs     slog.Handler
}

func newLevelSplitHandler(std, errs slog.Handler, sepLevel slog.Level) *levelSplitHandler {
	return &levelSplitHandler{
		standard: std,
		sepLevel: sepLevel,
		errs:     errs,
	}
}

func (l *levelSplitHandler) Enabled(ctx context.Context, level slog.Level) bool {
	if level < l.sepLevel {
		return l.standard.Enabled(ctx, level)
	}
	return l.errs.Enabled(ctx, level)
}

func (l *levelSplitHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level < l.sepLevel {
		return l.standard.Handle(ctx, r)
	}
	return l.errs.Handle(ctx, r)
}

func (l *levelSplitHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelSplitHandler{
		standard: l.standard.WithAttrs(attrs),
		sepLevel: l.sepLevel,
		errs:     l.errs.WithAttrs(attrs),
	}
}

func (l *levelSplitHandler) WithGroup(group string) slog.Handler {
	return &levelSplitHandler{
		standard: l.standard.WithGroup(group),
		sepLevel: l.sepLevel,
		errs:     l.errs.WithGroup(group),
	}
}
