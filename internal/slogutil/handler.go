package slogutil

import (
	"context"
	"log/slog"
)

// Hook is called when a slog record is handled.
type Hook interface {
	Run(ctx context.Context, r *slog.Record)
}

// Handler is a slog.Handler with hooks support. The built-in hook copies
// attributes carried by the context (see WithAttrs) onto every record.
type Handler struct {
	handler slog.Handler
	hooks   []Hook
}

// WrapHandler creates a Handler around h.
func WrapHandler(h slog.Handler) Handler {
	return Handler{
		handler: h,
		hooks: []Hook{
			dataHook{},
		},
	}
}

func (h Handler) Enabled(ctx context.Context, l slog.Level) bool {
	return h.handler.Enabled(ctx, l)
}

func (h Handler) Handle(ctx context.Context, r slog.Record) error {
	if len(h.hooks) > 0 {
		r = r.Clone()
		for _, hook := range h.hooks {
			hook.Run(ctx, &r)
		}
	}
	return h.handler.Handle(ctx, r)
}

func (h Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return Handler{
		hooks:   h.hooks,
		handler: h.handler.WithAttrs(attrs),
	}
}

func (h Handler) WithGroup(name string) slog.Handler {
	return Handler{
		hooks:   h.hooks,
		handler: h.handler.WithGroup(name),
	}
}

// WithHooks returns a Handler with hooks appended.
func (h Handler) WithHooks(hooks ...Hook) Handler {
	if len(hooks) == 0 {
		return h
	}
	merged := make([]Hook, 0, len(h.hooks)+len(hooks))
	merged = append(merged, h.hooks...)
	merged = append(merged, hooks...)
	return Handler{
		hooks:   merged,
		handler: h.handler,
	}
}
