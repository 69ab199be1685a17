package htmd

import "log/slog"

// Option configures an Engine.
type Option func(*Engine)

// WithVisitor attaches a visitor to every HTML document the engine converts.
// The engine converts sequentially, so one visitor serves one Engine; use a
// separate Engine per concurrent conversion.
func WithVisitor(v Visitor) Option {
	return func(e *Engine) {
		e.visitor = v
	}
}

// WithKeepDataURIs configures whether to keep full data URIs in output
// (default: false, which truncates them to data:mime/type;base64...).
func WithKeepDataURIs(keep bool) Option {
	return func(e *Engine) {
		e.keepDataURIs = keep
	}
}

// WithLogger sets the logger for converter diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}
