package model

import (
	"io"
	"log/slog"
)

type options struct {
	logger *slog.Logger
}

// Option configures a Model.
type Option func(*options)

// WithLogger sets the logger used while building the model.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func defaultOptions() options {
	return options{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}
