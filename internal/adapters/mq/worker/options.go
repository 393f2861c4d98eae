package worker

import (
	"github.com/okian/scorebook/pkg/logger"
)

// Option applies a configuration option to the InMemoryWorker.
type Option func(*InMemoryWorker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *InMemoryWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(l logger.Logger) Option {
	return func(w *InMemoryWorker) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithArchive stores every processed result.
func WithArchive(a Archiver) Option {
	return func(w *InMemoryWorker) {
		if a != nil {
			w.archive = a
		}
	}
}

// WithNotifier announces every processed result.
func WithNotifier(n Notifier) Option {
	return func(w *InMemoryWorker) {
		if n != nil {
			w.notifier = n
		}
	}
}
