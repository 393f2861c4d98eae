package redisstore

import "github.com/okian/scorebook/pkg/logger"

// Option applies a configuration option to the Store.
type Option func(*Store)

// WithPrefix sets the key and channel prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// WithLogger sets the store logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}
