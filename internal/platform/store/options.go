package store

import "prsentinel/internal/platform/logger"

// Option adjusts the Store before backends open
type Option func(*Store)

// WithLogger replaces the store logger, pg statement logs go through it
func WithLogger(log logger.Logger) Option {
	return func(s *Store) { s.Log = log }
}
