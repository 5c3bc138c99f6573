package bootstrap

import (
	"time"

	"github.com/kbukum/nativefetch/logger"
)

const defaultGracefulTimeout = 15 * time.Second

// Option adjusts how NewApp builds the App. It does not depend on the
// config type, so one option works for every command.
type Option func(*settings)

type settings struct {
	log             *logger.Logger
	gracefulTimeout time.Duration
}

func newSettings(opts []Option) settings {
	s := settings{gracefulTimeout: defaultGracefulTimeout}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// WithLogger replaces the logger NewApp would build from the Logging section.
func WithLogger(l *logger.Logger) Option {
	return func(s *settings) { s.log = l }
}

// WithGracefulTimeout bounds how long shutdown may take. Non-positive
// values keep the default.
func WithGracefulTimeout(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.gracefulTimeout = d
		}
	}
}
