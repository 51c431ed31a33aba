package deviceio

import (
	"errors"
	"time"

	"github.com/openastro/go-deviceio/logger"
)

const (
	// DefaultTimeout is the send/receive timeout applied to a handle at
	// open time. It is fixed for the lifetime of the handle.
	DefaultTimeout = 5 * time.Second

	// DefaultRetryPause is the pause taken between transient-timeout
	// retries of a blocking read, to avoid busy-looping on an idle link.
	DefaultRetryPause = 500 * time.Millisecond

	// MaxFormatLen is the capacity cap for Printf and Scanf buffers.
	// Formatted content beyond the cap is truncated, never an error.
	MaxFormatLen = 1024
)

// connConfig holds the per-handle settings resolved from open options.
type connConfig struct {
	timeout    time.Duration
	retryPause time.Duration
	logger     logger.Logger
	tracer     Tracer
}

func newConnConfig(opts []Option) (*connConfig, error) {
	cfg := &connConfig{
		timeout:    DefaultTimeout,
		retryPause: DefaultRetryPause,
		logger:     logger.GetLogger(),
	}

	for _, opt := range opts {
		if err := opt.apply(cfg); err != nil {
			return nil, err
		}
	}

	// The default trace sink follows whichever logger was configured.
	if cfg.tracer == nil {
		cfg.tracer = loggerTracer{l: cfg.logger}
	}

	return cfg, nil
}

// Option is a functional option applied when opening a handle.
type Option interface {
	apply(*connConfig) error
}

type optionFunc func(*connConfig) error

func (f optionFunc) apply(cfg *connConfig) error { return f(cfg) }

// WithTimeout sets the send/receive timeout for the handle. The timeout
// is fixed at open time; there is no per-call override.
func WithTimeout(d time.Duration) Option {
	return optionFunc(func(cfg *connConfig) error {
		if d <= 0 {
			return errors.New("deviceio: timeout must be positive")
		}
		cfg.timeout = d

		return nil
	})
}

// WithRetryPause sets the pause between transient-timeout read retries.
func WithRetryPause(d time.Duration) Option {
	return optionFunc(func(cfg *connConfig) error {
		if d <= 0 {
			return errors.New("deviceio: retry pause must be positive")
		}
		cfg.retryPause = d

		return nil
	})
}

// WithLogger sets the diagnostic logger for the handle.
func WithLogger(l logger.Logger) Option {
	return optionFunc(func(cfg *connConfig) error {
		if l == nil {
			return errors.New("deviceio: logger must not be nil")
		}
		cfg.logger = l

		return nil
	})
}

// WithTracer sets the protocol trace sink for the handle. By default
// traces are forwarded to the logger at debug level.
func WithTracer(t Tracer) Option {
	return optionFunc(func(cfg *connConfig) error {
		if t == nil {
			return errors.New("deviceio: tracer must not be nil")
		}
		cfg.tracer = t

		return nil
	})
}
