package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/orgball2608/insta-feed-archiver/pkg/logger"
)

type Config struct {
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
	// Constant switches from exponential to fixed-interval waits between
	// attempts, using InitialInterval as the interval.
	Constant bool
}

func DefaultConfig() Config {
	return Config{
		MaxRetries:      3,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     5 * time.Second,
		Multiplier:      1.5,
	}
}

// ConstantConfig retries with a fixed wait between attempts. attempts is the
// total number of tries, including the first one.
func ConstantConfig(attempts uint64, interval time.Duration) Config {
	if attempts == 0 {
		attempts = 1
	}
	return Config{
		MaxRetries:      attempts - 1,
		InitialInterval: interval,
		Constant:        true,
	}
}

func Do(ctx context.Context, log logger.Logger, operationName string, operation func() error, cfg Config) error {
	var bo backoff.BackOff
	if cfg.Constant {
		bo = backoff.NewConstantBackOff(cfg.InitialInterval)
	} else {
		ebo := backoff.NewExponentialBackOff()
		ebo.InitialInterval = cfg.InitialInterval
		ebo.MaxInterval = cfg.MaxInterval
		ebo.Multiplier = cfg.Multiplier
		ebo.Reset()
		bo = ebo
	}

	retryable := backoff.WithMaxRetries(bo, cfg.MaxRetries)
	retryableWithContext := backoff.WithContext(retryable, ctx)

	notify := func(err error, t time.Duration) {
		log.Warn(
			"Operation failed, retrying...",
			"operation", operationName,
			"error", err,
			"next_attempt_in", t.Round(time.Millisecond).String(),
		)
	}

	return backoff.RetryNotify(operation, retryableWithContext, notify)
}
