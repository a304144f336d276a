package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers client-supplied request keys so that a retried
// write returns the original result instead of repeating the side effect.
type IdempotencyStore interface {
	// Claim reserves key for ttl. When the key is already held it returns
	// claimed=false together with the stored result ("" while the first
	// request is still running).
	Claim(ctx context.Context, key string, ttl time.Duration) (result string, claimed bool, err error)

	// Complete records the result for a claimed key
	Complete(ctx context.Context, key, result string, ttl time.Duration) error

	// Release drops a claim so the request can be retried
	Release(ctx context.Context, key string) error

	// Close releases resources held by the store
	Close() error
}

// IdempotencyConfig holds configuration for idempotency handling
type IdempotencyConfig struct {
	// TTL is how long a key is remembered. Default: 24 hours
	TTL time.Duration
	// Enabled toggles key checking. Default: true
	Enabled bool
}

// DefaultIdempotencyConfig returns the default idempotency configuration
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}
