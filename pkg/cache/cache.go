package cache

import (
	"context"
	"time"
)

// Service stores keyed snapshots with a shared expiration.
type Service interface {
	// MSet writes every value or none of them.
	MSet(ctx context.Context, values map[string]interface{}, expiration time.Duration) error
	Close() error
}
