package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const dedupTTL = 24 * time.Hour

// DedupChecker provides webhook idempotency checks backed by Redis. Payment
// providers redeliver webhooks on timeout, so a (payment, status) pair may
// arrive more than once.
// Key format: webhook:<external_payment_id>:<status>
type DedupChecker struct {
	client *redis.Client
}

// NewDedupChecker creates a DedupChecker wrapping the given Redis client.
func NewDedupChecker(client *redis.Client) *DedupChecker {
	return &DedupChecker{client: client}
}

// IsDuplicate reports whether this exact confirmation has already been applied.
func (d *DedupChecker) IsDuplicate(ctx context.Context, externalID, status string) (bool, error) {
	n, err := d.client.Exists(ctx, d.key(externalID, status)).Result()
	if err != nil {
		return false, fmt.Errorf("dedup check: %w", err)
	}
	return n > 0, nil
}

// Mark records that this confirmation has been applied (expires after dedupTTL).
func (d *DedupChecker) Mark(ctx context.Context, externalID, status string) error {
	return d.client.Set(ctx, d.key(externalID, status), "1", dedupTTL).Err()
}

func (d *DedupChecker) key(externalID, status string) string {
	return fmt.Sprintf("webhook:%s:%s", externalID, status)
}
