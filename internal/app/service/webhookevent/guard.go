package webhookevent

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const guardTTL = 24 * time.Hour

// Guard is the redis fast path in front of the database idempotency check:
// it short-circuits webhook retries without a round trip to postgres. Redis
// being unavailable never blocks a delivery; the unique index on
// payment_transaction remains the authoritative guard.
type Guard struct {
	rdb *redis.Client
}

func NewGuard(rdb *redis.Client) *Guard {
	return &Guard{rdb: rdb}
}

func guardKey(gateway, transactionID string) string {
	return fmt.Sprintf("webhook:seen:%s:%s", gateway, transactionID)
}

// CheckAndMark marks the transaction as seen and reports whether this is the
// first sighting. Errors are treated as first sightings.
func (g *Guard) CheckAndMark(ctx context.Context, gateway, transactionID string) bool {
	ok, err := g.rdb.SetNX(ctx, guardKey(gateway, transactionID), 1, guardTTL).Result()
	if err != nil {
		return true
	}
	return ok
}

// Release removes the mark so a failed handling attempt can be redelivered.
func (g *Guard) Release(ctx context.Context, gateway, transactionID string) {
	g.rdb.Del(ctx, guardKey(gateway, transactionID))
}
