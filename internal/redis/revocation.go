package redisx

import (
	"context"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// NewClient returns a client for addr. Connection errors surface on first use.
func NewClient(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: addr})
}

// Revocations records logged-out token ids until their natural expiry.
type Revocations struct{ client *redis.Client }

func NewRevocations(client *redis.Client) *Revocations {
	return &Revocations{client: client}
}

func (r *Revocations) key(tokenID string) string { return fmt.Sprintf("revoked_token:%s", tokenID) }

// Revoke marks tokenID as unusable for ttl. A non-positive ttl is a no-op since
// the token has already expired.
func (r *Revocations) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 || tokenID == "" {
		return nil
	}
	return r.client.Set(ctx, r.key(tokenID), 1, ttl).Err()
}

func (r *Revocations) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if tokenID == "" {
		return false, nil
	}
	n, err := r.client.Exists(ctx, r.key(tokenID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *Revocations) Close() { _ = r.client.Close() }
