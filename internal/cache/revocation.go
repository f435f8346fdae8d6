package cache

import (
	"context"
	"time"
)

// RevocationStore keeps revoked token ids in Redis until they would expire.
type RevocationStore struct{}

// NewRevocationStore returns a RevocationStore backed by the package client.
func NewRevocationStore() *RevocationStore {
	return &RevocationStore{}
}

// Revoke records jti for ttl. It is a no-op without Redis.
func (RevocationStore) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if client == nil {
		return nil
	}
	return client.Set(ctx, RevokedKey(jti), "1", ttl).Err()
}

// IsRevoked reports whether jti was revoked.
func (RevocationStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if client == nil {
		return false, nil
	}
	n, err := client.Exists(ctx, RevokedKey(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
