package auth

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenBlacklist stores revoked tokens so they can be rejected before their
// natural expiry (logout, account deactivation).
type TokenBlacklist interface {
	// Revoke blacklists a token by its JTI. ttl should be the remaining
	// lifetime of the token.
	Revoke(ctx context.Context, jti string, ttl time.Duration) error

	// IsRevoked reports whether a JTI has been blacklisted.
	IsRevoked(ctx context.Context, jti string) (bool, error)

	// RevokeAllForUser invalidates every token issued to a user before now.
	RevokeAllForUser(ctx context.Context, userID string, ttl time.Duration) error

	// IsRevokedForUser reports whether a token issued at the given time has
	// been swept up by a RevokeAllForUser call.
	IsRevokedForUser(ctx context.Context, userID string, issuedAt time.Time) (bool, error)
}

const blacklistKeyPrefix = "auth:revoked:"

// RedisTokenBlacklist implements TokenBlacklist on top of Redis. Entries
// carry a TTL so the blacklist never outlives the tokens it rejects.
type RedisTokenBlacklist struct {
	client *redis.Client
}

// NewRedisTokenBlacklist creates a blacklist backed by an existing Redis
// client.
func NewRedisTokenBlacklist(client *redis.Client) *RedisTokenBlacklist {
	return &RedisTokenBlacklist{client: client}
}

func jtiKey(jti string) string {
	return blacklistKeyPrefix + "jti:" + jti
}

func userKey(userID string) string {
	return blacklistKeyPrefix + "user:" + userID
}

// Revoke blacklists a token's JTI
func (b *RedisTokenBlacklist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil // already expired, nothing to revoke
	}
	if err := b.client.Set(ctx, jtiKey(jti), "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// IsRevoked checks whether a JTI has been blacklisted
func (b *RedisTokenBlacklist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	exists, err := b.client.Exists(ctx, jtiKey(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token blacklist: %w", err)
	}
	return exists > 0, nil
}

// RevokeAllForUser records an invalidation timestamp; tokens issued at or
// before it are rejected.
func (b *RedisTokenBlacklist) RevokeAllForUser(ctx context.Context, userID string, ttl time.Duration) error {
	if err := b.client.Set(ctx, userKey(userID), time.Now().Unix(), ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke user tokens: %w", err)
	}
	return nil
}

// IsRevokedForUser checks a token's issue time against the user's
// invalidation timestamp.
func (b *RedisTokenBlacklist) IsRevokedForUser(ctx context.Context, userID string, issuedAt time.Time) (bool, error) {
	val, err := b.client.Get(ctx, userKey(userID)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check user token revocation: %w", err)
	}

	revokedAt, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return false, fmt.Errorf("failed to parse revocation timestamp: %w", err)
	}
	return issuedAt.Unix() <= revokedAt, nil
}

var _ TokenBlacklist = (*RedisTokenBlacklist)(nil)

// InMemoryTokenBlacklist is a single-process implementation used in tests
// and when Redis is disabled.
type InMemoryTokenBlacklist struct {
	mu        sync.RWMutex
	revoked   map[string]time.Time // jti -> entry expiry
	userSweep map[string]time.Time // userID -> revocation time
}

// NewInMemoryTokenBlacklist creates an empty in-memory blacklist
func NewInMemoryTokenBlacklist() *InMemoryTokenBlacklist {
	return &InMemoryTokenBlacklist{
		revoked:   make(map[string]time.Time),
		userSweep: make(map[string]time.Time),
	}
}

// Revoke blacklists a JTI until its ttl elapses
func (b *InMemoryTokenBlacklist) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.revoked[jti] = time.Now().Add(ttl)
	return nil
}

// IsRevoked checks the JTI blacklist, dropping expired entries
func (b *InMemoryTokenBlacklist) IsRevoked(_ context.Context, jti string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	expiry, ok := b.revoked[jti]
	if !ok {
		return false, nil
	}
	if time.Now().After(expiry) {
		delete(b.revoked, jti)
		return false, nil
	}
	return true, nil
}

// RevokeAllForUser records the current time as the user's revocation point
func (b *InMemoryTokenBlacklist) RevokeAllForUser(_ context.Context, userID string, _ time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.userSweep[userID] = time.Now()
	return nil
}

// IsRevokedForUser checks a token's issue time against the user's
// revocation point.
func (b *InMemoryTokenBlacklist) IsRevokedForUser(_ context.Context, userID string, issuedAt time.Time) (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	revokedAt, ok := b.userSweep[userID]
	if !ok {
		return false, nil
	}
	return issuedAt.UnixNano() <= revokedAt.UnixNano(), nil
}

var _ TokenBlacklist = (*InMemoryTokenBlacklist)(nil)
