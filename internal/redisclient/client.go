package redisclient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ticketing-service/internal/models"

	"github.com/go-redis/redis/v8"
)

type Client struct {
	rdb *redis.Client
}

// NewClient creates a new Redis client
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// SaveReference caches a payment reference against its order id. The TTL
// matches the order's advisory payment window; the database stays
// authoritative after expiry.
func (c *Client) SaveReference(ctx context.Context, reference string, orderID int64, ttl time.Duration) error {
	return c.rdb.Set(ctx, referenceKey(reference), orderID, ttl).Err()
}

// LookupReference resolves a cached payment reference to an order id.
// Returns models.ErrNotFound on a cache miss.
func (c *Client) LookupReference(ctx context.Context, reference string) (int64, error) {
	orderID, err := c.rdb.Get(ctx, referenceKey(reference)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, models.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("reference lookup failed: %w", err)
	}
	return orderID, nil
}

func referenceKey(reference string) string {
	return "payment-ref:" + reference
}
