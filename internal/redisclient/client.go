package redisclient

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"agent-order-service/internal/models"

	"github.com/go-redis/redis/v8"
)

const (
	pricingMatrixKey  = "pricing:matrix"
	pricingVersionKey = "pricing:version"
)

type Client struct {
	rdb      *redis.Client
	cacheTTL time.Duration
}

// NewClient creates a new Redis client
func NewClient(addr, password string, db int, cacheTTL time.Duration) (*Client, error) {
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

	return &Client{rdb: rdb, cacheTTL: cacheTTL}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// GetPricingMatrix retrieves the cached pricing matrix, or nil on miss
func (c *Client) GetPricingMatrix(ctx context.Context) (*models.PricingMatrix, error) {
	data, err := c.rdb.Get(ctx, pricingMatrixKey).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var matrix models.PricingMatrix
	if err := json.Unmarshal(data, &matrix); err != nil {
		return nil, fmt.Errorf("failed to decode cached pricing matrix: %w", err)
	}
	return &matrix, nil
}

// SetPricingMatrix caches the pricing matrix with the configured TTL
func (c *Client) SetPricingMatrix(ctx context.Context, matrix *models.PricingMatrix) error {
	data, err := json.Marshal(matrix)
	if err != nil {
		return fmt.Errorf("failed to encode pricing matrix: %w", err)
	}
	return c.rdb.Set(ctx, pricingMatrixKey, data, c.cacheTTL).Err()
}

// InvalidatePricing drops the cached matrix and bumps the pricing
// version so per-quote cache keys roll over
func (c *Client) InvalidatePricing(ctx context.Context) error {
	pipe := c.rdb.Pipeline()
	pipe.Del(ctx, pricingMatrixKey)
	pipe.Incr(ctx, pricingVersionKey)

	_, err := pipe.Exec(ctx)
	return err
}

// PricingVersion returns the current pricing cache generation. A missing
// key counts as generation zero.
func (c *Client) PricingVersion(ctx context.Context) (int64, error) {
	version, err := c.rdb.Get(ctx, pricingVersionKey).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return version, err
}

// GetResolvedPrice retrieves a cached quote for one resolution input
// under the given pricing generation; ok is false on miss
func (c *Client) GetResolvedPrice(ctx context.Context, version int64, productID, agentGroupID int64, qty int, promotionID *int64) (string, bool, error) {
	price, err := c.rdb.Get(ctx, quoteKey(version, productID, agentGroupID, qty, promotionID)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return price, true, nil
}

// SetResolvedPrice caches a quote under the given pricing generation
func (c *Client) SetResolvedPrice(ctx context.Context, version int64, productID, agentGroupID int64, qty int, promotionID *int64, price string) error {
	return c.rdb.Set(ctx, quoteKey(version, productID, agentGroupID, qty, promotionID), price, c.cacheTTL).Err()
}

func quoteKey(version, productID, agentGroupID int64, qty int, promotionID *int64) string {
	promo := int64(0)
	if promotionID != nil {
		promo = *promotionID
	}
	return fmt.Sprintf("quote:%d:%d:%d:%d:%d", version, productID, agentGroupID, qty, promo)
}
