package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Rengoky/Base-for-films/internal/httpapi/models"

	"github.com/redis/go-redis/v9"
)

// TitleCache keeps a hot copy of title records in redis; postgres stays the
// source of truth. A nil *TitleCache is a valid no-op cache.
type TitleCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewTitleCache(addr, password string, ttl time.Duration) (*TitleCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &TitleCache{client: rdb, ttl: ttl}, nil
}

func titleKey(id int64) string {
	return fmt.Sprintf("title:%d", id)
}

// Get returns the cached title, or (nil, nil) on a miss.
func (c *TitleCache) Get(ctx context.Context, id int64) (*models.Title, error) {
	if c == nil || c.client == nil {
		return nil, nil
	}

	data, err := c.client.Get(ctx, titleKey(id)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var title models.Title
	if err := json.Unmarshal(data, &title); err != nil {
		return nil, err
	}
	return &title, nil
}

func (c *TitleCache) Set(ctx context.Context, title *models.Title) error {
	if c == nil || c.client == nil {
		return nil
	}

	data, err := json.Marshal(title)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, titleKey(title.ID), data, c.ttl).Err()
}

// Invalidate drops the cached entry after any write touching the title.
func (c *TitleCache) Invalidate(ctx context.Context, id int64) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Del(ctx, titleKey(id)).Err()
}

func (c *TitleCache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}
