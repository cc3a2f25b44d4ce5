// Package cache 文章详情与标签云的 redis 旁路缓存。nil *Cache 上的方法均为空操作。
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/gin-blog/config"
	"github.com/d60-Lab/gin-blog/internal/model"
	"github.com/d60-Lab/gin-blog/pkg/logger"
)

const tagsKey = "tags:all"

type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func New(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Cache{client: client, ttl: ttl}
}

// NewRedisClient 按配置连接 redis；未启用时返回 nil
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Addr, err)
	}
	return client, nil
}

func postKey(id string) string { return fmt.Sprintf("post:%s", id) }

// postGenKey 每次失效自增，回填前比对，防止旧数据在并发更新后写回
func postGenKey(id string) string { return fmt.Sprintf("post:%s:gen", id) }

func (c *Cache) GetPost(ctx context.Context, id string) (*model.Post, bool) {
	var p model.Post
	if !c.get(ctx, postKey(id), &p) {
		return nil, false
	}
	return &p, true
}

func (c *Cache) SetPost(ctx context.Context, p *model.Post) {
	c.set(ctx, postKey(p.ID), p)
}

// PostVersion 读库之前调用，结果交给 SetPostIfVersion
func (c *Cache) PostVersion(ctx context.Context, id string) int64 {
	if c == nil || c.client == nil {
		return 0
	}
	gen, err := c.client.Get(ctx, postGenKey(id)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		logger.Warn("cache get version failed", zap.String("post", id), zap.Error(err))
		return -1
	}
	return gen
}

// SetPostIfVersion 仅当期间没有失效过才回填
func (c *Cache) SetPostIfVersion(ctx context.Context, p *model.Post, gen int64) {
	if c == nil || c.client == nil || gen < 0 {
		return
	}
	payload, err := json.Marshal(p)
	if err != nil {
		return
	}
	genKey := postGenKey(p.ID)
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, genKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != gen {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, postKey(p.ID), payload, c.ttl)
			return nil
		})
		return err
	}, genKey)
	if err != nil && !errors.Is(err, redis.TxFailedErr) {
		logger.Warn("cache set post failed", zap.String("post", p.ID), zap.Error(err))
	}
}

func (c *Cache) InvalidatePost(ctx context.Context, id string) {
	if c == nil || c.client == nil {
		return
	}
	genKey := postGenKey(id)
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, genKey)
		pipe.Expire(ctx, genKey, 2*c.ttl)
		pipe.Del(ctx, postKey(id))
		return nil
	})
	if err != nil {
		logger.Warn("cache invalidate post failed", zap.String("post", id), zap.Error(err))
	}
}

func (c *Cache) GetTags(ctx context.Context) ([]model.TagCount, bool) {
	var tags []model.TagCount
	if !c.get(ctx, tagsKey, &tags) {
		return nil, false
	}
	return tags, true
}

func (c *Cache) SetTags(ctx context.Context, tags []model.TagCount) {
	c.set(ctx, tagsKey, tags)
}

func (c *Cache) InvalidateTags(ctx context.Context) {
	c.del(ctx, tagsKey)
}

func (c *Cache) get(ctx context.Context, key string, out any) bool {
	if c == nil || c.client == nil {
		return false
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false
	}
	return true
}

func (c *Cache) set(ctx context.Context, key string, v any) {
	if c == nil || c.client == nil {
		return
	}
	payload, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
}

func (c *Cache) del(ctx context.Context, key string) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, key).Err(); err != nil {
		logger.Warn("cache delete failed", zap.String("key", key), zap.Error(err))
	}
}
