package redis

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"mirrorCheck/internal/config"
	"mirrorCheck/internal/model"
	"mirrorCheck/internal/util"
)

// SnapshotCache 检测快照的易失缓存层
// 单key整体覆盖写入，TTL与检测间隔一致；Redis不可用时以禁用模式降级，
// 读写都变成no-op，由进程内快照兜底
type SnapshotCache struct {
	client  *redis.Client
	enabled bool
	key     string
	ttl     time.Duration
	timeout time.Duration
}

// NewSnapshotCache 创建快照缓存客户端
// redisURL为空时返回禁用模式实例（纯内存+SQL模式）。
// 配置了Redis但解析/连接失败时同样降级为禁用模式：易失层缺席只损失
// 跨进程共享，进程内快照兜底，不影响进程存活
func NewSnapshotCache(redisURL string) *SnapshotCache {
	if redisURL == "" {
		return &SnapshotCache{enabled: false}
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Printf("[WARN] Redis地址解析失败，降级为进程内快照模式: %v", err)
		return &SnapshotCache{enabled: false}
	}

	// 连接池参数
	opts.PoolSize = 10
	opts.MinIdleConns = 2
	opts.ConnMaxLifetime = 5 * time.Minute
	opts.DialTimeout = 3 * time.Second
	opts.ReadTimeout = 2 * time.Second
	opts.WriteTimeout = 2 * time.Second

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		log.Printf("[WARN] Redis连接失败，降级为进程内快照模式: %v", err)
		return &SnapshotCache{enabled: false}
	}

	return &SnapshotCache{
		client:  client,
		enabled: true,
		key:     config.SnapshotCacheKey,
		ttl:     config.SnapshotCacheTTL,
		timeout: 2 * time.Second,
	}
}

// IsEnabled 检查缓存层是否启用
func (c *SnapshotCache) IsEnabled() bool {
	return c.enabled
}

// Close 关闭Redis连接
func (c *SnapshotCache) Close() error {
	if !c.enabled {
		return nil
	}
	return c.client.Close()
}

// SaveSnapshot 整体覆盖写入快照（SET带TTL，原子操作）
func (c *SnapshotCache) SaveSnapshot(ctx context.Context, snap *model.CachedSnapshot) error {
	if !c.enabled {
		return nil
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	data, err := util.MarshalJSONBytes(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	return c.client.Set(ctxWithTimeout, c.key, data, c.ttl).Err()
}

// LoadSnapshot 读取快照
// key不存在（未写入或TTL过期）时返回 (nil, nil)，由调用方走进程内兜底
func (c *SnapshotCache) LoadSnapshot(ctx context.Context) (*model.CachedSnapshot, error) {
	if !c.enabled {
		return nil, nil
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	data, err := c.client.Get(ctxWithTimeout, c.key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var snap model.CachedSnapshot
	if err := util.UnmarshalJSON([]byte(data), &snap); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}

	return &snap, nil
}

// HealthCheck 检查Redis连接状态
func (c *SnapshotCache) HealthCheck(ctx context.Context) error {
	if !c.enabled {
		return nil
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	return c.client.Ping(ctxWithTimeout).Err()
}
