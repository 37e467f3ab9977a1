package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const defaultQueue = "chatpay.receipts"

// RedisConfig 描述 Redis 列表的连接参数。
type RedisConfig struct {
	Address  string
	Password string
	DB       int
	Queue    string
}

type listPusher interface {
	LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	Close() error
}

// RedisPublisher 使用 LPUSH 把回执写入 Redis 列表。
type RedisPublisher struct {
	client listPusher
	queue  string
}

// NewRedisPublisher 创建 Redis 发布器并检查连通性。
func NewRedisPublisher(cfg RedisConfig) (*RedisPublisher, error) {
	if cfg.Address == "" {
		return nil, errors.New("Redis address 不能为空")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("连接 Redis 失败: %w", err)
	}
	return newRedisPublisher(client, cfg.Queue), nil
}

func newRedisPublisher(client listPusher, queue string) *RedisPublisher {
	if queue == "" {
		queue = defaultQueue
	}
	return &RedisPublisher{client: client, queue: queue}
}

// Publish 将回执推入队列头部。
func (p *RedisPublisher) Publish(ctx context.Context, payload []byte) error {
	if err := p.client.LPush(ctx, p.queue, payload).Err(); err != nil {
		return fmt.Errorf("Redis 发布回执失败: %w", err)
	}
	return nil
}

// Close 关闭 Redis 连接。
func (p *RedisPublisher) Close() error {
	if p == nil || p.client == nil {
		return nil
	}
	return p.client.Close()
}
