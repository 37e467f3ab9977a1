package notify

import (
	"context"
	"fmt"

	"ChatPay-Relay/internal/config"
)

// Publisher 投递回执事件。payload 为完整的回执 JSON。
type Publisher interface {
	Publish(ctx context.Context, payload []byte) error
	Close() error
}

// New 根据配置创建发布器。未配置驱动时返回 nil。
func New(cfg config.NotifyConfig) (Publisher, error) {
	switch cfg.Driver {
	case "":
		return nil, nil
	case config.NotifyDriverRedis:
		pub, err := NewRedisPublisher(RedisConfig{
			Address:  cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Queue:    cfg.Queue,
		})
		if err != nil {
			return nil, err
		}
		return pub, nil
	case config.NotifyDriverRabbitMQ:
		pub, err := NewRabbitMQPublisher(RabbitMQConfig{
			URL:     cfg.RabbitMQ.URL,
			Queue:   cfg.Queue,
			Durable: cfg.RabbitMQ.Durable,
		})
		if err != nil {
			return nil, err
		}
		return pub, nil
	default:
		return nil, fmt.Errorf("未知的通知驱动: %s", cfg.Driver)
	}
}
