package mq

import (
	"context"
	"time"
)

// Message 代表一条通用的业务消息
type Message struct {
	ID      string // 消息ID (例如 Redis Stream ID / Kafka offset)
	Topic   string
	Key     string // 分区键, 这里用发送方地址
	Payload []byte // 消息体 (JSON)
}

// Producer 生产者接口
type Producer interface {
	// Publish 发送消息
	// key: 用于分区排序 (Partition Key). 传空字符串则随机分区.
	Publish(ctx context.Context, topic string, key string, payload []byte) error
}

// Consumer 消费者接口
type Consumer interface {
	// Subscribe 订阅主题, 阻塞直到 ctx 结束
	// handler 返回 error 时消息不会被确认 (Redis 留在 Pending 列表, Kafka 原地重试)
	Subscribe(ctx context.Context, topic string, handler func(msg *Message) error) error

	// Close 关闭消费者
	Close() error
}

// sleepCtx 等待 d, ctx 先结束时返回 false
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
