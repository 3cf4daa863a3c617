package mq

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"wallet-session/pkg/logger"
)

// kafkaWriter 是 *kafka.Writer 里用到的部分
type kafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// kafkaReader 是 *kafka.Reader 里用到的部分
type kafkaReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaProducer 实现 Producer 接口
type KafkaProducer struct {
	writer kafkaWriter
}

// NewKafkaProducer 创建 Kafka 生产者
// topic 由每条消息指定, Writer 不绑定默认主题
func NewKafkaProducer(brokers []string) *KafkaProducer {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{}, // 按 Key 哈希，同一发送方的事件有序
		AllowAutoTopicCreation: true,
		RequiredAcks:           kafka.RequireAll,
		BatchSize:              100,
		BatchTimeout:           10 * time.Millisecond,
	}

	return &KafkaProducer{
		writer: writer,
	}
}

// Publish 发送消息到 Kafka
func (p *KafkaProducer) Publish(ctx context.Context, topic string, key string, payload []byte) error {
	msg := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: payload,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka write error: %w", err)
	}
	return nil
}

// Close 关闭连接
func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}

// KafkaConsumer 实现 Consumer 接口
type KafkaConsumer struct {
	brokers []string
	groupID string
	reader  kafkaReader

	newReader     func(topic string) kafkaReader
	retryInterval time.Duration
}

// NewKafkaConsumer 创建 Kafka 消费者
func NewKafkaConsumer(brokers []string, groupID string) *KafkaConsumer {
	c := &KafkaConsumer{
		brokers:       brokers,
		groupID:       groupID,
		retryInterval: time.Second,
	}
	c.newReader = func(topic string) kafkaReader {
		return kafka.NewReader(kafka.ReaderConfig{
			Brokers:     c.brokers,
			GroupID:     c.groupID,
			Topic:       topic,
			MinBytes:    1,
			MaxBytes:    10e6, // 10MB
			StartOffset: kafka.LastOffset,
		})
	}
	return c
}

// Subscribe 订阅 Kafka 主题, 阻塞直到 ctx 结束
// 同一分区按 offset 顺序提交, 所以处理失败的消息会原地重试,
// 不会去读后面的消息 (否则后面的提交会把它一起确认掉)
func (c *KafkaConsumer) Subscribe(ctx context.Context, topic string, handler func(msg *Message) error) error {
	c.reader = c.newReader(topic)

	logger.Info("[Kafka MQ] 开始监听主题", zap.String("topic", topic), zap.String("group", c.groupID))

	for {
		// 1. 读取消息 (阻塞直到有消息)
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			logger.Error("[Kafka MQ] 读取消息错误", zap.Error(err))
			if !sleepCtx(ctx, c.retryInterval) {
				return nil
			}
			continue
		}

		msg := &Message{
			ID:      fmt.Sprintf("%d-%d", m.Partition, m.Offset),
			Topic:   m.Topic,
			Key:     string(m.Key),
			Payload: m.Value,
		}

		// 2. 处理成功才提交 offset; 失败时等待后重试同一条
		for {
			err := handler(msg)
			if err == nil {
				break
			}
			logger.Error("[Kafka MQ] 消息处理失败, 稍后重试", zap.String("id", msg.ID), zap.Error(err))
			if !sleepCtx(ctx, c.retryInterval) {
				return nil
			}
		}
		if err := c.reader.CommitMessages(ctx, m); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			logger.Error("[Kafka MQ] 提交 offset 失败", zap.Error(err))
		}
	}
}

func (c *KafkaConsumer) Close() error {
	if c.reader == nil {
		return nil
	}
	return c.reader.Close()
}
