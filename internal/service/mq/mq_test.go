package mq

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return w.err
}

func (w *fakeWriter) Close() error { return nil }

// fakeReader 按顺序交付消息, 读完后阻塞到 ctx 结束
type fakeReader struct {
	mu      sync.Mutex
	queue   []kafka.Message
	fetched []int64
	commits []int64
	// onCommit 在每次提交后调用 (锁外)
	onCommit func(committed int)
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if len(r.queue) > 0 {
		m := r.queue[0]
		r.queue = r.queue[1:]
		r.fetched = append(r.fetched, m.Offset)
		r.mu.Unlock()
		return m, nil
	}
	r.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	for _, m := range msgs {
		r.commits = append(r.commits, m.Offset)
	}
	n := len(r.commits)
	r.mu.Unlock()
	if r.onCommit != nil {
		r.onCommit(n)
	}
	return nil
}

func (r *fakeReader) Close() error { return nil }

func TestKafkaProducerPublish(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaProducer{writer: w}

	require.NoError(t, p.Publish(context.Background(), "session_events_transaction", "0xabc", []byte(`{"counter":1}`)))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "session_events_transaction", w.msgs[0].Topic)
	assert.Equal(t, "0xabc", string(w.msgs[0].Key))
	assert.Equal(t, `{"counter":1}`, string(w.msgs[0].Value))

	w.err = errors.New("leader not available")
	assert.ErrorContains(t, p.Publish(context.Background(), "t", "", nil), "leader not available")
}

func TestKafkaConsumerRetriesFailedMessageBeforeCommittingLater(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	reader := &fakeReader{queue: []kafka.Message{
		{Topic: "t", Offset: 0, Value: []byte("a")},
		{Topic: "t", Offset: 1, Value: []byte("b")},
		{Topic: "t", Offset: 2, Value: []byte("c")},
	}}
	reader.onCommit = func(n int) {
		if n == 3 {
			cancel()
		}
	}
	c := NewKafkaConsumer(nil, "group")
	c.newReader = func(string) kafkaReader { return reader }
	c.retryInterval = time.Millisecond

	var handled []string
	failures := 2
	err := c.Subscribe(ctx, "t", func(msg *Message) error {
		handled = append(handled, string(msg.Payload))
		if string(msg.Payload) == "b" && failures > 0 {
			failures--
			return errors.New("downstream unavailable")
		}
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "b", "b", "c"}, handled)
	assert.Equal(t, []int64{0, 1, 2}, reader.commits)
	assert.Equal(t, []int64{0, 1, 2}, reader.fetched)
}

func TestKafkaConsumerStopsRetryingOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	reader := &fakeReader{queue: []kafka.Message{{Offset: 7}}}
	c := NewKafkaConsumer(nil, "group")
	c.newReader = func(string) kafkaReader { return reader }
	c.retryInterval = time.Hour

	err := c.Subscribe(ctx, "t", func(*Message) error {
		cancel()
		return errors.New("boom")
	})
	require.NoError(t, err)
	assert.Empty(t, reader.commits, "a failed message must not be committed")
}

// fakeStreams 覆盖 Redis Stream 用到的命令, 其它命令调用会 panic
type fakeStreams struct {
	redis.Cmdable

	mu      sync.Mutex
	added   []*redis.XAddArgs
	batch   []redis.XMessage
	reads   int
	acked   []string
	cancel  context.CancelFunc
	groupOK error
}

func (f *fakeStreams) XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.added = append(f.added, a)
	return redis.NewStringResult("1-0", nil)
}

func (f *fakeStreams) XGroupCreateMkStream(ctx context.Context, stream, group, start string) *redis.StatusCmd {
	return redis.NewStatusResult("OK", f.groupOK)
}

func (f *fakeStreams) XReadGroup(ctx context.Context, a *redis.XReadGroupArgs) *redis.XStreamSliceCmd {
	f.mu.Lock()
	f.reads++
	first := f.reads == 1
	f.mu.Unlock()
	if first {
		return redis.NewXStreamSliceCmdResult([]redis.XStream{{Stream: a.Streams[0], Messages: f.batch}}, nil)
	}
	// 第二次读取: 模拟阻塞中被取消
	f.cancel()
	<-ctx.Done()
	return redis.NewXStreamSliceCmdResult(nil, ctx.Err())
}

func (f *fakeStreams) XAck(ctx context.Context, stream, group string, ids ...string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.acked = append(f.acked, ids...)
	return redis.NewIntResult(int64(len(ids)), nil)
}

func TestRedisProducerPublish(t *testing.T) {
	f := &fakeStreams{}
	p := NewRedisProducer(f)

	require.NoError(t, p.Publish(context.Background(), "session_events_transaction", "0xabc", []byte("{}")))
	require.Len(t, f.added, 1)
	assert.Equal(t, "session_events_transaction", f.added[0].Stream)
	values := f.added[0].Values.(map[string]interface{})
	assert.Equal(t, "0xabc", values["key"])
	assert.Equal(t, []byte("{}"), values["payload"])
}

func TestRedisConsumerAcksOnlyHandledMessages(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	f := &fakeStreams{
		cancel:  cancel,
		groupOK: errors.New("BUSYGROUP Consumer Group name already exists"),
		batch: []redis.XMessage{
			{ID: "1-0", Values: map[string]interface{}{"key": "0xabc", "payload": `{"counter":1}`}},
			{ID: "2-0", Values: map[string]interface{}{"key": "0xabc"}},
			{ID: "3-0", Values: map[string]interface{}{"key": "0xabc", "payload": "bad"}},
		},
	}
	c := NewRedisConsumer(f, "session_cli", "cli-0")
	c.retryInterval = time.Millisecond

	var got []*Message
	err := c.Subscribe(ctx, "session_events_transaction", func(msg *Message) error {
		got = append(got, msg)
		if string(msg.Payload) == "bad" {
			return errors.New("cannot decode")
		}
		return nil
	})
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, "1-0", got[0].ID)
	assert.Equal(t, "0xabc", got[0].Key)
	assert.Equal(t, "session_events_transaction", got[0].Topic)
	// 缺 payload 的坏消息直接 ack, 处理失败的不 ack
	assert.Equal(t, []string{"1-0", "2-0"}, f.acked)
}

func TestRedisConsumerGroupCreateFails(t *testing.T) {
	f := &fakeStreams{groupOK: errors.New("NOPERM")}
	c := NewRedisConsumer(f, "g", "n")

	err := c.Subscribe(context.Background(), "t", func(*Message) error { return nil })
	assert.ErrorContains(t, err, "NOPERM")
}
