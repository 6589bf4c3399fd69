// Package queue 定义用量统计相关的事件，用于缓存失效与下游告警.
//
// 概览
//   - 统一的消息封装：Message[Payload] = Header + Payload
//   - 主题常量见 topics.go，负载结构体见 payloads.go
//   - JSON 编解码（bytedance/sonic）
//
// 消息信封 JSON 结构
//
//	{
//	  "header": {
//	    "topic": "sd.file.registered",
//	    "user": "alice@example.com",
//	    "producer": "spacedash",
//	    "occurred_at": "2025-01-02T03:04:05.123456Z",
//	    "version": "v1"
//	  },
//	  "payload": { "file": { "id": "01J...", "name": "a.pdf", "category": "document", "size": 42 } }
//	}
//
// 发布/订阅示例
//
//	_ = queue.PublishFileRegistered(ctx, mqClient, user, queue.FileRegisteredPayload{File: ref})
//
//	ch, _ := mqClient.Subscribe(ctx, mqClient.Topic(queue.TopicFileRegistered))
//	for m := range ch {
//		hdr, _ := queue.ParseHeader(m)
//		// 使用 hdr.User ...
//		m.Ack()
//	}
package queue

import (
	"context"
	"time"

	watermill "github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/bytedance/sonic"
)

const (
	PayloadVersionV1 string = "v1"
	// DefaultProducer 默认生产者名.
	DefaultProducer = "spacedash"
)

// Publisher 可按主题发布消息的客户端，mq.Client 满足该接口.
type Publisher interface {
	Publish(ctx context.Context, topic string, msgs ...*message.Message) error
	Topic(name string) string
}

// NewEventHeader 便捷创建事件头.
func NewEventHeader(topic string, opts ...func(*EventHeader)) EventHeader {
	hdr := EventHeader{
		Topic:      topic,
		OccurredAt: time.Now().UTC(),
		Version:    PayloadVersionV1,
		Producer:   DefaultProducer,
	}
	for _, opt := range opts {
		opt(&hdr)
	}

	return hdr
}

// WithUser 设置事件所属用户.
func WithUser(user string) func(*EventHeader) { return func(h *EventHeader) { h.User = user } }

// WithTraceID 设置 TraceID.
func WithTraceID(id string) func(*EventHeader) { return func(h *EventHeader) { h.TraceID = id } }

// WithProducer 设置 Producer.
func WithProducer(p string) func(*EventHeader) { return func(h *EventHeader) { h.Producer = p } }

// Encode 将消息封装为 JSON 字节切片.
func Encode[T any](msg Message[T]) ([]byte, error) { return sonic.Marshal(msg) }

// Decode 从 JSON 字节解码为消息.
func Decode[T any](b []byte) (Message[T], error) {
	var m Message[T]

	err := sonic.Unmarshal(b, &m)

	return m, err
}

// NewWatermillMessage 构造一个 watermill 消息，设置 ID 与元数据.
func NewWatermillMessage[T any](topic string, payload T, opts ...func(*EventHeader)) (*message.Message, error) {
	header := NewEventHeader(topic, opts...)
	env := Message[T]{Header: header, Payload: payload}

	data, err := Encode(env)
	if err != nil {
		return nil, err
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.Metadata.Set("topic", topic)

	if header.User != "" {
		msg.Metadata.Set("user", header.User)
	}

	if header.TraceID != "" {
		msg.Metadata.Set("trace_id", header.TraceID)
	}

	if header.Producer != "" {
		msg.Metadata.Set("producer", header.Producer)
	}

	msg.Metadata.Set("occurred_at", header.OccurredAt.Format(time.RFC3339Nano))

	if header.Version != "" {
		msg.Metadata.Set("version", header.Version)
	}

	return msg, nil
}

// ParseWatermillMessage 解出泛型负载.
func ParseWatermillMessage[T any](msg *message.Message) (Message[T], error) {
	return Decode[T](msg.Payload)
}

// ParseHeader 只解析事件头，不关心负载类型.
func ParseHeader(msg *message.Message) (EventHeader, error) {
	env, err := Decode[struct{}](msg.Payload)

	return env.Header, err
}
