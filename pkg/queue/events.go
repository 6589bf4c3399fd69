package queue

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"
)

// publish 编码并发布到带前缀的主题.
func publish[T any](ctx context.Context, pub Publisher, topic, user string, payload T, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(topic, payload, append([]func(*EventHeader){WithUser(user)}, opts...)...)
	if err != nil {
		return err
	}

	msg.SetContext(ctx)

	return pub.Publish(ctx, pub.Topic(topic), msg)
}

// PublishFileRegistered 发布 sd.file.registered 事件.
func PublishFileRegistered(ctx context.Context, pub Publisher, user string, payload FileRegisteredPayload, opts ...func(*EventHeader)) error {
	return publish(ctx, pub, TopicFileRegistered, user, payload, opts...)
}

// PublishFileDeleted 发布 sd.file.deleted 事件.
func PublishFileDeleted(ctx context.Context, pub Publisher, user string, payload FileDeletedPayload, opts ...func(*EventHeader)) error {
	return publish(ctx, pub, TopicFileDeleted, user, payload, opts...)
}

// PublishUsageComputed 发布 sd.usage.computed 事件.
func PublishUsageComputed(ctx context.Context, pub Publisher, user string, payload UsageComputedPayload, opts ...func(*EventHeader)) error {
	return publish(ctx, pub, TopicUsageComputed, user, payload, opts...)
}

// PublishQuotaExceeded 发布 sd.usage.quota.exceeded 事件.
func PublishQuotaExceeded(ctx context.Context, pub Publisher, user string, payload QuotaExceededPayload, opts ...func(*EventHeader)) error {
	return publish(ctx, pub, TopicUsageQuotaExceeded, user, payload, opts...)
}

// ParseFileRegistered 将 Watermill 消息解析为强类型 Envelope.
func ParseFileRegistered(msg *message.Message) (Message[FileRegisteredPayload], error) {
	return ParseWatermillMessage[FileRegisteredPayload](msg)
}

// ParseFileDeleted 将 Watermill 消息解析为强类型 Envelope.
func ParseFileDeleted(msg *message.Message) (Message[FileDeletedPayload], error) {
	return ParseWatermillMessage[FileDeletedPayload](msg)
}

// ParseQuotaExceeded 将 Watermill 消息解析为强类型 Envelope.
func ParseQuotaExceeded(msg *message.Message) (Message[QuotaExceededPayload], error) {
	return ParseWatermillMessage[QuotaExceededPayload](msg)
}
