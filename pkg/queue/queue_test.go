package queue_test

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/spacedash/pkg/queue"
)

// capturePublisher 记录发布的消息.
type capturePublisher struct {
	prefix string
	topics []string
	msgs   []*message.Message
}

func (p *capturePublisher) Publish(_ context.Context, topic string, msgs ...*message.Message) error {
	for _, m := range msgs {
		p.topics = append(p.topics, topic)
		p.msgs = append(p.msgs, m)
	}

	return nil
}

func (p *capturePublisher) Topic(name string) string { return p.prefix + name }

func TestPublishFileRegistered(t *testing.T) {
	pub := &capturePublisher{prefix: "prod."}
	ref := queue.FileRef{ID: "01HZZ", Name: "report.pdf", Category: "document", Size: 42}

	err := queue.PublishFileRegistered(context.Background(), pub, "alice@example.com",
		queue.FileRegisteredPayload{File: ref}, queue.WithTraceID("trace-1"))
	require.NoError(t, err)
	require.Len(t, pub.msgs, 1)

	assert.Equal(t, "prod."+queue.TopicFileRegistered, pub.topics[0])

	msg := pub.msgs[0]
	assert.Equal(t, "alice@example.com", msg.Metadata.Get("user"))
	assert.Equal(t, "trace-1", msg.Metadata.Get("trace_id"))
	assert.Equal(t, queue.TopicFileRegistered, msg.Metadata.Get("topic"))

	env, err := queue.ParseFileRegistered(msg)
	require.NoError(t, err)
	assert.Equal(t, ref, env.Payload.File)
	assert.Equal(t, queue.DefaultProducer, env.Header.Producer)
	assert.Equal(t, queue.PayloadVersionV1, env.Header.Version)
	assert.WithinDuration(t, time.Now(), env.Header.OccurredAt, time.Minute)
}

func TestParseHeader(t *testing.T) {
	msg, err := queue.NewWatermillMessage(queue.TopicUsageQuotaExceeded,
		queue.QuotaExceededPayload{UsedBytes: 3, QuotaBytes: 2}, queue.WithUser("bob@example.com"))
	require.NoError(t, err)

	hdr, err := queue.ParseHeader(msg)
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", hdr.User)
	assert.Equal(t, queue.TopicUsageQuotaExceeded, hdr.Topic)

	env, err := queue.ParseQuotaExceeded(msg)
	require.NoError(t, err)
	assert.Equal(t, int64(3), env.Payload.UsedBytes)
}

func TestDecode_Invalid(t *testing.T) {
	_, err := queue.Decode[queue.FileDeletedPayload]([]byte("not json"))
	assert.Error(t, err)
}
