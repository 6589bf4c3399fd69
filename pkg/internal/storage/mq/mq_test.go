package mq_test

import (
	"context"
	"slices"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/yeisme/spacedash/pkg/configs"
	"github.com/yeisme/spacedash/pkg/internal/storage/mq"
)

// TestMemoryPubSub 测试进程内消息收发.
func TestMemoryPubSub(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := mq.New(ctx, configs.MQConfig{Type: configs.MQTypeMemory}, mq.Options{
		Metrics:    true,
		Registerer: prometheus.NewRegistry(),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer client.Close()

	if err := client.HealthCheck(ctx); err != nil {
		t.Fatalf("HealthCheck: %v", err)
	}

	ch, err := client.Subscribe(ctx, "sd.test")
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), []byte("hello"))
	msg.Metadata.Set("user", "a@b.com")

	if err := client.Publish(ctx, "sd.test", msg); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	select {
	case got := <-ch:
		if string(got.Payload) != "hello" || got.Metadata.Get("user") != "a@b.com" {
			t.Errorf("unexpected message: %s %v", got.Payload, got.Metadata)
		}

		got.Ack()
	case <-ctx.Done():
		t.Fatal("timeout waiting for message")
	}

	// 重复关闭安全
	if err := client.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}

	if err := client.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

// TestNew_Unsupported 测试未注册类型.
func TestNew_Unsupported(t *testing.T) {
	if _, err := mq.New(context.Background(), configs.MQConfig{Type: "kafka"}, mq.Options{}); err == nil {
		t.Error("expected error for unsupported mq type")
	}

	if !slices.Contains(mq.GetRegisteredMQTypes(), configs.MQTypeMemory) {
		t.Error("memory mq not registered")
	}
}
