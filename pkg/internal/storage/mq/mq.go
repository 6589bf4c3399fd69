// Package mq 提供基于 Watermill 的统一消息队列客户端，通过工厂注册不同的实现.
//
// 支持的 MQ 类型：
//   - memory（进程内 GoChannel）
//   - nats（可选 JetStream）
//   - redis（Pub/Sub）
//
// 使用示例：
//
//	client, err := mq.New(ctx, cfg.MQ, mq.Options{Metrics: true})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
//	err = client.Publish(ctx, "sd.file.registered", msg)
package mq

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	watermill "github.com/ThreeDotsLabs/watermill"
	wmetrics "github.com/ThreeDotsLabs/watermill/components/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/yeisme/spacedash/pkg/configs"
	nlog "github.com/yeisme/spacedash/pkg/log"
)

// DefaultChannelBufferSize 默认订阅通道缓冲区大小.
const DefaultChannelBufferSize = 100

// Factory 定义创建 Publisher + Subscriber 的工厂函数.
type Factory func(ctx context.Context, cfg *configs.MQConfig, logger watermill.LoggerAdapter) (message.Publisher, message.Subscriber, error)

var (
	factories   = map[configs.MQType]Factory{}
	factoriesMu sync.RWMutex
)

// RegisterFactory 注册指定 MQType 的工厂.
func RegisterFactory(t configs.MQType, f Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()

	factories[t] = f
}

// GetRegisteredMQTypes 返回已注册的 MQ 类型（已排序）.
func GetRegisteredMQTypes() []configs.MQType {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()

	types := make([]configs.MQType, 0, len(factories))
	for t := range factories {
		types = append(types, t)
	}

	slices.Sort(types)

	return types
}

// Options 创建客户端的附加选项.
type Options struct {
	// Metrics 为 publisher/subscriber 注册 watermill prometheus 指标.
	Metrics bool
	// Registerer 指标注册表，为空时使用 prometheus 默认注册表.
	Registerer prometheus.Registerer
}

// Client 封装 watermill Publisher 与 Subscriber.
type Client struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	logger     watermill.LoggerAdapter
	cfg        configs.MQConfig
	metrics    *wmetrics.PrometheusMetricsBuilder

	closeOnce sync.Once
	closeErr  error
}

// ErrNotInitialized 客户端未初始化.
var ErrNotInitialized = errors.New("mq not initialized")

// New 按配置创建消息队列客户端.
func New(ctx context.Context, cfg configs.MQConfig, opts Options) (*Client, error) {
	factoriesMu.RLock()
	factory, ok := factories[cfg.Type]
	factoriesMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unsupported mq type: %s (compiled: %v)", cfg.Type, GetRegisteredMQTypes())
	}

	logger := NewLoggerAdapter(*nlog.Logger())

	pub, sub, err := factory(ctx, &cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("init mq (%s): %w", cfg.Type, err)
	}

	c := &Client{publisher: pub, subscriber: sub, logger: logger, cfg: cfg}

	if opts.Metrics {
		reg := opts.Registerer
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}

		builder := wmetrics.NewPrometheusMetricsBuilder(reg, "spacedash", "mq")
		c.metrics = &builder

		if c.publisher, err = builder.DecoratePublisher(pub); err != nil {
			return nil, fmt.Errorf("decorate publisher with metrics: %w", err)
		}

		if c.subscriber, err = builder.DecorateSubscriber(sub); err != nil {
			return nil, fmt.Errorf("decorate subscriber with metrics: %w", err)
		}
	}

	nlog.Logger().Info().Str("type", string(cfg.Type)).Bool("metrics", opts.Metrics).Msg("mq client initialized")

	return c, nil
}

// Type 返回 MQ 类型.
func (c *Client) Type() configs.MQType { return c.cfg.Type }

// Topic 返回加上前缀后的主题名.
func (c *Client) Topic(name string) string { return c.cfg.Topic(name) }

// Logger 返回 watermill 日志适配器.
func (c *Client) Logger() watermill.LoggerAdapter { return c.logger }

// Publish 发布消息到主题.
func (c *Client) Publish(_ context.Context, topic string, msgs ...*message.Message) error {
	if c == nil || c.publisher == nil {
		return ErrNotInitialized
	}

	return c.publisher.Publish(topic, msgs...)
}

// Subscribe 订阅主题，ctx 取消时通道关闭.
func (c *Client) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	if c == nil || c.subscriber == nil {
		return nil, ErrNotInitialized
	}

	return c.subscriber.Subscribe(ctx, topic)
}

// Publisher 返回底层 publisher.
func (c *Client) Publisher() message.Publisher { return c.publisher }

// Subscriber 返回底层 subscriber.
func (c *Client) Subscriber() message.Subscriber { return c.subscriber }

// NewRouter 创建 watermill 路由，启用指标时同时注册路由指标.
func (c *Client) NewRouter() (*message.Router, error) {
	router, err := message.NewRouter(message.RouterConfig{}, c.logger)
	if err != nil {
		return nil, fmt.Errorf("create router: %w", err)
	}

	if c.metrics != nil {
		c.metrics.AddPrometheusRouterMetrics(router)
	}

	return router, nil
}

// HealthCheck 检查客户端是否可用.
func (c *Client) HealthCheck(_ context.Context) error {
	if c == nil || c.publisher == nil || c.subscriber == nil {
		return ErrNotInitialized
	}

	return nil
}

// Close 关闭资源，可重复调用.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		var errs []error
		if c.publisher != nil {
			errs = append(errs, c.publisher.Close())
		}

		if c.subscriber != nil {
			errs = append(errs, c.subscriber.Close())
		}

		c.closeErr = errors.Join(errs...)
	})

	return c.closeErr
}
