// Package mq 订阅文件元数据变更事件，使对应用户的仪表盘缓存失效.
//
// 多实例部署时，某个实例登记或删除文件后，其他实例通过该消费者
// 同步删除各自 KV 中的仪表盘缓存（内存 KV、groupcache 场景）.
//
// 使用示例：
//
//	consumer, err := mq.NewConsumer(mgr)
//	if err != nil {
//		log.Fatal(err)
//	}
//	go consumer.Run(ctx)
//	<-consumer.Running()
package mq

import (
	"context"
	"errors"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/rs/zerolog"

	"github.com/yeisme/spacedash/pkg/cache"
	"github.com/yeisme/spacedash/pkg/internal/service"
	"github.com/yeisme/spacedash/pkg/internal/storage"
	nlog "github.com/yeisme/spacedash/pkg/log"
	"github.com/yeisme/spacedash/pkg/queue"
)

// Consumer 基于 watermill Router 的事件消费者.
type Consumer struct {
	router *message.Router
	cache  *cache.Cache
	logger zerolog.Logger
}

// NewConsumer 为 queue.FileTopics 注册缓存失效处理器.
func NewConsumer(mgr *storage.Manager) (*Consumer, error) {
	if mgr == nil || mgr.MQ == nil || mgr.KV == nil {
		return nil, errors.New("mq consumer requires mq and kv clients")
	}

	router, err := mgr.MQ.NewRouter()
	if err != nil {
		return nil, err
	}

	router.AddMiddleware(middleware.Recoverer)

	c := &Consumer{
		router: router,
		cache:  service.DashboardCache(mgr.KV),
		logger: nlog.Component("consumer"),
	}

	for _, topic := range queue.FileTopics {
		router.AddNoPublisherHandler(
			"invalidate-dashboard."+topic,
			mgr.MQ.Topic(topic),
			mgr.MQ.Subscriber(),
			c.invalidate,
		)
	}

	return c, nil
}

// Run 阻塞运行直到 ctx 取消或 Close.
func (c *Consumer) Run(ctx context.Context) error {
	return c.router.Run(ctx)
}

// Running 在所有处理器启动后关闭.
func (c *Consumer) Running() chan struct{} {
	return c.router.Running()
}

// Close 停止路由.
func (c *Consumer) Close() error {
	return c.router.Close()
}

// invalidate 删除事件所属用户的缓存. 无法解析的消息直接确认，避免反复投递.
func (c *Consumer) invalidate(msg *message.Message) error {
	hdr, err := queue.ParseHeader(msg)
	if err != nil {
		c.logger.Warn().Err(err).Str("uuid", msg.UUID).Msg("drop malformed event")
		return nil
	}

	if hdr.User == "" {
		return nil
	}

	if err := c.cache.Delete(msg.Context(), c.cache.Key(hdr.User)); err != nil && !cache.IsMiss(err) {
		c.logger.Warn().Err(err).Str("user", hdr.User).Str("topic", hdr.Topic).Msg("invalidate dashboard cache failed")
		return nil
	}

	c.logger.Debug().Str("user", hdr.User).Str("topic", hdr.Topic).Msg("dashboard cache invalidated")

	return nil
}
