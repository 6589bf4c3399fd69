package mq

import (
	"context"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/yeisme/spacedash/pkg/configs"
)

// maxMemoryBuffer GoChannel 每个订阅者的最大缓冲.
const maxMemoryBuffer = 4096

func init() {
	RegisterFactory(configs.MQTypeMemory, memoryFactory)
}

// memoryFactory 创建进程内 GoChannel，publisher 与 subscriber 为同一实例.
func memoryFactory(
	_ context.Context,
	cfg *configs.MQConfig,
	logger watermill.LoggerAdapter) (
	message.Publisher, message.Subscriber, error) {
	buffer := int64(min(max(cfg.Common.BufferSize, DefaultChannelBufferSize), maxMemoryBuffer))

	ch := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: buffer,
	}, logger)

	return ch, ch, nil
}
