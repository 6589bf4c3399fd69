package queue

import "time"

// EventHeader 定义所有事件的通用头部元数据.
type EventHeader struct {
	// Topic 冗余记录消息主题，便于离线处理或转储后定位来源主题.
	Topic string `json:"topic"`
	// User 事件所属用户，消费者据此定位缓存.
	User string `json:"user,omitempty"`
	// TraceID 分布式追踪 ID.
	TraceID string `json:"trace_id,omitempty"`
	// Producer 生产者服务名或节点标识.
	Producer string `json:"producer,omitempty"`
	// OccurredAt 事件发生时间（UTC）.
	OccurredAt time.Time `json:"occurred_at"`
	// Version 事件负载版本.
	Version string `json:"version,omitempty"`
}

// Message 是统一的消息封装，Header + Payload.
type Message[T any] struct {
	Header  EventHeader `json:"header"`
	Payload T           `json:"payload"`
}

// -------------------------- 文件元数据领域 --------------------------

// FileRef 标识一条文件元数据.
type FileRef struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Size     int64  `json:"size"`
}

// FileRegisteredPayload 文件已登记.
type FileRegisteredPayload struct {
	File FileRef `json:"file"`
}

// FileDeletedPayload 文件已删除.
type FileDeletedPayload struct {
	File FileRef `json:"file"`
}

// -------------------------- 用量统计领域 --------------------------

// UsageComputedPayload 一次统计的结果摘要.
type UsageComputedPayload struct {
	UsedBytes    int64            `json:"used_bytes"`
	QuotaBytes   int64            `json:"quota_bytes"`
	UsedFraction float64          `json:"used_fraction"`
	Categories   map[string]int64 `json:"categories"`
	Cached       bool             `json:"cached,omitempty"`
}

// QuotaExceededPayload 用量超过配额.
type QuotaExceededPayload struct {
	UsedBytes  int64 `json:"used_bytes"`
	QuotaBytes int64 `json:"quota_bytes"`
}
