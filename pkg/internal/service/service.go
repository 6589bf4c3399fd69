// Package service 实现用量统计的业务逻辑：从文件元数据源读取记录，
// 交给 usage 聚合器计算，并负责缓存、事件与快照.
package service

import (
	"errors"

	mqc "github.com/yeisme/spacedash/pkg/internal/storage/mq"
	"github.com/yeisme/spacedash/pkg/queue"
)

var (
	// ErrNoData 数据源不可用，无法给出可靠的统计结果.
	ErrNoData = errors.New("usage data unavailable")
	// ErrUserRequired 缺少用户标识.
	ErrUserRequired = errors.New("user required")
	// ErrFileNotFound 文件元数据不存在.
	ErrFileNotFound = errors.New("file not found")
	// ErrFileExists 同名文件已登记.
	ErrFileExists = errors.New("file already registered")
)

// publisherOf 将可能为 nil 的 MQ 客户端转换为事件发布者.
func publisherOf(c *mqc.Client) queue.Publisher {
	if c == nil {
		return nil
	}

	return c
}
