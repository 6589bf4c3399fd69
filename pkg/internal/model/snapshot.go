package model

import (
	"time"

	"github.com/yeisme/spacedash/pkg/usage"
)

// UsageSnapshot 某一时刻的用量快照，用于历史趋势.
type UsageSnapshot struct {
	ID            uint      `gorm:"primaryKey"                             json:"-"`
	User          string    `gorm:"size:255;index:idx_snapshot_user_time" json:"user"`
	UsedBytes     int64     `json:"used_bytes"`
	QuotaBytes    int64     `json:"quota_bytes"`
	DocumentBytes int64     `json:"document_bytes"`
	ImageBytes    int64     `json:"image_bytes"`
	MediaBytes    int64     `json:"media_bytes"`
	OtherBytes    int64     `json:"other_bytes"`
	FileCount     int64     `json:"file_count"`
	CreatedAt     time.Time `gorm:"index:idx_snapshot_user_time" json:"created_at"`
}

// NewUsageSnapshot 由统计结果构造快照.
func NewUsageSnapshot(user string, totals usage.UsageTotals, sums usage.Summaries, at time.Time) UsageSnapshot {
	s := UsageSnapshot{
		User:       user,
		UsedBytes:  totals.UsedBytes,
		QuotaBytes: totals.QuotaBytes,
		CreatedAt:  at,
	}

	for cat, sum := range sums {
		s.FileCount += int64(sum.ElementCount)

		switch cat {
		case usage.CategoryDocument:
			s.DocumentBytes = sum.TotalSizeBytes
		case usage.CategoryImage:
			s.ImageBytes = sum.TotalSizeBytes
		case usage.CategoryMedia:
			s.MediaBytes = sum.TotalSizeBytes
		case usage.CategoryOther:
			s.OtherBytes = sum.TotalSizeBytes
		}
	}

	return s
}

// CategoryBytes 按分类返回快照中的字节数.
func (s *UsageSnapshot) CategoryBytes() map[usage.Category]int64 {
	return map[usage.Category]int64{
		usage.CategoryDocument: s.DocumentBytes,
		usage.CategoryImage:    s.ImageBytes,
		usage.CategoryMedia:    s.MediaBytes,
		usage.CategoryOther:    s.OtherBytes,
	}
}
