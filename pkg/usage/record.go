package usage

import "time"

// FileRecord 外部文件存储提供的单个文件元数据，只读.
type FileRecord struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Category    Category  `json:"category"`
	SizeBytes   int64     `json:"size"`
	CreatedAt   time.Time `json:"created_at"`
	URL         string    `json:"url"`
	Extension   string    `json:"extension,omitempty"`
	ContentType string    `json:"content_type,omitempty"`
}

// CategorySummary 单个分类的聚合结果，计算后不再修改.
type CategorySummary struct {
	Category       Category   `json:"category"`
	TotalSizeBytes int64      `json:"total_size"`
	LatestAt       *time.Time `json:"latest_at,omitempty"` // 分类为空时为 nil
	ElementCount   int        `json:"count"`
}

// Empty 分类下是否没有文件.
func (s CategorySummary) Empty() bool { return s.ElementCount == 0 }

// Summaries 分类到聚合结果的映射.
type Summaries map[Category]CategorySummary

// Ordered 按给定分类顺序返回切片，缺失的分类以空结果补齐.
func (s Summaries) Ordered(categories []Category) []CategorySummary {
	out := make([]CategorySummary, 0, len(categories))
	for _, c := range categories {
		if v, ok := s[c]; ok {
			out = append(out, v)
			continue
		}

		out = append(out, CategorySummary{Category: c})
	}

	return out
}

// TotalSize 所有分类大小之和.
func (s Summaries) TotalSize() int64 {
	var sum int64
	for _, v := range s {
		sum += v.TotalSizeBytes
	}

	return sum
}

// UsageTotals 总用量与配额.
type UsageTotals struct {
	UsedBytes    int64   `json:"used"`
	QuotaBytes   int64   `json:"quota"`
	UsedFraction float64 `json:"used_fraction"` // [0,1]，超额时饱和为 1
}

// OverQuota 用量是否超过配额.
func (t UsageTotals) OverQuota() bool { return t.UsedBytes > t.QuotaBytes }

// AvailableBytes 剩余可用空间，超额时为 0.
func (t UsageTotals) AvailableBytes() int64 {
	if t.UsedBytes >= t.QuotaBytes {
		return 0
	}

	return t.QuotaBytes - t.UsedBytes
}
