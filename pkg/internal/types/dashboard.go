package types

import "time"

// SummaryCard 单个分类的汇总卡片.
type SummaryCard struct {
	Category  string     `json:"category"`
	Title     string     `json:"title"`
	URL       string     `json:"url"`
	Color     string     `json:"color"`
	Icon      string     `json:"icon"`
	TotalSize int64      `json:"total_size"`
	Size      string     `json:"size"` // 格式化后的大小，如 "1.5 KB"
	Count     int        `json:"count"`
	LatestAt  *time.Time `json:"latest_at,omitempty"`
}

// Totals 总用量与配额.
type Totals struct {
	Used          int64   `json:"used"`
	Quota         int64   `json:"quota"`
	Available     int64   `json:"available"`
	UsedFraction  float64 `json:"used_fraction"`
	UsedPercent   int     `json:"used_percent"` // 四舍五入的百分比，用于进度环
	UsedText      string  `json:"used_text"`
	QuotaText     string  `json:"quota_text"`
	AvailableText string  `json:"available_text"`
	OverQuota     bool    `json:"over_quota"`
}

// RecentFile 最近上传的文件.
type RecentFile struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Extension string    `json:"extension,omitempty"`
	Size      int64     `json:"size"`
	SizeText  string    `json:"size_text"`
	URL       string    `json:"url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Dashboard 仪表盘页面需要的全部数据.
type Dashboard struct {
	User        string        `json:"user"`
	Summary     []SummaryCard `json:"summary"`
	Totals      Totals        `json:"totals"`
	Recent      []RecentFile  `json:"recent"`
	GeneratedAt time.Time     `json:"generated_at"`
}
