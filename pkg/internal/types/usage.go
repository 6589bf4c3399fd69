package types

import "time"

// SummaryResponse 分类汇总.
type SummaryResponse struct {
	User    string        `json:"user"`
	Summary []SummaryCard `json:"summary"`
}

// HistoryQuery 用量历史查询参数.
type HistoryQuery struct {
	Days int `form:"days" rule:"omitempty,min=1,max=365"`
}

// HistoryPoint 单个用量快照.
type HistoryPoint struct {
	At         time.Time        `json:"at"`
	Used       int64            `json:"used"`
	Quota      int64            `json:"quota"`
	FileCount  int64            `json:"file_count"`
	Categories map[string]int64 `json:"categories"`
}

// HistoryResponse 用量历史.
type HistoryResponse struct {
	User   string         `json:"user"`
	Days   int            `json:"days"`
	Points []HistoryPoint `json:"points"`
}

// SetQuotaRequest 设置配额，Size 为可读大小，如 "5 GB".
type SetQuotaRequest struct {
	Size string `json:"size" rule:"required,size"`
}

// QuotaResponse 用户配额.
type QuotaResponse struct {
	User    string `json:"user"`
	Bytes   int64  `json:"bytes"`
	Text    string `json:"text"`
	Default bool   `json:"default"` // 是否为配置中的默认配额
}
