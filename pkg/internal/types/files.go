package types

import "time"

// RegisterFileRequest 登记文件元数据.
type RegisterFileRequest struct {
	Name        string `json:"name"                   rule:"required,max=1024"`
	Size        int64  `json:"size"                   rule:"min=0"`
	ContentType string `json:"content_type,omitempty" rule:"omitempty,max=255"`
	// 为空时由分类器根据扩展名与内容类型推断
	Category  string     `json:"category,omitempty"   rule:"omitempty,category"`
	URL       string     `json:"url,omitempty"        rule:"omitempty,url"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// RecentFilesQuery 最近文件查询参数.
type RecentFilesQuery struct {
	Limit int `form:"limit" rule:"omitempty,min=1,max=100"`
}

// RecentFilesResponse 最近文件列表.
type RecentFilesResponse struct {
	Files []RecentFile `json:"files"`
	Count int          `json:"count"`
}
