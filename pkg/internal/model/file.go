package model

import (
	"time"

	"github.com/yeisme/spacedash/pkg/usage"
)

// Files 文件元数据，用量统计的记录来源.
type Files struct {
	// ULID，按时间有序
	ID   string `gorm:"primaryKey;size:26" json:"id"`
	User string `gorm:"size:255;index:idx_user_created,priority:1;index:idx_user_name,unique" json:"user"`
	// 文件名（或对象键），在 user 下唯一
	Name        string `gorm:"size:1024;index:idx_user_name,unique" json:"name"`
	Size        int64  `gorm:"index"                                json:"size"`
	Category    string `gorm:"size:32;index"                        json:"category"`
	ContentType string `gorm:"size:255"                             json:"content_type"`
	Extension   string `gorm:"size:32"                              json:"extension"`
	URL         string `gorm:"size:2048"                            json:"url"`
	// 删除为硬删除，(user, name) 释放后可重新登记
	CreatedAt time.Time `gorm:"index:idx_user_created,priority:2" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToRecord 转换为聚合器的输入记录.
func (f *Files) ToRecord() usage.FileRecord {
	return usage.FileRecord{
		ID:          f.ID,
		Name:        f.Name,
		Category:    usage.Category(f.Category),
		SizeBytes:   f.Size,
		CreatedAt:   f.CreatedAt,
		URL:         f.URL,
		Extension:   f.Extension,
		ContentType: f.ContentType,
	}
}
