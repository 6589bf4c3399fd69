package model

import "time"

// Quota 用户配额，未设置时使用配置中的默认值.
type Quota struct {
	User      string    `gorm:"primaryKey;size:255" json:"user"`
	Bytes     int64     `json:"bytes"`
	UpdatedAt time.Time `json:"updated_at"`
}
