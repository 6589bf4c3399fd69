// Package model 定义持久化到文件元数据库的 GORM 模型.
package model

// All 返回需要自动迁移的全部模型.
func All() []any {
	return []any{&Files{}, &Quota{}, &UsageSnapshot{}}
}
