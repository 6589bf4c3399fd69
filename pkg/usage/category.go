// Package usage 提供存储用量聚合：按分类统计文件大小、最近时间与数量，并计算配额占用.
//
// 所有操作都是对内存快照的纯函数计算，不做 I/O，不持有可变状态，可被多个调用方并发使用.
// 数据获取（数据库、对象存储）、分页、重试与缓存均由调用方负责.
//
// Example:
//
//	agg := usage.New()
//	sums, err := agg.ComputeCategorySummaries(records)
//	if err != nil {
//		// errors.Is(err, usage.ErrInvalidRecord)
//	}
//
//	totals, err := agg.ComputeUsageTotals(records, 2<<30)
//	fmt.Println(usage.FormatSize(totals.UsedBytes))
package usage

import "strings"

// Category 文件分类，封闭枚举.
type Category string

const (
	CategoryDocument Category = "document"
	CategoryImage    Category = "image"
	CategoryMedia    Category = "media" // 视频与音频
	CategoryOther    Category = "other"
)

// DefaultCategories 默认分类顺序，同时也是仪表盘卡片的展示顺序.
var DefaultCategories = []Category{
	CategoryDocument,
	CategoryImage,
	CategoryMedia,
	CategoryOther,
}

// ParseCategory 解析分类字符串，兼容复数与 video/audio 写法.
func ParseCategory(s string) (Category, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "document", "documents", "doc", "docs":
		return CategoryDocument, true
	case "image", "images":
		return CategoryImage, true
	case "media", "video", "audio":
		return CategoryMedia, true
	case "other", "others":
		return CategoryOther, true
	default:
		return "", false
	}
}

// Valid 判断是否为已知分类.
func (c Category) Valid() bool {
	switch c {
	case CategoryDocument, CategoryImage, CategoryMedia, CategoryOther:
		return true
	default:
		return false
	}
}

// String 实现 fmt.Stringer.
func (c Category) String() string { return string(c) }
