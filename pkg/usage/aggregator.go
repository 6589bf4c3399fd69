package usage

import (
	"fmt"
	"slices"
	"time"
)

// Aggregator 用量聚合器，构造后只读，可并发使用.
type Aggregator struct {
	categories []Category
	fallback   Category
}

// Option 聚合器配置项.
type Option func(*Aggregator)

// WithCategories 指定参与统计的分类及其顺序.
func WithCategories(categories ...Category) Option {
	return func(a *Aggregator) {
		if len(categories) == 0 {
			return
		}

		a.categories = slices.Clone(categories)
	}
}

// WithFallback 指定未知分类归入的兜底分类，默认为 other.
func WithFallback(c Category) Option {
	return func(a *Aggregator) {
		if c != "" {
			a.fallback = c
		}
	}
}

// New 创建聚合器. 兜底分类不在分类列表中时会被追加到末尾，保证分类穷尽且互斥.
func New(opts ...Option) *Aggregator {
	a := &Aggregator{
		categories: slices.Clone(DefaultCategories),
		fallback:   CategoryOther,
	}
	for _, opt := range opts {
		opt(a)
	}

	a.categories = dedupe(a.categories)
	if !slices.Contains(a.categories, a.fallback) {
		a.categories = append(a.categories, a.fallback)
	}

	return a
}

func dedupe(cs []Category) []Category {
	seen := make(map[Category]struct{}, len(cs))
	out := cs[:0]
	for _, c := range cs {
		if _, ok := seen[c]; ok || c == "" {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}

	return out
}

// Categories 返回分类列表副本.
func (a *Aggregator) Categories() []Category {
	return slices.Clone(a.categories)
}

// Fallback 返回兜底分类.
func (a *Aggregator) Fallback() Category { return a.fallback }

// resolve 将记录分类映射到已配置的分类.
func (a *Aggregator) resolve(c Category) Category {
	if slices.Contains(a.categories, c) {
		return c
	}

	return a.fallback
}

// ComputeCategorySummaries 单次遍历计算每个分类的大小、最近时间与数量.
//
// 每个已配置分类都会出现在结果中，即使为空. 结果与记录顺序无关.
// 任一记录大小为负时返回 ErrInvalidRecord，不返回部分结果.
func (a *Aggregator) ComputeCategorySummaries(records []FileRecord) (Summaries, error) {
	out := make(Summaries, len(a.categories))
	for _, c := range a.categories {
		out[c] = CategorySummary{Category: c}
	}

	latest := make(map[Category]time.Time, len(a.categories))
	for i := range records {
		r := &records[i]
		if r.SizeBytes < 0 {
			return nil, fmt.Errorf("%w: record %q has negative size %d", ErrInvalidRecord, r.ID, r.SizeBytes)
		}

		c := a.resolve(r.Category)
		s := out[c]
		s.TotalSizeBytes += r.SizeBytes
		s.ElementCount++
		out[c] = s

		if t, ok := latest[c]; !ok || r.CreatedAt.After(t) {
			latest[c] = r.CreatedAt
		}
	}

	for c, t := range latest {
		s := out[c]
		s.LatestAt = &t
		out[c] = s
	}

	return out, nil
}

// ComputeUsageTotals 计算总用量与配额占比. 占比被限制在 [0,1]，已用字节不做截断.
func (a *Aggregator) ComputeUsageTotals(records []FileRecord, quotaBytes int64) (UsageTotals, error) {
	if quotaBytes <= 0 {
		return UsageTotals{}, fmt.Errorf("%w: quota must be positive, got %d", ErrInvalidQuota, quotaBytes)
	}

	var used int64
	for i := range records {
		if records[i].SizeBytes < 0 {
			return UsageTotals{}, fmt.Errorf("%w: record %q has negative size %d",
				ErrInvalidRecord, records[i].ID, records[i].SizeBytes)
		}
		used += records[i].SizeBytes
	}

	return TotalsFor(used, quotaBytes), nil
}

// TotalsFor 由已知用量构造 UsageTotals，调用方需保证 quotaBytes > 0.
func TotalsFor(used, quotaBytes int64) UsageTotals {
	frac := 0.0
	if quotaBytes > 0 {
		frac = float64(used) / float64(quotaBytes)
	}

	return UsageTotals{
		UsedBytes:    used,
		QuotaBytes:   quotaBytes,
		UsedFraction: min(max(frac, 0), 1),
	}
}

var defaultAggregator = New()

// ComputeCategorySummaries 使用默认分类计算分类汇总.
func ComputeCategorySummaries(records []FileRecord) (Summaries, error) {
	return defaultAggregator.ComputeCategorySummaries(records)
}

// ComputeUsageTotals 使用默认聚合器计算总用量.
func ComputeUsageTotals(records []FileRecord, quotaBytes int64) (UsageTotals, error) {
	return defaultAggregator.ComputeUsageTotals(records, quotaBytes)
}
