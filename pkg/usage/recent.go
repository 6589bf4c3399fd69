package usage

import (
	"cmp"
	"slices"
)

// RecentFiles 返回按创建时间倒序的前 limit 条记录副本，时间相同按 ID 排序.
// limit <= 0 时返回全部.
func RecentFiles(records []FileRecord, limit int) []FileRecord {
	out := slices.Clone(records)
	slices.SortStableFunc(out, func(a, b FileRecord) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}

	return out
}
