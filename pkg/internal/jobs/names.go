package jobs

// 任务名称常量.
const (
	JobUsageSnapshot = "usage.snapshot"
)
