package queue

// 主题命名规范：sd.<域>.<动作>[.<状态>]，尽量稳定且向后兼容.
// 域：file(文件元数据)、usage(用量统计)

const (
	// 文件元数据领域.
	TopicFileRegistered = "sd.file.registered" // 文件元数据已登记，用户用量发生变化
	TopicFileDeleted    = "sd.file.deleted"    // 文件元数据已删除

	// 用量统计领域.
	TopicUsageComputed      = "sd.usage.computed"       // 完成一次仪表盘统计
	TopicUsageQuotaExceeded = "sd.usage.quota.exceeded" // 用量超过配额告警
)

// 主题分组，用于批量订阅.
var (
	// FileTopics 会改变用户用量的主题，订阅后用于缓存失效.
	FileTopics = []string{TopicFileRegistered, TopicFileDeleted}

	// UsageTopics 用量统计相关主题.
	UsageTopics = []string{TopicUsageComputed, TopicUsageQuotaExceeded}
)
