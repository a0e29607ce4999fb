package metadata

// 这些键用于metadata表的key列。
const (
	// SeedCompletedAtKey 记录了模板种子数据首次导入完成的时间
	SeedCompletedAtKey = "seed_completed_at"

	// LastTemplateSyncKey 记录了模板同步工作器最近一次成功同步的时间
	LastTemplateSyncKey = "last_template_sync_at"
)
