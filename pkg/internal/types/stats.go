package types

import "time"

// UsageSummary 单个所有者的存储用量.
type UsageSummary struct {
	OwnerID string `json:"owner_id"`
	// UsedBytes 计入配额的字节总数（active 与 quarantined 状态）
	UsedBytes int64 `json:"used_bytes"`
	// CapBytes 配额上限
	CapBytes int64 `json:"cap_bytes"`
	// Objects 计入配额的对象数
	Objects int `json:"objects"`
	// ByCategory 按分类聚合的用量
	ByCategory []CategoryUsage `json:"by_category,omitempty"`
}

// CategoryUsage 按分类聚合的用量项.
type CategoryUsage struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
	Size     int64  `json:"size"`
}

// GlobalUsage 全局用量统计，仅管理员可见.
type GlobalUsage struct {
	TotalBytes   int64        `json:"total_bytes"`
	TotalObjects int          `json:"total_objects"`
	Owners       int          `json:"owners"`
	ByOwner      []OwnerUsage `json:"by_owner,omitempty"`
}

// OwnerUsage 按所有者聚合的用量项.
type OwnerUsage struct {
	OwnerID string `json:"owner_id"`
	Count   int    `json:"count"`
	Size    int64  `json:"size"`
}

// SweepReport 一轮过期清扫的统计.
type SweepReport struct {
	Started  time.Time `json:"started"`
	Finished time.Time `json:"finished"`
	// Scanned 扫描到的过期候选对象数
	Scanned int `json:"scanned"`
	// Removed 成功移除的对象数
	Removed int `json:"removed"`
	// Failed 移除失败的对象数，下一轮重试
	Failed int `json:"failed"`
	// BytesFreed 释放的字节数
	BytesFreed int64 `json:"bytes_freed"`
}
