// Package queue 定义消息主题常量与分组，供发布/订阅使用.
package queue

// 主题命名规范：tv.<域>.<动作>[.<状态>]，尽量稳定且向后兼容.
// 域：object(对象生命周期)、sweep(过期清扫)、quota(配额)
// 动作：stored/deduplicated/quarantined/deleted/expired 等

const (
	// 对象生命周期领域.
	TopicObjectStored       = "tv.object.stored"       // 新对象已写入保管库并完成元数据登记
	TopicObjectDeduplicated = "tv.object.deduplicated" // 上传命中内容去重，返回已有对象
	TopicObjectQuarantined  = "tv.object.quarantined"  // 对象未通过安全校验，已移入隔离区
	TopicObjectDeleted      = "tv.object.deleted"      // 对象被所有者删除
	TopicObjectExpired      = "tv.object.expired"      // 对象超过保留期被清扫移除

	// 过期清扫领域.
	TopicSweepCompleted = "tv.sweep.completed" // 一轮清扫结束，附带统计信息
	TopicSweepFailed    = "tv.sweep.failed"    // 清扫过程出现不可恢复错误

	// 配额领域.
	TopicQuotaExceeded = "tv.quota.exceeded" // 上传因配额不足被拒绝
)

// 主题分组，用于批量订阅或权限控制.
var (
	// 对象生命周期相关主题集合.
	ObjectTopics = []string{
		TopicObjectStored, TopicObjectDeduplicated, TopicObjectQuarantined,
		TopicObjectDeleted, TopicObjectExpired,
	}

	// 清扫相关主题集合.
	SweepTopics = []string{
		TopicSweepCompleted, TopicSweepFailed,
	}
)
