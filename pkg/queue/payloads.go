package queue

import "time"

// EventHeader 定义所有事件的通用头部元数据.
// 建议在发布消息时填充 TraceID、OccurredAt、Producer 等，便于追踪链路与审计.
type EventHeader struct {
	// Topic 冗余记录消息主题，便于离线处理或转储后定位来源主题.
	Topic string `json:"topic"`
	// TraceID 分布式追踪/关联 ID，可来自中间件或业务生成.
	TraceID string `json:"trace_id,omitempty"`
	// Producer 生产者服务名或节点标识.
	Producer string `json:"producer,omitempty"`
	// OccurredAt 事件发生时间（UTC，RFC3339）.
	OccurredAt time.Time `json:"occurred_at"`
	// Version 事件负载版本，便于向后兼容演进.
	Version string `json:"version,omitempty"`
}

// Message 是统一的消息封装，Header + Payload.
// T 即不同主题对应的负载结构体.
type Message[T any] struct {
	Header  EventHeader `json:"header"`
	Payload T           `json:"payload"`
}

// ObjectRef 标识保管库中的一个对象.
type ObjectRef struct {
	ObjectID string `json:"object_id"`
	Owner    string `json:"owner"`
	Checksum string `json:"checksum,omitempty"`
	Size     int64  `json:"size,omitempty"`
	Category string `json:"category,omitempty"`
	MimeType string `json:"mime_type,omitempty"`
}

// ObjectStoredPayload 新对象已落盘并登记元数据.
type ObjectStoredPayload struct {
	Object ObjectRef `json:"object"`
	// StoredName 清洗后的存储文件名.
	StoredName string `json:"stored_name,omitempty"`
	// OriginalName 上传时的原始文件名.
	OriginalName string `json:"original_name,omitempty"`
}

// ObjectDeduplicatedPayload 上传命中去重，返回既有对象.
type ObjectDeduplicatedPayload struct {
	Object ObjectRef `json:"object"`
	// AttemptedName 本次上传给出的文件名，未被采用.
	AttemptedName string `json:"attempted_name,omitempty"`
}

// ObjectQuarantinedPayload 对象被隔离.
type ObjectQuarantinedPayload struct {
	Object ObjectRef `json:"object"`
	Reason string    `json:"reason"`
}

// ObjectDeletedPayload 对象被所有者删除.
type ObjectDeletedPayload struct {
	Object ObjectRef `json:"object"`
}

// ObjectExpiredPayload 对象因超期被清扫移除.
type ObjectExpiredPayload struct {
	Object    ObjectRef `json:"object"`
	ExpiredAt time.Time `json:"expired_at"`
}

// QuotaExceededPayload 配额不足导致的上传拒绝.
type QuotaExceededPayload struct {
	Owner     string `json:"owner"`
	Usage     int64  `json:"usage"`
	Cap       int64  `json:"cap"`
	Requested int64  `json:"requested"`
}

// SweepCompletedPayload 一轮清扫的统计结果.
type SweepCompletedPayload struct {
	Started   time.Time `json:"started"`
	Finished  time.Time `json:"finished"`
	Scanned   int       `json:"scanned"`
	Removed   int       `json:"removed"`
	Failed    int       `json:"failed"`
	BytesFree int64     `json:"bytes_freed"`
}

// SweepFailedPayload 清扫失败.
type SweepFailedPayload struct {
	Started time.Time `json:"started"`
	Error   string    `json:"error"`
}
