package queue

import "github.com/ThreeDotsLabs/watermill/message"

// -------------------------- 基于业务封装 events --------------------------

// PublishObjectStored 发布 tv.object.stored 事件。
// 对象落盘并登记元数据后调用，通知下游消费（如索引、通知等）。
// 可通过可选项 opts 注入 TraceID、Producer 等头部信息。
func PublishObjectStored(pub message.Publisher, payload ObjectStoredPayload, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(TopicObjectStored, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(TopicObjectStored, msg)
}

// PublishObjectDeduplicated 发布 tv.object.deduplicated 事件.
func PublishObjectDeduplicated(pub message.Publisher, payload ObjectDeduplicatedPayload, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(TopicObjectDeduplicated, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(TopicObjectDeduplicated, msg)
}

// PublishObjectQuarantined 发布 tv.object.quarantined 事件.
func PublishObjectQuarantined(pub message.Publisher, payload ObjectQuarantinedPayload, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(TopicObjectQuarantined, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(TopicObjectQuarantined, msg)
}

// PublishObjectDeleted 发布 tv.object.deleted 事件.
func PublishObjectDeleted(pub message.Publisher, payload ObjectDeletedPayload, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(TopicObjectDeleted, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(TopicObjectDeleted, msg)
}

// PublishObjectExpired 发布 tv.object.expired 事件.
func PublishObjectExpired(pub message.Publisher, payload ObjectExpiredPayload, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(TopicObjectExpired, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(TopicObjectExpired, msg)
}

// PublishQuotaExceeded 发布 tv.quota.exceeded 事件.
func PublishQuotaExceeded(pub message.Publisher, payload QuotaExceededPayload, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(TopicQuotaExceeded, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(TopicQuotaExceeded, msg)
}

// PublishSweepCompleted 发布 tv.sweep.completed 事件.
func PublishSweepCompleted(pub message.Publisher, payload SweepCompletedPayload, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(TopicSweepCompleted, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(TopicSweepCompleted, msg)
}

// PublishSweepFailed 发布 tv.sweep.failed 事件.
func PublishSweepFailed(pub message.Publisher, payload SweepFailedPayload, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(TopicSweepFailed, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(TopicSweepFailed, msg)
}

// ParseObjectStored 将 Watermill 消息解析为强类型 Envelope（ObjectStoredPayload）。
func ParseObjectStored(msg *message.Message) (Message[ObjectStoredPayload], error) {
	return ParseWatermillMessage[ObjectStoredPayload](msg)
}
