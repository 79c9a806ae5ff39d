package vault

import (
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"

	"github.com/yeisme/taskvault/pkg/configs"
	"github.com/yeisme/taskvault/pkg/internal/model"
	"github.com/yeisme/taskvault/pkg/log"
	"github.com/yeisme/taskvault/pkg/queue"
)

// EventSink 对象生命周期事件的出口, 发布失败只记录不阻断主流程.
type EventSink interface {
	ObjectStored(obj *model.FileObject)
	ObjectDeduplicated(obj *model.FileObject, attemptedName string)
	ObjectQuarantined(obj *model.FileObject, reason string)
	ObjectDeleted(obj *model.FileObject)
	ObjectExpired(obj *model.FileObject)
	QuotaExceeded(payload queue.QuotaExceededPayload)
	SweepCompleted(payload queue.SweepCompletedPayload)
	SweepFailed(payload queue.SweepFailedPayload)
}

// mqEventSink 通过消息队列发布事件.
type mqEventSink struct {
	pub    message.Publisher
	cfg    *configs.EventsConfig
	logger zerolog.Logger
}

func NewMQEventSink(pub message.Publisher, cfg *configs.EventsConfig) EventSink {
	return &mqEventSink{pub: pub, cfg: cfg, logger: log.Component("events")}
}

func objectRef(obj *model.FileObject) queue.ObjectRef {
	return queue.ObjectRef{
		ObjectID: obj.ID,
		Owner:    obj.OwnerID,
		Checksum: obj.Checksum,
		Size:     obj.Size,
		Category: obj.Category,
		MimeType: obj.MimeType,
	}
}

func (s *mqEventSink) report(topic string, err error) {
	if err != nil {
		s.logger.Error().Err(err).Str("topic", topic).Msg("event publish failed")
	}
}

func (s *mqEventSink) ObjectStored(obj *model.FileObject) {
	if !s.cfg.PublishStored {
		return
	}
	s.report(queue.TopicObjectStored, queue.PublishObjectStored(s.pub, queue.ObjectStoredPayload{
		Object:       objectRef(obj),
		StoredName:   obj.StoredName,
		OriginalName: obj.OriginalName,
	}))
}

func (s *mqEventSink) ObjectDeduplicated(obj *model.FileObject, attemptedName string) {
	if !s.cfg.PublishDeduplicated {
		return
	}
	s.report(queue.TopicObjectDeduplicated, queue.PublishObjectDeduplicated(s.pub, queue.ObjectDeduplicatedPayload{
		Object:        objectRef(obj),
		AttemptedName: attemptedName,
	}))
}

func (s *mqEventSink) ObjectQuarantined(obj *model.FileObject, reason string) {
	if !s.cfg.PublishQuarantined {
		return
	}
	s.report(queue.TopicObjectQuarantined, queue.PublishObjectQuarantined(s.pub, queue.ObjectQuarantinedPayload{
		Object: objectRef(obj),
		Reason: reason,
	}))
}

func (s *mqEventSink) ObjectDeleted(obj *model.FileObject) {
	if !s.cfg.PublishDeleted {
		return
	}
	s.report(queue.TopicObjectDeleted, queue.PublishObjectDeleted(s.pub, queue.ObjectDeletedPayload{
		Object: objectRef(obj),
	}))
}

func (s *mqEventSink) ObjectExpired(obj *model.FileObject) {
	if !s.cfg.PublishExpired {
		return
	}
	var expiredAt = obj.UpdatedAt
	if obj.ExpiresAt != nil {
		expiredAt = *obj.ExpiresAt
	}
	s.report(queue.TopicObjectExpired, queue.PublishObjectExpired(s.pub, queue.ObjectExpiredPayload{
		Object:    objectRef(obj),
		ExpiredAt: expiredAt,
	}))
}

func (s *mqEventSink) QuotaExceeded(payload queue.QuotaExceededPayload) {
	s.report(queue.TopicQuotaExceeded, queue.PublishQuotaExceeded(s.pub, payload))
}

func (s *mqEventSink) SweepCompleted(payload queue.SweepCompletedPayload) {
	s.report(queue.TopicSweepCompleted, queue.PublishSweepCompleted(s.pub, payload))
}

func (s *mqEventSink) SweepFailed(payload queue.SweepFailedPayload) {
	s.report(queue.TopicSweepFailed, queue.PublishSweepFailed(s.pub, payload))
}

// nopEventSink 在消息队列未启用时使用.
type nopEventSink struct{}

func NewNopEventSink() EventSink { return nopEventSink{} }

func (nopEventSink) ObjectStored(*model.FileObject)               {}
func (nopEventSink) ObjectDeduplicated(*model.FileObject, string) {}
func (nopEventSink) ObjectQuarantined(*model.FileObject, string)  {}
func (nopEventSink) ObjectDeleted(*model.FileObject)              {}
func (nopEventSink) ObjectExpired(*model.FileObject)              {}
func (nopEventSink) QuotaExceeded(queue.QuotaExceededPayload)     {}
func (nopEventSink) SweepCompleted(queue.SweepCompletedPayload)   {}
func (nopEventSink) SweepFailed(queue.SweepFailedPayload)         {}
