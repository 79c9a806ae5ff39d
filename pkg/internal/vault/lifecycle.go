package vault

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/yeisme/taskvault/pkg/internal/metastore"
	"github.com/yeisme/taskvault/pkg/internal/model"
	"github.com/yeisme/taskvault/pkg/internal/types"
	"github.com/yeisme/taskvault/pkg/metrics"
	"github.com/yeisme/taskvault/pkg/queue"
)

// Delete 删除所有者自己的对象.
// 软删除只标记元数据, 文件保留在磁盘上可以恢复;
// permanent 为 true 时移除文件、备份与元数据行, 不可恢复.
func (v *Vault) Delete(ctx context.Context, requester, objectID string, permanent bool) error {
	obj, err := v.store.GetByID(ctx, requester, objectID)
	if errors.Is(err, metastore.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if obj.State == model.StateDeleted {
		return ErrNotFound
	}

	if permanent {
		if err := v.removeContent(ctx, obj); err != nil {
			return err
		}
		if err := v.store.HardDelete(ctx, obj); err != nil {
			return err
		}
	} else {
		if err := v.store.SoftDelete(ctx, obj); err != nil {
			return err
		}
	}
	v.invalidate(ctx, objectID)

	v.logger.Info().Str("object_id", objectID).Str("owner", requester).
		Bool("permanent", permanent).Msg("object deleted")
	v.events.ObjectDeleted(obj)

	return nil
}

// removeContent 清理对象的文件与备份副本.
func (v *Vault) removeContent(ctx context.Context, obj *model.FileObject) error {
	if err := v.layout.Remove(obj.StoragePath); err != nil {
		return err
	}
	if obj.BackupPath != "" {
		if err := v.replicator.Delete(ctx, obj.OwnerID, obj.ID); err != nil {
			v.logger.Warn().Err(err).Str("object_id", obj.ID).Msg("backup removal failed")
		}
	}
	return nil
}

// SweepExpired 扫描并移除所有过期对象, 返回本轮统计.
// 单个对象的失败不会中断整轮清扫, 失败对象留待下一轮重试.
func (v *Vault) SweepExpired(ctx context.Context) (*types.SweepReport, error) {
	started := time.Now()

	expired, err := v.store.ListExpired(ctx, started, 0)
	if err != nil {
		v.events.SweepFailed(queue.SweepFailedPayload{Started: started, Error: err.Error()})
		return nil, err
	}

	concurrency := v.cfg.SweepConcurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	sem := semaphore.NewWeighted(int64(concurrency))

	var (
		wg         sync.WaitGroup
		removed    atomic.Int64
		failed     atomic.Int64
		bytesFreed atomic.Int64
	)

	for i := range expired {
		obj := &expired[i]
		if err := sem.Acquire(ctx, 1); err != nil {
			failed.Add(int64(len(expired) - i))
			break
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(1)

			if err := v.sweepOne(ctx, obj); err != nil {
				failed.Add(1)
				v.logger.Error().Err(err).Str("object_id", obj.ID).Msg("expired object removal failed")
				return
			}
			removed.Add(1)
			bytesFreed.Add(obj.Size)
		}()
	}
	wg.Wait()

	report := &types.SweepReport{
		Started:    started,
		Finished:   time.Now(),
		Scanned:    len(expired),
		Removed:    int(removed.Load()),
		Failed:     int(failed.Load()),
		BytesFreed: bytesFreed.Load(),
	}

	metrics.SweepRemoved.Add(float64(report.Removed))
	metrics.SweepDuration.Observe(report.Finished.Sub(report.Started).Seconds())

	v.logger.Info().
		Int("scanned", report.Scanned).
		Int("removed", report.Removed).
		Int("failed", report.Failed).
		Int64("bytes_freed", report.BytesFreed).
		Msg("expiry sweep completed")

	v.events.SweepCompleted(queue.SweepCompletedPayload{
		Started:   report.Started,
		Finished:  report.Finished,
		Scanned:   report.Scanned,
		Removed:   report.Removed,
		Failed:    report.Failed,
		BytesFree: report.BytesFreed,
	})

	return report, nil
}

// sweepOne 移除单个过期对象.
func (v *Vault) sweepOne(ctx context.Context, obj *model.FileObject) error {
	if err := v.removeContent(ctx, obj); err != nil {
		return err
	}
	if err := v.store.SoftDelete(ctx, obj); err != nil {
		return err
	}
	v.invalidate(ctx, obj.ID)
	v.events.ObjectExpired(obj)
	return nil
}
