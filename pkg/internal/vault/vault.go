package vault

import (
	"context"
	"errors"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/yeisme/taskvault/pkg/configs"
	"github.com/yeisme/taskvault/pkg/internal/metastore"
	"github.com/yeisme/taskvault/pkg/internal/model"
	"github.com/yeisme/taskvault/pkg/internal/storage/kv"
	"github.com/yeisme/taskvault/pkg/internal/types"
	"github.com/yeisme/taskvault/pkg/log"
	"github.com/yeisme/taskvault/pkg/metrics"
	"github.com/yeisme/taskvault/pkg/queue"
)

// Vault 是文件保管库的核心服务, 串起上传流水线与生命周期管理.
//
// 上传流水线: 清洗 -> 校验 -> 压缩 -> 摘要 -> 去重 -> 配额 -> 暂存 ->
// 落盘 -> 备份 -> 登记元数据. 元数据登记是持久化的判定点, 登记失败
// 会回滚已写入的文件与备份.
type Vault struct {
	cfg        *configs.VaultConfig
	store      metastore.Store
	layout     *Layout
	validator  *Validator
	optimizer  *ImageOptimizer
	quota      *QuotaGuard
	deduper    *Deduper
	replicator Replicator
	events     EventSink
	cache      kv.KVStore
	cacheTTL   time.Duration
	logger     zerolog.Logger
}

// Option 自定义 Vault 的可选依赖.
type Option func(*Vault)

// WithReplicator 设置备份副本写入器.
func WithReplicator(r Replicator) Option {
	return func(v *Vault) { v.replicator = r }
}

// WithEventSink 设置事件出口.
func WithEventSink(s EventSink) Option {
	return func(v *Vault) { v.events = s }
}

// WithScanner 设置外部内容扫描器.
func WithScanner(s Scanner) Option {
	return func(v *Vault) { v.validator = NewValidator(v.cfg, s) }
}

func New(cfg *configs.VaultConfig, store metastore.Store, opts ...Option) *Vault {
	v := &Vault{
		cfg:        cfg,
		store:      store,
		layout:     NewLayout(cfg),
		validator:  NewValidator(cfg, nil),
		optimizer:  NewImageOptimizer(cfg),
		quota:      NewQuotaGuard(cfg, store),
		deduper:    NewDeduper(store),
		replicator: NewNopReplicator(),
		events:     NewNopEventSink(),
		logger:     log.Component("vault"),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Upload 执行完整的入库流水线.
// 去重命中时返回既有对象且不产生新写入.
func (v *Vault) Upload(ctx context.Context, req types.UploadRequest) (*types.UploadResult, error) {
	storedName := SanitizeName(req.FileName)

	verdict, err := v.validator.Check(storedName, req.Content, req.DeclaredMime)
	if err != nil {
		var serr *SecurityError
		if errors.As(err, &serr) && serr.Quarantine {
			return nil, v.quarantine(ctx, req, storedName, serr)
		}
		metrics.UploadTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}

	content, optimized := req.Content, false
	if verdict.Category == CategoryImage {
		content, optimized = v.optimizer.Optimize(req.Content, verdict.MimeType)
	}

	checksum := ChecksumBytes(content)
	size := int64(len(content))

	// 准入锁覆盖 去重判定 -> 配额检查 -> 元数据登记 整个窗口,
	// 保证同一 owner 的并发上传不会共同超出配额.
	v.quota.Lock(req.OwnerID)
	defer v.quota.Unlock(req.OwnerID)

	if existing, err := v.deduper.Resolve(ctx, req.OwnerID, checksum); err != nil {
		return nil, err
	} else if existing != nil {
		metrics.UploadTotal.WithLabelValues("deduplicated").Inc()
		v.events.ObjectDeduplicated(existing, req.FileName)
		return dedupResult(existing), nil
	}

	if err := v.quota.Admit(ctx, req.OwnerID, size); err != nil {
		var qerr *QuotaExceededError
		if errors.As(err, &qerr) {
			metrics.QuotaRejections.Inc()
			metrics.UploadTotal.WithLabelValues("rejected").Inc()
			v.events.QuotaExceeded(queue.QuotaExceededPayload{
				Owner:     qerr.OwnerID,
				Usage:     qerr.Usage,
				Cap:       qerr.Cap,
				Requested: qerr.Requested,
			})
		}
		return nil, err
	}

	objectID := ulid.Make().String()

	stagedPath, err := v.layout.Stage(objectID, content)
	if err != nil {
		metrics.UploadTotal.WithLabelValues("failed").Inc()
		return nil, err
	}
	finalPath := v.layout.PathFor(verdict.Category, objectID, storedName)
	if err := v.layout.Commit(stagedPath, finalPath); err != nil {
		_ = v.layout.Discard(stagedPath)
		metrics.UploadTotal.WithLabelValues("failed").Inc()
		return nil, err
	}

	// 备份尽力而为, 失败不阻断入库.
	backupPath := ""
	if v.cfg.BackupEnabled {
		backupPath, err = v.replicator.Backup(ctx, req.OwnerID, objectID, content, verdict.MimeType)
		if err != nil {
			v.logger.Warn().Err(err).Str("object_id", objectID).Msg("backup failed, object stored without replica")
			backupPath = ""
		}
	}

	tagsJSON, err := encodeTags(req.Tags)
	if err != nil {
		return nil, v.rollback(ctx, req.OwnerID, objectID, finalPath, backupPath, err)
	}

	obj := &model.FileObject{
		ID:           objectID,
		OwnerID:      req.OwnerID,
		Checksum:     checksum,
		OriginalName: req.FileName,
		StoredName:   storedName,
		StoragePath:  finalPath,
		Size:         size,
		MimeType:     verdict.MimeType,
		Category:     string(verdict.Category),
		State:        model.StateActive,
		TagsJSON:     tagsJSON,
		IsPublic:     req.IsPublic,
		ProjectRef:   req.ProjectRef,
		TaskRef:      req.TaskRef,
		BackupPath:   backupPath,
		Version:      1,
		ExpiresAt:    v.expiryFor(req.ExpiryDays),
	}

	if err := v.store.Insert(ctx, obj); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// 并发竞争下另一次上传先行登记了同内容对象, 取胜者为准.
			if winner, werr := v.store.GetActiveByChecksum(ctx, req.OwnerID, checksum); werr == nil {
				_ = v.rollback(ctx, req.OwnerID, objectID, finalPath, backupPath, nil)
				metrics.UploadTotal.WithLabelValues("deduplicated").Inc()
				return dedupResult(winner), nil
			}
		}
		return nil, v.rollback(ctx, req.OwnerID, objectID, finalPath, backupPath, err)
	}
	v.deduper.Forget(req.OwnerID, checksum)

	metrics.UploadTotal.WithLabelValues("stored").Inc()
	metrics.StoredBytes.WithLabelValues(req.OwnerID).Add(float64(size))

	v.logger.Info().
		Str("object_id", objectID).
		Str("owner", req.OwnerID).
		Str("category", string(verdict.Category)).
		Int64("size", size).
		Msg("object stored")
	v.events.ObjectStored(obj)

	return &types.UploadResult{
		ObjectID:   objectID,
		StoredName: storedName,
		Checksum:   checksum,
		Size:       size,
		MimeType:   verdict.MimeType,
		Category:   string(verdict.Category),
		Optimized:  optimized,
		ExpiresAt:  obj.ExpiresAt,
	}, nil
}

// quarantine 保留命中安全策略的内容到隔离区并登记隔离记录.
// 返回原始的 SecurityError, 调用方据此向客户端报告.
func (v *Vault) quarantine(ctx context.Context, req types.UploadRequest, storedName string, serr *SecurityError) error {
	objectID := ulid.Make().String()

	path, err := v.layout.Quarantine(objectID, storedName, req.Content)
	if err != nil {
		v.logger.Error().Err(err).Str("owner", req.OwnerID).Msg("quarantine write failed")
		metrics.UploadTotal.WithLabelValues("failed").Inc()
		return err
	}

	obj := &model.FileObject{
		ID:               objectID,
		OwnerID:          req.OwnerID,
		Checksum:         ChecksumBytes(req.Content),
		OriginalName:     req.FileName,
		StoredName:       storedName,
		StoragePath:      path,
		Size:             int64(len(req.Content)),
		MimeType:         "application/octet-stream",
		Category:         string(CategoryOther),
		State:            model.StateQuarantined,
		QuarantineReason: serr.Reason,
		Version:          1,
	}
	if err := v.store.Insert(ctx, obj); err != nil {
		_ = v.layout.Remove(path)
		metrics.UploadTotal.WithLabelValues("failed").Inc()
		return err
	}

	metrics.UploadTotal.WithLabelValues("quarantined").Inc()
	v.logger.Warn().
		Str("object_id", objectID).
		Str("owner", req.OwnerID).
		Str("reason", serr.Reason).
		Msg("object quarantined")
	v.events.ObjectQuarantined(obj, serr.Reason)

	return serr
}

// rollback 在元数据登记失败后清理已写入的文件与备份.
func (v *Vault) rollback(ctx context.Context, ownerID, objectID, finalPath, backupPath string, cause error) error {
	if rerr := v.layout.Remove(finalPath); rerr != nil {
		v.logger.Error().Err(rerr).Str("path", finalPath).Msg("rollback: file removal failed")
	}
	if backupPath != "" {
		if berr := v.replicator.Delete(ctx, ownerID, objectID); berr != nil {
			v.logger.Error().Err(berr).Str("object_id", objectID).Msg("rollback: backup removal failed")
		}
	}
	if cause != nil {
		metrics.UploadTotal.WithLabelValues("failed").Inc()
	}
	return cause
}

// expiryFor 计算过期时间: 请求指定天数优先, 否则用全局保留期, 都为 0 则永不过期.
func (v *Vault) expiryFor(expiryDays int) *time.Time {
	days := expiryDays
	if days <= 0 {
		days = v.cfg.RetentionDays
	}
	if days <= 0 {
		return nil
	}
	t := time.Now().Add(time.Duration(days) * 24 * time.Hour)
	return &t
}

func dedupResult(obj *model.FileObject) *types.UploadResult {
	return &types.UploadResult{
		ObjectID:     obj.ID,
		Deduplicated: true,
		StoredName:   obj.StoredName,
		Checksum:     obj.Checksum,
		Size:         obj.Size,
		MimeType:     obj.MimeType,
		Category:     obj.Category,
		ExpiresAt:    obj.ExpiresAt,
	}
}

// infoFrom 将存储模型转换为对外元数据视图.
func infoFrom(obj *model.FileObject) types.ObjectInfo {
	return types.ObjectInfo{
		ObjectID:     obj.ID,
		OwnerID:      obj.OwnerID,
		StoredName:   obj.StoredName,
		OriginalName: obj.OriginalName,
		Checksum:     obj.Checksum,
		Size:         obj.Size,
		MimeType:     obj.MimeType,
		Category:     obj.Category,
		State:        string(obj.State),
		Tags:         decodeTags(obj.TagsJSON),
		IsPublic:     obj.IsPublic,
		ProjectRef:   obj.ProjectRef,
		TaskRef:      obj.TaskRef,
		Version:      obj.Version,
		CreatedAt:    obj.CreatedAt,
		ExpiresAt:    obj.ExpiresAt,
	}
}
