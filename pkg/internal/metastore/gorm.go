package metastore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/yeisme/taskvault/pkg/internal/model"
	"github.com/yeisme/taskvault/pkg/internal/types"
)

// gormStore 基于 GORM 的 Store 实现.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore 创建 GORM 元数据存储并迁移表结构.
func NewGormStore(db *gorm.DB) (Store, error) {
	if err := db.AutoMigrate(&model.FileObject{}); err != nil {
		return nil, fmt.Errorf("migrate file_objects: %w", err)
	}

	return &gormStore{db: db}, nil
}

func (s *gormStore) Insert(ctx context.Context, obj *model.FileObject) error {
	return s.db.WithContext(ctx).Create(obj).Error
}

func (s *gormStore) GetByID(ctx context.Context, ownerID, objectID string) (*model.FileObject, error) {
	var obj model.FileObject

	err := s.db.WithContext(ctx).
		Where("owner_id = ? AND id = ?", ownerID, objectID).
		First(&obj).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, err
	}

	return &obj, nil
}

func (s *gormStore) GetAnyByID(ctx context.Context, objectID string) (*model.FileObject, error) {
	var obj model.FileObject

	err := s.db.WithContext(ctx).
		Where("id = ?", objectID).
		First(&obj).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, err
	}

	return &obj, nil
}

func (s *gormStore) GetActiveByChecksum(ctx context.Context, ownerID, checksum string) (*model.FileObject, error) {
	var obj model.FileObject

	err := s.db.WithContext(ctx).
		Where("owner_id = ? AND checksum = ? AND state = ?", ownerID, checksum, model.StateActive).
		First(&obj).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, err
	}

	return &obj, nil
}

func (s *gormStore) Update(ctx context.Context, obj *model.FileObject) error {
	obj.Version++

	return s.db.WithContext(ctx).Save(obj).Error
}

func (s *gormStore) SoftDelete(ctx context.Context, obj *model.FileObject) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 状态改为 deleted 后再软删除，审计记录里能看到最终状态
		if err := tx.Model(obj).Updates(map[string]any{
			"state":   model.StateDeleted,
			"version": gorm.Expr("version + 1"),
		}).Error; err != nil {
			return err
		}

		return tx.Delete(obj).Error
	})
}

func (s *gormStore) HardDelete(ctx context.Context, obj *model.FileObject) error {
	return s.db.WithContext(ctx).Unscoped().Delete(obj).Error
}

func (s *gormStore) SumUsage(ctx context.Context, ownerID string) (int64, int, error) {
	type row struct {
		Total int64
		Count int
	}

	var r row

	// 隔离对象保留在磁盘上，仍计入配额
	err := s.db.WithContext(ctx).Model(&model.FileObject{}).
		Select("COALESCE(SUM(size),0) AS total, COUNT(*) AS count").
		Where("owner_id = ? AND state IN ?", ownerID,
			[]model.LifecycleState{model.StateActive, model.StateQuarantined}).
		Scan(&r).Error
	if err != nil {
		return 0, 0, err
	}

	return r.Total, r.Count, nil
}

func (s *gormStore) List(ctx context.Context, ownerID string, req types.ListObjectsRequest) ([]model.FileObject, int64, error) {
	q := s.db.WithContext(ctx).Model(&model.FileObject{}).
		Where("owner_id = ? AND state = ?", ownerID, model.StateActive)

	if req.Category != "" {
		q = q.Where("category = ?", req.Category)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if req.Limit > 0 {
		q = q.Limit(req.Limit)
	}

	if req.Offset > 0 {
		q = q.Offset(req.Offset)
	}

	var objs []model.FileObject
	if err := q.Order("id").Find(&objs).Error; err != nil {
		return nil, 0, err
	}

	return objs, total, nil
}

func (s *gormStore) ListExpired(ctx context.Context, now time.Time, limit int) ([]model.FileObject, error) {
	q := s.db.WithContext(ctx).
		Where("state = ? AND expires_at IS NOT NULL AND expires_at <= ?", model.StateActive, now)

	if limit > 0 {
		q = q.Limit(limit)
	}

	var objs []model.FileObject
	if err := q.Order("expires_at").Find(&objs).Error; err != nil {
		return nil, err
	}

	return objs, nil
}

func (s *gormStore) AggregateByCategory(ctx context.Context, ownerID string) ([]types.CategoryUsage, error) {
	var rows []types.CategoryUsage

	err := s.db.WithContext(ctx).Model(&model.FileObject{}).
		Select("category, COUNT(*) AS count, COALESCE(SUM(size),0) AS size").
		Where("owner_id = ? AND state IN ?", ownerID,
			[]model.LifecycleState{model.StateActive, model.StateQuarantined}).
		Group("category").
		Order("category").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	return rows, nil
}

func (s *gormStore) AggregateGlobal(ctx context.Context) (*types.GlobalUsage, error) {
	var rows []types.OwnerUsage

	err := s.db.WithContext(ctx).Model(&model.FileObject{}).
		Select("owner_id, COUNT(*) AS count, COALESCE(SUM(size),0) AS size").
		Where("state IN ?", []model.LifecycleState{model.StateActive, model.StateQuarantined}).
		Group("owner_id").
		Order("owner_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := &types.GlobalUsage{ByOwner: rows, Owners: len(rows)}
	for _, r := range rows {
		out.TotalBytes += r.Size
		out.TotalObjects += r.Count
	}

	return out, nil
}
