// Package metastore 提供文件对象元数据的持久化访问.
//
// Store 是唯一的访问入口，保管库各模块通过它读写 file_objects 表，
// 不直接触碰 GORM 细节.
package metastore

import (
	"context"
	"errors"
	"time"

	"github.com/yeisme/taskvault/pkg/internal/model"
	"github.com/yeisme/taskvault/pkg/internal/types"
)

// ErrNotFound 对象不存在或不属于请求者.
var ErrNotFound = errors.New("object not found")

// Store 定义元数据存储接口.
type Store interface {
	// Insert 登记新对象.
	Insert(ctx context.Context, obj *model.FileObject) error
	// GetByID 按所有者与 ID 取对象，不存在返回 ErrNotFound.
	GetByID(ctx context.Context, ownerID, objectID string) (*model.FileObject, error)
	// GetAnyByID 按 ID 取对象，不限所有者，用于公开对象的访问判定.
	GetAnyByID(ctx context.Context, objectID string) (*model.FileObject, error)
	// GetActiveByChecksum 按所有者与摘要取 active 状态对象，用于去重判定.
	GetActiveByChecksum(ctx context.Context, ownerID, checksum string) (*model.FileObject, error)
	// Update 保存对象变更并递增版本号.
	Update(ctx context.Context, obj *model.FileObject) error
	// SoftDelete 标记删除并保留审计记录.
	SoftDelete(ctx context.Context, obj *model.FileObject) error
	// HardDelete 彻底移除元数据行，不可恢复.
	HardDelete(ctx context.Context, obj *model.FileObject) error
	// SumUsage 汇总所有者计入配额的字节数与对象数.
	SumUsage(ctx context.Context, ownerID string) (int64, int, error)
	// List 按条件列出所有者的 active 对象.
	List(ctx context.Context, ownerID string, req types.ListObjectsRequest) ([]model.FileObject, int64, error)
	// ListExpired 列出给定时刻前到期的 active 对象，limit<=0 表示不限.
	ListExpired(ctx context.Context, now time.Time, limit int) ([]model.FileObject, error)
	// AggregateByCategory 按分类聚合所有者用量.
	AggregateByCategory(ctx context.Context, ownerID string) ([]types.CategoryUsage, error)
	// AggregateGlobal 全局按所有者聚合用量.
	AggregateGlobal(ctx context.Context) (*types.GlobalUsage, error)
}
