package vault

import (
	"context"
	"errors"
	"time"

	"github.com/bytedance/sonic"

	"github.com/yeisme/taskvault/pkg/internal/metastore"
	"github.com/yeisme/taskvault/pkg/internal/model"
	"github.com/yeisme/taskvault/pkg/internal/storage/kv"
	"github.com/yeisme/taskvault/pkg/internal/types"
)

const metaCachePrefix = "meta:"

// WithCache 启用元数据读缓存, ttl 由 KV 配置决定.
func WithCache(store kv.KVStore, ttl time.Duration) Option {
	return func(v *Vault) {
		v.cache = store
		v.cacheTTL = ttl
	}
}

// getObject 取对象元数据, 有缓存时走读穿透.
// metastore 的未找到错误在这里统一换成保管库的 ErrNotFound.
func (v *Vault) getObject(ctx context.Context, objectID string) (*model.FileObject, error) {
	if v.cache == nil {
		return v.fetchObject(ctx, objectID)
	}

	key := metaCachePrefix + objectID
	if data, err := v.cache.Get(ctx, key); err == nil {
		var obj model.FileObject
		if uerr := sonic.Unmarshal(data, &obj); uerr == nil {
			return &obj, nil
		}
	} else if !errors.Is(err, kv.ErrKeyNotFound) {
		v.logger.Warn().Err(err).Str("object_id", objectID).Msg("metadata cache read failed")
	}

	obj, err := v.fetchObject(ctx, objectID)
	if err != nil {
		return nil, err
	}
	if data, merr := sonic.Marshal(obj); merr == nil {
		if serr := v.cache.Set(ctx, key, data, v.cacheTTL); serr != nil {
			v.logger.Warn().Err(serr).Str("object_id", objectID).Msg("metadata cache write failed")
		}
	}
	return obj, nil
}

func (v *Vault) fetchObject(ctx context.Context, objectID string) (*model.FileObject, error) {
	obj, err := v.store.GetAnyByID(ctx, objectID)
	if errors.Is(err, metastore.ErrNotFound) {
		return nil, ErrNotFound
	}
	return obj, err
}

// invalidate 使对象的缓存条目失效, 在任何元数据变更后调用.
func (v *Vault) invalidate(ctx context.Context, objectID string) {
	if v.cache == nil {
		return
	}
	if err := v.cache.Delete(ctx, metaCachePrefix+objectID); err != nil {
		v.logger.Warn().Err(err).Str("object_id", objectID).Msg("metadata cache invalidation failed")
	}
}

// authorize 判定请求者能否读取对象.
// 拒绝与不存在返回同一个 ErrNotFound, 不泄露对象是否存在.
func authorize(obj *model.FileObject, requester string) error {
	if obj.State != model.StateActive {
		return ErrNotFound
	}
	if obj.OwnerID != requester && !obj.IsPublic {
		return ErrNotFound
	}
	return nil
}

// Download 取回对象内容, 成功后异步更新最近访问时间.
func (v *Vault) Download(ctx context.Context, requester, objectID string) (*types.DownloadResult, error) {
	obj, err := v.getObject(ctx, objectID)
	if err != nil {
		return nil, err
	}
	if err := authorize(obj, requester); err != nil {
		return nil, err
	}

	content, err := v.layout.Read(obj.StoragePath)
	if err != nil {
		return nil, err
	}
	if got := ChecksumBytes(content); got != obj.Checksum {
		return nil, &StorageIOError{Op: "verify", Path: obj.StoragePath,
			Err: errors.New("checksum mismatch, content corrupted")}
	}

	go v.touchAccess(obj.ID, obj.OwnerID)

	return &types.DownloadResult{
		ObjectID:     obj.ID,
		StoredName:   obj.StoredName,
		OriginalName: obj.OriginalName,
		MimeType:     obj.MimeType,
		Size:         obj.Size,
		Checksum:     obj.Checksum,
		Content:      content,
	}, nil
}

// touchAccess 记录最近访问时间, 失败只记录日志.
func (v *Vault) touchAccess(objectID, ownerID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	obj, err := v.store.GetByID(ctx, ownerID, objectID)
	if err != nil {
		return
	}
	now := time.Now()
	obj.LastAccessedAt = &now
	if err := v.store.Update(ctx, obj); err != nil {
		v.logger.Warn().Err(err).Str("object_id", objectID).Msg("last access update failed")
		return
	}
	v.invalidate(ctx, objectID)
}

// Stat 返回对象的元数据视图, 访问判定与 Download 相同.
func (v *Vault) Stat(ctx context.Context, requester, objectID string) (*types.ObjectInfo, error) {
	obj, err := v.getObject(ctx, objectID)
	if err != nil {
		return nil, err
	}
	if err := authorize(obj, requester); err != nil {
		return nil, err
	}
	info := infoFrom(obj)
	return &info, nil
}

// List 列出所有者的 active 对象.
func (v *Vault) List(ctx context.Context, ownerID string, req types.ListObjectsRequest) (*types.ListObjectsResponse, error) {
	objs, total, err := v.store.List(ctx, ownerID, req)
	if err != nil {
		return nil, err
	}
	infos := make([]types.ObjectInfo, 0, len(objs))
	for i := range objs {
		infos = append(infos, infoFrom(&objs[i]))
	}
	return &types.ListObjectsResponse{Objects: infos, Total: total}, nil
}
