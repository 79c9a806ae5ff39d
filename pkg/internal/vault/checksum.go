package vault

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"

	"golang.org/x/sync/singleflight"

	"github.com/yeisme/taskvault/pkg/internal/metastore"
	"github.com/yeisme/taskvault/pkg/internal/model"
)

// ChecksumBytes 计算内容的 SHA-256 摘要, 返回小写十六进制.
func ChecksumBytes(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// ChecksumReader 流式计算摘要, 同时返回读取的字节数.
func ChecksumReader(r io.Reader) (string, int64, error) {
	h := sha256.New()
	n, err := io.Copy(h, r)
	if err != nil {
		return "", n, err
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}

// Deduper 以 (owner, checksum) 为单位收敛并发查重, 同一对象的并发上传
// 只会有一次元数据查询落到存储层.
type Deduper struct {
	store metastore.Store
	group singleflight.Group
}

func NewDeduper(store metastore.Store) *Deduper {
	return &Deduper{store: store}
}

// Resolve 查找同 owner 下内容相同的活跃对象, 未命中返回 nil.
func (d *Deduper) Resolve(ctx context.Context, ownerID, checksum string) (*model.FileObject, error) {
	key := ownerID + ":" + checksum
	v, err, _ := d.group.Do(key, func() (any, error) {
		obj, err := d.store.GetActiveByChecksum(ctx, ownerID, checksum)
		if errors.Is(err, metastore.ErrNotFound) {
			return (*model.FileObject)(nil), nil
		}
		return obj, err
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.FileObject), nil
}

// Forget 使后续查重重新查询存储层, 在写入新对象后调用.
func (d *Deduper) Forget(ownerID, checksum string) {
	d.group.Forget(ownerID + ":" + checksum)
}
