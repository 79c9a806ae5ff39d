package vault

import (
	"context"

	s3c "github.com/yeisme/taskvault/pkg/internal/storage/s3"
)

// Replicator 异地备份副本的写入与清理.
type Replicator interface {
	// Backup 上传备份副本, 返回副本标识.
	Backup(ctx context.Context, ownerID, objectID string, content []byte, contentType string) (string, error)
	// Delete 清理备份副本, 副本不存在视为成功.
	Delete(ctx context.Context, ownerID, objectID string) error
}

// s3Replicator 基于对象存储的备份实现.
type s3Replicator struct {
	client *s3c.Client
}

func NewS3Replicator(client *s3c.Client) Replicator {
	return &s3Replicator{client: client}
}

func (r *s3Replicator) Backup(ctx context.Context, ownerID, objectID string, content []byte, contentType string) (string, error) {
	if err := r.client.PutBackup(ctx, ownerID, objectID, content, contentType); err != nil {
		return "", err
	}
	return ownerID + "/" + objectID, nil
}

func (r *s3Replicator) Delete(ctx context.Context, ownerID, objectID string) error {
	return r.client.RemoveBackup(ctx, ownerID, objectID)
}

// nopReplicator 在备份未启用时使用.
type nopReplicator struct{}

func NewNopReplicator() Replicator { return nopReplicator{} }

func (nopReplicator) Backup(context.Context, string, string, []byte, string) (string, error) {
	return "", nil
}

func (nopReplicator) Delete(context.Context, string, string) error { return nil }
