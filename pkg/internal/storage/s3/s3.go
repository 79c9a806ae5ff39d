// Package s3 处理备份副本的 S3 存储操作.
//
// 备份写入经过 gobreaker 熔断保护：S3 端点持续失败时跳过备份，
// 不影响主存储路径的上传结果.
package s3

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"time"

	minio "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/sony/gobreaker"

	"github.com/yeisme/taskvault/pkg/configs"
	nlog "github.com/yeisme/taskvault/pkg/log"
)

// Client 包装 MinIO 客户端和备份熔断器.
type Client struct {
	*minio.Client

	bucket  string
	breaker *gobreaker.CircuitBreaker
}

// New 初始化 MinIO 客户端，若备份桶不存在则尝试创建.
func New(ctx context.Context) (*Client, error) {
	cfg := configs.GetConfig().S3
	endpoint := cfg.Endpoint
	// 允许用户传完整 schema endpoint（http:// 或 https://）
	if u, err := url.Parse(endpoint); err == nil && u.Host != "" {
		endpoint = u.Host
		if u.Scheme == "https" {
			cfg.UseSSL = true
		}
	}

	cli, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	cli.SetAppInfo("taskvault", configs.AppVersion)

	exists, err := cli.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.Bucket, err)
	}

	if !exists {
		if err := cli.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.Bucket, err)
		}

		nlog.Logger().Info().Str("bucket", cfg.Bucket).Msg("backup bucket created")
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "s3-backup",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			nlog.Logger().Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("backup breaker state changed")
		},
	})

	nlog.Logger().Info().Str("endpoint", cfg.Endpoint).Str("bucket", cfg.Bucket).Msg("s3 connected")

	return &Client{Client: cli, bucket: cfg.Bucket, breaker: breaker}, nil
}

// PutBackup 把对象内容写入备份桶，对象键为 owner/objectID.
// 熔断器打开时直接返回错误，调用方按尽力而为处理.
func (c *Client) PutBackup(ctx context.Context, owner, objectID string, content []byte, contentType string) error {
	key := backupKey(owner, objectID)

	_, err := c.breaker.Execute(func() (any, error) {
		_, putErr := c.PutObject(ctx, c.bucket, key,
			bytes.NewReader(content), int64(len(content)),
			minio.PutObjectOptions{ContentType: contentType})

		return nil, putErr
	})
	if err != nil {
		return fmt.Errorf("backup %s: %w", key, err)
	}

	return nil
}

// RemoveBackup 删除备份桶中的对象副本.
func (c *Client) RemoveBackup(ctx context.Context, owner, objectID string) error {
	key := backupKey(owner, objectID)

	_, err := c.breaker.Execute(func() (any, error) {
		return nil, c.RemoveObject(ctx, c.bucket, key, minio.RemoveObjectOptions{})
	})
	if err != nil {
		return fmt.Errorf("remove backup %s: %w", key, err)
	}

	return nil
}

// HealthCheck 简单的健康检查，通过列出桶来验证连接.
func (c *Client) HealthCheck(ctx context.Context) error {
	_, err := c.ListBuckets(ctx)
	return err
}

// Close 关闭 S3 客户端连接（无实际操作，接口兼容）.
func (c *Client) Close() error {
	return nil
}

func backupKey(owner, objectID string) string {
	return owner + "/" + objectID
}
