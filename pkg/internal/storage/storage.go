// Package storage 聚合保管库依赖的外部存储资源：元数据库、备份 S3、消息队列与元数据缓存.
//
// Example:
//
// 初始化
//
//	ctx := context.Background()
//	mgr, err := storage.Init(ctx)
//	if err != nil {
//	    // 处理错误
//	}
//
// 获取存储客户端
//
//	dbClient := mgr.GetDBClient()
//	s3Client := mgr.GetS3Client()
package storage

import (
	"context"
	"sync"

	"github.com/yeisme/taskvault/pkg/configs"
	dbc "github.com/yeisme/taskvault/pkg/internal/storage/db"
	kvc "github.com/yeisme/taskvault/pkg/internal/storage/kv"
	mqc "github.com/yeisme/taskvault/pkg/internal/storage/mq"
	s3c "github.com/yeisme/taskvault/pkg/internal/storage/s3"
	nlog "github.com/yeisme/taskvault/pkg/log"
)

// Manager 聚合所有存储资源.
// DB 是必选依赖；S3、MQ、KV 按配置开关决定是否初始化，未启用时为 nil.
type Manager struct {
	DB *dbc.Client
	S3 *s3c.Client
	MQ *mqc.Client
	KV *kvc.Client
}

var (
	mgr     *Manager
	mgrOnce sync.Once
)

// Init 初始化默认存储，使用全局配置.重复调用只返回已初始化实例.
func Init(ctx context.Context) (*Manager, error) {
	var err error

	mgrOnce.Do(func() {
		cfg := configs.GetConfig()
		m := &Manager{}

		// DB
		dbi, e := dbc.New(ctx)
		if e != nil {
			err = e
			return
		}

		m.DB = dbi

		// S3 仅在启用备份时连接
		if cfg.Vault.BackupEnabled {
			s3i, e := s3c.New(ctx)
			if e != nil {
				err = e
				return
			}

			m.S3 = s3i
		}

		// MQ
		if cfg.MQ.Enable {
			mqi, e := mqc.New(ctx)
			if e != nil {
				err = e
				return
			}

			m.MQ = mqi
		}

		// KV
		if cfg.KV.Enable {
			kvi, e := kvc.NewKVClient(ctx)
			if e != nil {
				err = e
				return
			}

			m.KV = kvi
		}

		mgr = m

		nlog.Logger().Info().
			Bool("s3", m.S3 != nil).
			Bool("mq", m.MQ != nil).
			Bool("kv", m.KV != nil).
			Msg("storage manager initialized")
	})

	return mgr, err
}

// GetDBClient 获取 DB 客户端.
func (m *Manager) GetDBClient() *dbc.Client {
	return m.DB
}

// GetS3Client 获取 S3 客户端.
func (m *Manager) GetS3Client() *s3c.Client {
	return m.S3
}

// GetMQClient 获取 MQ 客户端.
func (m *Manager) GetMQClient() *mqc.Client {
	return m.MQ
}

// GetKVClient 获取 KV 客户端.
func (m *Manager) GetKVClient() *kvc.Client {
	return m.KV
}

// Close 依次关闭所有已初始化的存储资源.
func (m *Manager) Close() error {
	var err error

	if m.MQ != nil {
		if e := m.MQ.Close(); e != nil {
			err = e
		}
	}

	if m.KV != nil {
		if e := m.KV.Close(); e != nil {
			err = e
		}
	}

	if m.S3 != nil {
		if e := m.S3.Close(); e != nil {
			err = e
		}
	}

	if m.DB != nil {
		if sqlDB, e := m.DB.DB.DB(); e == nil {
			if e := sqlDB.Close(); e != nil {
				err = e
			}
		}
	}

	return err
}
