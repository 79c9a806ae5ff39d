package vault

import (
	"context"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/yeisme/taskvault/pkg/configs"
	"github.com/yeisme/taskvault/pkg/internal/metastore"
)

const quotaShards = 64

// ownerLock 单个 owner 的准入锁, refs 记录正在等待或持有的上传数,
// 归零时从分片中移除.
type ownerLock struct {
	mu   sync.Mutex
	refs int
}

// quotaShard 保护一段 owner 到锁的映射, 按 owner 哈希分片降低注册竞争.
type quotaShard struct {
	mu    sync.Mutex
	locks map[string]*ownerLock
}

// QuotaGuard 执行按 owner 的容量准入, 并通过 owner 级锁串行化同一 owner 的
// 并发准入窗口, 避免两次并发上传都通过检查后共同超出配额.
// 不同 owner 使用各自的锁, 互不阻塞.
type QuotaGuard struct {
	cfg    *configs.VaultConfig
	store  metastore.Store
	shards [quotaShards]quotaShard
}

func NewQuotaGuard(cfg *configs.VaultConfig, store metastore.Store) *QuotaGuard {
	g := &QuotaGuard{cfg: cfg, store: store}
	for i := range g.shards {
		g.shards[i].locks = make(map[string]*ownerLock)
	}
	return g
}

func (q *QuotaGuard) shardFor(ownerID string) *quotaShard {
	return &q.shards[xxhash.Sum64String(ownerID)%quotaShards]
}

// Lock 锁定 owner 的准入区间, 调用方必须在元数据写入完成后 Unlock.
func (q *QuotaGuard) Lock(ownerID string) {
	s := q.shardFor(ownerID)

	s.mu.Lock()
	l := s.locks[ownerID]
	if l == nil {
		l = &ownerLock{}
		s.locks[ownerID] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
}

// Unlock 释放 owner 的准入区间.
func (q *QuotaGuard) Unlock(ownerID string) {
	s := q.shardFor(ownerID)

	s.mu.Lock()
	l := s.locks[ownerID]
	l.refs--
	if l.refs == 0 {
		delete(s.locks, ownerID)
	}
	s.mu.Unlock()

	l.mu.Unlock()
}

// Admit 判断新增 size 字节后是否仍在配额内, 超出返回 *QuotaExceededError.
// 调用方需持有对应 owner 的准入锁.
func (q *QuotaGuard) Admit(ctx context.Context, ownerID string, size int64) error {
	usage, _, err := q.store.SumUsage(ctx, ownerID)
	if err != nil {
		return err
	}
	limit := q.cfg.QuotaFor(ownerID)
	if usage+size > limit {
		return &QuotaExceededError{OwnerID: ownerID, Usage: usage, Cap: limit, Requested: size}
	}
	return nil
}
