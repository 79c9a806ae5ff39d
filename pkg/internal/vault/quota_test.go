package vault_test

import (
	"testing"
	"time"

	"github.com/yeisme/taskvault/pkg/configs"
	"github.com/yeisme/taskvault/pkg/internal/vault"
)

// TestQuotaLockPerOwner 测试准入锁按 owner 隔离: 不同 owner 互不阻塞,
// 同一 owner 串行.
func TestQuotaLockPerOwner(t *testing.T) {
	g := vault.NewQuotaGuard(&configs.VaultConfig{}, nil)

	g.Lock("alice")
	defer g.Unlock("alice")

	// 其他 owner 的准入不受 alice 持锁影响
	acquired := make(chan struct{})
	go func() {
		g.Lock("bob")
		g.Unlock("bob")
		close(acquired)
	}()
	select {
	case <-acquired:
	case <-time.After(2 * time.Second):
		t.Fatal("lock for a different owner must not block")
	}

	// 同一 owner 的第二次准入必须等待
	second := make(chan struct{})
	go func() {
		g.Lock("alice")
		g.Unlock("alice")
		close(second)
	}()
	select {
	case <-second:
		t.Fatal("same-owner lock must block while held")
	case <-time.After(50 * time.Millisecond):
	}

	g.Unlock("alice")
	select {
	case <-second:
	case <-time.After(2 * time.Second):
		t.Fatal("same-owner lock must proceed after release")
	}
	g.Lock("alice")
}
