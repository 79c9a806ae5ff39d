package kv_test

import (
	"context"
	crand "crypto/rand"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yeisme/taskvault/pkg/configs"
	"github.com/yeisme/taskvault/pkg/internal/storage/kv"
)

func newMemory(t testing.TB) kv.KVStore {
	t.Helper()

	store, err := kv.NewKVStore(context.Background(), configs.KVTypeMemory, nil)
	if err != nil {
		t.Fatalf("create memory kv: %v", err)
	}

	return store
}

// TestMemoryKVBasic 测试内存 KV 的基本读写删.
func TestMemoryKVBasic(t *testing.T) {
	ctx := context.Background()
	store := newMemory(t)

	defer func() { _ = store.Close() }()

	if err := store.Set(ctx, "k1", []byte("v1"), 0); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, err := store.Get(ctx, "k1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	if string(got) != "v1" {
		t.Errorf("got %q, want v1", got)
	}

	exists, err := store.Exists(ctx, "k1")
	if err != nil || !exists {
		t.Errorf("exists = %v, %v; want true, nil", exists, err)
	}

	if err := store.Delete(ctx, "k1"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := store.Get(ctx, "k1"); !errors.Is(err, kv.ErrKeyNotFound) {
		t.Errorf("get after delete = %v, want ErrKeyNotFound", err)
	}
}

// TestMemoryKVValueIsolation 测试读出值是副本，修改不影响存储.
func TestMemoryKVValueIsolation(t *testing.T) {
	ctx := context.Background()
	store := newMemory(t)

	defer func() { _ = store.Close() }()

	src := []byte("original")
	if err := store.Set(ctx, "iso", src, 0); err != nil {
		t.Fatalf("set: %v", err)
	}

	// 修改原始切片
	src[0] = 'X'

	got, err := store.Get(ctx, "iso")
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	if string(got) != "original" {
		t.Errorf("stored value mutated: %q", got)
	}

	// 修改读出的切片
	got[0] = 'Y'

	again, _ := store.Get(ctx, "iso")
	if string(again) != "original" {
		t.Errorf("stored value mutated via returned slice: %q", again)
	}
}

// TestMemoryKVTTLExpiry 测试带 TTL 的键过期后按不存在处理.
func TestMemoryKVTTLExpiry(t *testing.T) {
	ctx := context.Background()
	store := newMemory(t)

	defer func() { _ = store.Close() }()

	// TTL 编码精度为秒，过期时间取 now+1s，等待 2s 确保跨过阈值
	if err := store.Set(ctx, "ephemeral", []byte("v"), 1*time.Second); err != nil {
		t.Fatalf("set: %v", err)
	}

	if _, err := store.Get(ctx, "ephemeral"); err != nil {
		t.Fatalf("get before expiry: %v", err)
	}

	time.Sleep(2 * time.Second)

	if _, err := store.Get(ctx, "ephemeral"); !errors.Is(err, kv.ErrKeyNotFound) {
		t.Errorf("get after expiry = %v, want ErrKeyNotFound", err)
	}

	exists, _ := store.Exists(ctx, "ephemeral")
	if exists {
		t.Error("expired key still reported as existing")
	}
}

// randBytes returns n random bytes.
func randBytes(tb testing.TB, n int) []byte {
	tb.Helper()

	b := make([]byte, n)
	if _, err := crand.Read(b); err != nil {
		tb.Fatalf("rand: %v", err)
	}

	return b
}

func BenchmarkMemoryKV(b *testing.B) {
	ctx := context.Background()
	store := newMemory(b)

	defer func() { _ = store.Close() }()

	sizes := []int{32, 1024, 64 * 1024}
	for _, size := range sizes {
		payload := randBytes(b, size)

		b.Run(fmt.Sprintf("size=%d", size), func(b *testing.B) {
			b.ReportAllocs()

			for i := 0; b.Loop(); i++ {
				key := fmt.Sprintf("bench-%d", i)
				if err := store.Set(ctx, key, payload, 0); err != nil {
					b.Fatalf("set failed: %v", err)
				}

				if _, err := store.Get(ctx, key); err != nil {
					b.Fatalf("get failed: %v", err)
				}

				if err := store.Delete(ctx, key); err != nil {
					b.Fatalf("delete failed: %v", err)
				}
			}
		})
	}
}

func BenchmarkMemoryKVParallel(b *testing.B) {
	ctx := context.Background()
	store := newMemory(b)

	defer func() { _ = store.Close() }()

	payload := randBytes(b, 1024)

	var ctr uint64

	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			i := atomic.AddUint64(&ctr, 1)

			key := fmt.Sprintf("bench-p-%d", i)
			if err := store.Set(ctx, key, payload, 0); err != nil {
				b.Fatalf("set failed: %v", err)
			}

			if _, err := store.Get(ctx, key); err != nil {
				b.Fatalf("get failed: %v", err)
			}

			if err := store.Delete(ctx, key); err != nil {
				b.Fatalf("delete failed: %v", err)
			}
		}
	})
}
