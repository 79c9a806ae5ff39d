package metastore_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yeisme/taskvault/pkg/internal/metastore"
	"github.com/yeisme/taskvault/pkg/internal/model"
	"github.com/yeisme/taskvault/pkg/internal/types"
)

// newTestStore 在临时目录建一个 SQLite 库.
func newTestStore(t *testing.T) metastore.Store {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "meta.db")

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	store, err := metastore.NewGormStore(db)
	if err != nil {
		t.Fatalf("create store: %v", err)
	}

	return store
}

func newObject(id, owner, checksum string, size int64) *model.FileObject {
	return &model.FileObject{
		ID:           id,
		OwnerID:      owner,
		Checksum:     checksum,
		OriginalName: "report.pdf",
		StoredName:   "report.pdf",
		StoragePath:  "2026/09/01/" + id,
		Size:         size,
		MimeType:     "application/pdf",
		Category:     "document",
		State:        model.StateActive,
		Version:      1,
	}
}

// TestInsertAndGet 测试登记与按所有者取回.
func TestInsertAndGet(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	obj := newObject("01JF0000000000000000000001", "alice", "aa11", 100)
	if err := store.Insert(ctx, obj); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := store.GetByID(ctx, "alice", obj.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	if got.Checksum != "aa11" || got.Size != 100 {
		t.Errorf("got %+v", got)
	}

	// 其他所有者不可见
	if _, err := store.GetByID(ctx, "bob", obj.ID); !errors.Is(err, metastore.ErrNotFound) {
		t.Errorf("cross-owner get = %v, want ErrNotFound", err)
	}
}

// TestGetActiveByChecksum 测试去重查询只命中 active 对象且按所有者隔离.
func TestGetActiveByChecksum(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	active := newObject("01JF0000000000000000000001", "alice", "c0ffee", 10)
	if err := store.Insert(ctx, active); err != nil {
		t.Fatalf("insert: %v", err)
	}

	quarantined := newObject("01JF0000000000000000000002", "alice", "deadbf", 20)
	quarantined.State = model.StateQuarantined

	if err := store.Insert(ctx, quarantined); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := store.GetActiveByChecksum(ctx, "alice", "c0ffee")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}

	if got.ID != active.ID {
		t.Errorf("got %s, want %s", got.ID, active.ID)
	}

	// 隔离对象不参与去重
	if _, err := store.GetActiveByChecksum(ctx, "alice", "deadbf"); !errors.Is(err, metastore.ErrNotFound) {
		t.Errorf("quarantined lookup = %v, want ErrNotFound", err)
	}

	// 其他所有者的相同摘要不命中
	if _, err := store.GetActiveByChecksum(ctx, "bob", "c0ffee"); !errors.Is(err, metastore.ErrNotFound) {
		t.Errorf("cross-owner lookup = %v, want ErrNotFound", err)
	}
}

// TestUpdateIncrementsVersion 测试 Update 递增版本号.
func TestUpdateIncrementsVersion(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	obj := newObject("01JF0000000000000000000001", "alice", "aa11", 100)
	if err := store.Insert(ctx, obj); err != nil {
		t.Fatalf("insert: %v", err)
	}

	obj.StoredName = "renamed.pdf"
	if err := store.Update(ctx, obj); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := store.GetByID(ctx, "alice", obj.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	if got.Version != 2 {
		t.Errorf("version = %d, want 2", got.Version)
	}

	if got.StoredName != "renamed.pdf" {
		t.Errorf("stored name = %q", got.StoredName)
	}
}

// TestSoftDelete 测试软删除后对象不可见且不计入用量.
func TestSoftDelete(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	obj := newObject("01JF0000000000000000000001", "alice", "aa11", 100)
	if err := store.Insert(ctx, obj); err != nil {
		t.Fatalf("insert: %v", err)
	}

	if err := store.SoftDelete(ctx, obj); err != nil {
		t.Fatalf("soft delete: %v", err)
	}

	if _, err := store.GetByID(ctx, "alice", obj.ID); !errors.Is(err, metastore.ErrNotFound) {
		t.Errorf("get after delete = %v, want ErrNotFound", err)
	}

	used, count, err := store.SumUsage(ctx, "alice")
	if err != nil {
		t.Fatalf("sum usage: %v", err)
	}

	if used != 0 || count != 0 {
		t.Errorf("usage after delete = %d bytes, %d objects; want 0, 0", used, count)
	}
}

// TestHardDelete 测试彻底删除后行不再存在.
func TestHardDelete(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	obj := newObject("01JF0000000000000000000001", "alice", "aa11", 100)
	if err := store.Insert(ctx, obj); err != nil {
		t.Fatalf("insert: %v", err)
	}

	if err := store.HardDelete(ctx, obj); err != nil {
		t.Fatalf("hard delete: %v", err)
	}

	if _, err := store.GetAnyByID(ctx, obj.ID); !errors.Is(err, metastore.ErrNotFound) {
		t.Errorf("get after hard delete = %v, want ErrNotFound", err)
	}

	// 同一 ID 可以重新登记
	if err := store.Insert(ctx, newObject(obj.ID, "alice", "bb22", 10)); err != nil {
		t.Errorf("reinsert after hard delete: %v", err)
	}
}

// TestSumUsage 测试配额用量包含 active 与 quarantined.
func TestSumUsage(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	a := newObject("01JF0000000000000000000001", "alice", "aa", 100)
	if err := store.Insert(ctx, a); err != nil {
		t.Fatalf("insert: %v", err)
	}

	q := newObject("01JF0000000000000000000002", "alice", "bb", 50)
	q.State = model.StateQuarantined

	if err := store.Insert(ctx, q); err != nil {
		t.Fatalf("insert: %v", err)
	}

	// 其他所有者不计入
	other := newObject("01JF0000000000000000000003", "bob", "cc", 999)
	if err := store.Insert(ctx, other); err != nil {
		t.Fatalf("insert: %v", err)
	}

	used, count, err := store.SumUsage(ctx, "alice")
	if err != nil {
		t.Fatalf("sum usage: %v", err)
	}

	if used != 150 || count != 2 {
		t.Errorf("usage = %d bytes, %d objects; want 150, 2", used, count)
	}
}

// TestListExpired 测试过期候选筛选.
func TestListExpired(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	now := time.Now()

	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	expired := newObject("01JF0000000000000000000001", "alice", "aa", 10)
	expired.ExpiresAt = &past

	if err := store.Insert(ctx, expired); err != nil {
		t.Fatalf("insert: %v", err)
	}

	fresh := newObject("01JF0000000000000000000002", "alice", "bb", 10)
	fresh.ExpiresAt = &future

	if err := store.Insert(ctx, fresh); err != nil {
		t.Fatalf("insert: %v", err)
	}

	forever := newObject("01JF0000000000000000000003", "alice", "cc", 10)
	if err := store.Insert(ctx, forever); err != nil {
		t.Fatalf("insert: %v", err)
	}

	objs, err := store.ListExpired(ctx, now, 0)
	if err != nil {
		t.Fatalf("list expired: %v", err)
	}

	if len(objs) != 1 || objs[0].ID != expired.ID {
		t.Errorf("expired candidates = %+v, want only %s", objs, expired.ID)
	}
}

// TestAggregates 测试分类与全局聚合.
func TestAggregates(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	doc := newObject("01JF0000000000000000000001", "alice", "aa", 100)
	if err := store.Insert(ctx, doc); err != nil {
		t.Fatalf("insert: %v", err)
	}

	img := newObject("01JF0000000000000000000002", "alice", "bb", 40)
	img.Category = "image"

	if err := store.Insert(ctx, img); err != nil {
		t.Fatalf("insert: %v", err)
	}

	bobs := newObject("01JF0000000000000000000003", "bob", "cc", 7)
	if err := store.Insert(ctx, bobs); err != nil {
		t.Fatalf("insert: %v", err)
	}

	byCat, err := store.AggregateByCategory(ctx, "alice")
	if err != nil {
		t.Fatalf("aggregate by category: %v", err)
	}

	want := []types.CategoryUsage{
		{Category: "document", Count: 1, Size: 100},
		{Category: "image", Count: 1, Size: 40},
	}

	if len(byCat) != len(want) {
		t.Fatalf("categories = %+v, want %+v", byCat, want)
	}

	for i := range want {
		if byCat[i] != want[i] {
			t.Errorf("category[%d] = %+v, want %+v", i, byCat[i], want[i])
		}
	}

	global, err := store.AggregateGlobal(ctx)
	if err != nil {
		t.Fatalf("aggregate global: %v", err)
	}

	if global.TotalBytes != 147 || global.TotalObjects != 3 || global.Owners != 2 {
		t.Errorf("global = %+v", global)
	}
}
