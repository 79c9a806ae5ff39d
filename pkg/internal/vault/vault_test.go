package vault_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yeisme/taskvault/pkg/configs"
	"github.com/yeisme/taskvault/pkg/internal/metastore"
	"github.com/yeisme/taskvault/pkg/internal/types"
	"github.com/yeisme/taskvault/pkg/internal/vault"
)

// newTestVault 搭一个完整的保管库: SQLite 元数据 + 临时目录存储.
func newTestVault(t *testing.T, mutate func(*configs.VaultConfig), opts ...vault.Option) (*vault.Vault, metastore.Store) {
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

	cfg := &configs.VaultConfig{
		BasePath:          t.TempDir(),
		TempDir:           "tmp",
		QuarantineDir:     "quarantine",
		MaxFileSize:       1 << 20,
		DeniedExtensions:  []string{"exe"},
		DefaultQuotaBytes: 1 << 20,
		ScanEnabled:       true,
		SweepConcurrency:  2,
	}
	if mutate != nil {
		mutate(cfg)
	}
	return vault.New(cfg, store, opts...), store
}

func uploadReq(owner, name string, content []byte) types.UploadRequest {
	return types.UploadRequest{OwnerID: owner, FileName: name, Content: content}
}

// backdateExpiry 把对象的过期时间直接改到过去, 用于触发清扫.
func backdateExpiry(t *testing.T, store metastore.Store, owner, objectID string, at time.Time) {
	t.Helper()

	obj, err := store.GetByID(context.Background(), owner, objectID)
	if err != nil {
		t.Fatalf("fetch for backdate: %v", err)
	}
	obj.ExpiresAt = &at
	if err := store.Update(context.Background(), obj); err != nil {
		t.Fatalf("backdate: %v", err)
	}
}

func TestUploadAndDownload(t *testing.T) {
	ctx := context.Background()
	v, _ := newTestVault(t, nil)

	content := []byte("quarterly report body")
	res, err := v.Upload(ctx, uploadReq("alice", "report.txt", content))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if res.Deduplicated {
		t.Error("first upload must not dedup")
	}
	if res.Category != "document" {
		t.Errorf("category = %s, want document", res.Category)
	}

	dl, err := v.Download(ctx, "alice", res.ObjectID)
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	if string(dl.Content) != string(content) {
		t.Errorf("content mismatch")
	}
	if dl.Checksum != res.Checksum {
		t.Errorf("checksum mismatch: %s vs %s", dl.Checksum, res.Checksum)
	}
}

func TestUploadDeduplicates(t *testing.T) {
	ctx := context.Background()
	v, _ := newTestVault(t, nil)

	content := []byte("identical bytes")
	first, err := v.Upload(ctx, uploadReq("alice", "a.txt", content))
	if err != nil {
		t.Fatalf("first upload: %v", err)
	}
	second, err := v.Upload(ctx, uploadReq("alice", "b.txt", content))
	if err != nil {
		t.Fatalf("second upload: %v", err)
	}
	if !second.Deduplicated {
		t.Fatal("second upload must dedup")
	}
	if second.ObjectID != first.ObjectID {
		t.Errorf("dedup must return existing object: %s vs %s", second.ObjectID, first.ObjectID)
	}

	// 账面上只计一份
	usage, err := v.Usage(ctx, "alice")
	if err != nil {
		t.Fatalf("usage: %v", err)
	}
	if usage.Objects != 1 {
		t.Errorf("objects = %d, want 1", usage.Objects)
	}
	if usage.UsedBytes != int64(len(content)) {
		t.Errorf("used = %d, want %d", usage.UsedBytes, len(content))
	}
}

func TestUploadDedupIsOwnerScoped(t *testing.T) {
	ctx := context.Background()
	v, _ := newTestVault(t, nil)

	content := []byte("shared bytes")
	if _, err := v.Upload(ctx, uploadReq("alice", "a.txt", content)); err != nil {
		t.Fatalf("alice upload: %v", err)
	}
	res, err := v.Upload(ctx, uploadReq("bob", "a.txt", content))
	if err != nil {
		t.Fatalf("bob upload: %v", err)
	}
	if res.Deduplicated {
		t.Error("dedup must not cross owners")
	}
}

func TestUploadQuotaExceeded(t *testing.T) {
	ctx := context.Background()
	v, _ := newTestVault(t, func(cfg *configs.VaultConfig) {
		cfg.DefaultQuotaBytes = 100
	})

	if _, err := v.Upload(ctx, uploadReq("alice", "a.txt", make([]byte, 80))); err != nil {
		t.Fatalf("first upload within quota: %v", err)
	}

	_, err := v.Upload(ctx, uploadReq("alice", "b.txt", make([]byte, 30)))
	var qerr *vault.QuotaExceededError
	if !errors.As(err, &qerr) {
		t.Fatalf("expected QuotaExceededError, got %v", err)
	}
	if qerr.Usage != 80 || qerr.Requested != 30 || qerr.Cap != 100 {
		t.Errorf("unexpected quota numbers: %+v", qerr)
	}

	// 恰好填满剩余空间可以通过
	if _, err := v.Upload(ctx, uploadReq("alice", "c.txt", make([]byte, 20))); err != nil {
		t.Fatalf("upload exactly at cap should pass: %v", err)
	}
}

func TestUploadQuotaOverride(t *testing.T) {
	ctx := context.Background()
	v, _ := newTestVault(t, func(cfg *configs.VaultConfig) {
		cfg.DefaultQuotaBytes = 10
		cfg.QuotaOverrides = map[string]int64{"vip": 1000}
	})

	if _, err := v.Upload(ctx, uploadReq("vip", "big.txt", make([]byte, 500))); err != nil {
		t.Fatalf("override quota should admit: %v", err)
	}
	if _, err := v.Upload(ctx, uploadReq("basic", "big.txt", make([]byte, 500))); err == nil {
		t.Fatal("default quota should reject")
	}
}

func TestUploadDangerousContentRejected(t *testing.T) {
	ctx := context.Background()
	v, _ := newTestVault(t, nil)

	_, err := v.Upload(ctx, uploadReq("alice", "page.txt", []byte("<script>alert(1)</script>")))
	var serr *vault.SecurityError
	if !errors.As(err, &serr) {
		t.Fatalf("expected SecurityError, got %v", err)
	}
	if serr.Quarantine {
		t.Fatal("heuristic hit must reject, not quarantine")
	}

	// 拒绝的内容不留痕迹: 无元数据行, 不占配额
	usage, err := v.Usage(ctx, "alice")
	if err != nil {
		t.Fatalf("usage: %v", err)
	}
	if usage.Objects != 0 || usage.UsedBytes != 0 {
		t.Errorf("rejected content must not be persisted: %+v", usage)
	}
}

func TestUploadQuarantine(t *testing.T) {
	ctx := context.Background()
	v, _ := newTestVault(t, nil, vault.WithScanner(stubScanner{reason: "eicar signature"}))

	_, err := v.Upload(ctx, uploadReq("alice", "report.txt", []byte("looks harmless")))
	var serr *vault.SecurityError
	if !errors.As(err, &serr) {
		t.Fatalf("expected SecurityError, got %v", err)
	}
	if !serr.Quarantine {
		t.Fatal("expected quarantine verdict")
	}

	// 隔离对象计入配额
	usage, err := v.Usage(ctx, "alice")
	if err != nil {
		t.Fatalf("usage: %v", err)
	}
	if usage.Objects != 1 || usage.UsedBytes == 0 {
		t.Errorf("quarantined object must count toward quota: %+v", usage)
	}
}

func TestDownloadAccessControl(t *testing.T) {
	ctx := context.Background()
	v, _ := newTestVault(t, nil)

	private, err := v.Upload(ctx, uploadReq("alice", "secret.txt", []byte("private data")))
	if err != nil {
		t.Fatalf("upload private: %v", err)
	}
	pubReq := uploadReq("alice", "open.txt", []byte("public data"))
	pubReq.IsPublic = true
	public, err := v.Upload(ctx, pubReq)
	if err != nil {
		t.Fatalf("upload public: %v", err)
	}

	// 其他请求者拿不到私有对象，错误形态与不存在一致
	if _, err := v.Download(ctx, "bob", private.ObjectID); !errors.Is(err, vault.ErrNotFound) {
		t.Errorf("foreign private download: got %v, want ErrNotFound", err)
	}
	if _, err := v.Download(ctx, "bob", "01JUNKJUNKJUNKJUNKJUNKJUNK"); !errors.Is(err, vault.ErrNotFound) {
		t.Errorf("missing object download: got %v, want ErrNotFound", err)
	}

	// 公开对象任何请求者可读
	if _, err := v.Download(ctx, "bob", public.ObjectID); err != nil {
		t.Errorf("public download should succeed: %v", err)
	}
}

func TestDeleteThenDownload(t *testing.T) {
	ctx := context.Background()
	v, _ := newTestVault(t, nil)

	res, err := v.Upload(ctx, uploadReq("alice", "a.txt", []byte("doomed")))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if err := v.Delete(ctx, "alice", res.ObjectID, false); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := v.Download(ctx, "alice", res.ObjectID); !errors.Is(err, vault.ErrNotFound) {
		t.Errorf("download after delete: got %v, want ErrNotFound", err)
	}
	// 重复删除返回 ErrNotFound
	if err := v.Delete(ctx, "alice", res.ObjectID, false); !errors.Is(err, vault.ErrNotFound) {
		t.Errorf("delete twice: got %v, want ErrNotFound", err)
	}

	// 删除释放配额
	usage, err := v.Usage(ctx, "alice")
	if err != nil {
		t.Fatalf("usage: %v", err)
	}
	if usage.UsedBytes != 0 {
		t.Errorf("used = %d after delete, want 0", usage.UsedBytes)
	}
}

func TestPermanentDelete(t *testing.T) {
	ctx := context.Background()
	v, store := newTestVault(t, nil)

	soft, err := v.Upload(ctx, uploadReq("alice", "soft.txt", []byte("keep the bytes")))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	hard, err := v.Upload(ctx, uploadReq("alice", "hard.txt", []byte("wipe everything")))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	softObj, err := store.GetByID(ctx, "alice", soft.ObjectID)
	if err != nil {
		t.Fatalf("fetch soft: %v", err)
	}
	hardObj, err := store.GetByID(ctx, "alice", hard.ObjectID)
	if err != nil {
		t.Fatalf("fetch hard: %v", err)
	}

	// 软删除保留磁盘文件
	if err := v.Delete(ctx, "alice", soft.ObjectID, false); err != nil {
		t.Fatalf("soft delete: %v", err)
	}
	if _, err := os.Stat(softObj.StoragePath); err != nil {
		t.Errorf("soft delete must keep bytes on disk: %v", err)
	}

	// 彻底删除清掉文件与元数据行
	if err := v.Delete(ctx, "alice", hard.ObjectID, true); err != nil {
		t.Fatalf("permanent delete: %v", err)
	}
	if _, err := os.Stat(hardObj.StoragePath); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("permanent delete must remove bytes: %v", err)
	}
	if _, err := store.GetAnyByID(ctx, hard.ObjectID); !errors.Is(err, metastore.ErrNotFound) {
		t.Errorf("permanent delete must remove the row: %v", err)
	}
}

func TestDeleteForeignObject(t *testing.T) {
	ctx := context.Background()
	v, _ := newTestVault(t, nil)

	res, err := v.Upload(ctx, uploadReq("alice", "a.txt", []byte("mine")))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if err := v.Delete(ctx, "bob", res.ObjectID, false); !errors.Is(err, vault.ErrNotFound) {
		t.Errorf("foreign delete: got %v, want ErrNotFound", err)
	}
	// 对象未受影响
	if _, err := v.Download(ctx, "alice", res.ObjectID); err != nil {
		t.Errorf("owner download after foreign delete attempt: %v", err)
	}
}

func TestSweepExpired(t *testing.T) {
	ctx := context.Background()
	v, store := newTestVault(t, nil)

	// 三个立即过期的对象和一个永久对象
	for i := range 3 {
		req := uploadReq("alice", fmt.Sprintf("tmp%d.txt", i), []byte(fmt.Sprintf("ephemeral %d", i)))
		req.ExpiryDays = 1
		if _, err := v.Upload(ctx, req); err != nil {
			t.Fatalf("upload %d: %v", i, err)
		}
	}
	keep, err := v.Upload(ctx, uploadReq("alice", "keep.txt", []byte("permanent")))
	if err != nil {
		t.Fatalf("upload keep: %v", err)
	}

	// 把过期时间拨到过去
	list, err := v.List(ctx, "alice", types.ListObjectsRequest{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	past := time.Now().Add(-time.Hour)
	paths := make(map[string]string)
	for _, info := range list.Objects {
		obj, err := store.GetByID(ctx, "alice", info.ObjectID)
		if err != nil {
			t.Fatalf("fetch %s: %v", info.ObjectID, err)
		}
		paths[info.ObjectID] = obj.StoragePath
		if info.ObjectID == keep.ObjectID {
			continue
		}
		backdateExpiry(t, store, "alice", info.ObjectID, past)
	}

	report, err := v.SweepExpired(ctx)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if report.Removed != 3 {
		t.Errorf("removed = %d, want 3", report.Removed)
	}
	if report.Failed != 0 {
		t.Errorf("failed = %d, want 0", report.Failed)
	}

	// 过期对象磁盘字节被清除且不可再访问，永久对象不受影响
	for _, info := range list.Objects {
		_, err := v.Download(ctx, "alice", info.ObjectID)
		if info.ObjectID == keep.ObjectID {
			if err != nil {
				t.Errorf("permanent object must survive sweep: %v", err)
			}
			continue
		}
		if !errors.Is(err, vault.ErrNotFound) {
			t.Errorf("expired object %s: got %v, want ErrNotFound", info.ObjectID, err)
		}
		if _, err := os.Stat(paths[info.ObjectID]); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("expired object %s: bytes still on disk: %v", info.ObjectID, err)
		}
	}

	// 再清扫一轮应当无事可做
	report, err = v.SweepExpired(ctx)
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if report.Scanned != 0 {
		t.Errorf("second sweep scanned = %d, want 0", report.Scanned)
	}
}

func TestConcurrentUploadsSameContent(t *testing.T) {
	ctx := context.Background()
	v, _ := newTestVault(t, nil)

	content := []byte("racing bytes")
	const n = 8

	var wg sync.WaitGroup
	results := make([]*types.UploadResult, n)
	errs := make([]error, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = v.Upload(ctx, uploadReq("alice", "race.txt", content))
		}()
	}
	wg.Wait()

	var winner string
	stored := 0
	for i := range n {
		if errs[i] != nil {
			t.Fatalf("upload %d: %v", i, errs[i])
		}
		if !results[i].Deduplicated {
			stored++
			winner = results[i].ObjectID
		}
	}
	if stored != 1 {
		t.Fatalf("stored = %d, want exactly 1", stored)
	}
	for i := range n {
		if results[i].ObjectID != winner {
			t.Errorf("upload %d returned %s, want %s", i, results[i].ObjectID, winner)
		}
	}

	usage, err := v.Usage(ctx, "alice")
	if err != nil {
		t.Fatalf("usage: %v", err)
	}
	if usage.Objects != 1 {
		t.Errorf("objects = %d, want 1", usage.Objects)
	}
}

func TestConcurrentUploadsRespectQuota(t *testing.T) {
	ctx := context.Background()
	v, _ := newTestVault(t, func(cfg *configs.VaultConfig) {
		cfg.DefaultQuotaBytes = 100
	})

	const n = 6
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// 每个内容不同，避免去重
			content := make([]byte, 40)
			content[0] = byte(i)
			_, err := v.Upload(ctx, uploadReq("alice", fmt.Sprintf("f%d.bin", i), content))
			errs[i] = err
		}()
	}
	wg.Wait()

	admitted := 0
	for i := range n {
		if errs[i] == nil {
			admitted++
			continue
		}
		var qerr *vault.QuotaExceededError
		if !errors.As(errs[i], &qerr) {
			t.Fatalf("upload %d: unexpected error %v", i, errs[i])
		}
	}
	// 100 字节配额最多容纳两个 40 字节对象
	if admitted != 2 {
		t.Errorf("admitted = %d, want 2", admitted)
	}

	usage, err := v.Usage(ctx, "alice")
	if err != nil {
		t.Fatalf("usage: %v", err)
	}
	if usage.UsedBytes > 100 {
		t.Errorf("usage %d exceeds cap", usage.UsedBytes)
	}
}

func TestListFilters(t *testing.T) {
	ctx := context.Background()
	v, _ := newTestVault(t, nil)

	if _, err := v.Upload(ctx, uploadReq("alice", "a.txt", []byte("text one"))); err != nil {
		t.Fatalf("upload: %v", err)
	}
	if _, err := v.Upload(ctx, uploadReq("alice", "b.json", []byte(`{"k":"v"}`))); err != nil {
		t.Fatalf("upload: %v", err)
	}

	all, err := v.List(ctx, "alice", types.ListObjectsRequest{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if all.Total != 2 {
		t.Errorf("total = %d, want 2", all.Total)
	}

	docs, err := v.List(ctx, "alice", types.ListObjectsRequest{Category: "document"})
	if err != nil {
		t.Fatalf("list documents: %v", err)
	}
	if docs.Total != 1 {
		t.Errorf("document total = %d, want 1", docs.Total)
	}
}

func TestStatReturnsTags(t *testing.T) {
	ctx := context.Background()
	v, _ := newTestVault(t, nil)

	req := uploadReq("alice", "tagged.txt", []byte("with tags"))
	req.Tags = []string{"design", "v2"}
	req.ProjectRef = "proj-1"
	res, err := v.Upload(ctx, req)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	info, err := v.Stat(ctx, "alice", res.ObjectID)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if len(info.Tags) != 2 || info.Tags[0] != "design" {
		t.Errorf("tags = %v", info.Tags)
	}
	if info.ProjectRef != "proj-1" {
		t.Errorf("project_ref = %s", info.ProjectRef)
	}
	if info.Version != 1 {
		t.Errorf("version = %d, want 1", info.Version)
	}
}
