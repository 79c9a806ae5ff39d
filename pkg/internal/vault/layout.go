package vault

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/yeisme/taskvault/pkg/configs"
)

const (
	dirMode  = 0o750
	fileMode = 0o640

	ioRetryAttempts = 3
	ioRetryDelay    = 50 * time.Millisecond
)

// Layout 管理仓库目录结构: 按分类的最终目录, 暂存目录与隔离目录.
type Layout struct {
	base       string
	tempDir    string
	quarantine string
}

func NewLayout(cfg *configs.VaultConfig) *Layout {
	return &Layout{
		base:       cfg.BasePath,
		tempDir:    filepath.Join(cfg.BasePath, cfg.TempDir),
		quarantine: filepath.Join(cfg.BasePath, cfg.QuarantineDir),
	}
}

// PathFor 返回对象的最终存储路径 base/<category>/<id>_<name>.
func (l *Layout) PathFor(category ObjectCategory, objectID, storedName string) string {
	return filepath.Join(l.base, string(category), objectID+"_"+storedName)
}

// QuarantinePathFor 返回隔离对象的存储路径.
func (l *Layout) QuarantinePathFor(objectID, storedName string) string {
	return filepath.Join(l.quarantine, objectID+"_"+storedName)
}

// Stage 将内容写入暂存目录, 返回临时文件路径.
func (l *Layout) Stage(objectID string, content []byte) (string, error) {
	if err := os.MkdirAll(l.tempDir, dirMode); err != nil {
		return "", &StorageIOError{Op: "mkdir", Path: l.tempDir, Err: err}
	}
	path := filepath.Join(l.tempDir, objectID+".tmp")
	if err := writeFileRetry(path, content); err != nil {
		return "", err
	}
	return path, nil
}

// Commit 将暂存文件原子移动到最终路径, 目录不存在时创建.
func (l *Layout) Commit(stagedPath, finalPath string) error {
	if err := os.MkdirAll(filepath.Dir(finalPath), dirMode); err != nil {
		return &StorageIOError{Op: "mkdir", Path: filepath.Dir(finalPath), Err: err}
	}
	var lastErr error
	for attempt := 0; attempt < ioRetryAttempts; attempt++ {
		if attempt > 0 {
			time.Sleep(ioRetryDelay << (attempt - 1))
		}
		if err := os.Rename(stagedPath, finalPath); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return &StorageIOError{Op: "rename", Path: finalPath, Err: lastErr, Retryable: true}
}

// Quarantine 将内容直接写入隔离目录, 返回隔离路径.
func (l *Layout) Quarantine(objectID, storedName string, content []byte) (string, error) {
	if err := os.MkdirAll(l.quarantine, dirMode); err != nil {
		return "", &StorageIOError{Op: "mkdir", Path: l.quarantine, Err: err}
	}
	path := l.QuarantinePathFor(objectID, storedName)
	if err := writeFileRetry(path, content); err != nil {
		return "", err
	}
	return path, nil
}

// Discard 删除暂存文件, 文件不存在视为成功.
func (l *Layout) Discard(stagedPath string) error {
	if err := os.Remove(stagedPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return &StorageIOError{Op: "remove", Path: stagedPath, Err: err}
	}
	return nil
}

// Remove 删除最终存储的文件, 文件不存在视为成功.
func (l *Layout) Remove(path string) error {
	var lastErr error
	for attempt := 0; attempt < ioRetryAttempts; attempt++ {
		if attempt > 0 {
			time.Sleep(ioRetryDelay << (attempt - 1))
		}
		err := os.Remove(path)
		if err == nil || errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		lastErr = err
	}
	return &StorageIOError{Op: "remove", Path: path, Err: lastErr, Retryable: true}
}

// Read 读取对象内容.
func (l *Layout) Read(path string) ([]byte, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, &StorageIOError{Op: "read", Path: path, Err: err}
	}
	return content, nil
}

// writeFileRetry 带退避重试的文件写入, 用于抵御瞬时 IO 抖动.
func writeFileRetry(path string, content []byte) error {
	var lastErr error
	for attempt := 0; attempt < ioRetryAttempts; attempt++ {
		if attempt > 0 {
			time.Sleep(ioRetryDelay << (attempt - 1))
		}
		if err := os.WriteFile(path, content, fileMode); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return &StorageIOError{Op: "write", Path: path, Err: lastErr, Retryable: true}
}
