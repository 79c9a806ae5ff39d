// Package vault 实现内容寻址的文件保管库核心：
// 文件名清洗、安全校验、去重、配额、存储布局、入库流水线、取回与生命周期管理.
package vault

import (
	"errors"
	"fmt"
)

// ErrNotFound 对象不存在或请求者无权访问.
// 两种情况统一返回同一错误，避免泄露对象是否存在.
var ErrNotFound = errors.New("object not found")

// ValidationError 用户可修正的校验失败（扩展名、大小等）.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// SecurityError 内容被安全策略拦截.
// Quarantine 为 true 表示内容已被保留到隔离区等待人工复核，
// 而不是直接丢弃.
type SecurityError struct {
	Reason     string
	Quarantine bool
}

func (e *SecurityError) Error() string {
	if e.Quarantine {
		return fmt.Sprintf("content quarantined: %s", e.Reason)
	}

	return fmt.Sprintf("content blocked: %s", e.Reason)
}

// QuotaExceededError 配额不足.
type QuotaExceededError struct {
	OwnerID   string
	Usage     int64
	Cap       int64
	Requested int64
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("quota exceeded for %s: usage %d + requested %d > cap %d",
		e.OwnerID, e.Usage, e.Requested, e.Cap)
}

// StorageIOError 磁盘或权限故障.
// Retryable 为 true 的错误在提交阶段会被有限次重试.
type StorageIOError struct {
	Op        string
	Path      string
	Err       error
	Retryable bool
}

func (e *StorageIOError) Error() string {
	return fmt.Sprintf("storage %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageIOError) Unwrap() error {
	return e.Err
}
