package vault

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"

	"github.com/yeisme/taskvault/pkg/configs"
	"github.com/yeisme/taskvault/pkg/log"
)

// dangerousPatterns 启发式恶意内容特征, 匹配不区分大小写.
var dangerousPatterns = [][]byte{
	[]byte("<script"),
	[]byte("<?php"),
	[]byte("#!/bin/sh"),
	[]byte("#!/bin/bash"),
	[]byte("powershell -e"),
	[]byte("cmd.exe /c"),
	[]byte("eval(base64_decode"),
}

// Scanner 外部内容扫描器, 返回非空 reason 表示命中威胁.
type Scanner interface {
	Scan(content []byte) (reason string, err error)
}

// Validator 对上传内容执行准入检查: 扩展名黑白名单, 大小上限,
// MIME 嗅探与启发式内容扫描.
type Validator struct {
	cfg     *configs.VaultConfig
	scanner Scanner
	logger  zerolog.Logger
}

func NewValidator(cfg *configs.VaultConfig, scanner Scanner) *Validator {
	return &Validator{cfg: cfg, scanner: scanner, logger: log.Component("validator")}
}

// Verdict 校验通过后的判定结果.
type Verdict struct {
	MimeType string
	Category ObjectCategory
}

// Check 按顺序执行全部准入检查, 任一失败立即返回.
// 返回 *SecurityError 且 Quarantine 为 true 时, 调用方应隔离该内容而非直接丢弃.
func (v *Validator) Check(name string, content []byte, declaredMime string) (*Verdict, error) {
	ext := Ext(name)

	for _, denied := range v.cfg.DeniedExtensions {
		if ext == strings.ToLower(denied) {
			return nil, &ValidationError{Field: "file_name", Reason: fmt.Sprintf("extension %q is not allowed", ext)}
		}
	}

	if len(v.cfg.AllowedExtensions) > 0 {
		allowed := false
		for _, a := range v.cfg.AllowedExtensions {
			if ext == strings.ToLower(a) {
				allowed = true
				break
			}
		}
		if !allowed {
			return nil, &ValidationError{Field: "file_name", Reason: fmt.Sprintf("extension %q is not in the allow list", ext)}
		}
	}

	if len(content) == 0 {
		return nil, &ValidationError{Field: "content", Reason: "file is empty"}
	}
	if int64(len(content)) > v.cfg.MaxFileSize {
		return nil, &ValidationError{
			Field:  "content",
			Reason: fmt.Sprintf("size %d exceeds limit %d", len(content), v.cfg.MaxFileSize),
		}
	}

	sniffed := mimetype.Detect(content)
	mime := sniffed.String()
	if idx := strings.Index(mime, ";"); idx >= 0 {
		mime = mime[:idx]
	}
	if declaredMime != "" && !strings.EqualFold(declaredMime, mime) {
		// 声明与实际不一致只记录, 以嗅探结果为准.
		v.logger.Warn().
			Str("file", name).
			Str("declared", declaredMime).
			Str("sniffed", mime).
			Msg("declared MIME type does not match sniffed content")
	}

	if err := v.scan(content); err != nil {
		return nil, err
	}

	if v.cfg.ScanEnabled && v.scanner != nil {
		reason, err := v.scanner.Scan(content)
		if err != nil {
			// 扫描器不可用时宁可隔离也不放行.
			return nil, &SecurityError{Reason: fmt.Sprintf("scanner unavailable: %v", err), Quarantine: true}
		}
		if reason != "" {
			return nil, &SecurityError{Reason: reason, Quarantine: true}
		}
	}

	return &Verdict{MimeType: mime, Category: Categorize(name, mime)}, nil
}

// scan 对内容前缀做不区分大小写的特征匹配, 命中即拒绝.
// 启发式检查无条件执行, 不受 ScanEnabled 影响.
func (v *Validator) scan(content []byte) error {
	window := content
	if v.cfg.ScanMaxBytes > 0 && int64(len(window)) > v.cfg.ScanMaxBytes {
		window = window[:v.cfg.ScanMaxBytes]
	}
	lowered := bytes.ToLower(window)
	for _, pat := range dangerousPatterns {
		if bytes.Contains(lowered, pat) {
			return &SecurityError{
				Reason: fmt.Sprintf("content matches dangerous pattern %q", pat),
			}
		}
	}
	return nil
}
