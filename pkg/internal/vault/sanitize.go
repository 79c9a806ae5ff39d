package vault

import (
	"path/filepath"
	"strings"
	"unicode/utf8"
)

const (
	// FallbackName 清洗后为空时的兜底文件名.
	FallbackName = "unnamed_file"
	// maxNameBytes 存储文件名的最大字节数.
	maxNameBytes = 255
)

// reservedChars 路径分隔符与文件系统保留字符，统一替换为下划线.
const reservedChars = `<>:"/\|?*`

// SanitizeName 把不可信的文件名清洗为可以安全用作路径段的名字.
// 结果保证非空、不含路径分隔符与保留字符、不超过 255 字节.
func SanitizeName(name string) string {
	var b strings.Builder

	b.Grow(len(name))

	for _, r := range name {
		if strings.ContainsRune(reservedChars, r) || r == 0 {
			b.WriteByte('_')
		} else {
			b.WriteRune(r)
		}
	}

	s := b.String()

	// 连续的点折叠为一个，杜绝 ".." 形式的路径上跳
	for strings.Contains(s, "..") {
		s = strings.ReplaceAll(s, "..", ".")
	}

	s = strings.Trim(s, ". ")

	if s == "" {
		return FallbackName
	}

	if len(s) > maxNameBytes {
		s = truncatePreservingExt(s, maxNameBytes)
	}

	return s
}

// truncatePreservingExt 截断到 limit 字节，尽量保留扩展名.
func truncatePreservingExt(s string, limit int) string {
	ext := filepath.Ext(s)
	if len(ext) >= limit {
		// 扩展名本身过长，只能硬截断
		return trimToValidUTF8(s[:limit])
	}

	stem := s[:len(s)-len(ext)]
	keep := limit - len(ext)

	return trimToValidUTF8(stem[:keep]) + ext
}

// trimToValidUTF8 去掉截断产生的不完整多字节序列尾部.
func trimToValidUTF8(s string) string {
	for len(s) > 0 && !utf8.ValidString(s) {
		s = s[:len(s)-1]
	}

	return s
}
