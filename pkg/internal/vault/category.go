package vault

import (
	"path/filepath"
	"strings"
)

// ObjectCategory 文件分类, 决定对象在仓库中的存储子目录.
type ObjectCategory string

const (
	CategoryDocument ObjectCategory = "document"
	CategoryImage    ObjectCategory = "image"
	CategoryVideo    ObjectCategory = "video"
	CategoryAudio    ObjectCategory = "audio"
	CategoryArchive  ObjectCategory = "archive"
	CategoryCode     ObjectCategory = "code"
	CategoryData     ObjectCategory = "data"
	CategoryOther    ObjectCategory = "other"
)

// extensionCategories 扩展名到分类的映射表, 扩展名不带点且为小写.
var extensionCategories = map[string]ObjectCategory{
	// documents
	"pdf": CategoryDocument, "doc": CategoryDocument, "docx": CategoryDocument,
	"xls": CategoryDocument, "xlsx": CategoryDocument, "ppt": CategoryDocument,
	"pptx": CategoryDocument, "odt": CategoryDocument, "ods": CategoryDocument,
	"odp": CategoryDocument, "txt": CategoryDocument, "md": CategoryDocument,
	"rtf": CategoryDocument,

	// images
	"jpg": CategoryImage, "jpeg": CategoryImage, "png": CategoryImage,
	"gif": CategoryImage, "bmp": CategoryImage, "webp": CategoryImage,
	"svg": CategoryImage, "tiff": CategoryImage, "ico": CategoryImage,

	// video
	"mp4": CategoryVideo, "avi": CategoryVideo, "mkv": CategoryVideo,
	"mov": CategoryVideo, "wmv": CategoryVideo, "webm": CategoryVideo,
	"flv": CategoryVideo,

	// audio
	"mp3": CategoryAudio, "wav": CategoryAudio, "flac": CategoryAudio,
	"ogg": CategoryAudio, "aac": CategoryAudio, "m4a": CategoryAudio,

	// archives
	"zip": CategoryArchive, "tar": CategoryArchive, "gz": CategoryArchive,
	"bz2": CategoryArchive, "xz": CategoryArchive, "7z": CategoryArchive,
	"rar": CategoryArchive,

	// code
	"go": CategoryCode, "py": CategoryCode, "js": CategoryCode,
	"ts": CategoryCode, "java": CategoryCode, "c": CategoryCode,
	"cpp": CategoryCode, "h": CategoryCode, "rs": CategoryCode,
	"rb": CategoryCode, "php": CategoryCode, "css": CategoryCode,
	"html": CategoryCode, "sql": CategoryCode,

	// structured data
	"json": CategoryData, "yaml": CategoryData, "yml": CategoryData,
	"xml": CategoryData, "csv": CategoryData, "toml": CategoryData,
	"parquet": CategoryData,
}

// Ext 返回文件名的小写扩展名, 不带前导点.
func Ext(name string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
}

// Categorize 根据扩展名判定分类, 未命中时回退到 MIME 主类型.
func Categorize(name, mimeType string) ObjectCategory {
	if cat, ok := extensionCategories[Ext(name)]; ok {
		return cat
	}
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return CategoryImage
	case strings.HasPrefix(mimeType, "video/"):
		return CategoryVideo
	case strings.HasPrefix(mimeType, "audio/"):
		return CategoryAudio
	case strings.HasPrefix(mimeType, "text/"):
		return CategoryDocument
	default:
		return CategoryOther
	}
}
