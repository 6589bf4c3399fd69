package usage

import (
	"maps"
	"mime"
	"path"
	"strings"
)

// Classifier 根据文件名与 Content-Type 判定分类，必须是全函数.
type Classifier func(name, contentType string) Category

// DefaultExtensions 默认扩展名分类表，key 为不带点的小写扩展名.
var DefaultExtensions = map[string]Category{
	"pdf": CategoryDocument, "doc": CategoryDocument, "docx": CategoryDocument,
	"txt": CategoryDocument, "md": CategoryDocument, "xls": CategoryDocument,
	"xlsx": CategoryDocument, "csv": CategoryDocument, "rtf": CategoryDocument,
	"ods": CategoryDocument, "ppt": CategoryDocument, "pptx": CategoryDocument,
	"odt": CategoryDocument, "epub": CategoryDocument, "html": CategoryDocument,

	"jpg": CategoryImage, "jpeg": CategoryImage, "png": CategoryImage,
	"gif": CategoryImage, "bmp": CategoryImage, "svg": CategoryImage,
	"webp": CategoryImage, "heic": CategoryImage, "tiff": CategoryImage,

	"mp4": CategoryMedia, "avi": CategoryMedia, "mov": CategoryMedia,
	"mkv": CategoryMedia, "webm": CategoryMedia, "flv": CategoryMedia,
	"mp3": CategoryMedia, "wav": CategoryMedia, "ogg": CategoryMedia,
	"flac": CategoryMedia, "m4a": CategoryMedia, "aac": CategoryMedia,
}

// documentMIME 非 text/* 的文档类 MIME.
var documentMIME = map[string]struct{}{
	"application/pdf":      {},
	"application/msword":   {},
	"application/rtf":      {},
	"application/json":     {},
	"application/epub+zip": {},

	"application/vnd.ms-excel":                {},
	"application/vnd.ms-powerpoint":           {},
	"application/vnd.oasis.opendocument.text": {},

	"application/vnd.openxmlformats-officedocument.wordprocessingml.document":   {},
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":         {},
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": {},
}

// NewClassifier 创建分类器：先查扩展名表，再看 MIME 主类型，都不匹配则为 other.
// extensions 会与 DefaultExtensions 合并，同名时覆盖默认值.
func NewClassifier(extensions map[string]Category) Classifier {
	table := maps.Clone(DefaultExtensions)
	for ext, c := range extensions {
		table[normalizeExt(ext)] = c
	}

	return func(name, contentType string) Category {
		if c, ok := table[Extension(name)]; ok {
			return c
		}

		return classifyMIME(contentType)
	}
}

// DefaultClassifier 使用默认扩展名表.
var DefaultClassifier = NewClassifier(nil)

// Extension 返回文件名的小写扩展名（不含点）.
func Extension(name string) string {
	return normalizeExt(path.Ext(name))
}

func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}

func classifyMIME(contentType string) Category {
	if contentType == "" {
		return CategoryOther
	}

	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mt = strings.ToLower(strings.TrimSpace(contentType))
	}

	if _, ok := documentMIME[mt]; ok {
		return CategoryDocument
	}

	major, _, _ := strings.Cut(mt, "/")
	switch major {
	case "image":
		return CategoryImage
	case "video", "audio":
		return CategoryMedia
	case "text":
		return CategoryDocument
	default:
		return CategoryOther
	}
}
