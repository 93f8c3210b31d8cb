// Package filex classifies uploaded file names into storage categories.
// The category and extension are derived once at upload time and are
// immutable afterwards.
package filex

import (
	"path/filepath"
	"strings"
)

// Category is the coarse file class used for browsing and usage aggregation.
type Category string

const (
	CategoryDocument Category = "document"
	CategoryImage    Category = "image"
	CategoryVideo    Category = "video"
	CategoryAudio    Category = "audio"
	CategoryOther    Category = "other"
)

// Categories lists every category in a stable order.
func Categories() []Category {
	return []Category{CategoryDocument, CategoryImage, CategoryVideo, CategoryAudio, CategoryOther}
}

// Valid reports whether s names a known category.
func Valid(s string) bool {
	switch Category(s) {
	case CategoryDocument, CategoryImage, CategoryVideo, CategoryAudio, CategoryOther:
		return true
	}
	return false
}

var categoryByExtension = map[string]Category{
	// documents
	"pdf": CategoryDocument, "doc": CategoryDocument, "docx": CategoryDocument,
	"txt": CategoryDocument, "xls": CategoryDocument, "xlsx": CategoryDocument,
	"csv": CategoryDocument, "rtf": CategoryDocument, "ods": CategoryDocument,
	"ppt": CategoryDocument, "pptx": CategoryDocument, "odp": CategoryDocument,
	"md": CategoryDocument, "html": CategoryDocument, "htm": CategoryDocument,
	"epub": CategoryDocument, "pages": CategoryDocument,

	// images
	"jpg": CategoryImage, "jpeg": CategoryImage, "png": CategoryImage,
	"gif": CategoryImage, "bmp": CategoryImage, "svg": CategoryImage,
	"webp": CategoryImage, "heic": CategoryImage,

	// video containers
	"mp4": CategoryVideo, "avi": CategoryVideo, "mov": CategoryVideo,
	"mkv": CategoryVideo, "webm": CategoryVideo,

	// audio containers
	"mp3": CategoryAudio, "wav": CategoryAudio, "ogg": CategoryAudio,
	"flac": CategoryAudio, "aac": CategoryAudio, "m4a": CategoryAudio,
}

// Classify derives the category and lowercase extension (without the dot)
// from a file name. Names without an extension, or with an unknown one,
// classify as CategoryOther.
func Classify(name string) (Category, string) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	if ext == "" {
		return CategoryOther, ""
	}
	if c, ok := categoryByExtension[ext]; ok {
		return c, ext
	}
	return CategoryOther, ext
}
