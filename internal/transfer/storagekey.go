package transfer

import (
	"fmt"

	"github.com/google/uuid"
)

const fallbackExtension = "bin"

// mimeExtensions maps known mime types to storage file extensions.
var mimeExtensions = map[string]string{
	"audio/mpeg":               "mp3",
	"audio/mp4":                "m4a",
	"audio/wav":                "wav",
	"image/jpeg":               "jpg",
	"image/png":                "png",
	"image/gif":                "gif",
	"image/webp":               "webp",
	"video/mp4":                "mp4",
	"video/webm":               "webm",
	"video/quicktime":          "mov",
	"video/x-matroska":         "mkv",
	"document/pdf":             "pdf",
	"text/plain":               "txt",
	"text/csv":                 "csv",
	"text/html":                "html",
	"text/xml":                 "xml",
	"application/msword":       "doc",
	"application/vnd.ms-excel": "xls",
	"application/vnd.ms-powerpoint": "ppt",
	"application/pdf":               "pdf",
	"application/zip":               "zip",
	"application/json":              "json",
	"application/octet-stream":      "bin",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document":   "docx",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":         "xlsx",
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": "pptx",
}

// ExtensionForMime maps a mime type to a storage extension, falling back to
// a generic binary extension for unknown types.
func ExtensionForMime(mimeType string) string {
	if ext, ok := mimeExtensions[mimeType]; ok {
		return ext
	}
	return fallbackExtension
}

// StorageKey derives a collision-free object key for a transferred file.
// The key embeds a fresh identifier and never derives from remote-supplied
// names.
func StorageKey(mimeType string) string {
	return fmt.Sprintf("uploads/%s/file.%s", uuid.New(), ExtensionForMime(mimeType))
}
