// Package category maps file names to the coarse type buckets the listing
// filter and the client icons work with.
package category

import (
	"path/filepath"
	"slices"
	"strings"
)

type Category string

const (
	Document Category = "document"
	Image    Category = "image"
	Video    Category = "video"
	Audio    Category = "audio"
	Other    Category = "other"
)

var (
	documentExtensions = []string{"doc", "docx", "ppt", "pptx", "pps", "ppsx", "odt", "xls", "xlsx", "csv", "pdf", "txt", "rtf", "md"}
	imageExtensions    = []string{"jpg", "jpeg", "png", "gif", "bmp", "svg", "webp", "heic"}
	videoExtensions    = []string{"mp4", "webm", "mov", "avi", "m4v", "flv", "wmv", "mkv", "mpg", "mpeg"}
	audioExtensions    = []string{"mp3", "wav", "ogg", "m4a", "flac", "aac", "wma", "opus"}
)

// Extension returns the lowercased extension of fileName without the dot, or
// "" when there is none.
func Extension(fileName string) string {
	ext := filepath.Ext(fileName)
	if ext == "" {
		return ""
	}
	return strings.ToLower(ext[1:])
}

// Get classifies a file name by its extension.
func Get(fileName string) Category {
	ext := Extension(fileName)

	switch {
	case slices.Contains(documentExtensions, ext):
		return Document
	case slices.Contains(imageExtensions, ext):
		return Image
	case slices.Contains(videoExtensions, ext):
		return Video
	case slices.Contains(audioExtensions, ext):
		return Audio
	default:
		return Other
	}
}
