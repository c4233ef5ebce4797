package filestorage

import (
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var extensionTypes = map[string]string{
	".avi":  "video/x-msvideo",
	".flv":  "video/x-flv",
	".f4v":  "video/mp4",
	".fmp4": "video/mp4",
	".mov":  "video/quicktime",
	".mp4":  "video/mp4",
	".m4v":  "video/x-m4v",
	".mpeg": "video/mpeg",
	".mpe":  "video/mpeg",
	".mpg":  "video/mpeg",
	".ogv":  "video/ogg",
	".qt":   "video/quicktime",
	".ts":   "video/mp2t",
	".webm": "video/webm",
	".csv":  "text/csv",
	".txt":  "text/plain",
	".pdf":  "application/pdf",
}

// DetectMimeType resolves a mime type from the file extension, falling
// back to sniffing the leading bytes.
func DetectMimeType(filename string, head []byte) string {
	if t, ok := extensionTypes[strings.ToLower(path.Ext(filename))]; ok {
		return t
	}
	if len(head) == 0 {
		return "application/octet-stream"
	}
	return strings.TrimSpace(strings.Split(mimetype.Detect(head).String(), ";")[0])
}

// FileIcon returns the icon name used for a mime type.
func FileIcon(mimeType string) string {
	switch {
	case strings.HasPrefix(mimeType, "video/"):
		return "f/video"
	case strings.HasPrefix(mimeType, "audio/"):
		return "f/audio"
	case strings.HasPrefix(mimeType, "image/"):
		return "f/image"
	case mimeType == "text/csv":
		return "f/spreadsheet"
	case mimeType == "application/pdf":
		return "f/pdf"
	case strings.HasPrefix(mimeType, "text/"):
		return "f/text"
	default:
		return "f/unknown"
	}
}

// MimeDescription is the human readable label of a mime type, e.g.
// "Video file (MP4)".
func MimeDescription(mimeType string) string {
	var kind string
	switch {
	case strings.HasPrefix(mimeType, "video/"):
		kind = "Video file"
	case strings.HasPrefix(mimeType, "audio/"):
		kind = "Audio file"
	case strings.HasPrefix(mimeType, "image/"):
		kind = "Image"
	case mimeType == "text/csv":
		kind = "Spreadsheet"
	case strings.HasPrefix(mimeType, "text/"):
		kind = "Text file"
	default:
		return "File"
	}

	if m := mimetype.Lookup(mimeType); m != nil && m.Extension() != "" {
		return kind + " (" + strings.ToUpper(strings.TrimPrefix(m.Extension(), ".")) + ")"
	}
	return kind
}

// Accepts reports whether filename matches one of the accepted extensions.
// An empty list or "*" accepts everything.
func (o UploadOptions) Accepts(filename string) bool {
	if len(o.AcceptedTypes) == 0 {
		return true
	}
	ext := strings.ToLower(path.Ext(filename))
	for _, t := range o.AcceptedTypes {
		if t == "*" || t == ext {
			return true
		}
	}
	return false
}
