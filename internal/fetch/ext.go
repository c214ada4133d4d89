package fetch

import (
	"mime"
	"net/url"
	"path"
	"strings"
)

// FallbackExtension is used when neither the header nor the URL names a type.
const FallbackExtension = ".bin"

// maxURLExtLen bounds an extension taken from a URL path, dot included.
const maxURLExtLen = 6

var imageExtensions = map[string]string{
	"image/jpeg":               ".jpg",
	"image/jpg":                ".jpg",
	"image/pjpeg":              ".jpg",
	"image/png":                ".png",
	"image/gif":                ".gif",
	"image/webp":               ".webp",
	"image/bmp":                ".bmp",
	"image/x-icon":             ".ico",
	"image/vnd.microsoft.icon": ".ico",
	"image/svg+xml":            ".svg",
	"image/tiff":               ".tiff",
	"image/avif":               ".avif",
}

// Extension picks the file extension for a download: the Content-Type
// header if it names a known image type, then a short suffix of the URL
// path, then FallbackExtension.
func Extension(contentType, rawURL string) string {
	if ext, ok := extensionFromType(contentType); ok {
		return ext
	}
	if ext := ExtensionFromURL(rawURL); ext != "" {
		return ext
	}
	return FallbackExtension
}

func extensionFromType(contentType string) (string, bool) {
	contentType = strings.TrimSpace(contentType)
	if contentType == "" {
		return "", false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType, _, _ = strings.Cut(contentType, ";")
	}
	ext, ok := imageExtensions[strings.ToLower(strings.TrimSpace(mediaType))]
	return ext, ok
}

// ExtensionFromURL returns the suffix of the URL's last path segment when
// it is at most six characters long including the dot.
func ExtensionFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	ext := path.Ext(u.Path)
	if ext == "." || len(ext) > maxURLExtLen {
		return ""
	}
	return ext
}
