package service

import (
	"context"
	"fmt"
	"mime"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode"

	"imagefetcher/internal/core/ports"
)

const (
	DefaultFilenamePrefix = "image_"
	defaultExtension      = ".jpg"
)

// Preferred extensions; mime.ExtensionsByType returns several in an
// order that depends on the host's mime tables.
var imageExtensions = map[string]string{
	"image/jpeg":               ".jpg",
	"image/jpg":                ".jpg",
	"image/pjpeg":              ".jpg",
	"image/png":                ".png",
	"image/gif":                ".gif",
	"image/webp":               ".webp",
	"image/bmp":                ".bmp",
	"image/x-ms-bmp":           ".bmp",
	"image/svg+xml":            ".svg",
	"image/tiff":               ".tiff",
	"image/x-icon":             ".ico",
	"image/vnd.microsoft.icon": ".ico",
	"image/avif":               ".avif",
	"image/heic":               ".heic",
	"image/heif":               ".heif",
}

// FilenameResolver turns URLs into safe, collision-free local names.
type FilenameResolver struct {
	storage ports.Storage
	prefix  string
	now     func() time.Time
}

// NewFilenameResolver creates a resolver that checks collisions against storage.
func NewFilenameResolver(storage ports.Storage, prefix string) *FilenameResolver {
	if prefix == "" {
		prefix = DefaultFilenamePrefix
	}
	return &FilenameResolver{storage: storage, prefix: prefix, now: time.Now}
}

// Resolve derives a sanitized filename from the URL path, falling back to a
// synthesized timestamped name when the path has no usable file name.
func (r *FilenameResolver) Resolve(rawURL, contentType string) string {
	name := sanitize(lastSegment(rawURL))
	if name == "" || !strings.Contains(name, ".") || strings.Trim(name, ".") == "" {
		name = sanitize(r.synthesize(contentType))
	}
	return name
}

// Available returns name, or the first free name_N variant of it.
func (r *FilenameResolver) Available(ctx context.Context, name string) (string, error) {
	exists, err := r.storage.Exists(ctx, name)
	if err != nil {
		return "", err
	}
	if !exists {
		return name, nil
	}

	stem, ext := splitExt(name)
	for i := 1; ; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		candidate := fmt.Sprintf("%s_%d%s", stem, i, ext)
		exists, err := r.storage.Exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}
}

func (r *FilenameResolver) synthesize(contentType string) string {
	return r.prefix + strconv.FormatInt(r.now().Unix(), 10) + ExtensionFor(contentType)
}

// ExtensionFor maps a content type to a file extension, defaulting to .jpg.
func ExtensionFor(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(contentType))
	}
	if ext, ok := imageExtensions[mediaType]; ok {
		return ext
	}
	if exts, err := mime.ExtensionsByType(mediaType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return defaultExtension
}

func lastSegment(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	p := u.Path
	return p[strings.LastIndex(p, "/")+1:]
}

func sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '.' || r == '-' || r == '_' {
			return r
		}
		return -1
	}, name)
}

// splitExt splits the final extension off name. Dotfiles such as ".env"
// have no extension.
func splitExt(name string) (string, string) {
	ext := filepath.Ext(name)
	if ext == name {
		return name, ""
	}
	return strings.TrimSuffix(name, ext), ext
}
