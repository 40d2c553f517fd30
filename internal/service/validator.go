package service

import (
	"fmt"
	"strconv"
	"strings"

	"imagefetcher/internal/core/domain"
)

// DefaultMaxSizeMB is the ceiling applied to declared and actual sizes.
const DefaultMaxSizeMB = 50

const bytesPerMB = 1024 * 1024

// ValidateHeaders checks probe metadata before committing to a download.
// It returns whether the resource is acceptable and a human-readable reason.
func ValidateHeaders(meta domain.ResponseMeta, maxMB int) (bool, string) {
	contentType := strings.ToLower(strings.TrimSpace(meta.ContentType))
	if !strings.HasPrefix(contentType, "image/") {
		return false, fmt.Sprintf("Content-Type '%s' is not an image", contentType)
	}

	if meta.ContentLength != "" {
		// An unparseable length means the size is unknown.
		if n, err := strconv.ParseInt(strings.TrimSpace(meta.ContentLength), 10, 64); err == nil {
			sizeMB := float64(n) / bytesPerMB
			if sizeMB > float64(maxMB) {
				return false, fmt.Sprintf("Image too large (%.1fMB). Limit: %dMB", sizeMB, maxMB)
			}
		}
	}

	return true, "Headers validated successfully"
}
