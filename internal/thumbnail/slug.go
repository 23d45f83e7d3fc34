package thumbnail

import (
	"fmt"
	"strings"
	"time"
)

const (
	slugMaxLen           = 50
	fallbackDownloadName = "thumbnail"
)

// Slug lowercases the title and replaces every non-alphanumeric rune with a
// dash, capped at a fixed length. An empty title yields the generic fallback.
func Slug(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return fallbackDownloadName
	}
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('-')
		}
		if b.Len() >= slugMaxLen {
			break
		}
	}
	return b.String()
}

// DownloadFilename builds the file name used by the image download side
// effect: slug, uniqueness suffix, png extension.
func DownloadFilename(title string, now time.Time) string {
	return fmt.Sprintf("%s-%d.png", Slug(title), now.UnixMilli())
}
