package storage

import (
	"context"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Store persists uploaded bytes and returns a publicly reachable URL.
type Store interface {
	Store(ctx context.Context, data []byte, filename, contentType string) (string, error)
}

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// ObjectKey derives a collision-free key for filename, grouped by upload month.
func ObjectKey(filename string, now time.Time) string {
	base := path.Base(strings.ReplaceAll(strings.TrimSpace(filename), "\\", "/"))
	base = unsafeNameChars.ReplaceAllString(base, "-")
	base = strings.Trim(base, "-.")
	if base == "" {
		base = "upload"
	}
	if len(base) > 80 {
		base = base[len(base)-80:]
	}
	return path.Join("uploads", now.UTC().Format("2006/01"), uuid.NewString()+"-"+base)
}
