package validation

import (
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"github.com/LDFINA01/Jokester-Merch-Generator/internal/domain"
)

const (
	MaxImageBytes = 10 << 20
	MaxVideoBytes = 100 << 20
)

// Rule bounds the accepted content types and size of one kind of upload.
type Rule struct {
	Kind         string
	ContentTypes map[string]bool
	MaxBytes     int64
}

var (
	ImageRule = Rule{
		Kind:         "image",
		ContentTypes: map[string]bool{"image/jpeg": true, "image/jpg": true, "image/png": true},
		MaxBytes:     MaxImageBytes,
	}
	VideoRule = Rule{
		Kind: "video",
		ContentTypes: map[string]bool{
			"video/mp4":       true,
			"video/quicktime": true,
			"video/x-msvideo": true,
			"video/avi":       true,
		},
		MaxBytes: MaxVideoBytes,
	}
)

// Check validates an upload against the rule and returns its normalized
// content type. When the declared type is missing or generic the file
// extension decides.
func (r Rule) Check(filename, contentType string, size int64) (string, error) {
	ct := normalizeContentType(contentType)
	if ct == "" || ct == "application/octet-stream" {
		ct = normalizeContentType(mime.TypeByExtension(strings.ToLower(filepath.Ext(filename))))
	}
	if !r.ContentTypes[ct] {
		return "", fmt.Errorf("%s type %q is not allowed: %w", r.Kind, ct, domain.ErrInvalidUpload)
	}
	if size <= 0 {
		return "", fmt.Errorf("%s is empty: %w", r.Kind, domain.ErrInvalidUpload)
	}
	if size > r.MaxBytes {
		return "", fmt.Errorf("%s exceeds %d MB: %w", r.Kind, r.MaxBytes>>20, domain.ErrInvalidUpload)
	}
	if ct == "image/jpg" {
		ct = "image/jpeg"
	}
	return ct, nil
}

func normalizeContentType(ct string) string {
	if ct == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(ct))
	}
	return strings.ToLower(mediaType)
}
