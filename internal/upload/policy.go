// policy.go defines the per-category upload policies: which extensions and
// MIME types each category accepts and how large its files may be. The table
// is externally observable behavior relied on by existing clients and must
// not drift.
package upload

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Category is a policy bucket governing allowed types and size ceilings.
type Category string

const (
	CategoryImage    Category = "image"
	CategoryDocument Category = "document"
	CategoryArchive  Category = "archive"
)

// Rejection sentinels. Handlers map these to actionable client responses.
var (
	ErrBadFilename     = errors.New("invalid file name")
	ErrUnknownCategory = errors.New("unknown upload category")
	ErrTypeNotAllowed  = errors.New("file type not allowed for this category")
	ErrTooLarge        = errors.New("file exceeds the maximum size for this category")
	// ErrContentMismatch is deliberately generic: integrity failures must not
	// leak which byte check failed.
	ErrContentMismatch = errors.New("file content does not match declared type")
)

// Policy is the validation policy of one upload category.
type Policy struct {
	Category          Category
	MaxSize           int64
	AllowedExtensions []string
	AllowedMimeTypes  []string
}

const mib = 1024 * 1024

var policies = map[Category]Policy{
	CategoryImage: {
		Category:          CategoryImage,
		MaxSize:           5 * mib,
		AllowedExtensions: []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".svg"},
		AllowedMimeTypes: []string{
			"image/jpeg", "image/png", "image/gif", "image/webp", "image/svg+xml",
		},
	},
	CategoryDocument: {
		Category:          CategoryDocument,
		MaxSize:           10 * mib,
		AllowedExtensions: []string{".pdf", ".doc", ".docx", ".xls", ".xlsx", ".txt"},
		AllowedMimeTypes: []string{
			"application/pdf",
			"application/msword",
			"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
			"application/vnd.ms-excel",
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			"text/plain",
		},
	},
	CategoryArchive: {
		Category:          CategoryArchive,
		MaxSize:           50 * mib,
		AllowedExtensions: []string{".zip", ".rar"},
		AllowedMimeTypes: []string{
			"application/zip",
			"application/vnd.rar",
			"application/x-rar-compressed",
		},
	},
}

// ParseCategory validates a caller-supplied category string.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(s))
	if _, ok := policies[c]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
	}
	return c, nil
}

// PolicyFor returns the policy of a category. The category must have been
// obtained from ParseCategory.
func PolicyFor(c Category) Policy {
	return policies[c]
}

// Check validates the declared extension, MIME type, and size of an upload
// against the policy. It runs before any storage write.
func (p Policy) Check(originalName, declaredMime string, size int64) error {
	ext := strings.ToLower(filepath.Ext(originalName))
	if !contains(p.AllowedExtensions, ext) {
		return fmt.Errorf("%w: extension %q", ErrTypeNotAllowed, ext)
	}
	if !contains(p.AllowedMimeTypes, strings.ToLower(declaredMime)) {
		return fmt.Errorf("%w: MIME type %q", ErrTypeNotAllowed, declaredMime)
	}
	if size > p.MaxSize {
		return fmt.Errorf("%w: %d bytes (maximum %d)", ErrTooLarge, size, p.MaxSize)
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
