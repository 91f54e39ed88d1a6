// filename.go validates and sanitizes caller-supplied file names. The
// original uploaded name is untrusted input: it is validated here, then only
// a sanitized fragment of it survives into the generated stored name.
package upload

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// MaxFilenameLength is the ceiling on the original uploaded name in bytes.
const MaxFilenameLength = 255

// reservedNames are Windows device names that must never be used as a file
// name stem, with or without an extension. Files stored under these names are
// unmanageable on Windows hosts and are a classic smuggling vector.
var reservedNames = regexp.MustCompile(`(?i)^(CON|PRN|AUX|NUL|COM[1-9]|LPT[1-9])(\..*)?$`)

// pathBreaking are characters that can alter the meaning of a path or are
// rejected by common filesystems.
const pathBreaking = `/\:*?"<>|`

// ValidateFilename rejects original file names that could break out of the
// upload directory, collide with device names, or abuse the filesystem. It
// runs before any storage write.
func ValidateFilename(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrBadFilename)
	}
	if len(name) > MaxFilenameLength {
		return fmt.Errorf("%w: name exceeds %d bytes", ErrBadFilename, MaxFilenameLength)
	}
	for _, r := range name {
		if r < 0x20 || r == 0x7f {
			return fmt.Errorf("%w: control character in name", ErrBadFilename)
		}
	}
	if strings.ContainsAny(name, pathBreaking) {
		return fmt.Errorf("%w: path-breaking character in name", ErrBadFilename)
	}
	if strings.Contains(name, "..") {
		return fmt.Errorf("%w: path traversal sequence in name", ErrBadFilename)
	}
	if reservedNames.MatchString(name) {
		return fmt.Errorf("%w: reserved device name", ErrBadFilename)
	}
	return nil
}

// sanitizeBaseName reduces the original base name (without extension) to a
// conservative fragment safe to embed in a stored name: lowercase
// alphanumerics, dash and underscore, at most 40 bytes.
func sanitizeBaseName(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	var b strings.Builder
	for _, r := range strings.ToLower(base) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	s := strings.Trim(b.String(), "-")
	if s == "" {
		s = "file"
	}
	if len(s) > 40 {
		s = s[:40]
	}
	return s
}

// GenerateStoredName derives a collision-resistant stored name from the
// original name, the acting principal, the current time, and random bytes:
// <sanitizedBase>-<shortHash>-<randomHex><originalExtension>. The raw
// uploaded name is never used as a storage path.
func GenerateStoredName(originalName, actorID string, now time.Time) (string, error) {
	random := make([]byte, 4)
	if _, err := rand.Read(random); err != nil {
		return "", fmt.Errorf("failed to generate random name component: %w", err)
	}

	h := sha256.Sum256([]byte(originalName + "|" + actorID + "|" + now.Format(time.RFC3339Nano)))
	shortHash := hex.EncodeToString(h[:3])

	ext := strings.ToLower(filepath.Ext(originalName))
	return fmt.Sprintf("%s-%s-%s%s", sanitizeBaseName(originalName), shortHash, hex.EncodeToString(random), ext), nil
}
