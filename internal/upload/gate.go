// gate.go orchestrates one upload attempt through its validation state
// machine. Each attempt terminates in ACCEPTED or REJECTED; rejected uploads
// leave no partial artifact in storage under any path, and every outcome
// emits exactly one audit event.
package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/vitrine-app/vitrine-backend/internal/audit"
	"github.com/vitrine-app/vitrine-backend/internal/storage"
	"github.com/vitrine-app/vitrine-backend/internal/telemetry"
	"github.com/vitrine-app/vitrine-backend/pkg/checksum"
)

// Request describes one upload attempt. DeclaredMime and OriginalName are
// caller-supplied and untrusted.
type Request struct {
	OriginalName string
	DeclaredMime string
	Category     Category
	ActorID      string
	Origin       string
	Content      []byte
}

// Artifact is an accepted upload. Validated is true only after the stored
// bytes passed post-write signature verification.
type Artifact struct {
	OriginalName string
	StoredName   string
	Path         string // storage path: <category>/<storedName>
	Category     Category
	MimeType     string
	Size         int64
	Checksum     string
	Validated    bool
}

// Gate validates uploads and places accepted artifacts into storage. All
// rejections are synchronous and terminal — uploads are not retried.
type Gate struct {
	store   storage.Storage
	auditor *audit.Logger
	clock   func() time.Time
}

// NewGate creates an upload gate writing through store and reporting to
// auditor.
func NewGate(store storage.Storage, auditor *audit.Logger) *Gate {
	return &Gate{
		store:   store,
		auditor: auditor,
		clock:   time.Now,
	}
}

// Process runs one upload attempt to a terminal state. On rejection the
// returned error wraps one of the sentinel errors (ErrBadFilename,
// ErrTypeNotAllowed, ErrTooLarge, ErrContentMismatch) so callers can map it
// to an actionable response.
func (g *Gate) Process(ctx context.Context, req Request) (*Artifact, error) {
	// Step 1: filename validation. No storage write has happened yet.
	if err := ValidateFilename(req.OriginalName); err != nil {
		g.reject(req, "", err)
		return nil, err
	}

	// Step 2: extension/MIME/size allow-list for the category.
	policy := PolicyFor(req.Category)
	if err := policy.Check(req.OriginalName, req.DeclaredMime, int64(len(req.Content))); err != nil {
		g.reject(req, "", err)
		return nil, err
	}

	// Step 3: storage placement under a generated name.
	storedName, err := GenerateStoredName(req.OriginalName, req.ActorID, g.clock())
	if err != nil {
		return nil, err
	}
	path := string(req.Category) + "/" + storedName

	result, err := g.store.Upload(ctx, path, bytes.NewReader(req.Content), int64(len(req.Content)))
	if err != nil {
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}

	// Step 4: signature verification against the bytes actually written.
	written, err := g.readBack(ctx, path)
	if err != nil {
		g.cleanup(ctx, path, err)
		return nil, err
	}
	if !VerifySignature(written, req.DeclaredMime) {
		g.cleanup(ctx, path, ErrContentMismatch)
		telemetry.UploadsRejectedTotal.WithLabelValues(string(req.Category), "signature_mismatch").Inc()
		g.auditor.LogSecurity(audit.SecurityEvent{
			Event:   audit.FileSignatureMismatch,
			ActorID: req.ActorID,
			Origin:  req.Origin,
			Detail: fmt.Sprintf("declared %s as %q, stored as %s, content failed verification",
				req.OriginalName, req.DeclaredMime, storedName),
		})
		return nil, ErrContentMismatch
	}

	// The stored bytes must hash to the checksum computed during the write;
	// a mismatch means the backend corrupted or truncated the object.
	intact, err := checksum.VerifySHA256(bytes.NewReader(written), result.Checksum)
	if err == nil && !intact {
		err = fmt.Errorf("stored content failed integrity verification")
	}
	if err != nil {
		g.cleanup(ctx, path, err)
		return nil, err
	}

	// Step 5: size re-check against the bytes actually written.
	if int64(len(written)) > policy.MaxSize {
		sizeErr := fmt.Errorf("%w: %d bytes on disk (maximum %d)", ErrTooLarge, len(written), policy.MaxSize)
		g.cleanup(ctx, path, sizeErr)
		g.reject(req, storedName, sizeErr)
		return nil, sizeErr
	}

	// Step 6: accepted.
	telemetry.UploadsAcceptedTotal.WithLabelValues(string(req.Category)).Inc()
	g.auditor.LogFile(audit.FileEvent{
		Event:        audit.FileUploaded,
		ActorID:      req.ActorID,
		Origin:       req.Origin,
		Success:      true,
		OriginalName: req.OriginalName,
		StoredName:   storedName,
		MimeType:     req.DeclaredMime,
		Category:     string(req.Category),
		Size:         result.Size,
	})

	return &Artifact{
		OriginalName: req.OriginalName,
		StoredName:   storedName,
		Path:         path,
		Category:     req.Category,
		MimeType:     req.DeclaredMime,
		Size:         result.Size,
		Checksum:     result.Checksum,
		Validated:    true,
	}, nil
}

// Remove deletes a previously accepted artifact and audits the deletion.
func (g *Gate) Remove(ctx context.Context, category Category, storedName, actorID, origin string) error {
	path := string(category) + "/" + storedName
	if err := g.store.Delete(ctx, path); err != nil {
		return fmt.Errorf("failed to delete stored file: %w", err)
	}
	g.auditor.LogFile(audit.FileEvent{
		Event:      audit.FileDeleted,
		ActorID:    actorID,
		Origin:     origin,
		Success:    true,
		StoredName: storedName,
		Category:   string(category),
	})
	return nil
}

// readBack retrieves the stored bytes for post-write verification.
func (g *Gate) readBack(ctx context.Context, path string) ([]byte, error) {
	rc, err := g.store.Download(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to re-read stored upload: %w", err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to re-read stored upload: %w", err)
	}
	return data, nil
}

// cleanup removes a written file after a post-write rejection. A failed
// delete is logged but not returned, so it never masks the original error.
func (g *Gate) cleanup(ctx context.Context, path string, cause error) {
	if err := g.store.Delete(ctx, path); err != nil {
		slog.Error("upload: failed to clean up rejected file", "path", path, "cause", cause, "error", err)
	}
}

// reject records a policy rejection as a single medium-severity file event.
func (g *Gate) reject(req Request, storedName string, cause error) {
	telemetry.UploadsRejectedTotal.WithLabelValues(string(req.Category), rejectReason(cause)).Inc()
	g.auditor.LogFile(audit.FileEvent{
		Event:        audit.FileRejected,
		ActorID:      req.ActorID,
		Origin:       req.Origin,
		Success:      false,
		OriginalName: req.OriginalName,
		StoredName:   storedName,
		MimeType:     req.DeclaredMime,
		Category:     string(req.Category),
		Size:         int64(len(req.Content)),
		Reason:       cause.Error(),
	})
}

// rejectReason maps a rejection error to a bounded metric label.
func rejectReason(err error) string {
	switch {
	case errors.Is(err, ErrBadFilename):
		return "bad_filename"
	case errors.Is(err, ErrTypeNotAllowed):
		return "type_not_allowed"
	case errors.Is(err, ErrTooLarge):
		return "too_large"
	case errors.Is(err, ErrContentMismatch):
		return "signature_mismatch"
	default:
		return "other"
	}
}
