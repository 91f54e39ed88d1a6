// Package uploads implements the file upload and removal endpoints. Every
// request runs through the upload gate, which owns validation, storage
// placement, and audit logging; the handlers here only translate between HTTP
// and the gate's domain types.
package uploads

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vitrine-app/vitrine-backend/internal/middleware"
	"github.com/vitrine-app/vitrine-backend/internal/upload"
)

// UploadHandler handles file upload requests.
// Implements: POST /api/v1/uploads/:category
// Accepts multipart form with a single "file" part.
func UploadHandler(gate *upload.Gate, maxMultipartMemory int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		category, err := upload.ParseCategory(c.Param("category"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Unknown upload category; must be image, document, or archive",
			})
			return
		}

		if err := c.Request.ParseMultipartForm(maxMultipartMemory); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Failed to parse multipart form",
			})
			return
		}

		fileHeader, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Missing 'file' form field",
			})
			return
		}

		src, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Failed to read uploaded file",
			})
			return
		}
		defer src.Close()

		content, err := io.ReadAll(src)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Failed to read uploaded file",
			})
			return
		}

		declaredMime := fileHeader.Header.Get("Content-Type")

		artifact, err := gate.Process(c.Request.Context(), upload.Request{
			OriginalName: fileHeader.Filename,
			DeclaredMime: declaredMime,
			Category:     category,
			ActorID:      middleware.CallerID(c),
			Origin:       c.ClientIP(),
			Content:      content,
		})
		if err != nil {
			// The gate already wrote the rejection to the audit trail.
			middleware.MarkAudited(c)
			c.JSON(rejectionStatus(err), gin.H{"error": err.Error()})
			return
		}

		middleware.MarkAudited(c)
		c.JSON(http.StatusCreated, gin.H{
			"originalName": artifact.OriginalName,
			"storedName":   artifact.StoredName,
			"category":     string(artifact.Category),
			"mimeType":     artifact.MimeType,
			"size":         artifact.Size,
			"checksum":     artifact.Checksum,
		})
	}
}

// DeleteHandler removes a stored artifact.
// Implements: DELETE /api/v1/uploads/:category/:name
func DeleteHandler(gate *upload.Gate) gin.HandlerFunc {
	return func(c *gin.Context) {
		category, err := upload.ParseCategory(c.Param("category"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Unknown upload category; must be image, document, or archive",
			})
			return
		}

		name := c.Param("name")
		if err := upload.ValidateFilename(name); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid file name"})
			return
		}

		if err := gate.Remove(c.Request.Context(), category, name, middleware.CallerID(c), c.ClientIP()); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to delete file",
			})
			return
		}

		middleware.MarkAudited(c)
		c.Status(http.StatusNoContent)
	}
}

// rejectionStatus maps a gate rejection to an HTTP status. Rejection messages
// are already caller-safe so they are returned verbatim.
func rejectionStatus(err error) int {
	switch {
	case errors.Is(err, upload.ErrBadFilename):
		return http.StatusBadRequest
	case errors.Is(err, upload.ErrTypeNotAllowed):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, upload.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, upload.ErrContentMismatch):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
