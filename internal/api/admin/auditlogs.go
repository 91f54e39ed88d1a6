// Package admin implements the administrator-only endpoints: the audit trail
// query surface and the on-demand audit purge.
package admin

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vitrine-app/vitrine-backend/internal/audit"
)

// dateLayout is the accepted format for the from/to query parameters.
const dateLayout = "2006-01-02"

// ListAuditLogsHandler serves the audit trail query surface.
// Implements: GET /api/v1/admin/audit-logs
// Query parameters: from, to (YYYY-MM-DD), eventType, actor, severity,
// limit, offset.
func ListAuditLogsHandler(reader *audit.Reader) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := audit.QueryFilter{
			EventType: audit.EventType(c.Query("eventType")),
			ActorID:   c.Query("actor"),
			Severity:  audit.Severity(c.Query("severity")),
		}

		if from := c.Query("from"); from != "" {
			t, err := time.Parse(dateLayout, from)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{
					"error": "Invalid 'from' date; expected YYYY-MM-DD",
				})
				return
			}
			filter.From = t
		}
		if to := c.Query("to"); to != "" {
			t, err := time.Parse(dateLayout, to)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{
					"error": "Invalid 'to' date; expected YYYY-MM-DD",
				})
				return
			}
			// Make the upper bound inclusive of the named day.
			filter.To = t.Add(24*time.Hour - time.Nanosecond)
		}

		filter.Limit = intQuery(c, "limit", audit.DefaultQueryLimit)
		filter.Offset = intQuery(c, "offset", 0)

		records, total, err := reader.Query(filter)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to read audit trail",
			})
			return
		}
		if records == nil {
			records = []audit.StoredRecord{}
		}

		c.JSON(http.StatusOK, gin.H{
			"records": records,
			"total":   total,
			"limit":   filter.Limit,
			"offset":  filter.Offset,
		})
	}
}

// PurgeAuditLogsHandler deletes audit partitions older than the requested
// window.
// Implements: POST /api/v1/admin/audit-logs/purge
func PurgeAuditLogsHandler(writer *audit.Writer) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			Days int `json:"days" binding:"required"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Request body must be JSON with a positive 'days' field",
			})
			return
		}

		removed, err := writer.PurgeOlderThan(body.Days)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"removed": removed,
			"days":    body.Days,
		})
	}
}

// intQuery parses an integer query parameter, falling back to def for
// missing or malformed values.
func intQuery(c *gin.Context, name string, def int) int {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return def
	}
	return n
}
