package middleware

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/erinpaul2002/careops-backend/models"
	"github.com/erinpaul2002/careops-backend/services/idempotency"
	"github.com/erinpaul2002/careops-backend/utils"
)

// IdempotencyHeader is the client-supplied deduplication token required on
// public mutating endpoints.
const IdempotencyHeader = "Idempotency-Key"

// bodyCapture tees the response body so a snapshot can be stored for replay.
type bodyCapture struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *bodyCapture) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

// IdempotencyMiddleware deduplicates retried mutating requests through the
// ledger. Same key and same body replay the stored response without
// re-executing side effects; same key with a different body is a conflict.
func IdempotencyMiddleware(ledger idempotency.Ledger) gin.HandlerFunc {
	logger := utils.GetLogger()
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyHeader)
		if key == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "missing " + IdempotencyHeader + " header"})
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "unreadable request body"})
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		tenantID := TenantID(c)
		method := c.Request.Method
		// The concrete request path, not the route template: retries of one
		// resource must never replay a sibling's response.
		path := c.Request.URL.Path
		hash := models.HashRequestBody(body)

		rec, err := ledger.Check(c.Request.Context(), tenantID, key, method, path)
		if err != nil {
			logger.Error("idempotency check failed", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "idempotency check failed"})
			return
		}
		if rec != nil {
			if rec.RequestHash != hash {
				c.AbortWithStatusJSON(http.StatusConflict, gin.H{
					"error": "idempotency key reused with a different payload",
				})
				return
			}
			// Replay the stored snapshot; side effects are not re-executed.
			c.Data(rec.ResponseStatus, "application/json", rec.ResponseBody)
			c.Abort()
			return
		}

		capture := &bodyCapture{ResponseWriter: c.Writer}
		c.Writer = capture
		c.Next()

		status := capture.Status()
		if status < 200 || status >= 300 {
			return
		}
		now := time.Now().UTC()
		err = ledger.Store(c.Request.Context(), &models.IdempotencyRecord{
			TenantID:       tenantID,
			Key:            key,
			Method:         method,
			Path:           path,
			RequestHash:    hash,
			ResponseStatus: status,
			ResponseBody:   capture.buf.Bytes(),
			CreatedAt:      now,
			ExpiresAt:      now.Add(models.IdempotencyRetention),
		})
		if err != nil {
			logger.Error("failed to store idempotency record", zap.Error(err))
		}
	}
}
