package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"

	"stockerp/internal/core/apperror"
	appctx "stockerp/internal/core/context"
	"stockerp/internal/infrastructure/storage/postgres"
)

const HeaderIdempotencyKey = "X-Idempotency-Key"

// Bodies above this size are rejected rather than hashed.
const maxIdempotencyBodyBytes = 1 << 20 // 1 MiB

var idempotentMethods = []string{http.MethodPost, http.MethodPut, http.MethodPatch}

// Idempotency deduplicates mutating requests keyed by the client-supplied
// X-Idempotency-Key header. The first request with a key claims it; a retry
// with the same key, user and body replays the stored response instead of
// re-running the handler.
func Idempotency(store *postgres.IdempotencyStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" || !slices.Contains(idempotentMethods, c.Request.Method) {
			c.Next()
			return
		}

		requestHash, ok := hashBody(c)
		if !ok {
			return
		}

		userID := ""
		if user := appctx.GetUser(c.Request.Context()); user != nil {
			userID = user.UserID
		}
		operation := c.Request.Method + " " + c.FullPath()

		replay, err := store.AcquireKey(c.Request.Context(), key, userID, operation, requestHash)
		if err != nil {
			if !apperror.IsAppError(err) {
				err = apperror.NewInternal(err).WithDetail("component", "idempotency")
			}
			_ = c.Error(err)
			c.Abort()
			return
		}

		if replay != nil {
			c.Data(replay.StatusCode, replay.ContentType, replay.Body)
			c.Abort()
			return
		}

		// Handlers pick these up to store the eventual response.
		c.Set("idempotency_key", key)
		c.Set("idempotency_store", store)

		c.Next()
	}
}

// hashBody reads and restores the request body, returning its SHA-256 hex.
// Oversized bodies fail the request with 413.
func hashBody(c *gin.Context) (string, bool) {
	body, _ := io.ReadAll(io.LimitReader(c.Request.Body, maxIdempotencyBodyBytes+1))
	if len(body) > maxIdempotencyBodyBytes {
		appErr := apperror.NewValidation("request body too large for idempotency")
		appErr.HTTPStatus = http.StatusRequestEntityTooLarge
		_ = c.Error(appErr.WithDetail("max_bytes", maxIdempotencyBodyBytes))
		c.Abort()
		return "", false
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(body))

	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:]), true
}
