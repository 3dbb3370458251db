package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"stockerp/internal/core/apperror"
	"stockerp/internal/core/tx"
)

// IdempotencyStatus represents the state of an idempotent operation.
type IdempotencyStatus string

const (
	IdempotencyStatusPending IdempotencyStatus = "pending"
	IdempotencyStatusSuccess IdempotencyStatus = "success"
	IdempotencyStatusFailed  IdempotencyStatus = "failed"
)

// A pending key older than this is treated as abandoned by a crashed
// request and may be reclaimed.
const stalePendingAge = time.Minute

// IdempotencyRecord stores the result of an idempotent operation.
type IdempotencyRecord struct {
	Key         string            `db:"idempotency_key"`
	UserID      string            `db:"user_id"`
	Operation   string            `db:"operation"`
	Status      IdempotencyStatus `db:"status"`
	RequestHash string            `db:"request_hash"` // SHA256 of request body
	Response    []byte            `db:"response"`
	StatusCode  int               `db:"response_status"`
	ContentType string            `db:"response_content_type"`
	CreatedAt   time.Time         `db:"created_at"`
	UpdatedAt   time.Time         `db:"updated_at"`
	ExpiresAt   time.Time         `db:"expires_at"`
}

// matches reports whether the stored record was created by the same
// logical request. A reused key with a different user, operation or body
// is a client error, not a replay.
func (r *IdempotencyRecord) matches(userID, operation, requestHash string) bool {
	return r.UserID == userID && r.Operation == operation && r.RequestHash == requestHash
}

// IdempotencyReplay is the cached HTTP response for replay.
type IdempotencyReplay struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// replay builds the cached response, filling in defaults for records
// written before status code and content type were stored.
func (r *IdempotencyRecord) replay() *IdempotencyReplay {
	out := &IdempotencyReplay{
		StatusCode:  r.StatusCode,
		ContentType: r.ContentType,
		Body:        r.Response,
	}
	if out.StatusCode == 0 {
		out.StatusCode = http.StatusOK
	}
	if out.ContentType == "" {
		out.ContentType = "application/json"
	}
	return out
}

const acquireKeySQL = `
	INSERT INTO sys_idempotency (idempotency_key, user_id, operation, status, request_hash, created_at, updated_at, expires_at)
	VALUES ($1, $2, $3, $4, $5, $6, $6, $7)
	ON CONFLICT (idempotency_key) DO UPDATE SET
		updated_at = $6,
		expires_at = GREATEST(sys_idempotency.expires_at, $7)
	RETURNING idempotency_key, user_id, operation, status, request_hash, response, response_status, response_content_type, created_at, updated_at, expires_at`

// IdempotencyStore manages idempotency keys.
type IdempotencyStore struct {
	txManager *TxManager
	ttl       time.Duration
}

// NewIdempotencyStore creates a new idempotency store.
func NewIdempotencyStore(txm tx.Manager, ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{txManager: AsTxManager(txm), ttl: ttl}
}

// AcquireKey attempts to acquire an idempotency key.
// Returns:
//   - (nil, nil) if key acquired successfully
//   - (cachedResponse, nil) if operation already completed (success or failed)
//   - (nil, error) if key is locked by another request
func (s *IdempotencyStore) AcquireKey(ctx context.Context, key, userID, operation, requestHash string) (*IdempotencyReplay, error) {
	now := time.Now().UTC()

	// Single upsert: either claims the key or returns the existing record.
	row := s.txManager.GetQuerier(ctx).QueryRow(ctx, acquireKeySQL,
		key, userID, operation, IdempotencyStatusPending, requestHash, now, now.Add(s.ttl))

	var rec IdempotencyRecord
	if err := row.Scan(
		&rec.Key, &rec.UserID, &rec.Operation, &rec.Status,
		&rec.RequestHash, &rec.Response, &rec.StatusCode, &rec.ContentType,
		&rec.CreatedAt, &rec.UpdatedAt, &rec.ExpiresAt,
	); err != nil {
		return nil, fmt.Errorf("acquire idempotency key: %w", err)
	}

	// A created_at within a second of now means the INSERT branch won and
	// the key is ours.
	if !rec.CreatedAt.Before(now.Add(-time.Second)) {
		return nil, nil
	}

	if !rec.matches(userID, operation, requestHash) {
		return nil, apperror.NewIdempotencyMismatch(key).
			WithDetail("stored_user_id", rec.UserID).
			WithDetail("request_user_id", userID).
			WithDetail("stored_operation", rec.Operation).
			WithDetail("request_operation", operation).
			WithDetail("stored_request_hash", rec.RequestHash).
			WithDetail("request_request_hash", requestHash)
	}

	switch rec.Status {
	case IdempotencyStatusSuccess, IdempotencyStatusFailed:
		return rec.replay(), nil

	case IdempotencyStatusPending:
		if time.Since(rec.UpdatedAt) > stalePendingAge {
			return nil, s.reclaimStale(ctx, key, now)
		}
		return nil, apperror.NewIdempotencyConflict(key)
	}

	return nil, nil
}

// reclaimStale takes over a pending key whose owner stopped making
// progress. The status guard keeps a concurrently completed record intact.
func (s *IdempotencyStore) reclaimStale(ctx context.Context, key string, now time.Time) error {
	_, err := s.txManager.GetQuerier(ctx).Exec(ctx, `
		UPDATE sys_idempotency
		SET status = $1, updated_at = $2
		WHERE idempotency_key = $3 AND status = $1
	`, IdempotencyStatusPending, now, key)
	if err != nil {
		return fmt.Errorf("reclaim stale key: %w", err)
	}
	return nil
}

func (s *IdempotencyStore) storeResult(ctx context.Context, key string, status IdempotencyStatus, statusCode int, contentType string, response any) error {
	var body []byte
	if response != nil {
		b, err := json.Marshal(response)
		if err != nil {
			if status != IdempotencyStatusFailed {
				return fmt.Errorf("marshal response: %w", err)
			}
			// Keep the failed key consistent with a minimal error body.
			b, _ = json.Marshal(map[string]string{"error": err.Error()})
		}
		body = b
	}

	_, err := s.txManager.GetQuerier(ctx).Exec(ctx, `
		UPDATE sys_idempotency
		SET status = $1,
		    response = $2,
		    response_status = $3,
		    response_content_type = $4,
		    updated_at = $5
		WHERE idempotency_key = $6
	`, status, body, statusCode, contentType, time.Now().UTC(), key)
	return err
}

// CompleteKey marks an idempotency key as completed with HTTP response.
func (s *IdempotencyStore) CompleteKey(ctx context.Context, key string, statusCode int, contentType string, response any) error {
	return s.storeResult(ctx, key, IdempotencyStatusSuccess, statusCode, contentType, response)
}

// FailKey marks an idempotency key as failed with HTTP response.
func (s *IdempotencyStore) FailKey(ctx context.Context, key string, statusCode int, contentType string, response any) error {
	return s.storeResult(ctx, key, IdempotencyStatusFailed, statusCode, contentType, response)
}

// CleanupExpired removes expired idempotency records.
func (s *IdempotencyStore) CleanupExpired(ctx context.Context) (int64, error) {
	result, err := s.txManager.GetQuerier(ctx).Exec(ctx, `
		DELETE FROM sys_idempotency WHERE expires_at < $1
	`, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
