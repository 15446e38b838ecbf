// Package repo implements the data persistence layer for the moderation
// store, backed by GORM. This file provides repository helpers for the
// ProcessedUpdate model used to deduplicate redelivered webhook updates.
package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/devyouns/go-memorial-backend/internal/domain"
)

// ErrDuplicate indicates that an update id has already been processed.
var ErrDuplicate = errors.New("duplicate")

// MarkUpdateProcessed claims an update id for processing. The first caller
// wins the insert; concurrent or redelivered calls get ErrDuplicate and must
// skip dispatch. A stale row past its TTL is reclaimed in place.
func MarkUpdateProcessed(ctx context.Context, db *gorm.DB, updateID int64, ttl time.Duration) error {
	now := time.Now().UTC()
	rec := &domain.ProcessedUpdate{
		UpdateID:  updateID,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	err := db.WithContext(ctx).Create(rec).Error
	if err == nil {
		return nil
	}
	if !isUniqueViolation(err) {
		return err
	}

	// Row exists; only reclaim it if it expired.
	res := db.WithContext(ctx).
		Model(&domain.ProcessedUpdate{}).
		Where("update_id = ? AND expires_at <= ?", updateID, now).
		Updates(map[string]any{"created_at": now, "expires_at": now.Add(ttl)})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrDuplicate
	}
	return nil
}

// PruneProcessedUpdates removes expired dedupe rows and returns how many
// were deleted.
func PruneProcessedUpdates(ctx context.Context, db *gorm.DB, now time.Time) (int64, error) {
	res := db.WithContext(ctx).
		Where("expires_at <= ?", now).
		Delete(&domain.ProcessedUpdate{})
	return res.RowsAffected, res.Error
}

// isUniqueViolation reports whether err is a primary-key/unique violation.
// glebarez/sqlite often returns plain-text errors for UNIQUE violations.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	low := strings.ToLower(err.Error())
	return strings.Contains(low, "unique constraint failed") ||
		strings.Contains(low, "constraint failed: unique")
}
