// Package repo implements the data persistence layer for the moderation
// store, backed by GORM. This file provides repository functions for the
// pending queue, the per-submitter request index, and the published-record
// collection.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations. They
// follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition. Atomicity across tables (submit,
// approve, reject) is the moderation service's responsibility; it passes a
// transaction handle into these functions.
//
// Error semantics:
//   - When a row is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/devyouns/go-memorial-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// InsertPending inserts a new pending-queue row.
func InsertPending(ctx context.Context, db *gorm.DB, req *domain.PendingRequest) error {
	return db.WithContext(ctx).Create(req).Error
}

// InsertSubmitterRequest inserts a new per-submitter index row.
func InsertSubmitterRequest(ctx context.Context, db *gorm.DB, req *domain.SubmitterRequest) error {
	return db.WithContext(ctx).Create(req).Error
}

// GetPending fetches a pending-queue row by request id, or ErrNotFound if the
// request is unknown or has already been reviewed.
func GetPending(ctx context.Context, db *gorm.DB, requestID string) (*domain.PendingRequest, error) {
	var req domain.PendingRequest
	err := db.WithContext(ctx).
		Where("id = ?", requestID).
		First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// DeletePending removes a pending-queue row. If no row was deleted (the
// request was reviewed concurrently), it returns ErrNotFound so callers can
// treat the transition as already applied.
func DeletePending(ctx context.Context, db *gorm.DB, requestID string) error {
	res := db.WithContext(ctx).
		Where("id = ?", requestID).
		Delete(&domain.PendingRequest{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListPending returns a snapshot of all currently pending requests, oldest
// first. Order is presentational only.
func ListPending(ctx context.Context, db *gorm.DB) ([]domain.PendingRequest, error) {
	var out []domain.PendingRequest
	err := db.WithContext(ctx).
		Order("created_at asc").
		Find(&out).Error
	return out, err
}

// CountPending returns the number of requests currently awaiting review.
func CountPending(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.PendingRequest{}).
		Count(&total).Error
	return total, err
}

// MarkSubmitterRequest records the moderation outcome on the submitter-index
// row: status and review timestamp. It returns ErrNotFound when the index row
// is missing, which indicates a submit that never completed.
func MarkSubmitterRequest(ctx context.Context, db *gorm.DB, requestID string, status domain.RequestStatus, reviewedAt time.Time) error {
	res := db.WithContext(ctx).
		Model(&domain.SubmitterRequest{}).
		Where("id = ?", requestID).
		Updates(map[string]any{
			"status":      status,
			"reviewed_at": reviewedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// InsertPublished creates the public record for an approved request. The
// unique index on request_id turns a double publication into a DB error.
func InsertPublished(ctx context.Context, db *gorm.DB, rec *domain.PublishedRecord) error {
	return db.WithContext(ctx).Create(rec).Error
}

// CountPublished returns the number of published records.
func CountPublished(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.PublishedRecord{}).
		Count(&total).Error
	return total, err
}

// CountSubmitterRequests returns the total number of requests submitted by
// submitterID.
func CountSubmitterRequests(ctx context.Context, db *gorm.DB, submitterID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.SubmitterRequest{}).
		Where("submitter_id = ?", submitterID).
		Count(&total).Error
	return total, err
}

// ListSubmitterRequestsPage returns a page of a submitter's requests, newest
// first. The caller computes offset and limit.
func ListSubmitterRequestsPage(ctx context.Context, db *gorm.DB, submitterID string, offset, limit int) ([]domain.SubmitterRequest, error) {
	var out []domain.SubmitterRequest
	err := db.WithContext(ctx).
		Where("submitter_id = ?", submitterID).
		Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// IsNotFound reports whether err is the repo-level not-found sentinel.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
