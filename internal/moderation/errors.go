// Package moderation implements the review workflow for submitted records:
// queuing, listing, and the atomic approve/reject transitions. This file
// centralizes the service-level error values so that they can be
// consistently returned by service methods and checked by callers.
//
// Translation into user-facing messages is performed by the orchestration
// layer.
package moderation

import "errors"

var (
	// ErrRequestNotFound indicates that no pending request exists for the
	// given id: the id is unknown, was already approved or rejected, or was
	// reviewed concurrently by another caller.
	ErrRequestNotFound = errors.New("request not found")

	// ErrEmptyRecord is returned when a submission carries no full name,
	// which indicates an intake that skipped its collection steps.
	ErrEmptyRecord = errors.New("record is empty")
)
