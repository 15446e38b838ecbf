// Package moderation – Service
//
// This file implements the moderation Service, which owns the lifecycle of
// submitted requests. A submission writes the pending-queue row and the
// per-submitter index row in one transaction; approval publishes the record,
// stamps the index row, and removes the pending row in one transaction; and
// rejection does the same without publishing.
//
// The at-most-once property of approve/reject rests on the pending queue:
// the transactional read-and-delete of the pending row is the linearization
// point. Whichever transaction deletes the row first wins; every later
// transition finds nothing pending and returns ErrRequestNotFound without
// touching the store.
//
// Observability: all public methods are OpenTelemetry-instrumented, and
// lifecycle transitions increment Prometheus counters.
package moderation

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/devyouns/go-memorial-backend/internal/domain"
	"github.com/devyouns/go-memorial-backend/internal/repo"
)

var (
	// requestsSubmitted counts accepted submissions.
	requestsSubmitted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "moderation_requests_submitted_total",
		Help: "Total number of requests accepted into the pending queue.",
	})

	// requestsReviewed counts completed moderation transitions by outcome.
	requestsReviewed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moderation_requests_reviewed_total",
			Help: "Total number of moderation transitions by outcome.",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(requestsSubmitted, requestsReviewed)
}

// Service coordinates the moderation store. All multi-row writes run inside
// GORM transactions so that partial states are never visible.
type Service struct {
	DB *gorm.DB
}

// NewService constructs a moderation Service over the given database handle.
func NewService(db *gorm.DB) *Service {
	return &Service{DB: db}
}

// Submit creates a new request from a completed intake. The pending-queue
// row and the submitter-index row are written in one transaction: if either
// write fails, nothing becomes visible and no request id is issued.
func (s *Service) Submit(ctx context.Context, rec domain.Record, submitterID string, submitter domain.SubmitterInfo) (string, error) {
	tr := otel.Tracer("moderation/Service")
	ctx, span := tr.Start(ctx, "Submit",
		trace.WithAttributes(attribute.String("submitter.id", submitterID)),
	)
	defer span.End()

	if rec.FullName == "" {
		return "", ErrEmptyRecord
	}

	requestID := uuid.NewString()
	now := time.Now().UTC()

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		pending := &domain.PendingRequest{
			ID:            requestID,
			SubmitterID:   submitterID,
			Record:        rec,
			Submitter:     submitter,
			SchemaVersion: domain.SchemaVersion,
			CreatedAt:     now,
		}
		if err := repo.InsertPending(ctx, tx, pending); err != nil {
			return err
		}
		index := &domain.SubmitterRequest{
			ID:            requestID,
			SubmitterID:   submitterID,
			Record:        rec,
			Submitter:     submitter,
			Status:        domain.StatusPending,
			SchemaVersion: domain.SchemaVersion,
			CreatedAt:     now,
		}
		return repo.InsertSubmitterRequest(ctx, tx, index)
	})
	if err != nil {
		return "", err
	}

	requestsSubmitted.Inc()
	log.Info().
		Str("request_id", requestID).
		Str("submitter_id", submitterID).
		Str("full_name", rec.FullName).
		Msg("request submitted")
	return requestID, nil
}

// ListPending returns a read-only snapshot of all requests awaiting review.
func (s *Service) ListPending(ctx context.Context) ([]domain.PendingRequest, error) {
	tr := otel.Tracer("moderation/Service")
	ctx, span := tr.Start(ctx, "ListPending")
	defer span.End()

	return repo.ListPending(ctx, s.DB)
}

// Approve publishes the record of a pending request and finalizes its
// status. In one transaction it: re-reads the pending row (gating),
// creates the published record, stamps the submitter-index row with
// status=approved and the review time, and deletes the pending row.
//
// Returns the record's full name for caller-side notification, or
// ErrRequestNotFound when the id is unknown, already reviewed, or claimed by
// a concurrent transition.
func (s *Service) Approve(ctx context.Context, requestID, submitterID string) (string, error) {
	return s.review(ctx, "Approve", requestID, submitterID, domain.StatusApproved)
}

// Reject finalizes a pending request without publishing. Same gating and
// atomicity as Approve.
func (s *Service) Reject(ctx context.Context, requestID, submitterID string) (string, error) {
	return s.review(ctx, "Reject", requestID, submitterID, domain.StatusRejected)
}

// review applies the single allowed status transition for a pending request.
func (s *Service) review(ctx context.Context, op, requestID, submitterID string, status domain.RequestStatus) (string, error) {
	tr := otel.Tracer("moderation/Service")
	ctx, span := tr.Start(ctx, op,
		trace.WithAttributes(
			attribute.String("request.id", requestID),
			attribute.String("submitter.id", submitterID),
		),
	)
	defer span.End()

	var fullName string
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		pending, err := repo.GetPending(ctx, tx, requestID)
		if err != nil {
			if repo.IsNotFound(err) {
				return ErrRequestNotFound
			}
			return err
		}
		// A composite command carries both ids; a mismatch means the command
		// refers to a request that is not this submitter's.
		if submitterID != "" && pending.SubmitterID != submitterID {
			return ErrRequestNotFound
		}
		fullName = pending.Record.FullName
		now := time.Now().UTC()

		if status == domain.StatusApproved {
			published := &domain.PublishedRecord{
				ID:        uuid.NewString(),
				RequestID: pending.ID,
				Record:    pending.Record,
				CreatedAt: now,
			}
			if err := repo.InsertPublished(ctx, tx, published); err != nil {
				return err
			}
		}
		if err := repo.MarkSubmitterRequest(ctx, tx, pending.ID, status, now); err != nil {
			return err
		}
		// Removing the pending row is the at-most-once gate: a concurrent
		// transition that lost the race observes zero rows and aborts.
		if err := repo.DeletePending(ctx, tx, pending.ID); err != nil {
			if repo.IsNotFound(err) {
				return ErrRequestNotFound
			}
			return err
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrRequestNotFound) {
			log.Error().Err(err).
				Str("request_id", requestID).
				Str("status", string(status)).
				Msg("moderation transition failed")
		}
		return "", err
	}

	requestsReviewed.WithLabelValues(string(status)).Inc()
	log.Info().
		Str("request_id", requestID).
		Str("status", string(status)).
		Msg("request reviewed")
	return fullName, nil
}

// Submissions returns one page of the requests the submitter has filed,
// newest first, regardless of outcome, plus the total count across all pages.
// It applies defaults for invalid page/pageSize.
func (s *Service) Submissions(ctx context.Context, submitterID string, page, pageSize int) ([]domain.SubmitterRequest, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	tr := otel.Tracer("moderation/Service")
	ctx, span := tr.Start(ctx, "Submissions",
		trace.WithAttributes(
			attribute.String("submitter.id", submitterID),
			attribute.Int("page", page),
			attribute.Int("page_size", pageSize),
		),
	)
	defer span.End()

	total, err := repo.CountSubmitterRequests(ctx, s.DB, submitterID)
	if err != nil {
		return nil, 0, err
	}
	reqs, err := repo.ListSubmitterRequestsPage(ctx, s.DB, submitterID, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, 0, err
	}
	return reqs, total, nil
}

// Stats reports queue depth and published-collection size for health
// reporting.
func (s *Service) Stats(ctx context.Context) (pending, published int64, err error) {
	pending, err = repo.CountPending(ctx, s.DB)
	if err != nil {
		return 0, 0, err
	}
	published, err = repo.CountPublished(ctx, s.DB)
	if err != nil {
		return 0, 0, err
	}
	return pending, published, nil
}
