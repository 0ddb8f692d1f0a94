// Package ledger maintains student aggregate scores incrementally as
// reviews are accepted, without re-fetching the roster.
package ledger

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/echoclass/classboard/internal/store"
)

// ErrSubmissionNotFound indicates the reviewed submission is not in the store.
var ErrSubmissionNotFound = errors.New("submission not found")

// ErrStudentNotFound indicates the submission's author is missing from the roster.
var ErrStudentNotFound = errors.New("student not found")

// Ledger applies star awards to student scores. It remembers what each
// submission has already contributed, so reviewing the same submission again
// replaces the prior contribution instead of double-counting it.
type Ledger struct {
	mu      sync.Mutex
	awarded map[int]int
	store   *store.Store
	logger  zerolog.Logger
	tracer  trace.Tracer
}

// New constructs a ledger bound to the given store.
func New(st *store.Store, logger zerolog.Logger) *Ledger {
	return &Ledger{
		awarded: make(map[int]int),
		store:   st,
		logger:  logger.With().Str("component", "score_ledger").Logger(),
		tracer:  otel.Tracer("github.com/echoclass/classboard/internal/ledger"),
	}
}

// RecordReview credits the submission's author with the awarded stars. The
// submission must already exist in the store. On a repeat review the delta
// against the previously awarded stars is applied, keeping the score equal
// to the sum over current reviews.
func (l *Ledger) RecordReview(ctx context.Context, submissionID, stars int) error {
	_, span := l.tracer.Start(ctx, "ledger.record_review")
	span.SetAttributes(
		attribute.Int("ledger.submission_id", submissionID),
		attribute.Int("ledger.stars", stars),
	)
	defer span.End()

	sub, ok := l.store.SubmissionByID(submissionID)
	if !ok {
		return ErrSubmissionNotFound
	}

	student, ok := l.store.StudentByID(sub.Student)
	if !ok {
		return ErrStudentNotFound
	}

	l.mu.Lock()
	prior := l.awarded[submissionID]
	l.awarded[submissionID] = stars
	l.mu.Unlock()

	delta := stars - prior
	if delta == 0 {
		return nil
	}

	student.Score += delta
	if student.Score < 0 {
		student.Score = 0
	}
	l.store.UpsertStudent(student)

	l.logger.Debug().
		Int("submission_id", submissionID).
		Int("student_id", student.StudentUserID).
		Int("delta", delta).
		Msg("score updated")
	return nil
}
