// Package syncer seeds the entity store from snapshot fetches and drains
// the push channel into the reconciler, one event at a time in arrival
// order.
package syncer

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/echoclass/classboard/internal/dto"
	"github.com/echoclass/classboard/internal/feed"
	"github.com/echoclass/classboard/internal/models"
	"github.com/echoclass/classboard/internal/observability"
	"github.com/echoclass/classboard/internal/reconcile"
)

// SnapshotClient is the slice of the REST collaborator used for seeding.
type SnapshotClient interface {
	FetchClassroom(ctx context.Context, code string) (models.Classroom, error)
	FetchRoster(ctx context.Context, code string) ([]models.Student, error)
	FetchTasks(ctx context.Context, code string) ([]models.Task, error)
	FetchSubmissions(ctx context.Context, code string) ([]models.Submission, error)
	FetchSubmissionStatuses(ctx context.Context, code string) ([]models.SubmissionStatus, error)
}

// Source yields push messages; *feed.Feed satisfies it.
type Source interface {
	Next() (dto.PushMessage, error)
	State() dto.ConnState
}

// Syncer owns the snapshot/event pipeline for one classroom.
type Syncer struct {
	client     SnapshotClient
	reconciler *reconcile.Reconciler
	code       string
	logger     zerolog.Logger
}

// New constructs a syncer.
func New(client SnapshotClient, rec *reconcile.Reconciler, classroomCode string, logger zerolog.Logger) *Syncer {
	return &Syncer{
		client:     client,
		reconciler: rec,
		code:       classroomCode,
		logger:     logger.With().Str("component", "syncer").Logger(),
	}
}

// Seed fetches a full snapshot of every kind and applies each one that
// arrives intact. A failed fetch leaves that kind's collection untouched;
// the remaining kinds still seed. The joined error reports what failed so
// the caller can retry.
func (s *Syncer) Seed(ctx context.Context) error {
	var errs []error

	if classroom, err := s.client.FetchClassroom(ctx, s.code); err != nil {
		errs = append(errs, err)
	} else {
		s.reconciler.ApplyClassroom(classroom)
	}

	if roster, err := s.client.FetchRoster(ctx, s.code); err != nil {
		errs = append(errs, err)
	} else if err := s.reconciler.ApplySnapshot(ctx, reconcile.KindStudents, roster); err != nil {
		errs = append(errs, err)
	}

	if tasks, err := s.client.FetchTasks(ctx, s.code); err != nil {
		errs = append(errs, err)
	} else if err := s.reconciler.ApplySnapshot(ctx, reconcile.KindTasks, tasks); err != nil {
		errs = append(errs, err)
	}

	if subs, err := s.client.FetchSubmissions(ctx, s.code); err != nil {
		errs = append(errs, err)
	} else if err := s.reconciler.ApplySnapshot(ctx, reconcile.KindSubmissions, subs); err != nil {
		errs = append(errs, err)
	}

	if statuses, err := s.client.FetchSubmissionStatuses(ctx, s.code); err != nil {
		errs = append(errs, err)
	} else if err := s.reconciler.ApplySnapshot(ctx, reconcile.KindSubmissionStatuses, statuses); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// Run drains the source until it closes or the context ends. Malformed
// frames are dropped with a diagnostic; a closed channel stops processing
// without discarding already-merged state. The channel offers no replay, so
// the caller should Seed again after the transport reconnects.
func (s *Syncer) Run(ctx context.Context, src Source) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		msg, err := src.Next()
		if err != nil {
			if errors.Is(err, feed.ErrMalformedMessage) {
				observability.EventsDropped().WithLabelValues("malformed").Inc()
				s.logger.Warn().Err(err).Msg("dropping malformed push frame")
				continue
			}
			s.logger.Info().Err(err).Msg("push channel closed, state retained")
			return nil
		}

		if err := s.reconciler.ApplyEvent(ctx, msg); err != nil {
			s.logger.Warn().Err(err).Msg("event could not be applied")
		}
	}
}
