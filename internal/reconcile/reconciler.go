// Package reconcile merges authoritative snapshots and incremental push
// events into the entity store. It is the only writer the store has, apart
// from the score ledger's increment.
package reconcile

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/echoclass/classboard/internal/dto"
	"github.com/echoclass/classboard/internal/models"
	"github.com/echoclass/classboard/internal/observability"
	"github.com/echoclass/classboard/internal/store"
)

// ErrUnknownKind indicates a snapshot was offered for a kind the store does
// not track. Events of unknown kind are never errors; they are dropped with
// a diagnostic so processing continues.
var ErrUnknownKind = errors.New("unknown entity kind")

// Entity kinds accepted by ApplySnapshot.
const (
	KindStudents           = "students"
	KindTasks              = "tasks"
	KindSubmissions        = "submissions"
	KindSubmissionStatuses = "submission_statuses"
)

// Reconciler applies snapshots and events with upsert-by-identity semantics.
// Conflicts resolve last-writer-wins at entity granularity: an event that
// matches an existing id fully replaces that entity, never field-merges.
type Reconciler struct {
	store  *store.Store
	logger zerolog.Logger
	tracer trace.Tracer
}

// New constructs a reconciler bound to the given store.
func New(st *store.Store, logger zerolog.Logger) *Reconciler {
	return &Reconciler{
		store:  st,
		logger: logger.With().Str("component", "reconciler").Logger(),
		tracer: otel.Tracer("github.com/echoclass/classboard/internal/reconcile"),
	}
}

// ApplySnapshot replaces the entire collection of one kind with the fetched
// list. The snapshot is authoritative: locally held optimistic entities of
// that kind not present in it are discarded.
func (r *Reconciler) ApplySnapshot(ctx context.Context, kind string, payload any) error {
	_, span := r.tracer.Start(ctx, "reconcile.snapshot")
	span.SetAttributes(attribute.String("reconcile.kind", kind))
	defer span.End()

	switch kind {
	case KindStudents:
		list, ok := payload.([]models.Student)
		if !ok {
			return fmt.Errorf("%w: %s payload", ErrUnknownKind, kind)
		}
		r.store.ReplaceStudents(list)
	case KindTasks:
		list, ok := payload.([]models.Task)
		if !ok {
			return fmt.Errorf("%w: %s payload", ErrUnknownKind, kind)
		}
		r.store.ReplaceTasks(list)
	case KindSubmissions:
		list, ok := payload.([]models.Submission)
		if !ok {
			return fmt.Errorf("%w: %s payload", ErrUnknownKind, kind)
		}
		r.store.ReplaceSubmissions(list)
	case KindSubmissionStatuses:
		list, ok := payload.([]models.SubmissionStatus)
		if !ok {
			return fmt.Errorf("%w: %s payload", ErrUnknownKind, kind)
		}
		r.store.ReplaceSubmissionStatuses(list)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}

	observability.SnapshotFetches().WithLabelValues(kind).Inc()
	r.logger.Debug().Str("kind", kind).Msg("snapshot applied")
	return nil
}

// ApplyEvent upserts a single entity from a push-channel message, leaving
// the rest of its collection untouched. Messages with no recognised union
// field are dropped with a diagnostic and a nil error so the caller keeps
// processing subsequent events.
func (r *Reconciler) ApplyEvent(ctx context.Context, msg dto.PushMessage) error {
	_, span := r.tracer.Start(ctx, "reconcile.event")
	defer span.End()

	kind := msg.Kind()
	span.SetAttributes(attribute.String("reconcile.kind", kind))

	switch kind {
	case dto.KindSubmission:
		r.store.UpsertSubmission(*msg.Submission)
	case dto.KindSubmissionStatus:
		r.store.UpsertSubmissionStatus(*msg.SubmissionStatus)
	case dto.KindStudentList:
		r.applyRosterAdd(*msg.StudentList)
	default:
		observability.EventsDropped().WithLabelValues("unrecognized_kind").Inc()
		r.logger.Warn().Msg("dropping push event of unrecognized kind")
		return nil
	}

	observability.EventsApplied().WithLabelValues(kind).Inc()
	return nil
}

// applyRosterAdd upserts the new student and appends their roll number to
// the classroom's index list. Duplicate delivery of the same roster-add
// must not duplicate the index, so membership is checked before appending.
func (r *Reconciler) applyRosterAdd(st models.Student) {
	r.store.UpsertStudent(st)

	classroom := r.store.Classroom()
	if classroom.HasIndex(st.StudentIndex) {
		return
	}
	classroom.StudentIndexes = append(classroom.StudentIndexes, st.StudentIndex)
	r.store.SetClassroom(classroom)
}

// ApplyClassroom replaces the classroom record, typically after a classroom
// fetch or a confirmed roster mutation.
func (r *Reconciler) ApplyClassroom(c models.Classroom) {
	r.store.SetClassroom(c)
}

// ApplyTask upserts a task confirmed by the REST collaborator. Task changes
// do not travel the push channel, so their confirmations enter here.
func (r *Reconciler) ApplyTask(t models.Task) {
	r.store.UpsertTask(t)
}

// ApplySubmission upserts a submission confirmed by the REST collaborator
// (a review write-back). Idempotent against the matching push event.
func (r *Reconciler) ApplySubmission(sub models.Submission) {
	r.store.UpsertSubmission(sub)
}

// RemoveStudentIndex drops a roll number from the roster along with the
// student holding it. Used when a roster-remove is confirmed.
func (r *Reconciler) RemoveStudentIndex(index int) {
	classroom := r.store.Classroom()
	kept := classroom.StudentIndexes[:0]
	for _, i := range classroom.StudentIndexes {
		if i != index {
			kept = append(kept, i)
		}
	}
	classroom.StudentIndexes = kept
	r.store.SetClassroom(classroom)

	if st, ok := r.store.StudentByIndex(index); ok {
		r.store.RemoveStudent(st.StudentUserID)
	}
}

// RemoveTask drops a task after a confirmed delete; its submissions and
// statuses stop being indexed as a consequence.
func (r *Reconciler) RemoveTask(id int) {
	r.store.RemoveTask(id)
}
