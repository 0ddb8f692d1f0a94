package reconcile

import (
	"context"
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/echoclass/classboard/internal/dto"
	"github.com/echoclass/classboard/internal/models"
	"github.com/echoclass/classboard/internal/store"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func TestApplyEventUpsertsSubmission(t *testing.T) {
	st := store.New()
	rec := New(st, testLogger())

	err := rec.ApplyEvent(context.Background(), dto.PushMessage{
		Submission: &models.Submission{ID: 1, Student: 10, Task: 2, Text: "first"},
	})
	require.NoError(t, err)

	err = rec.ApplyEvent(context.Background(), dto.PushMessage{
		Submission: &models.Submission{ID: 1, Student: 10, Task: 2, Text: "revised"},
	})
	require.NoError(t, err)

	subs := st.Submissions()
	require.Len(t, subs, 1)
	require.Equal(t, "revised", subs[0].Text)
}

func TestApplyEventReplacesEntityWholesale(t *testing.T) {
	st := store.New()
	rec := New(st, testLogger())

	stars := 4
	require.NoError(t, rec.ApplyEvent(context.Background(), dto.PushMessage{
		Submission: &models.Submission{ID: 1, Student: 10, Task: 2, Stars: &stars, Comments: "nice"},
	}))
	require.NoError(t, rec.ApplyEvent(context.Background(), dto.PushMessage{
		Submission: &models.Submission{ID: 1, Student: 10, Task: 2, Text: "resubmitted"},
	}))

	sub, ok := st.SubmissionByID(1)
	require.True(t, ok)
	require.Nil(t, sub.Stars)
	require.Empty(t, sub.Comments)
}

func TestRosterAddDeduplicatesIndex(t *testing.T) {
	st := store.New()
	st.SetClassroom(models.Classroom{ID: 1, Code: "abc", StudentIndexes: []int{1, 2}})
	rec := New(st, testLogger())

	joined := dto.PushMessage{
		StudentList: &models.Student{StudentUserID: 30, StudentIndex: 3, Name: "Cleo"},
	}
	require.NoError(t, rec.ApplyEvent(context.Background(), joined))
	require.NoError(t, rec.ApplyEvent(context.Background(), joined))

	classroom := st.Classroom()
	require.Equal(t, []int{1, 2, 3}, classroom.StudentIndexes)
	require.Len(t, st.Students(), 1)
}

func TestApplyEventUnknownKindIsDropped(t *testing.T) {
	st := store.New()
	rec := New(st, testLogger())

	require.NoError(t, rec.ApplyEvent(context.Background(), dto.PushMessage{}))

	require.NoError(t, rec.ApplyEvent(context.Background(), dto.PushMessage{
		SubmissionStatus: &models.SubmissionStatus{ID: 1, Student: 2, Task: 3, Status: models.StatusWorkingOnIt},
	}))
	require.Len(t, st.SubmissionStatuses(), 1)
}

func TestSnapshotIsAuthoritative(t *testing.T) {
	st := store.New()
	rec := New(st, testLogger())

	require.NoError(t, rec.ApplyEvent(context.Background(), dto.PushMessage{
		Submission: &models.Submission{ID: 1, Student: 10, Task: 2},
	}))
	require.NoError(t, rec.ApplyEvent(context.Background(), dto.PushMessage{
		Submission: &models.Submission{ID: 2, Student: 11, Task: 2},
	}))

	err := rec.ApplySnapshot(context.Background(), KindSubmissions, []models.Submission{
		{ID: 2, Student: 11, Task: 2},
	})
	require.NoError(t, err)

	subs := st.Submissions()
	require.Len(t, subs, 1)
	require.Equal(t, 2, subs[0].ID)
}

func TestEmptySnapshotClearsCollection(t *testing.T) {
	st := store.New()
	rec := New(st, testLogger())
	st.UpsertStudent(models.Student{StudentUserID: 1, Name: "Ana"})

	require.NoError(t, rec.ApplySnapshot(context.Background(), KindStudents, []models.Student{}))
	require.Empty(t, st.Students())
}

func TestApplySnapshotRejectsUnknownKind(t *testing.T) {
	rec := New(store.New(), testLogger())

	err := rec.ApplySnapshot(context.Background(), "classrooms", []models.Classroom{})
	require.ErrorIs(t, err, ErrUnknownKind)
}

func TestApplySnapshotRejectsMismatchedPayload(t *testing.T) {
	rec := New(store.New(), testLogger())

	err := rec.ApplySnapshot(context.Background(), KindTasks, []models.Student{})
	require.ErrorIs(t, err, ErrUnknownKind)
}

func TestRemoveStudentIndexDropsStudent(t *testing.T) {
	st := store.New()
	st.SetClassroom(models.Classroom{ID: 1, StudentIndexes: []int{1, 2, 3}})
	st.UpsertStudent(models.Student{StudentUserID: 20, StudentIndex: 2, Name: "Bram"})
	rec := New(st, testLogger())

	rec.RemoveStudentIndex(2)

	require.Equal(t, []int{1, 3}, st.Classroom().StudentIndexes)
	_, ok := st.StudentByID(20)
	require.False(t, ok)
}
