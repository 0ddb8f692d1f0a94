package ledger

import (
	"context"
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/echoclass/classboard/internal/models"
	"github.com/echoclass/classboard/internal/store"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func seededStore() *store.Store {
	st := store.New()
	st.UpsertStudent(models.Student{StudentUserID: 10, StudentIndex: 1, Name: "Ana", Score: 3})
	st.UpsertSubmission(models.Submission{ID: 1, Student: 10, Task: 5})
	return st
}

func studentScore(t *testing.T, st *store.Store, id int) int {
	t.Helper()
	student, ok := st.StudentByID(id)
	require.True(t, ok)
	return student.Score
}

func TestRecordReviewAwardsStars(t *testing.T) {
	st := seededStore()
	l := New(st, testLogger())

	require.NoError(t, l.RecordReview(context.Background(), 1, 4))
	require.Equal(t, 7, studentScore(t, st, 10))
}

func TestRecordReviewReplacesPriorAward(t *testing.T) {
	st := seededStore()
	l := New(st, testLogger())
	ctx := context.Background()

	require.NoError(t, l.RecordReview(ctx, 1, 4))
	require.NoError(t, l.RecordReview(ctx, 1, 2))
	require.Equal(t, 5, studentScore(t, st, 10))

	require.NoError(t, l.RecordReview(ctx, 1, 2))
	require.Equal(t, 5, studentScore(t, st, 10))
}

func TestRecordReviewClampsScoreAtZero(t *testing.T) {
	st := store.New()
	st.UpsertStudent(models.Student{StudentUserID: 10, StudentIndex: 1, Score: 0})
	st.UpsertSubmission(models.Submission{ID: 1, Student: 10, Task: 5})
	l := New(st, testLogger())
	ctx := context.Background()

	require.NoError(t, l.RecordReview(ctx, 1, 3))
	require.Equal(t, 3, studentScore(t, st, 10))

	// Re-reviewing down to zero applies a negative delta.
	require.NoError(t, l.RecordReview(ctx, 1, 0))
	require.Equal(t, 0, studentScore(t, st, 10))
}

func TestRecordReviewMissingSubmission(t *testing.T) {
	l := New(store.New(), testLogger())
	err := l.RecordReview(context.Background(), 99, 3)
	require.ErrorIs(t, err, ErrSubmissionNotFound)
}

func TestRecordReviewMissingStudent(t *testing.T) {
	st := store.New()
	st.UpsertSubmission(models.Submission{ID: 1, Student: 10, Task: 5})
	l := New(st, testLogger())

	err := l.RecordReview(context.Background(), 1, 3)
	require.ErrorIs(t, err, ErrStudentNotFound)
}
