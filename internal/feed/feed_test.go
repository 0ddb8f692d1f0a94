package feed

import (
	"errors"
	"io"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/echoclass/classboard/internal/dto"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

type scriptedConn struct {
	frames [][]byte
	errs   []error
	closed bool
}

func (c *scriptedConn) ReadMessage() (int, []byte, error) {
	if len(c.frames) == 0 {
		return 0, nil, errors.New("connection reset")
	}
	frame, err := c.frames[0], c.errs[0]
	c.frames, c.errs = c.frames[1:], c.errs[1:]
	return websocket.TextMessage, frame, err
}

func (c *scriptedConn) Close() error {
	c.closed = true
	return nil
}

func (c *scriptedConn) push(frame string) {
	c.frames = append(c.frames, []byte(frame))
	c.errs = append(c.errs, nil)
}

func TestNextDecodesUnionMessages(t *testing.T) {
	conn := &scriptedConn{}
	conn.push(`{"submission":{"id":1,"task":2,"student":10,"text":"done","stars":4}}`)
	conn.push(`{"submission_status":{"id":5,"student":10,"task":2,"status":3}}`)
	conn.push(`{"student_list":{"studentUserID":30,"studentIndex":3,"name":"Cleo"}}`)

	f := New(conn, nil, testLogger())
	require.Equal(t, dto.ConnOpen, f.State())

	msg, err := f.Next()
	require.NoError(t, err)
	require.Equal(t, dto.KindSubmission, msg.Kind())
	require.Equal(t, 1, msg.Submission.ID)
	require.NotNil(t, msg.Submission.Stars)
	require.Equal(t, 4, *msg.Submission.Stars)

	msg, err = f.Next()
	require.NoError(t, err)
	require.Equal(t, dto.KindSubmissionStatus, msg.Kind())
	require.Equal(t, 3, msg.SubmissionStatus.Status)

	msg, err = f.Next()
	require.NoError(t, err)
	require.Equal(t, dto.KindStudentList, msg.Kind())
	require.Equal(t, 3, msg.StudentList.StudentIndex)
}

func TestNextUnknownShapeHasNoKind(t *testing.T) {
	conn := &scriptedConn{}
	conn.push(`{"announcement":{"id":1}}`)

	f := New(conn, nil, testLogger())
	msg, err := f.Next()
	require.NoError(t, err)
	require.Empty(t, msg.Kind())
}

func TestNextMalformedFrame(t *testing.T) {
	conn := &scriptedConn{}
	conn.push(`{not json`)
	conn.push(`{"student_list":{"studentUserID":1,"studentIndex":1,"name":"Ana"}}`)

	f := New(conn, nil, testLogger())

	_, err := f.Next()
	require.ErrorIs(t, err, ErrMalformedMessage)
	require.Equal(t, dto.ConnOpen, f.State())

	msg, err := f.Next()
	require.NoError(t, err)
	require.Equal(t, dto.KindStudentList, msg.Kind())
}

func TestNextReadFailureClosesFeed(t *testing.T) {
	var states []dto.ConnState
	f := New(&scriptedConn{}, func(s dto.ConnState) { states = append(states, s) }, testLogger())

	_, err := f.Next()
	require.ErrorIs(t, err, ErrClosed)
	require.Equal(t, dto.ConnClosed, f.State())
	require.Equal(t, []dto.ConnState{dto.ConnOpen, dto.ConnClosed}, states)
}

func TestCloseTransitionsState(t *testing.T) {
	conn := &scriptedConn{}
	var states []dto.ConnState
	f := New(conn, func(s dto.ConnState) { states = append(states, s) }, testLogger())

	require.NoError(t, f.Close())
	require.True(t, conn.closed)
	require.Equal(t, []dto.ConnState{dto.ConnOpen, dto.ConnClosing, dto.ConnClosed}, states)
}
