package dto

import "github.com/echoclass/classboard/internal/models"

// Push-channel message kinds. The channel delivers a tagged union of
// exactly three shapes; anything else is dropped by the reconciler.
const (
	KindSubmission       = "submission"
	KindSubmissionStatus = "submission_status"
	KindStudentList      = "student_list"
)

// PushMessage is the envelope delivered over the push channel. Exactly one
// field is set on a well-formed message.
type PushMessage struct {
	Submission       *models.Submission       `json:"submission,omitempty"`
	SubmissionStatus *models.SubmissionStatus `json:"submission_status,omitempty"`
	StudentList      *models.Student          `json:"student_list,omitempty"`
}

// Kind returns the union tag of the message, or an empty string when no
// known field is populated.
func (m PushMessage) Kind() string {
	switch {
	case m.Submission != nil:
		return KindSubmission
	case m.SubmissionStatus != nil:
		return KindSubmissionStatus
	case m.StudentList != nil:
		return KindStudentList
	default:
		return ""
	}
}

// ConnState mirrors the push channel's connection lifecycle. The dashboard
// surfaces it; the reconciler only cares about stop/resume.
type ConnState int

// Connection states reported by the feed.
const (
	ConnConnecting ConnState = iota
	ConnOpen
	ConnClosing
	ConnClosed
)

// String renders the state the way the dashboard displays it.
func (s ConnState) String() string {
	switch s {
	case ConnConnecting:
		return "Connecting"
	case ConnOpen:
		return "Connected"
	case ConnClosing:
		return "Closing"
	case ConnClosed:
		return "Disconnected"
	default:
		return "Uninstantiated"
	}
}
