package models

// Submission represents a student's answer to a task. Stars is nil until a
// teacher reviews the work; a value of 0-5 means the review is final.
type Submission struct {
	ID       int    `json:"id"`
	Task     int    `json:"task"`
	Student  int    `json:"student"`
	Text     string `json:"text"`
	Image    string `json:"image,omitempty"`
	Stars    *int   `json:"stars,omitempty"`
	Comments string `json:"comments"`
}

// Reviewed reports whether the submission carries a valid star rating.
func (s Submission) Reviewed() bool {
	return s.Stars != nil && *s.Stars >= 0 && *s.Stars <= 5
}

// Work status values reported by students before they submit.
const (
	// StatusNotStarted means the student flagged the task as not begun.
	StatusNotStarted = 1
	// StatusWorkingOnIt means the student is actively working on the task.
	StatusWorkingOnIt = 2
	// StatusStuck means the student asked for help.
	StatusStuck = 3
)

// SubmissionStatus is a student's self-reported progress signal for a task.
// It only matters while no submission exists for the same (student, task)
// pair; a submission always outranks it.
type SubmissionStatus struct {
	ID      int `json:"id"`
	Student int `json:"student"`
	Task    int `json:"task"`
	Status  int `json:"status"`
}
