package models

// Classroom statuses as assigned by the system of record.
const (
	// ClassroomActive marks a running classroom.
	ClassroomActive = 1
	// ClassroomArchived marks a classroom closed for new work.
	ClassroomArchived = 2
)

// Classroom holds the roster-level record for the class being viewed.
// StudentIndexes is the ordered list of roll numbers handed out so far;
// roster-add events append to it exactly once per index.
type Classroom struct {
	ID             int    `json:"id"`
	Name           string `json:"name"`
	Code           string `json:"code"`
	Status         int    `json:"status"`
	StudentIndexes []int  `json:"student_indexes"`
}

// HasIndex reports whether the roll number is already part of the roster.
func (c Classroom) HasIndex(index int) bool {
	for _, i := range c.StudentIndexes {
		if i == index {
			return true
		}
	}
	return false
}

// NextIndex returns the roll number a newly added student should receive.
func (c Classroom) NextIndex() int {
	next := 1
	for _, i := range c.StudentIndexes {
		if i >= next {
			next = i + 1
		}
	}
	return next
}
