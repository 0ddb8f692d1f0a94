// Package store holds the dashboard's authoritative local copy of classroom
// entities. It is seeded by snapshot fetches and kept current by the
// reconciler; the view engine only ever reads from it.
package store

import (
	"sort"
	"sync"

	"github.com/echoclass/classboard/internal/models"
)

// Store is the single owner of the Student, Task, Submission and
// SubmissionStatus collections plus the classroom record. All entities are
// keyed by identity: after any operation completes, no two entities of a
// kind share an id.
//
// Mutation goes through the reconciler (and the score ledger's narrow
// increment); everything else reads.
type Store struct {
	mu         sync.RWMutex
	classroom  models.Classroom
	students   map[int]models.Student
	tasks      map[int]models.Task
	subs       map[int]models.Submission
	subsStatus map[int]models.SubmissionStatus
}

// New creates an empty store.
func New() *Store {
	return &Store{
		students:   make(map[int]models.Student),
		tasks:      make(map[int]models.Task),
		subs:       make(map[int]models.Submission),
		subsStatus: make(map[int]models.SubmissionStatus),
	}
}

// Classroom returns the classroom record.
func (s *Store) Classroom() models.Classroom {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneClassroom(s.classroom)
}

// SetClassroom replaces the classroom record.
func (s *Store) SetClassroom(c models.Classroom) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.classroom = cloneClassroom(c)
}

// Students returns all roster entries ordered by studentUserID.
func (s *Store) Students() []models.Student {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Student, 0, len(s.students))
	for _, st := range s.students {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StudentUserID < out[j].StudentUserID })
	return out
}

// StudentByID looks up a roster entry by user id.
func (s *Store) StudentByID(id int) (models.Student, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.students[id]
	return st, ok
}

// StudentByIndex looks up a roster entry by classroom roll number.
func (s *Store) StudentByIndex(index int) (models.Student, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, st := range s.students {
		if st.StudentIndex == index {
			return st, true
		}
	}
	return models.Student{}, false
}

// UpsertStudent inserts or fully replaces a roster entry by id.
func (s *Store) UpsertStudent(st models.Student) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.students[st.StudentUserID] = st
}

// RemoveStudent drops a roster entry.
func (s *Store) RemoveStudent(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.students, id)
}

// ReplaceStudents swaps in an authoritative roster snapshot.
func (s *Store) ReplaceStudents(list []models.Student) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.students = make(map[int]models.Student, len(list))
	for _, st := range list {
		s.students[st.StudentUserID] = st
	}
}

// Tasks returns all tasks ordered by id.
func (s *Store) Tasks() []models.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// TaskByID looks up a task.
func (s *Store) TaskByID(id int) (models.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tasks[id]
	return t, ok
}

// UpsertTask inserts or fully replaces a task by id.
func (s *Store) UpsertTask(t models.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[t.ID] = t
}

// RemoveTask drops a task and stops indexing its submissions and statuses.
func (s *Store) RemoveTask(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tasks, id)
	for sid, sub := range s.subs {
		if sub.Task == id {
			delete(s.subs, sid)
		}
	}
	for sid, st := range s.subsStatus {
		if st.Task == id {
			delete(s.subsStatus, sid)
		}
	}
}

// ReplaceTasks swaps in an authoritative task snapshot.
func (s *Store) ReplaceTasks(list []models.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = make(map[int]models.Task, len(list))
	for _, t := range list {
		s.tasks[t.ID] = t
	}
}

// Submissions returns all submissions ordered by id.
func (s *Store) Submissions() []models.Submission {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Submission, 0, len(s.subs))
	for _, sub := range s.subs {
		out = append(out, sub)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// SubmissionByID looks up a submission.
func (s *Store) SubmissionByID(id int) (models.Submission, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sub, ok := s.subs[id]
	return sub, ok
}

// SubmissionFor returns the submission for a (student, task) pair, if any.
// When transient duplicates exist the lowest id wins until a snapshot or
// event collapses them.
func (s *Store) SubmissionFor(studentID, taskID int) (models.Submission, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	found := false
	var best models.Submission
	for _, sub := range s.subs {
		if sub.Student != studentID || sub.Task != taskID {
			continue
		}
		if !found || sub.ID < best.ID {
			best = sub
			found = true
		}
	}
	return best, found
}

// UpsertSubmission inserts or fully replaces a submission by id.
func (s *Store) UpsertSubmission(sub models.Submission) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs[sub.ID] = sub
}

// ReplaceSubmissions swaps in an authoritative submission snapshot.
func (s *Store) ReplaceSubmissions(list []models.Submission) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = make(map[int]models.Submission, len(list))
	for _, sub := range list {
		s.subs[sub.ID] = sub
	}
}

// SubmissionStatuses returns all work-status signals ordered by id.
func (s *Store) SubmissionStatuses() []models.SubmissionStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.SubmissionStatus, 0, len(s.subsStatus))
	for _, st := range s.subsStatus {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// StatusFor returns the work-status signal for a (student, task) pair.
func (s *Store) StatusFor(studentID, taskID int) (models.SubmissionStatus, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, st := range s.subsStatus {
		if st.Student == studentID && st.Task == taskID {
			return st, true
		}
	}
	return models.SubmissionStatus{}, false
}

// UpsertSubmissionStatus inserts or fully replaces a status signal by id.
func (s *Store) UpsertSubmissionStatus(st models.SubmissionStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subsStatus[st.ID] = st
}

// ReplaceSubmissionStatuses swaps in an authoritative status snapshot.
func (s *Store) ReplaceSubmissionStatuses(list []models.SubmissionStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subsStatus = make(map[int]models.SubmissionStatus, len(list))
	for _, st := range list {
		s.subsStatus[st.ID] = st
	}
}

func cloneClassroom(c models.Classroom) models.Classroom {
	out := c
	out.StudentIndexes = append([]int(nil), c.StudentIndexes...)
	return out
}
