// Package view computes read-only projections of the entity store: visible
// task lists, ordered rosters, per-cell classification and progress
// aggregates. Everything is recomputed on demand; nothing here mutates the
// store.
package view

import (
	"math"
	"sort"

	"github.com/rs/zerolog"

	"github.com/echoclass/classboard/internal/dto"
	"github.com/echoclass/classboard/internal/models"
	"github.com/echoclass/classboard/internal/store"
)

// Roster sort orders.
const (
	SortIndexLowToHigh = "indexLowToHigh"
	SortIndexHighToLow = "indexHighToLow"
	SortStarsHighToLow = "starsHighToLow"
	SortStarsLowToHigh = "starsLowToHigh"
)

// Task sort orders.
const (
	SortPublishOldToNew = "publishOldToNew"
	SortPublishNewToOld = "publishNewToOld"
)

// Engine renders derived views over the store and the viewer's hide list.
type Engine struct {
	store    *store.Store
	hideList *HideList
	logger   zerolog.Logger
}

// NewEngine constructs a view engine.
func NewEngine(st *store.Store, hideList *HideList, logger zerolog.Logger) *Engine {
	return &Engine{
		store:    st,
		hideList: hideList,
		logger:   logger.With().Str("component", "view_engine").Logger(),
	}
}

// VisibleTasks returns published tasks not on the hide list, ordered by
// publish time with id-ascending tiebreak.
func (e *Engine) VisibleTasks(order string) []models.Task {
	tasks := make([]models.Task, 0)
	for _, t := range e.store.Tasks() {
		if !t.IsPublished() || e.hideList.Contains(t.ID) {
			continue
		}
		tasks = append(tasks, t)
	}

	sort.Slice(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		if !a.PublishedAt.Equal(b.PublishedAt) {
			if order == SortPublishNewToOld {
				return a.PublishedAt.After(b.PublishedAt)
			}
			return a.PublishedAt.Before(b.PublishedAt)
		}
		return a.ID < b.ID
	})
	return tasks
}

// Drafts returns the tasks sitting in the drafts menu, ordered by id.
func (e *Engine) Drafts() []models.Task {
	drafts := make([]models.Task, 0)
	for _, t := range e.store.Tasks() {
		if t.IsDraft() {
			drafts = append(drafts, t)
		}
	}
	return drafts
}

// Roster orders the student list. Both score orders break ties by index
// ascending so equal-score students keep a stable relative order no matter
// which sort was last applied.
func (e *Engine) Roster(order string) []models.Student {
	students := e.store.Students()

	sort.Slice(students, func(i, j int) bool {
		a, b := students[i], students[j]
		switch order {
		case SortIndexHighToLow:
			return a.StudentIndex > b.StudentIndex
		case SortStarsHighToLow:
			if a.Score != b.Score {
				return a.Score > b.Score
			}
			return a.StudentIndex < b.StudentIndex
		case SortStarsLowToHigh:
			if a.Score != b.Score {
				return a.Score < b.Score
			}
			return a.StudentIndex < b.StudentIndex
		default:
			return a.StudentIndex < b.StudentIndex
		}
	})
	return students
}

// Cell classifies one (student, task) pair. Precedence: a reviewed
// submission is graded; any submission without stars is submitted-ungraded;
// otherwise a self-reported work status applies; otherwise there is no
// signal. A submission's existence outranks any status signal.
func (e *Engine) Cell(studentID, taskID int) dto.CellStatus {
	cell := dto.CellStatus{TaskID: taskID, Student: studentID}

	if sub, ok := e.store.SubmissionFor(studentID, taskID); ok {
		if sub.Reviewed() {
			cell.State = dto.CellGraded
			cell.Stars = sub.Stars
		} else {
			cell.State = dto.CellUngraded
		}
		return cell
	}

	if status, ok := e.store.StatusFor(studentID, taskID); ok {
		switch status.Status {
		case models.StatusNotStarted:
			cell.State = dto.CellNotStarted
			return cell
		case models.StatusWorkingOnIt:
			cell.State = dto.CellWorking
			return cell
		case models.StatusStuck:
			cell.State = dto.CellStuck
			return cell
		}
	}

	cell.State = dto.CellNoSignal
	return cell
}

// TaskAggregate walks the roster and accumulates progress counts for one
// task. Completed covers graded and submitted-ungraded cells; ungraded
// counts only the latter. An empty roster yields zero percent, not an error.
func (e *Engine) TaskAggregate(taskID int) dto.TaskAggregate {
	agg := dto.TaskAggregate{TaskID: taskID}

	students := e.Roster(SortIndexLowToHigh)
	for _, st := range students {
		switch e.Cell(st.StudentUserID, taskID).State {
		case dto.CellGraded:
			agg.Completed++
		case dto.CellUngraded:
			agg.Completed++
			agg.Ungraded++
		default:
			agg.Incomplete++
		}
	}

	if len(students) > 0 {
		percent := float64(agg.Completed) / float64(len(students)) * 100
		agg.PercentComplete = math.Round(percent*10) / 10
	}
	return agg
}

// StudentSummary lists a student's cell status across the visible tasks.
func (e *Engine) StudentSummary(studentID int, taskOrder string) (dto.StudentSummary, bool) {
	st, ok := e.store.StudentByID(studentID)
	if !ok {
		return dto.StudentSummary{}, false
	}

	summary := dto.StudentSummary{
		StudentUserID: st.StudentUserID,
		StudentIndex:  st.StudentIndex,
		Name:          st.Name,
		Score:         st.Score,
	}
	for _, t := range e.VisibleTasks(taskOrder) {
		summary.Cells = append(summary.Cells, e.Cell(studentID, t.ID))
	}
	return summary, true
}

// Aggregates computes the per-task aggregate for every visible task.
func (e *Engine) Aggregates(taskOrder string) []dto.TaskAggregate {
	tasks := e.VisibleTasks(taskOrder)
	out := make([]dto.TaskAggregate, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, e.TaskAggregate(t.ID))
	}
	return out
}
