package models

import "time"

// Display states for a task within the authoring lifecycle.
const (
	// DisplayPublished marks a task visible to students and progress views.
	DisplayPublished = 1
	// DisplayDraft marks a task that only exists in the authoring drafts menu.
	DisplayDraft = 2
	// DisplayHidden marks a task withdrawn from the authoring surface.
	DisplayHidden = 3
)

// Task represents an assignable piece of work in a classroom.
type Task struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Display     int       `json:"display"`
	IsGroup     bool      `json:"is_group"`
	MaxStars    int       `json:"max_stars"`
	PublishedAt time.Time `json:"published_at"`
}

// IsPublished reports whether the task should appear in student-facing views.
func (t Task) IsPublished() bool {
	return t.Display == DisplayPublished
}

// IsDraft reports whether the task lives in the drafts menu.
func (t Task) IsDraft() bool {
	return t.Display == DisplayDraft
}
