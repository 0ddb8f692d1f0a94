package models

// AuthoringDraft is the transient task being composed in the new-task panel.
// It never enters the entity store directly; committing it produces a Task
// through the REST collaborator, whose confirmation flows back in via the
// reconciler.
type AuthoringDraft struct {
	Name                   string `json:"name"`
	Description            string `json:"description"`
	MaxStars               int    `json:"max_stars"`
	IsGroup                bool   `json:"is_group"`
	IsEditingExistingDraft bool   `json:"is_editing_existing_draft"`
	// OriginTaskID is the id of the saved draft being edited, zero when the
	// draft is brand new.
	OriginTaskID int `json:"origin_task_id"`
}
