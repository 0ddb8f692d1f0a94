package dto

// Cell states in decreasing order of evidence strength. A submission's
// existence always outranks a self-reported work status.
const (
	CellGraded     = "graded"
	CellUngraded   = "submitted_ungraded"
	CellNotStarted = "not_started"
	CellWorking    = "working_on_it"
	CellStuck      = "stuck"
	CellNoSignal   = "no_signal"
)

// CellStatus classifies one (student, task) pair.
type CellStatus struct {
	TaskID  int    `json:"task_id"`
	Student int    `json:"student"`
	State   string `json:"state"`
	Stars   *int   `json:"stars,omitempty"`
}

// TaskAggregate summarises class progress on a single task.
type TaskAggregate struct {
	TaskID          int     `json:"task_id"`
	Completed       int     `json:"completed"`
	Incomplete      int     `json:"incomplete"`
	Ungraded        int     `json:"ungraded"`
	PercentComplete float64 `json:"percent_complete"`
}

// StudentSummary lists a student's cell status for each visible task.
type StudentSummary struct {
	StudentUserID int          `json:"studentUserID"`
	StudentIndex  int          `json:"studentIndex"`
	Name          string       `json:"name"`
	Score         int          `json:"score"`
	Cells         []CellStatus `json:"cells"`
}

// WorkflowState reports which authoring panel is active and the draft under
// composition.
type WorkflowState struct {
	ActivePanel       string `json:"active_panel"`
	DraftName         string `json:"draft_name"`
	DraftDescription  string `json:"draft_description"`
	EditingDraftID    int    `json:"editing_draft_id,omitempty"`
	ImportCandidates  int    `json:"import_candidates"`
	ImportSelectedIDs []int  `json:"import_selected_ids"`
}
