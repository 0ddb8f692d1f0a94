// Package workflow drives the task-authoring lifecycle: composing a new
// task, managing drafts, and importing tasks from another classroom. It
// mutates only the transient authoring draft; committed tasks reach the
// entity store as reconciled server confirmations.
package workflow

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/echoclass/classboard/internal/dto"
	"github.com/echoclass/classboard/internal/models"
	"github.com/echoclass/classboard/internal/reconcile"
	"github.com/echoclass/classboard/internal/store"
)

// ErrEmptyTaskName indicates a commit was attempted without a task name.
var ErrEmptyTaskName = errors.New("task name must not be empty")

// ErrNoTasksSelected indicates an import commit with nothing selected.
var ErrNoTasksSelected = errors.New("no tasks selected for import")

// ErrDraftNotFound indicates the draft being edited is not in the store.
var ErrDraftNotFound = errors.New("draft task not found")

// Panel identifies which authoring panel is active. The three panels are
// mutually exclusive; entering one deactivates the other two.
type Panel string

// Authoring panels.
const (
	PanelNone       Panel = "none"
	PanelNewTask    Panel = "new_task"
	PanelDraftsMenu Panel = "drafts_menu"
	PanelImportTask Panel = "import_task"
)

const defaultMaxStars = 5

// TaskClient is the slice of the REST collaborator the workflow needs.
type TaskClient interface {
	FetchTasks(ctx context.Context, code string) ([]models.Task, error)
	CreateTask(ctx context.Context, payload dto.TaskCreateRequest) (models.Task, error)
	BulkCreateTasks(ctx context.Context, payload []dto.TaskCreateRequest) ([]models.Task, error)
	UpdateTask(ctx context.Context, id int, payload dto.TaskUpdateRequest) (models.Task, error)
	DeleteTask(ctx context.Context, id int) error
}

// Machine is the authoring workflow state machine.
type Machine struct {
	mu sync.Mutex

	panel            Panel
	draft            models.AuthoringDraft
	importCandidates []models.Task
	importSelected   map[int]struct{}

	classroomCode string
	store         *store.Store
	reconciler    *reconcile.Reconciler
	client        TaskClient
	validator     *validator.Validate
	sanitizer     *bluemonday.Policy
	logger        zerolog.Logger
	tracer        trace.Tracer
	now           func() time.Time
}

// New constructs the workflow machine with all panels closed.
func New(st *store.Store, rec *reconcile.Reconciler, client TaskClient, classroomCode string, validate *validator.Validate, logger zerolog.Logger) *Machine {
	return &Machine{
		panel:          PanelNone,
		draft:          emptyDraft(),
		importSelected: make(map[int]struct{}),
		classroomCode:  classroomCode,
		store:          st,
		reconciler:     rec,
		client:         client,
		validator:      validate,
		sanitizer:      bluemonday.StrictPolicy(),
		logger:         logger.With().Str("component", "workflow").Logger(),
		tracer:         otel.Tracer("github.com/echoclass/classboard/internal/workflow"),
		now:            time.Now,
	}
}

func emptyDraft() models.AuthoringDraft {
	return models.AuthoringDraft{MaxStars: defaultMaxStars}
}

// ActivePanel reports which panel is currently open.
func (m *Machine) ActivePanel() Panel {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.panel
}

// Activate opens the given panel, deactivating the other two.
func (m *Machine) Activate(panel Panel) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.panel = panel
}

// Close dismisses the workflow overlay entirely.
func (m *Machine) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.panel = PanelNone
	m.draft = emptyDraft()
	m.importCandidates = nil
	m.importSelected = make(map[int]struct{})
}

// SetDraft accumulates field edits into the authoring draft.
func (m *Machine) SetDraft(name, description string, isGroup bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.draft.Name = name
	m.draft.Description = description
	m.draft.IsGroup = isGroup
}

// EditDraft prefills the authoring draft from a saved draft task and opens
// the new-task panel tagged as editing.
func (m *Machine) EditDraft(taskID int) error {
	task, ok := m.store.TaskByID(taskID)
	if !ok || !task.IsDraft() {
		return ErrDraftNotFound
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.draft = models.AuthoringDraft{
		Name:                   task.Name,
		Description:            task.Description,
		MaxStars:               defaultMaxStars,
		IsGroup:                task.IsGroup,
		IsEditingExistingDraft: true,
		OriginTaskID:           task.ID,
	}
	m.panel = PanelNewTask
	return nil
}

// Publish commits the draft as a published task and closes the overlay.
func (m *Machine) Publish(ctx context.Context) (models.Task, error) {
	return m.commitDraft(ctx, models.DisplayPublished)
}

// SaveDraft commits the draft with draft visibility. When the draft being
// edited came from the drafts menu, the workflow routes back there instead
// of closing.
func (m *Machine) SaveDraft(ctx context.Context) (models.Task, error) {
	return m.commitDraft(ctx, models.DisplayDraft)
}

func (m *Machine) commitDraft(ctx context.Context, display int) (models.Task, error) {
	ctx, span := m.tracer.Start(ctx, "workflow.commit_draft")
	span.SetAttributes(attribute.Int("workflow.display", display))
	defer span.End()

	m.mu.Lock()
	draft := m.draft
	m.mu.Unlock()

	name := strings.TrimSpace(m.sanitizer.Sanitize(draft.Name))
	if name == "" {
		return models.Task{}, ErrEmptyTaskName
	}
	description := m.sanitizer.Sanitize(draft.Description)

	var (
		task models.Task
		err  error
	)
	if draft.IsEditingExistingDraft {
		payload := dto.TaskUpdateRequest{
			Name:        name,
			Description: description,
			MaxStars:    defaultMaxStars,
			Display:     display,
			IsGroup:     draft.IsGroup,
		}
		if err = m.validator.Struct(payload); err != nil {
			return models.Task{}, err
		}
		task, err = m.client.UpdateTask(ctx, draft.OriginTaskID, payload)
	} else {
		payload := dto.TaskCreateRequest{
			Code:        m.classroomCode,
			Name:        name,
			Description: description,
			MaxStars:    defaultMaxStars,
			Display:     display,
			IsGroup:     draft.IsGroup,
		}
		if err = m.validator.Struct(payload); err != nil {
			return models.Task{}, err
		}
		task, err = m.client.CreateTask(ctx, payload)
	}
	if err != nil {
		return models.Task{}, err
	}

	m.reconciler.ApplyTask(m.stamped(task))

	m.mu.Lock()
	m.draft = emptyDraft()
	if draft.IsEditingExistingDraft && display == models.DisplayDraft {
		m.panel = PanelDraftsMenu
	} else {
		m.panel = PanelNone
	}
	m.mu.Unlock()

	m.logger.Info().Int("task_id", task.ID).Int("display", display).Msg("draft committed")
	return task, nil
}

// stamped fills a missing publish time on a freshly published task so
// sort-by-publish views stay stable until the next snapshot.
func (m *Machine) stamped(task models.Task) models.Task {
	if task.IsPublished() && task.PublishedAt.IsZero() {
		task.PublishedAt = m.now()
	}
	return task
}

// DeleteDraft removes a saved draft via the collaborator and the store.
func (m *Machine) DeleteDraft(ctx context.Context, taskID int) error {
	if _, ok := m.store.TaskByID(taskID); !ok {
		return ErrDraftNotFound
	}
	if err := m.client.DeleteTask(ctx, taskID); err != nil {
		return err
	}
	m.reconciler.RemoveTask(taskID)
	return nil
}

// LoadImportCandidates fetches another classroom's tasks for the import
// panel. Draft tasks of the source classroom are never offered.
func (m *Machine) LoadImportCandidates(ctx context.Context, code string) error {
	tasks, err := m.client.FetchTasks(ctx, code)
	if err != nil {
		return err
	}

	candidates := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if !t.IsDraft() {
			candidates = append(candidates, t)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.importCandidates = candidates
	m.importSelected = make(map[int]struct{})
	return nil
}

// ImportCandidates returns the offered tasks.
func (m *Machine) ImportCandidates() []models.Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Task(nil), m.importCandidates...)
}

// ToggleImportSelection flips a candidate in or out of the selection.
func (m *Machine) ToggleImportSelection(taskID int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.importSelected[taskID]; ok {
		delete(m.importSelected, taskID)
		return
	}
	m.importSelected[taskID] = struct{}{}
}

// SelectAllImports selects every candidate.
func (m *Machine) SelectAllImports() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.importCandidates {
		m.importSelected[t.ID] = struct{}{}
	}
}

// ClearImportSelection unselects everything.
func (m *Machine) ClearImportSelection() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.importSelected = make(map[int]struct{})
}

// CommitImport clones the selected candidates into this classroom with the
// chosen display state. Committing with nothing selected is a validation
// failure, not a silent no-op.
func (m *Machine) CommitImport(ctx context.Context, display int) ([]models.Task, error) {
	ctx, span := m.tracer.Start(ctx, "workflow.commit_import")
	span.SetAttributes(attribute.Int("workflow.display", display))
	defer span.End()

	m.mu.Lock()
	selected := make([]int, 0, len(m.importSelected))
	for id := range m.importSelected {
		selected = append(selected, id)
	}
	candidates := append([]models.Task(nil), m.importCandidates...)
	m.mu.Unlock()

	if len(selected) == 0 {
		return nil, ErrNoTasksSelected
	}
	sort.Ints(selected)

	byID := make(map[int]models.Task, len(candidates))
	for _, t := range candidates {
		byID[t.ID] = t
	}

	payload := make([]dto.TaskCreateRequest, 0, len(selected))
	for _, id := range selected {
		t, ok := byID[id]
		if !ok {
			continue
		}
		clone := dto.TaskCreateRequest{
			Code:        m.classroomCode,
			Name:        t.Name,
			Description: t.Description,
			MaxStars:    defaultMaxStars,
			Display:     display,
			IsGroup:     t.IsGroup,
		}
		if err := m.validator.Struct(clone); err != nil {
			return nil, err
		}
		payload = append(payload, clone)
	}

	created, err := m.client.BulkCreateTasks(ctx, payload)
	if err != nil {
		return nil, err
	}
	for _, t := range created {
		m.reconciler.ApplyTask(m.stamped(t))
	}

	m.mu.Lock()
	m.importCandidates = nil
	m.importSelected = make(map[int]struct{})
	m.draft = emptyDraft()
	m.panel = PanelNone
	m.mu.Unlock()

	m.logger.Info().Int("count", len(created)).Msg("tasks imported")
	return created, nil
}

// State snapshots the workflow for the read surface.
func (m *Machine) State() dto.WorkflowState {
	m.mu.Lock()
	defer m.mu.Unlock()

	selected := make([]int, 0, len(m.importSelected))
	for id := range m.importSelected {
		selected = append(selected, id)
	}
	sort.Ints(selected)

	return dto.WorkflowState{
		ActivePanel:       string(m.panel),
		DraftName:         m.draft.Name,
		DraftDescription:  m.draft.Description,
		EditingDraftID:    m.draft.OriginTaskID,
		ImportCandidates:  len(m.importCandidates),
		ImportSelectedIDs: selected,
	}
}
