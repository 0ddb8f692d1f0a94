package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/echoclass/classboard/internal/middleware"
	"github.com/echoclass/classboard/internal/utils"
	"github.com/echoclass/classboard/internal/workflow"
)

// WorkflowHandler exposes the task-authoring workflow.
type WorkflowHandler struct {
	machine   *workflow.Machine
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewWorkflowHandler constructs the handler.
func NewWorkflowHandler(machine *workflow.Machine, validate *validator.Validate, logger zerolog.Logger) *WorkflowHandler {
	return &WorkflowHandler{
		machine:   machine,
		validator: validate,
		logger:    logger.With().Str("component", "workflow_handler").Logger(),
	}
}

// Register attaches workflow endpoints to the router group.
func (h *WorkflowHandler) Register(router fiber.Router) {
	router.Get("/state", h.state)
	router.Post("/panel/:name", h.activate)
	router.Post("/close", h.close)
	router.Put("/draft", h.setDraft)
	router.Post("/draft/publish", h.publish)
	router.Post("/draft/save", h.saveDraft)
	router.Post("/draft/edit/:id", h.editDraft)
	router.Delete("/draft/:id", h.deleteDraft)
	router.Post("/import/load", h.loadImport)
	router.Post("/import/toggle/:id", h.toggleImport)
	router.Post("/import/select-all", h.selectAll)
	router.Post("/import/clear", h.clearSelection)
	router.Post("/import/commit", h.commitImport)
}

func (h *WorkflowHandler) state(c *fiber.Ctx) error {
	return utils.SendSuccess(c, "workflow state retrieved", h.machine.State())
}

func (h *WorkflowHandler) activate(c *fiber.Ctx) error {
	switch panel := workflow.Panel(c.Params("name")); panel {
	case workflow.PanelNewTask, workflow.PanelDraftsMenu, workflow.PanelImportTask:
		h.machine.Activate(panel)
		return utils.SendSuccess(c, "panel activated", h.machine.State())
	default:
		return utils.SendError(c, fiber.StatusBadRequest, "unknown panel")
	}
}

func (h *WorkflowHandler) close(c *fiber.Ctx) error {
	h.machine.Close()
	return utils.SendSuccess(c, "workflow closed", h.machine.State())
}

type draftPayload struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsGroup     bool   `json:"is_group"`
}

func (h *WorkflowHandler) setDraft(c *fiber.Ctx) error {
	var payload draftPayload
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid draft payload")
	}

	h.machine.SetDraft(payload.Name, payload.Description, payload.IsGroup)
	return utils.SendSuccess(c, "draft updated", h.machine.State())
}

func (h *WorkflowHandler) publish(c *fiber.Ctx) error {
	task, err := h.machine.Publish(c.Context())
	if err != nil {
		return h.commitError(c, err)
	}
	return utils.SendSuccess(c, "task published", task)
}

func (h *WorkflowHandler) saveDraft(c *fiber.Ctx) error {
	task, err := h.machine.SaveDraft(c.Context())
	if err != nil {
		return h.commitError(c, err)
	}
	return utils.SendSuccess(c, "draft saved", task)
}

func (h *WorkflowHandler) editDraft(c *fiber.Ctx) error {
	id, err := parseIntParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.machine.EditDraft(id); err != nil {
		return utils.SendError(c, fiber.StatusNotFound, "draft not found")
	}
	return utils.SendSuccess(c, "draft loaded for editing", h.machine.State())
}

func (h *WorkflowHandler) deleteDraft(c *fiber.Ctx) error {
	id, err := parseIntParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.machine.DeleteDraft(c.Context(), id); err != nil {
		if errors.Is(err, workflow.ErrDraftNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "draft not found")
		}
		return h.internalError(c, err)
	}
	return utils.SendSuccess(c, "draft deleted", nil)
}

type importLoadPayload struct {
	Code string `json:"code" validate:"required"`
}

func (h *WorkflowHandler) loadImport(c *fiber.Ctx) error {
	var payload importLoadPayload
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid import payload")
	}
	if err := h.validator.Struct(payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "classroom code is required")
	}

	if err := h.machine.LoadImportCandidates(c.Context(), payload.Code); err != nil {
		return h.internalError(c, err)
	}
	return utils.SendSuccess(c, "import candidates loaded", h.machine.ImportCandidates())
}

func (h *WorkflowHandler) toggleImport(c *fiber.Ctx) error {
	id, err := parseIntParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	h.machine.ToggleImportSelection(id)
	return utils.SendSuccess(c, "selection toggled", h.machine.State())
}

func (h *WorkflowHandler) selectAll(c *fiber.Ctx) error {
	h.machine.SelectAllImports()
	return utils.SendSuccess(c, "all candidates selected", h.machine.State())
}

func (h *WorkflowHandler) clearSelection(c *fiber.Ctx) error {
	h.machine.ClearImportSelection()
	return utils.SendSuccess(c, "selection cleared", h.machine.State())
}

type importCommitPayload struct {
	Display int `json:"display" validate:"oneof=1 2"`
}

func (h *WorkflowHandler) commitImport(c *fiber.Ctx) error {
	var payload importCommitPayload
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid import payload")
	}
	if err := h.validator.Struct(payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "display must be published or draft")
	}

	created, err := h.machine.CommitImport(c.Context(), payload.Display)
	if err != nil {
		return h.commitError(c, err)
	}
	return utils.SendSuccess(c, "tasks imported", created)
}

func (h *WorkflowHandler) commitError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, workflow.ErrEmptyTaskName):
		return utils.SendError(c, fiber.StatusBadRequest, "task name should not be empty")
	case errors.Is(err, workflow.ErrNoTasksSelected):
		return utils.SendError(c, fiber.StatusBadRequest, "please select at least one task")
	default:
		return h.internalError(c, err)
	}
}

func (h *WorkflowHandler) internalError(c *fiber.Ctx, err error) error {
	h.logger.Error().Err(err).Str("correlation_id", middleware.GetCorrelationID(c)).Msg("workflow operation failed")
	return utils.SendError(c, fiber.StatusBadGateway, "backend request failed")
}
