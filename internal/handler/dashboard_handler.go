package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/echoclass/classboard/internal/utils"
	"github.com/echoclass/classboard/internal/view"
)

// DashboardHandler serves the derived views the presentation layer renders.
type DashboardHandler struct {
	engine   *view.Engine
	hideList *view.HideList
	logger   zerolog.Logger
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(engine *view.Engine, hideList *view.HideList, logger zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{
		engine:   engine,
		hideList: hideList,
		logger:   logger.With().Str("component", "dashboard_handler").Logger(),
	}
}

// Register attaches dashboard endpoints to the router group.
func (h *DashboardHandler) Register(router fiber.Router) {
	router.Get("/roster", h.roster)
	router.Get("/tasks", h.tasks)
	router.Get("/tasks/drafts", h.drafts)
	router.Get("/tasks/hidden", h.hidden)
	router.Post("/tasks/:id/hide", h.hide)
	router.Post("/tasks/:id/show", h.show)
	router.Get("/aggregates", h.aggregates)
	router.Get("/aggregates/:id", h.aggregate)
	router.Get("/students/:id/summary", h.studentSummary)
}

func (h *DashboardHandler) roster(c *fiber.Ctx) error {
	order := rosterOrder(c.Query("sort"))
	return utils.SendSuccess(c, "roster retrieved", h.engine.Roster(order))
}

func (h *DashboardHandler) tasks(c *fiber.Ctx) error {
	order := taskOrder(c.Query("sort"))
	return utils.SendSuccess(c, "visible tasks retrieved", h.engine.VisibleTasks(order))
}

func (h *DashboardHandler) drafts(c *fiber.Ctx) error {
	return utils.SendSuccess(c, "drafts retrieved", h.engine.Drafts())
}

func (h *DashboardHandler) hidden(c *fiber.Ctx) error {
	return utils.SendSuccess(c, "hidden tasks retrieved", h.hideList.IDs())
}

func (h *DashboardHandler) hide(c *fiber.Ctx) error {
	id, err := parseIntParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	h.hideList.Hide(c.Context(), id)
	return utils.SendSuccess(c, "task hidden", h.hideList.IDs())
}

func (h *DashboardHandler) show(c *fiber.Ctx) error {
	id, err := parseIntParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	h.hideList.Show(c.Context(), id)
	return utils.SendSuccess(c, "task shown", h.hideList.IDs())
}

func (h *DashboardHandler) aggregates(c *fiber.Ctx) error {
	order := taskOrder(c.Query("sort"))
	return utils.SendSuccess(c, "aggregates retrieved", h.engine.Aggregates(order))
}

func (h *DashboardHandler) aggregate(c *fiber.Ctx) error {
	id, err := parseIntParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	return utils.SendSuccess(c, "aggregate retrieved", h.engine.TaskAggregate(id))
}

func (h *DashboardHandler) studentSummary(c *fiber.Ctx) error {
	id, err := parseIntParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	summary, ok := h.engine.StudentSummary(id, taskOrder(c.Query("sort")))
	if !ok {
		return utils.SendError(c, fiber.StatusNotFound, "student not found")
	}
	return utils.SendSuccess(c, "student summary retrieved", summary)
}

func rosterOrder(raw string) string {
	switch raw {
	case view.SortIndexHighToLow, view.SortStarsHighToLow, view.SortStarsLowToHigh:
		return raw
	default:
		return view.SortIndexLowToHigh
	}
}

func taskOrder(raw string) string {
	if raw == view.SortPublishNewToOld {
		return raw
	}
	return view.SortPublishOldToNew
}

func parseIntParam(c *fiber.Ctx, name string) (int, error) {
	value, err := strconv.Atoi(c.Params(name))
	if err != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid "+name)
	}
	return value, nil
}
