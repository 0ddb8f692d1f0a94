package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/echoclass/classboard/internal/client"
	"github.com/echoclass/classboard/internal/dto"
	"github.com/echoclass/classboard/internal/ledger"
	"github.com/echoclass/classboard/internal/middleware"
	"github.com/echoclass/classboard/internal/reconcile"
	"github.com/echoclass/classboard/internal/store"
	"github.com/echoclass/classboard/internal/utils"
)

// ReviewHandler applies star reviews and roster maintenance through the
// backend, then folds the confirmed state back into the local mirror.
type ReviewHandler struct {
	store      *store.Store
	client     *client.Client
	ledger     *ledger.Ledger
	reconciler *reconcile.Reconciler
	validator  *validator.Validate
	logger     zerolog.Logger
}

// NewReviewHandler constructs the handler.
func NewReviewHandler(
	st *store.Store,
	cl *client.Client,
	ld *ledger.Ledger,
	rc *reconcile.Reconciler,
	validate *validator.Validate,
	logger zerolog.Logger,
) *ReviewHandler {
	return &ReviewHandler{
		store:      st,
		client:     cl,
		ledger:     ld,
		reconciler: rc,
		validator:  validate,
		logger:     logger.With().Str("component", "review_handler").Logger(),
	}
}

// Register attaches review and roster endpoints to the router group.
func (h *ReviewHandler) Register(router fiber.Router) {
	router.Post("/submissions/:id/review", h.review)
	router.Put("/students/rename", h.renameStudent)
	router.Post("/students/index", h.addStudentIndex)
	router.Delete("/students/index/:index", h.removeStudentIndex)
}

func (h *ReviewHandler) review(c *fiber.Ctx) error {
	id, err := parseIntParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.ReviewRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid review payload")
	}
	if err := h.validator.Struct(payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "stars must be between 0 and 5")
	}

	prior, ok := h.store.SubmissionByID(id)
	if !ok {
		return utils.SendError(c, fiber.StatusNotFound, "submission not found")
	}

	reviewed, err := h.client.ReviewSubmission(c.Context(), id, payload, prior.Image)
	if err != nil {
		h.logger.Error().Err(err).
			Int("submission_id", id).
			Str("correlation_id", middleware.GetCorrelationID(c)).
			Msg("review request failed")
		return utils.SendError(c, fiber.StatusBadGateway, "backend request failed")
	}

	h.reconciler.ApplySubmission(reviewed)
	if err := h.ledger.RecordReview(c.Context(), reviewed.ID, payload.Stars); err != nil {
		h.logger.Error().Err(err).Int("submission_id", id).Msg("score ledger update failed")
	}

	return utils.SendSuccess(c, "submission reviewed", reviewed)
}

func (h *ReviewHandler) renameStudent(c *fiber.Ctx) error {
	var payload dto.StudentRenameRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid rename payload")
	}
	if err := h.validator.Struct(payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "code, index and name are required")
	}

	classroom := h.store.Classroom()
	if err := h.client.RenameStudent(c.Context(), classroom.ID, payload); err != nil {
		return h.backendError(c, err, "rename request failed")
	}

	if st, ok := h.store.StudentByIndex(payload.Index); ok {
		st.Name = payload.Name
		h.store.UpsertStudent(st)
	}
	return utils.SendSuccess(c, "student renamed", nil)
}

func (h *ReviewHandler) addStudentIndex(c *fiber.Ctx) error {
	classroom := h.store.Classroom()
	classroom.StudentIndexes = append(classroom.StudentIndexes, classroom.NextIndex())

	updated, err := h.client.UpdateClassroom(c.Context(), classroom)
	if err != nil {
		return h.backendError(c, err, "classroom update failed")
	}

	h.reconciler.ApplyClassroom(updated)
	return utils.SendSuccess(c, "student slot added", updated)
}

func (h *ReviewHandler) removeStudentIndex(c *fiber.Ctx) error {
	index, err := parseIntParam(c, "index")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	classroom := h.store.Classroom()
	if !classroom.HasIndex(index) {
		return utils.SendError(c, fiber.StatusNotFound, "index not on roster")
	}

	kept := classroom.StudentIndexes[:0]
	for _, idx := range classroom.StudentIndexes {
		if idx != index {
			kept = append(kept, idx)
		}
	}
	classroom.StudentIndexes = kept

	updated, err := h.client.UpdateClassroom(c.Context(), classroom)
	if err != nil {
		return h.backendError(c, err, "classroom update failed")
	}

	h.reconciler.ApplyClassroom(updated)
	h.reconciler.RemoveStudentIndex(index)
	return utils.SendSuccess(c, "student slot removed", updated)
}

func (h *ReviewHandler) backendError(c *fiber.Ctx, err error, msg string) error {
	h.logger.Error().Err(err).Str("correlation_id", middleware.GetCorrelationID(c)).Msg(msg)
	return utils.SendError(c, fiber.StatusBadGateway, "backend request failed")
}
