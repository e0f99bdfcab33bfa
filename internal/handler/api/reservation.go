package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	reqdto "lgu-facilities/internal/handler/dto/request"
	resdto "lgu-facilities/internal/handler/dto/response"
	"lgu-facilities/internal/handler/httperr"
	"lgu-facilities/internal/handler/middleware"
	"lgu-facilities/internal/usecase/commands"
	"lgu-facilities/internal/usecase/queries"
)

type ReservationHandler struct {
	reservationCommands commands.ReservationCommands
	lifecycleCommands   commands.LifecycleCommands
	reservationQueries  queries.ReservationQueries
}

func NewReservationHandler(
	reservationCommands commands.ReservationCommands,
	lifecycleCommands commands.LifecycleCommands,
	reservationQueries queries.ReservationQueries,
) *ReservationHandler {
	return &ReservationHandler{
		reservationCommands: reservationCommands,
		lifecycleCommands:   lifecycleCommands,
		reservationQueries:  reservationQueries,
	}
}

func (h *ReservationHandler) CreateReservation(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	var req reqdto.CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	input, err := req.ToInput()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid date format (expected YYYY-MM-DD)",
		})
		return
	}

	result, err := h.reservationCommands.Create(c.Request.Context(), actor, input)
	if err != nil {
		abortPolicyError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resdto.FromCreateResult(result))
}

func (h *ReservationHandler) GetReservation(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid reservation ID format",
		})
		return
	}

	view, err := h.reservationQueries.GetByID(c.Request.Context(), actor, id)
	if err != nil {
		switch {
		case errors.Is(err, queries.ErrReservationNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Reservation not found",
			})
		case errors.Is(err, queries.ErrReservationAccess):
			c.JSON(http.StatusForbidden, gin.H{
				"error": "You can only view your own reservations",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *ReservationHandler) GetUserReservations(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	items, err := h.reservationQueries.ListByUser(c.Request.Context(), actor.ID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}
	c.JSON(http.StatusOK, items)
}

// Reschedule is the requester-initiated move of an own reservation.
func (h *ReservationHandler) Reschedule(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid reservation ID format",
		})
		return
	}

	var req reqdto.ChangeSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	input, err := req.ToInput()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid date format (expected YYYY-MM-DD)",
		})
		return
	}

	if err := h.lifecycleCommands.Reschedule(c.Request.Context(), actor, id, input); err != nil {
		abortPolicyError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Reservation rescheduled",
	})
}

// abortPolicyError maps command rejections onto HTTP statuses. The
// response body carries the requester-facing reason.
func abortPolicyError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	msg := "Internal server error"

	switch {
	case errors.Is(err, commands.ErrValidation):
		status = http.StatusBadRequest
		msg = commands.RejectionReason(err)
	case errors.Is(err, commands.ErrPastDate),
		errors.Is(err, commands.ErrAdvanceWindow):
		status = http.StatusUnprocessableEntity
		msg = commands.RejectionReason(err)
	case errors.Is(err, commands.ErrFacilityNotFound),
		errors.Is(err, commands.ErrReservationNotFound):
		status = http.StatusNotFound
		msg = commands.RejectionReason(err)
	case errors.Is(err, commands.ErrFacilityUnavailable),
		errors.Is(err, commands.ErrQuotaExceeded),
		errors.Is(err, commands.ErrPerDayLimit),
		errors.Is(err, commands.ErrTransition):
		status = http.StatusUnprocessableEntity
		msg = commands.RejectionReason(err)
	case errors.Is(err, commands.ErrConflict):
		status = http.StatusConflict
		msg = commands.RejectionReason(err)
	case errors.Is(err, commands.ErrNotOwner):
		status = http.StatusForbidden
		msg = commands.RejectionReason(err)
	}

	httperr.AbortWithError(c, status, err, msg)
}

func parseDateParam(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}
