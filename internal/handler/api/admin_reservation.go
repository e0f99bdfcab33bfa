package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"lgu-facilities/internal/domain/user"
	reqdto "lgu-facilities/internal/handler/dto/request"
	resdto "lgu-facilities/internal/handler/dto/response"
	"lgu-facilities/internal/handler/middleware"
	"lgu-facilities/internal/usecase/commands"
	"lgu-facilities/internal/usecase/queries"
)

// AdminReservationHandler groups the staff-side lifecycle operations.
// Routes mounting it must require at least the Staff role.
type AdminReservationHandler struct {
	lifecycleCommands  commands.LifecycleCommands
	reservationQueries queries.ReservationQueries
}

func NewAdminReservationHandler(
	lifecycleCommands commands.LifecycleCommands,
	reservationQueries queries.ReservationQueries,
) *AdminReservationHandler {
	return &AdminReservationHandler{
		lifecycleCommands:  lifecycleCommands,
		reservationQueries: reservationQueries,
	}
}

// ReviewQueue lists reviewable reservations, postponed-priority first.
func (h *AdminReservationHandler) ReviewQueue(c *gin.Context) {
	// Sweep overdue holds first so the queue never shows dead entries.
	if _, err := h.lifecycleCommands.ExpireOverdue(c.Request.Context()); err != nil {
		slog.Warn("expiry sweep before queue read failed", "error", err.Error())
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	items, err := h.reservationQueries.ReviewQueue(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *AdminReservationHandler) Approve(c *gin.Context) {
	actor, id, ok := actorAndID(c)
	if !ok {
		return
	}
	note, ok := bindOptionalNote(c)
	if !ok {
		return
	}
	if err := h.lifecycleCommands.Approve(c.Request.Context(), actor, id, note); err != nil {
		abortPolicyError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Reservation approved"})
}

func (h *AdminReservationHandler) Deny(c *gin.Context) {
	actor, id, ok := actorAndID(c)
	if !ok {
		return
	}
	note, ok := bindOptionalNote(c)
	if !ok {
		return
	}
	if err := h.lifecycleCommands.Deny(c.Request.Context(), actor, id, note); err != nil {
		abortPolicyError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Reservation denied"})
}

func (h *AdminReservationHandler) Cancel(c *gin.Context) {
	actor, id, ok := actorAndID(c)
	if !ok {
		return
	}
	var req reqdto.CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "A cancellation reason is required",
		})
		return
	}
	if err := h.lifecycleCommands.Cancel(c.Request.Context(), actor, id, req.Reason); err != nil {
		abortPolicyError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Reservation cancelled"})
}

func (h *AdminReservationHandler) Modify(c *gin.Context) {
	h.changeSlot(c, h.lifecycleCommands.Modify, "Reservation modified")
}

func (h *AdminReservationHandler) Postpone(c *gin.Context) {
	h.changeSlot(c, h.lifecycleCommands.Postpone, "Reservation postponed")
}

// ExpireOverdue sweeps reviewable reservations whose slot has passed.
func (h *AdminReservationHandler) ExpireOverdue(c *gin.Context) {
	count, err := h.lifecycleCommands.ExpireOverdue(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}
	c.JSON(http.StatusOK, resdto.ExpireSweepResponse{Expired: count})
}

type changeSlotFunc func(ctx context.Context, actor user.Actor, id uuid.UUID, in commands.ChangeSlotInput) error

func (h *AdminReservationHandler) changeSlot(c *gin.Context, fn changeSlotFunc, okMessage string) {
	actor, id, ok := actorAndID(c)
	if !ok {
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
	if err := fn(c.Request.Context(), actor, id, input); err != nil {
		abortPolicyError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": okMessage})
}

func actorAndID(c *gin.Context) (user.Actor, uuid.UUID, bool) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return user.Actor{}, uuid.Nil, false
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid reservation ID format",
		})
		return user.Actor{}, uuid.Nil, false
	}
	return actor, id, true
}

// bindOptionalNote reads the optional review note; an empty body is fine.
func bindOptionalNote(c *gin.Context) (string, bool) {
	if c.Request.ContentLength == 0 {
		return "", true
	}
	var req reqdto.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return "", false
	}
	return req.Note, true
}
