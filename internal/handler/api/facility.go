package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"lgu-facilities/internal/domain/reservation"
	"lgu-facilities/internal/usecase/queries"
)

type FacilityHandler struct {
	facilityQueries queries.FacilityQueries
}

func NewFacilityHandler(facilityQueries queries.FacilityQueries) *FacilityHandler {
	return &FacilityHandler{facilityQueries: facilityQueries}
}

func (h *FacilityHandler) ListFacilities(c *gin.Context) {
	views, err := h.facilityQueries.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}
	c.JSON(http.StatusOK, views)
}

func (h *FacilityHandler) GetFacility(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid facility ID format",
		})
		return
	}

	view, err := h.facilityQueries.GetByID(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, queries.ErrFacilityNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Facility not found",
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

// CheckAvailability runs the conflict detector for a prospective slot
// described by the date, start and end query parameters.
func (h *FacilityHandler) CheckAvailability(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid facility ID format",
		})
		return
	}

	date, err := parseDateParam(c.Query("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid or missing date (expected YYYY-MM-DD)",
		})
		return
	}

	slot, err := reservation.NewTimeSlot(c.Query("start"), c.Query("end"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid time slot",
		})
		return
	}

	view, err := h.facilityQueries.CheckAvailability(c.Request.Context(), id, date, slot)
	if err != nil {
		switch {
		case errors.Is(err, queries.ErrFacilityNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Facility not found",
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
