package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	reservationdomain "github.com/smallbiznis/parkline/internal/reservation/domain"
)

type bookReservationRequest struct {
	ParkingID   string `json:"parking_id"`
	StartAt     string `json:"start_at"`
	EndAt       string `json:"end_at"`
	VehicleType string `json:"vehicle_type"`
}

func (s *Server) BookReservation(c *gin.Context) {
	var req bookReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	parkingID, err := snowflake.ParseString(strings.TrimSpace(req.ParkingID))
	if err != nil || parkingID == 0 {
		AbortWithError(c, newValidationError("parking_id", "invalid_parking_id", "invalid parking_id"))
		return
	}
	startAt, err := time.Parse(time.RFC3339, strings.TrimSpace(req.StartAt))
	if err != nil {
		AbortWithError(c, newValidationError("start_at", "invalid_start_at", "invalid start_at"))
		return
	}
	endAt, err := time.Parse(time.RFC3339, strings.TrimSpace(req.EndAt))
	if err != nil {
		AbortWithError(c, newValidationError("end_at", "invalid_end_at", "invalid end_at"))
		return
	}

	resp, err := s.reservationSvc.Book(c.Request.Context(), reservationdomain.BookInput{
		UserID:      callerID(c),
		ParkingID:   parkingID,
		StartAt:     startAt,
		EndAt:       endAt,
		VehicleType: strings.TrimSpace(req.VehicleType),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListReservations(c *gin.Context) {
	resp, err := s.reservationSvc.ListByUser(c.Request.Context(), callerID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetReservationByID(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.reservationSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	// Reservations are private to their holder.
	if resp.UserID != callerID(c) {
		AbortWithError(c, reservationdomain.ErrNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CancelReservation(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.reservationSvc.Cancel(c.Request.Context(), id, callerID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
