package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/parkline/internal/schedule"
	subscriptiondomain "github.com/smallbiznis/parkline/internal/subscription/domain"
)

type purchaseSubscriptionRequest struct {
	ParkingID   string                `json:"parking_id"`
	StartDate   string                `json:"start_date"`
	Months      int                   `json:"months"`
	WeeklySlots []schedule.WeeklySlot `json:"weekly_slots"`
}

func (s *Server) PurchaseSubscription(c *gin.Context) {
	var req purchaseSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	parkingID, err := snowflake.ParseString(strings.TrimSpace(req.ParkingID))
	if err != nil || parkingID == 0 {
		AbortWithError(c, newValidationError("parking_id", "invalid_parking_id", "invalid parking_id"))
		return
	}

	resp, err := s.subscriptionSvc.Purchase(c.Request.Context(), subscriptiondomain.PurchaseInput{
		UserID:      callerID(c),
		ParkingID:   parkingID,
		StartDate:   strings.TrimSpace(req.StartDate),
		Months:      req.Months,
		WeeklySlots: req.WeeklySlots,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListSubscriptions(c *gin.Context) {
	resp, err := s.subscriptionSvc.ListByUser(c.Request.Context(), callerID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetSubscriptionByID(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.subscriptionSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if resp.UserID != callerID(c) {
		AbortWithError(c, subscriptiondomain.ErrNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
