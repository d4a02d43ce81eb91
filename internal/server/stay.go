package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type stayGateRequest struct {
	ReservationCode string `json:"reservation_code"`
}

func (s *Server) EnterStay(c *gin.Context) {
	var req stayGateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	code := strings.TrimSpace(req.ReservationCode)
	if code == "" {
		AbortWithError(c, newValidationError("reservation_code", "invalid_reservation_code", "invalid reservation_code"))
		return
	}

	resp, err := s.staySvc.Enter(c.Request.Context(), code)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ExitStay(c *gin.Context) {
	var req stayGateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	code := strings.TrimSpace(req.ReservationCode)
	if code == "" {
		AbortWithError(c, newValidationError("reservation_code", "invalid_reservation_code", "invalid reservation_code"))
		return
	}

	stay, charge, err := s.staySvc.Exit(c.Request.Context(), code)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"stationnement": stay,
		"charge":        charge,
	}})
}

func (s *Server) GetStayByID(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.staySvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
