package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/parkline/internal/authorization"
	parkingdomain "github.com/smallbiznis/parkline/internal/parking/domain"
	"gorm.io/datatypes"
)

type parkingRequest struct {
	Name        string  `json:"name"`
	Capacity    int     `json:"capacity"`
	HourlyRate  float64 `json:"hourly_rate"`
	OpenTime    string  `json:"open_time"`
	CloseTime   string  `json:"close_time"`
	OpeningDays []int   `json:"opening_days"`
}

func (s *Server) CreateParking(c *gin.Context) {
	var req parkingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.parkingSvc.Create(c.Request.Context(), parkingdomain.CreateParkingInput{
		OwnerID:     callerID(c),
		Name:        strings.TrimSpace(req.Name),
		Capacity:    req.Capacity,
		HourlyRate:  req.HourlyRate,
		OpenTime:    strings.TrimSpace(req.OpenTime),
		CloseTime:   strings.TrimSpace(req.CloseTime),
		OpeningDays: req.OpeningDays,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListParkings(c *gin.Context) {
	resp, err := s.parkingSvc.ListByOwner(c.Request.Context(), callerID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetParkingByID(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.parkingSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ReplaceParking(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.authorizeCaller(c, id, authorization.ObjectParking, authorization.ActionParkingUpdate); err != nil {
		AbortWithError(c, err)
		return
	}

	var req parkingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.parkingSvc.Replace(c.Request.Context(), parkingdomain.Parking{
		ID:          id,
		OwnerID:     callerID(c),
		Name:        strings.TrimSpace(req.Name),
		Capacity:    req.Capacity,
		HourlyRate:  req.HourlyRate,
		OpenTime:    strings.TrimSpace(req.OpenTime),
		CloseTime:   strings.TrimSpace(req.CloseTime),
		OpeningDays: datatypes.NewJSONSlice(req.OpeningDays),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// GetOccupancy reports committed slots. With start and end it covers
// the whole interval; without them it is the instantaneous count. The
// two views are never combined.
func (s *Server) GetOccupancy(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	// Existence check keeps invalid facility ids out of the engine.
	parking, err := s.parkingSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	startRaw := strings.TrimSpace(c.Query("start"))
	endRaw := strings.TrimSpace(c.Query("end"))

	var occupied int64
	switch {
	case startRaw == "" && endRaw == "":
		occupied, err = s.occupancySvc.Now(c.Request.Context(), id)
	case startRaw != "" && endRaw != "":
		var start, end time.Time
		start, err = time.Parse(time.RFC3339, startRaw)
		if err != nil {
			AbortWithError(c, newValidationError("start", "invalid_start", "invalid start"))
			return
		}
		end, err = time.Parse(time.RFC3339, endRaw)
		if err != nil {
			AbortWithError(c, newValidationError("end", "invalid_end", "invalid end"))
			return
		}
		occupied, err = s.occupancySvc.ForSlot(c.Request.Context(), id, start, end)
	default:
		AbortWithError(c, newValidationError("start", "invalid_range", "start and end must be given together"))
		return
	}
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"parking_id": id.String(),
		"occupied":   occupied,
		"capacity":   parking.Capacity,
	}})
}

func (s *Server) GetRevenue(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.authorizeCaller(c, id, authorization.ObjectRevenue, authorization.ActionRevenueView); err != nil {
		AbortWithError(c, err)
		return
	}

	from, err := time.Parse(time.RFC3339, strings.TrimSpace(c.Query("from")))
	if err != nil {
		AbortWithError(c, newValidationError("from", "invalid_from", "invalid from"))
		return
	}
	to, err := time.Parse(time.RFC3339, strings.TrimSpace(c.Query("to")))
	if err != nil {
		AbortWithError(c, newValidationError("to", "invalid_to", "invalid to"))
		return
	}

	resp, err := s.staySvc.Revenue(c.Request.Context(), id, from, to)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) authorizeCaller(c *gin.Context, parkingID snowflake.ID, object, action string) error {
	actor := fmt.Sprintf("user:%s", callerID(c))
	return s.authzSvc.Authorize(c.Request.Context(), actor, parkingID.String(), object, action)
}

func parseIDParam(c *gin.Context) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(c.Param("id")))
	if err != nil || id == 0 {
		return 0, newValidationError("id", "invalid_id", "invalid id")
	}
	return id, nil
}
