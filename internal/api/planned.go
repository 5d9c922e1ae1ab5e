package api

import (
	"net/http"
	"strings"
	"time"

	"surfscout/internal/storage"
	"surfscout/internal/windfield"

	"github.com/gin-gonic/gin"
)

type plannedParticipant struct {
	UserID    uint   `json:"user_id" binding:"required"`
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
}

type createPlannedSessionRequest struct {
	Date         string               `json:"date" binding:"required"`
	SpotID       uint                 `json:"spot_id" binding:"required"`
	SportMode    string               `json:"sport_mode" binding:"required"`
	Participants []plannedParticipant `json:"participants" binding:"required"`
}

func (s *Server) plannedSessionsOfUserHandler(c *gin.Context) {
	sessions, err := s.db.PlannedSessionsForUser(currentUserID(c), true, time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if len(sessions) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "no planned sessions found"})
		return
	}
	c.JSON(http.StatusOK, sessions)
}

func (s *Server) pastPlannedSessionsHandler(c *gin.Context) {
	sessions, err := s.db.PlannedSessionsForUser(currentUserID(c), false, time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if len(sessions) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "no past planned sessions found"})
		return
	}
	c.JSON(http.StatusOK, sessions)
}

func (s *Server) plannedSessionsOfConnectionsHandler(c *gin.Context) {
	userID := currentUserID(c)
	partnerIDs, err := s.db.AcceptedPartnerIDs(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	sessions, err := s.db.PlannedSessionsOfConnections(userID, partnerIDs, time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if len(sessions) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "no planned sessions found for the user's connections"})
		return
	}
	c.JSON(http.StatusOK, sessions)
}

func (s *Server) createPlannedSessionHandler(c *gin.Context) {
	var req createPlannedSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date format, want yyyy-MM-dd"})
		return
	}

	today := time.Now().Truncate(24 * time.Hour)
	if date.Before(today) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "planned session date cannot be in the past"})
		return
	}
	if len(req.Participants) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "at least one participant is required"})
		return
	}

	userID := currentUserID(c)
	if req.Participants[0].UserID != userID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "only the user itself is allowed to create a new session"})
		return
	}
	for _, p := range req.Participants {
		if _, err := windfield.ParseClock(p.StartTime); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "each participant must have valid start and end times"})
			return
		}
		if _, err := windfield.ParseClock(p.EndTime); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "each participant must have valid start and end times"})
			return
		}
	}
	if strings.TrimSpace(req.SportMode) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sport mode is required"})
		return
	}

	if _, err := s.db.GetSpot(req.SpotID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "spot not found"})
		return
	}

	// Conflict check spans the user and all accepted connections so a group
	// does not plan the same spot and date twice.
	partnerIDs, err := s.db.AcceptedPartnerIDs(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	conflict, err := s.db.PlannedSessionConflict(date, req.SpotID, append(partnerIDs, userID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if conflict {
		c.JSON(http.StatusConflict, gin.H{"error": "a planned session for this date and spot already exists"})
		return
	}

	planned := &storage.PlannedSession{
		Date:      date,
		SpotID:    req.SpotID,
		SportMode: req.SportMode,
	}
	for _, p := range req.Participants {
		planned.Participants = append(planned.Participants, storage.SessionParticipant{
			UserID:    p.UserID,
			StartTime: p.StartTime,
			EndTime:   p.EndTime,
		})
	}

	if err := s.db.CreatePlannedSession(planned); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, planned)
}
