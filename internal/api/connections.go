package api

import (
	"errors"
	"net/http"
	"strings"

	"surfscout/internal/storage"

	"github.com/gin-gonic/gin"
)

type connectionRequest struct {
	AddresseeUsername string `json:"addressee_username" binding:"required"`
}

type connectionResponse struct {
	RequesterID uint `json:"requester_id" binding:"required"`
}

func (s *Server) pendingConnectionsHandler(c *gin.Context) {
	connections, err := s.db.PendingConnectionsFor(currentUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if len(connections) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "no pending connection requests found"})
		return
	}
	c.JSON(http.StatusOK, connections)
}

func (s *Server) newConnectionRequestHandler(c *gin.Context) {
	var req connectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	addressee, err := s.db.GetUserByUsername(strings.TrimSpace(req.AddresseeUsername))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	requesterID := currentUserID(c)
	if addressee.ID == requesterID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot connect to yourself"})
		return
	}

	connection, err := s.db.CreatePendingConnection(requesterID, addressee.ID)
	if err != nil {
		if errors.Is(err, storage.ErrConnectionExists) {
			c.JSON(http.StatusConflict, gin.H{"error": "connection request already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, connection)
}

func (s *Server) acceptConnectionHandler(c *gin.Context) {
	s.respondToConnection(c, "accepted")
}

func (s *Server) rejectConnectionHandler(c *gin.Context) {
	s.respondToConnection(c, "rejected")
}

func (s *Server) respondToConnection(c *gin.Context, status string) {
	var req connectionResponse
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := s.db.UpdateConnectionStatus(req.RequesterID, currentUserID(c), status)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "connection request not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "connection " + status})
}
