package api

import (
	"fmt"
	"net/http"
	"strconv"

	"surfscout/internal/windfield"

	"github.com/gin-gonic/gin"
)

func (s *Server) sessionIDFromQuery(c *gin.Context) (uint, bool) {
	raw := c.Query("sessionId")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session id is not valid"})
		return 0, false
	}
	if _, err := s.db.GetSession(uint(id)); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("no session found for id %d", id)})
		return 0, false
	}
	return uint(id), true
}

func (s *Server) windFieldsHandler(c *gin.Context) {
	sessionID, ok := s.sessionIDFromQuery(c)
	if !ok {
		return
	}

	fields, err := s.db.WindFieldsBySession(sessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, fields)
}

// exportInterpolatedHandler streams the session's interpolated wind fields
// as a zip of independently gzipped GeoJSON documents.
func (s *Server) exportInterpolatedHandler(c *gin.Context) {
	sessionID, ok := s.sessionIDFromQuery(c)
	if !ok {
		return
	}

	fields, err := s.db.InterpolatedBySession(sessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if len(fields) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "no interpolated wind fields for this session"})
		return
	}

	archive, err := windfield.BuildArchive(fields)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	fileName := fmt.Sprintf("windfields_session_%d.zip", sessionID)
	c.Header("Content-Disposition", `attachment; filename="`+fileName+`"`)
	c.Data(http.StatusOK, "application/zip", archive)
}
