package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"surfscout/internal/geo"
	"surfscout/internal/storage"

	"github.com/gin-gonic/gin"
)

type createSpotRequest struct {
	Name string  `json:"name" binding:"required"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}

func (s *Server) listSpotsHandler(c *gin.Context) {
	spots, err := s.db.ListSpots()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, spots)
}

func (s *Server) createSpotHandler(c *gin.Context) {
	var req createSpotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	spot := &storage.Spot{Name: strings.TrimSpace(req.Name), Lat: req.Lat, Lng: req.Lng}
	if err := s.db.CreateSpot(spot); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "spot name already taken"})
		return
	}
	c.JSON(http.StatusOK, spot)
}

func (s *Server) renameSpotHandler(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid spot id"})
		return
	}

	var name string
	if err := c.ShouldBindJSON(&name); err != nil || strings.TrimSpace(name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is empty"})
		return
	}

	if err := s.db.RenameSpot(uint(id), strings.TrimSpace(name)); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "spot not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "spot renamed to: " + strings.TrimSpace(name)})
}

// setWindFetchAreaHandler stores the wind-fetch polygon a frontend admin
// drew for a spot, validating it parses as a GeoJSON Polygon first.
func (s *Server) setWindFetchAreaHandler(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid spot id"})
		return
	}

	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing polygon body"})
		return
	}
	polygon, err := geo.FromGeoJSON(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Re-serialize the parsed ring so only canonical geometry is stored.
	canonical, err := polygon.ToGeoJSON()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if err := s.db.SetWindFetchArea(uint(id), string(canonical)); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "spot not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "wind fetch area updated"})
}
