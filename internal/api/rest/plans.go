package rest

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jorik41/plctester/internal/plan"
)

// GET /api/v1/plans
func (s *Server) listPlans(c *gin.Context) {
	plans, err := s.storage.ListPlans(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"plans": plans,
		"count": len(plans),
	})
}

// GET /api/v1/plans/:id
func (s *Server) getPlan(c *gin.Context) {
	planID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid plan id"})
		return
	}

	stored, err := s.storage.GetPlan(c.Request.Context(), planID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":         stored.ID,
		"name":       stored.Name,
		"document":   json.RawMessage(stored.Document),
		"created_at": stored.CreatedAt,
		"updated_at": stored.UpdatedAt,
	})
}

// POST /api/v1/plans
// Body: {"name": "...", "document": {...plan...}}
func (s *Server) createPlan(c *gin.Context) {
	var req struct {
		Name     string          `json:"name" binding:"required"`
		Document json.RawMessage `json:"document" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and document are required"})
		return
	}

	// Reject malformed documents at the door.
	if _, err := plan.Parse(req.Document); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	id, err := s.storage.SavePlan(c.Request.Context(), req.Name, req.Document)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": id, "name": req.Name})
}

// PUT /api/v1/plans/:id
// Body: the raw plan document.
func (s *Server) updatePlan(c *gin.Context) {
	planID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid plan id"})
		return
	}

	document, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read body"})
		return
	}

	if _, err := plan.Parse(document); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	if err := s.storage.UpdatePlan(c.Request.Context(), planID, document); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": planID})
}

// DELETE /api/v1/plans/:id
func (s *Server) deletePlan(c *gin.Context) {
	planID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid plan id"})
		return
	}

	if err := s.storage.DeletePlan(c.Request.Context(), planID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "plan deleted"})
}
