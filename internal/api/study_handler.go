package api

import (
	"errors"
	"net/http"

	"github.com/engagingnewsproject/article-experiment-api/internal/models"
	"github.com/engagingnewsproject/article-experiment-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// StudyHandler handles study authoring
type StudyHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewStudyHandler creates a new StudyHandler
func NewStudyHandler(services *service.Services, log zerolog.Logger) *StudyHandler {
	return &StudyHandler{
		services: services,
		log:      log.With().Str("handler", "study").Logger(),
	}
}

// Create creates a new study
func (h *StudyHandler) Create(c *gin.Context) {
	var req models.StudyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	study, err := h.services.Study.Create(c.Request.Context(), &req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, study)
}

// Update rewrites an existing study
func (h *StudyHandler) Update(c *gin.Context) {
	id := c.Param("study_id")

	var req models.StudyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	study, err := h.services.Study.Update(c.Request.Context(), id, &req)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "study not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, study)
}

// Delete removes a study
func (h *StudyHandler) Delete(c *gin.Context) {
	id := c.Param("study_id")

	if err := h.services.Study.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "study not found"})
			return
		}
		h.log.Error().Err(err).Str("study_id", id).Msg("Failed to delete study")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete study"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "study deleted"})
}

// Get retrieves a study by ID
func (h *StudyHandler) Get(c *gin.Context) {
	id := c.Param("study_id")

	study, err := h.services.Study.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "study not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get study"})
		return
	}

	c.JSON(http.StatusOK, study)
}

// List returns all studies, or only active ones with ?active=true
func (h *StudyHandler) List(c *gin.Context) {
	var (
		studies []*models.Study
		err     error
	)
	if c.Query("active") == "true" {
		studies, err = h.services.Study.ListActive(c.Request.Context())
	} else {
		studies, err = h.services.Study.List(c.Request.Context())
	}
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list studies")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list studies"})
		return
	}

	if studies == nil {
		studies = []*models.Study{}
	}
	c.JSON(http.StatusOK, gin.H{"studies": studies, "count": len(studies)})
}
