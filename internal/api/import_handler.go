package api

import (
	"errors"
	"net/http"

	"github.com/engagingnewsproject/article-experiment-api/internal/config"
	"github.com/engagingnewsproject/article-experiment-api/internal/models"
	"github.com/engagingnewsproject/article-experiment-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// ImportHandler handles default-comment CSV uploads
type ImportHandler struct {
	services *service.Services
	cfg      *config.Config
	log      zerolog.Logger
}

// NewImportHandler creates a new ImportHandler
func NewImportHandler(services *service.Services, cfg *config.Config, log zerolog.Logger) *ImportHandler {
	return &ImportHandler{
		services: services,
		cfg:      cfg,
		log:      log.With().Str("handler", "import").Logger(),
	}
}

// ImportDefaultComments replaces an article's seeded comment forest from an
// uploaded CSV file
func (h *ImportHandler) ImportDefaultComments(c *gin.Context) {
	articleID := c.Param("article_id")

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.cfg.Import.MaxUploadSize)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing or oversized file upload"})
		return
	}
	defer file.Close()

	imported, err := h.services.Import.ImportDefaultComments(c.Request.Context(), articleID, file)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "article not found"})
		case errors.Is(err, models.ErrImportFailed):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			h.log.Error().Err(err).Str("article_id", articleID).Msg("Import failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "import failed"})
		}
		return
	}

	h.log.Info().
		Str("article_id", articleID).
		Str("filename", header.Filename).
		Int("top_level", len(imported)).
		Msg("Default comments imported")

	c.JSON(http.StatusOK, gin.H{
		"message":          "default comments imported",
		"default_comments": imported,
	})
}

// ClearDefaultComments removes an article's seeded comment forest
func (h *ImportHandler) ClearDefaultComments(c *gin.Context) {
	articleID := c.Param("article_id")

	if err := h.services.Import.ClearDefaultComments(c.Request.Context(), articleID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "article not found"})
			return
		}
		h.log.Error().Err(err).Str("article_id", articleID).Msg("Failed to clear default comments")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to clear default comments"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "default comments cleared"})
}
