package api

import (
	"net/http"

	"github.com/engagingnewsproject/article-experiment-api/internal/config"
	"github.com/engagingnewsproject/article-experiment-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// ExportHandler handles interaction data exports
type ExportHandler struct {
	services *service.Services
	cfg      *config.Config
	log      zerolog.Logger
}

// NewExportHandler creates a new ExportHandler
func NewExportHandler(services *service.Services, cfg *config.Config, log zerolog.Logger) *ExportHandler {
	return &ExportHandler{
		services: services,
		cfg:      cfg,
		log:      log.With().Str("handler", "export").Logger(),
	}
}

// StreamEvents streams interaction events as CSV or NDJSON, optionally
// filtered to one study
func (h *ExportHandler) StreamEvents(c *gin.Context) {
	resource := c.DefaultQuery("resource", "events")
	if resource != "events" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported resource, only events can be exported"})
		return
	}

	format := c.DefaultQuery("format", "csv")
	if format != "csv" && format != "ndjson" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be csv or ndjson"})
		return
	}

	studyID := c.Query("study_id")
	responseID := c.Query("response_id")

	if err := h.services.Export.StreamEvents(c.Request.Context(), c.Writer, studyID, responseID, format); err != nil {
		// Headers may already be out; log and give up on the body
		h.log.Error().Err(err).Str("format", format).Msg("Event export failed")
		return
	}
}

// MergeQualtrics joins logged events against an uploaded Qualtrics response
// export and streams the merged CSV back
func (h *ExportHandler) MergeQualtrics(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.cfg.Import.MaxUploadSize)

	file, _, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing or oversized file upload"})
		return
	}
	defer file.Close()

	if err := h.services.Export.MergeQualtrics(c.Request.Context(), c.Writer, file); err != nil {
		h.log.Error().Err(err).Msg("Qualtrics merge failed")
		return
	}
}
