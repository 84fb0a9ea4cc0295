package api

import (
	"encoding/json"
	"net/http"

	"github.com/engagingnewsproject/article-experiment-api/internal/bridge"
	"github.com/engagingnewsproject/article-experiment-api/internal/models"
	"github.com/engagingnewsproject/article-experiment-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// EventHandler handles the interaction logging endpoint
type EventHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewEventHandler creates a new EventHandler
func NewEventHandler(services *service.Services, log zerolog.Logger) *EventHandler {
	return &EventHandler{
		services: services,
		log:      log.With().Str("handler", "event").Logger(),
	}
}

// LogEvent records one participant interaction. Page views are deduplicated
// per response/article pair; every other event type is appended as-is.
func (h *EventHandler) LogEvent(c *gin.Context) {
	var req models.EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if req.EventType == models.EventPageView {
		event, logged, err := h.services.Event.LogPageViewOnce(c.Request.Context(), &req)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if !logged {
			c.JSON(http.StatusOK, gin.H{"duplicate": true})
			return
		}
		c.JSON(http.StatusCreated, event)
		return
	}

	event, err := h.services.Event.Log(c.Request.Context(), &req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, event)
}

// bridgeRequest wraps a postMessage the front-end relayed from the
// embedding survey page
type bridgeRequest struct {
	ArticleID string          `json:"article_id"`
	Message   json.RawMessage `json:"message"`
}

// HandleBridge receives relayed cross-window messages. Survey context
// (typed QUALTRICS_DATA or the legacy bare-envelope shape) records the
// session's page view; button clicks become click events and are echoed
// back for forwarding to the parent window.
func (h *EventHandler) HandleBridge(c *gin.Context) {
	var req bridgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	in, err := bridge.ParseInbound(req.Message)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	switch {
	case in.Type == bridge.TypeQualtricsData || in.QualtricsResponseID != "":
		responseID := in.QualtricsResponseID
		if responseID == "" {
			var payload struct {
				ResponseID string `json:"responseId"`
			}
			json.Unmarshal(in.Payload, &payload)
			responseID = payload.ResponseID
		}
		if responseID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bridge message carries no response id"})
			return
		}

		event, logged, err := h.services.Event.LogPageViewOnce(c.Request.Context(), &models.EventRequest{
			ArticleID:  req.ArticleID,
			ResponseID: responseID,
			EventType:  models.EventPageView,
		})
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"logged": logged, "event": event})

	case in.Type == bridge.TypeArticleButtonClick:
		payload, _ := json.Marshal(map[string]string{"button_type": in.ButtonType})
		event, err := h.services.Event.Log(c.Request.Context(), &models.EventRequest{
			ArticleID: req.ArticleID,
			EventType: models.EventClick,
			Payload:   payload,
		})
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"event": event, "emit": bridge.ButtonClick(in.ButtonType)})

	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported bridge message type"})
	}
}
