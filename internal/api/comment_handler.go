package api

import (
	"errors"
	"net/http"

	"github.com/engagingnewsproject/article-experiment-api/internal/forest"
	"github.com/engagingnewsproject/article-experiment-api/internal/models"
	"github.com/engagingnewsproject/article-experiment-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// CommentHandler handles visitor comment operations
type CommentHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(services *service.Services, log zerolog.Logger) *CommentHandler {
	return &CommentHandler{
		services: services,
		log:      log.With().Str("handler", "comment").Logger(),
	}
}

// commentBody is the payload for posting a comment or reply
type commentBody struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// voteBody is the payload for voting on a comment
type voteBody struct {
	Direction string `json:"direction"` // "up" or "down"
}

// PostComment adds a top-level comment to an article's forest
func (h *CommentHandler) PostComment(c *gin.Context) {
	articleID := c.Param("article_id")

	var body commentBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := h.services.Comment.PostComment(c.Request.Context(), articleID, body.Name, body.Content)
	if err != nil {
		h.respondError(c, err, "failed to post comment")
		return
	}

	c.JSON(http.StatusCreated, result)
}

// PostReply attaches a reply under an existing comment. An unmatched
// parent is not an error: the forest comes back unchanged.
func (h *CommentHandler) PostReply(c *gin.Context) {
	articleID := c.Param("article_id")
	parentID := c.Param("comment_id")

	var body commentBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := h.services.Comment.PostReply(c.Request.Context(), articleID, parentID, body.Name, body.Content)
	if err != nil {
		h.respondError(c, err, "failed to post reply")
		return
	}

	c.JSON(http.StatusCreated, result)
}

// Vote increments the up or down vote count on a comment
func (h *CommentHandler) Vote(c *gin.Context) {
	articleID := c.Param("article_id")
	commentID := c.Param("comment_id")

	var body voteBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	var kind forest.VoteKind
	switch body.Direction {
	case "up":
		kind = forest.VoteUp
	case "down":
		kind = forest.VoteDown
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "direction must be up or down"})
		return
	}

	result, err := h.services.Comment.Vote(c.Request.Context(), articleID, commentID, kind)
	if err != nil {
		h.respondError(c, err, "failed to record vote")
		return
	}

	c.JSON(http.StatusOK, result)
}

// Remove deletes a comment and its whole reply subtree (admin only)
func (h *CommentHandler) Remove(c *gin.Context) {
	articleID := c.Param("article_id")
	commentID := c.Param("comment_id")

	if err := h.services.Comment.Remove(c.Request.Context(), articleID, commentID); err != nil {
		h.respondError(c, err, "failed to remove comment")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "comment removed"})
}

func (h *CommentHandler) respondError(c *gin.Context, err error, msg string) {
	if errors.Is(err, models.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "article not found"})
		return
	}
	h.log.Error().Err(err).Msg(msg)
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
