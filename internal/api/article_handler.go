package api

import (
	"errors"
	"net/http"

	"github.com/engagingnewsproject/article-experiment-api/internal/models"
	"github.com/engagingnewsproject/article-experiment-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// ArticleHandler handles article rendering and admin authoring
type ArticleHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewArticleHandler creates a new ArticleHandler
func NewArticleHandler(services *service.Services, log zerolog.Logger) *ArticleHandler {
	return &ArticleHandler{
		services: services,
		log:      log.With().Str("handler", "article").Logger(),
	}
}

// Render returns the public article view for a slug: the article body plus
// its merged comment forest, newest first
func (h *ArticleHandler) Render(c *gin.Context) {
	slug := c.Param("slug")

	view, err := h.services.Article.Render(c.Request.Context(), slug)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "article not found"})
			return
		}
		h.log.Error().Err(err).Str("slug", slug).Msg("Failed to render article")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to render article"})
		return
	}

	c.JSON(http.StatusOK, view)
}

// Create creates a new article
func (h *ArticleHandler) Create(c *gin.Context) {
	var req models.ArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	article, err := h.services.Article.Create(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, models.ErrSlugTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": "slug already in use"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, article)
}

// Update rewrites an existing article
func (h *ArticleHandler) Update(c *gin.Context) {
	id := c.Param("article_id")

	var req models.ArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	article, err := h.services.Article.Update(c.Request.Context(), id, &req)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "article not found"})
		case errors.Is(err, models.ErrSlugTaken):
			c.JSON(http.StatusConflict, gin.H{"error": "slug already in use"})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, article)
}

// Delete removes an article
func (h *ArticleHandler) Delete(c *gin.Context) {
	id := c.Param("article_id")

	if err := h.services.Article.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "article not found"})
			return
		}
		h.log.Error().Err(err).Str("article_id", id).Msg("Failed to delete article")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete article"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "article deleted"})
}

// Get retrieves an article by ID
func (h *ArticleHandler) Get(c *gin.Context) {
	id := c.Param("article_id")

	article, err := h.services.Article.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "article not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get article"})
		return
	}

	c.JSON(http.StatusOK, article)
}

// List returns all articles
func (h *ArticleHandler) List(c *gin.Context) {
	articles, err := h.services.Article.List(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list articles")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list articles"})
		return
	}

	if articles == nil {
		articles = []*models.Article{}
	}
	c.JSON(http.StatusOK, gin.H{"articles": articles, "count": len(articles)})
}
