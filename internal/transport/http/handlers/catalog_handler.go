package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/example/blog-publisher/internal/catalog"
	"github.com/example/blog-publisher/internal/logger"
	"github.com/example/blog-publisher/internal/models"
)

type CatalogReader interface {
	ListAll(ctx context.Context) ([]models.PostMeta, error)
	GetBySlug(ctx context.Context, slug string) (*models.Post, error)
}

type CatalogHandler struct {
	catalog CatalogReader
	log     logger.Logger
}

func NewCatalogHandler(c CatalogReader, log logger.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: c, log: log}
}

// ListPosts handles GET /api/catalog.
func (h *CatalogHandler) ListPosts(c *gin.Context) {
	posts, err := h.catalog.ListAll(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts, "total": len(posts)})
}

// GetPost handles GET /api/catalog/:slug.
func (h *CatalogHandler) GetPost(c *gin.Context) {
	post, err := h.catalog.GetBySlug(c.Request.Context(), c.Param("slug"))
	if errors.Is(err, catalog.ErrPostNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *CatalogHandler) fail(c *gin.Context, err error) {
	_ = c.Error(err)
	logger.FromContext(c.Request.Context(), h.log).Error("Catalog read failed", logger.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error", "details": err.Error()})
}
