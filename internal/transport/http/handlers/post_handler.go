package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/example/blog-publisher/internal/logger"
	"github.com/example/blog-publisher/internal/service"
	"github.com/example/blog-publisher/internal/store"
	"github.com/example/blog-publisher/internal/validation"
)

// PostCreator runs the ingestion pipeline.
type PostCreator interface {
	CreatePost(ctx context.Context, input any) (*service.CreateResult, error)
}

type PostHandler struct {
	posts PostCreator
	log   logger.Logger
}

func NewPostHandler(posts PostCreator, log logger.Logger) *PostHandler {
	return &PostHandler{posts: posts, log: log}
}

type postSummary struct {
	Slug        string   `json:"slug"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Date        string   `json:"date"`
	Tags        []string `json:"tags"`
}

type createResponse struct {
	Success      bool                 `json:"success"`
	Message      string               `json:"message"`
	Post         postSummary          `json:"post"`
	MirrorStatus service.MirrorStatus `json:"mirrorStatus"`
}

// CreatePost handles POST /api/posts.
func (h *PostHandler) CreatePost(c *gin.Context) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{
				"error": fmt.Sprintf("Request body exceeds %d bytes", tooLarge.Limit),
			})
			return
		}
		h.internalError(c, fmt.Errorf("read request body: %w", err))
		return
	}

	var input any
	if err := json.Unmarshal(raw, &input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Validation failed",
			"details": []string{validation.MsgNotObject},
		})
		return
	}

	res, err := h.posts.CreatePost(c.Request.Context(), input)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, createResponse{
		Success: true,
		Message: res.Message,
		Post: postSummary{
			Slug:        res.Post.Slug,
			Title:       res.Post.Title,
			Description: res.Post.Description,
			Date:        res.Post.Date,
			Tags:        res.Post.Tags,
		},
		MirrorStatus: res.Mirror,
	})
}

func (h *PostHandler) writeError(c *gin.Context, err error) {
	var (
		vErr     *validation.Error
		conflict *service.ConflictError
	)
	switch {
	case errors.As(err, &vErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "details": vErr.Errors})
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, gin.H{
			"error": fmt.Sprintf("Post with slug %q already exists", conflict.Slug),
			"code":  "SLUG_EXISTS",
		})
	case errors.Is(err, store.ErrSlugExists):
		c.JSON(http.StatusConflict, gin.H{"error": "Post already exists", "code": "SLUG_EXISTS"})
	default:
		h.internalError(c, err)
	}
}

func (h *PostHandler) internalError(c *gin.Context, err error) {
	_ = c.Error(err)
	logger.FromContext(c.Request.Context(), h.log).Error("Error creating blog post", logger.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error", "details": err.Error()})
}

// APIDocs handles GET /api/posts.
func (h *PostHandler) APIDocs(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Blog Posts API",
		"endpoints": gin.H{
			"POST": gin.H{
				"url":         "/api/posts",
				"description": "Create a new blog post",
				"auth":        "Required: Bearer token in Authorization header",
				"body": gin.H{
					"title":       "string (required)",
					"description": "string (required)",
					"date":        "string (ISO date, required)",
					"tags":        "string[] (optional)",
					"content":     "string (MDX content, required)",
				},
				"example": gin.H{
					"title":       "My First Post",
					"description": "This is my first blog post",
					"date":        "2024-01-15",
					"tags":        []string{"tutorial", "go"},
					"content":     "# My First Post\n\nThis is the content in MDX format.",
				},
			},
		},
	})
}
