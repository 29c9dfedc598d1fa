package comment

import (
	"collaborative-presentation-server/internal/errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

type CreateCommentRequest struct {
	SlideID         *string  `json:"slide_id"`
	Content         string   `json:"content" binding:"required,min=1,max=5000"`
	PositionX       *float64 `json:"position_x"`
	PositionY       *float64 `json:"position_y"`
	ParentCommentID *uint64  `json:"parent_comment_id"`
}

func (h *Handler) Create(c *gin.Context) {
	presentationID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(err)
		return
	}

	var req CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	userID, _ := c.Get("user_id")

	comment, err := h.service.AddComment(c.Request.Context(), presentationID, userID.(uint64), AddCommentInput{
		SlideID:         req.SlideID,
		Content:         req.Content,
		PositionX:       req.PositionX,
		PositionY:       req.PositionY,
		ParentCommentID: req.ParentCommentID,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, comment)
}

type UpdateCommentRequest struct {
	Content string `json:"content" binding:"required,min=1,max=5000"`
}

func (h *Handler) Update(c *gin.Context) {
	commentID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(err)
		return
	}

	var req UpdateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	userID, _ := c.Get("user_id")

	comment, err := h.service.EditComment(c.Request.Context(), commentID, userID.(uint64), req.Content)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, comment)
}

func (h *Handler) Resolve(c *gin.Context) {
	commentID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(err)
		return
	}

	userID, _ := c.Get("user_id")

	comment, err := h.service.ResolveComment(c.Request.Context(), commentID, userID.(uint64))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, comment)
}

func (h *Handler) Delete(c *gin.Context) {
	commentID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(err)
		return
	}

	userID, _ := c.Get("user_id")

	if err := h.service.DeleteComment(c.Request.Context(), commentID, userID.(uint64)); err != nil {
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) ListThreads(c *gin.Context) {
	presentationID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(err)
		return
	}

	userID, _ := c.Get("user_id")

	var slideID *string
	if raw := c.Query("slide_id"); raw != "" {
		slideID = &raw
	}

	threads, err := h.service.ListThreads(c.Request.Context(), presentationID, userID.(uint64), slideID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"comments": threads})
}
