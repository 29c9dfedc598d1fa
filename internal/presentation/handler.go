package presentation

import (
	"collaborative-presentation-server/internal/domain"
	"collaborative-presentation-server/internal/errors"
	"collaborative-presentation-server/internal/utils"
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

type CreatePresentationRequest struct {
	Title string `json:"title" binding:"required,min=1,max=255"`
}

func (h *Handler) Create(c *gin.Context) {
	var form CreatePresentationRequest
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	userID, _ := c.Get("user_id")

	presentation := &domain.Presentation{
		Title: form.Title,
	}

	if err := h.service.CreatePresentation(c.Request.Context(), userID.(uint64), presentation); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, presentation)
}

func (h *Handler) ShowUserPresentations(c *gin.Context) {
	userID, _ := c.Get("user_id")

	page, pageSize := utils.GetPaginationParams(c)
	result, err := h.service.GetUserPresentations(c.Request.Context(), userID.(uint64), page, pageSize)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) ShowSharedPresentations(c *gin.Context) {
	userID, _ := c.Get("user_id")

	page, pageSize := utils.GetPaginationParams(c)
	result, err := h.service.GetSharedPresentations(c.Request.Context(), userID.(uint64), page, pageSize)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) ShowPresentation(c *gin.Context) {
	presentationID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(err)
		return
	}

	userID, _ := c.Get("user_id")

	presentation, err := h.service.GetPresentationByID(c.Request.Context(), presentationID, userID.(uint64))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, presentation)
}

func (h *Handler) DeletePresentation(c *gin.Context) {
	presentationID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(err)
		return
	}

	userID, _ := c.Get("user_id")

	if err := h.service.DeletePresentation(c.Request.Context(), presentationID, userID.(uint64)); err != nil {
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ShowUserLevel serves the internal permission lookup
func (h *Handler) ShowUserLevel(c *gin.Context) {
	presentationID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(err)
		return
	}

	userID, err := strconv.ParseUint(c.Query("user_id"), 10, 64)
	if err != nil {
		c.Error(err)
		return
	}

	level, err := h.service.FetchPermissionLevel(c.Request.Context(), presentationID, userID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"permission_level": level})
}

func (h *Handler) ListCollaborators(c *gin.Context) {
	presentationID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(err)
		return
	}

	userID, _ := c.Get("user_id")

	result, err := h.service.ListCollaborators(c.Request.Context(), presentationID, userID.(uint64))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, result)
}

type SetPermissionRequest struct {
	UserID          uint64 `json:"user_id" binding:"required"`
	PermissionLevel string `json:"permission_level" binding:"required,oneof=view edit admin"`
}

func (h *Handler) SetPermission(c *gin.Context) {
	presentationID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(err)
		return
	}

	var req SetPermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	requesterID, _ := c.Get("user_id")

	collaborator, err := h.service.SetPermission(
		c.Request.Context(),
		presentationID,
		requesterID.(uint64),
		req.UserID,
		req.PermissionLevel,
	)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"collaborator": collaborator})
}

func (h *Handler) RemoveCollaborator(c *gin.Context) {
	presentationID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(err)
		return
	}

	targetUserID, err := strconv.ParseUint(c.Param("userId"), 10, 64)
	if err != nil {
		c.Error(err)
		return
	}

	requesterID, _ := c.Get("user_id")

	err = h.service.RemoveCollaborator(
		c.Request.Context(),
		presentationID,
		requesterID.(uint64),
		targetUserID,
	)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
