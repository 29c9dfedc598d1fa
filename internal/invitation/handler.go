package invitation

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

type InviteRequest struct {
	InviteeEmail    string  `json:"invitee_email" binding:"required,email"`
	PermissionLevel string  `json:"permission_level" binding:"required,oneof=view edit admin"`
	Message         *string `json:"message"`
}

func (h *Handler) Invite(c *gin.Context) {
	presentationID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(err)
		return
	}

	var req InviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	userID, _ := c.Get("user_id")

	result, err := h.service.Invite(c.Request.Context(), presentationID, userID.(uint64), InviteInput{
		InviteeEmail:    req.InviteeEmail,
		PermissionLevel: req.PermissionLevel,
		Message:         req.Message,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

type TokenRequest struct {
	Token string `json:"token" binding:"required"`
}

func (h *Handler) Accept(c *gin.Context) {
	var req TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	userID, _ := c.Get("user_id")

	result, err := h.service.Accept(c.Request.Context(), req.Token, userID.(uint64))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) Decline(c *gin.Context) {
	var req TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	userID, _ := c.Get("user_id")

	if err := h.service.Decline(c.Request.Context(), req.Token, userID.(uint64)); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "invitation declined"})
}

func (h *Handler) Cancel(c *gin.Context) {
	invitationID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(err)
		return
	}

	userID, _ := c.Get("user_id")

	if err := h.service.Cancel(c.Request.Context(), invitationID, userID.(uint64)); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) ListPending(c *gin.Context) {
	presentationID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(err)
		return
	}

	userID, _ := c.Get("user_id")

	invitations, err := h.service.ListPending(c.Request.Context(), presentationID, userID.(uint64))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"invitations": invitations})
}
