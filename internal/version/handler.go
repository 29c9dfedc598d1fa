package version

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

type CreateVersionRequest struct {
	BranchName    string `json:"branch_name"`
	Snapshot      []byte `json:"snapshot" binding:"required"`
	ChangeSummary string `json:"change_summary" binding:"max=500"`
}

func (h *Handler) Create(c *gin.Context) {
	presentationID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(err)
		return
	}

	var req CreateVersionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	userID, _ := c.Get("user_id")

	version, err := h.service.CreateVersion(
		c.Request.Context(),
		presentationID,
		req.BranchName,
		userID.(uint64),
		req.Snapshot,
		req.ChangeSummary,
	)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"version": version})
}

type CreateBranchRequest struct {
	ParentVersionID uint64 `json:"parent_version_id" binding:"required"`
	NewBranchName   string `json:"new_branch_name" binding:"required,min=1,max=100,branchname"`
}

func (h *Handler) CreateBranch(c *gin.Context) {
	presentationID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(err)
		return
	}

	var req CreateBranchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	userID, _ := c.Get("user_id")

	version, err := h.service.CreateBranch(
		c.Request.Context(),
		presentationID,
		req.ParentVersionID,
		req.NewBranchName,
		userID.(uint64),
	)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"version": version})
}

type RestoreRequest struct {
	BranchName string `json:"branch_name"`
}

func (h *Handler) Restore(c *gin.Context) {
	presentationID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(err)
		return
	}

	versionID, err := strconv.ParseUint(c.Param("versionId"), 10, 64)
	if err != nil {
		c.Error(err)
		return
	}

	var req RestoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	userID, _ := c.Get("user_id")

	version, err := h.service.Restore(
		c.Request.Context(),
		presentationID,
		req.BranchName,
		versionID,
		userID.(uint64),
	)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"version": version})
}

func (h *Handler) ListChain(c *gin.Context) {
	presentationID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(err)
		return
	}

	userID, _ := c.Get("user_id")

	versions, err := h.service.ListChain(
		c.Request.Context(),
		presentationID,
		userID.(uint64),
		c.Query("branch"),
	)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"versions": versions})
}

func (h *Handler) Current(c *gin.Context) {
	presentationID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(err)
		return
	}

	userID, _ := c.Get("user_id")

	version, err := h.service.CurrentVersion(
		c.Request.Context(),
		presentationID,
		userID.(uint64),
		c.Query("branch"),
	)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"version": version})
}

func (h *Handler) ListBranches(c *gin.Context) {
	presentationID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(err)
		return
	}

	userID, _ := c.Get("user_id")

	branches, err := h.service.ListBranches(c.Request.Context(), presentationID, userID.(uint64))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"branches": branches})
}
