package presence

import (
	"collaborative-presentation-server/internal/errors"
	"collaborative-presentation-server/internal/permission"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	tracker    *Tracker
	authorizer permission.Authorizer
}

func NewHandler(tracker *Tracker, authorizer permission.Authorizer) *Handler {
	return &Handler{tracker: tracker, authorizer: authorizer}
}

// Heartbeat accepts a presence patch and returns immediately; the write
// happens off the request path.
func (h *Handler) Heartbeat(c *gin.Context) {
	presentationID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(err)
		return
	}

	userID, _ := c.Get("user_id")

	if _, err := h.authorizer.Authorize(c.Request.Context(), presentationID, userID.(uint64), permission.LevelView); err != nil {
		c.Error(err)
		return
	}

	var patch HeartbeatPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	h.tracker.Heartbeat(presentationID, userID.(uint64), patch)
	c.Status(http.StatusAccepted)
}

func (h *Handler) MarkOffline(c *gin.Context) {
	presentationID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(err)
		return
	}

	userID, _ := c.Get("user_id")

	if err := h.tracker.MarkOffline(c.Request.Context(), presentationID, userID.(uint64)); err != nil {
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) ListOnline(c *gin.Context) {
	presentationID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(err)
		return
	}

	userID, _ := c.Get("user_id")

	if _, err := h.authorizer.Authorize(c.Request.Context(), presentationID, userID.(uint64), permission.LevelView); err != nil {
		c.Error(err)
		return
	}

	records, err := h.tracker.ListOnline(c.Request.Context(), presentationID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"online": records})
}
