package realtime

import (
	"collaborative-presentation-server/internal/permission"
	"io"
	"strconv"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	bus        Bus
	authorizer permission.Authorizer
}

func NewHandler(bus Bus, authorizer permission.Authorizer) *Handler {
	return &Handler{bus: bus, authorizer: authorizer}
}

// Stream subscribes the caller to a presentation's event channel and
// forwards events as server-sent events until the client disconnects.
func (h *Handler) Stream(c *gin.Context) {
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

	events, err := h.bus.Subscribe(c.Request.Context(), presentationID)
	if err != nil {
		c.Error(err)
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		event, ok := <-events
		if !ok {
			return false
		}
		c.SSEvent(event.Type, event)
		return true
	})
}
