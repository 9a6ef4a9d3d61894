package events

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	bus       *Bus
	keepAlive time.Duration
}

func NewHandler(bus *Bus) *Handler {
	return &Handler{bus: bus, keepAlive: 15 * time.Second}
}

func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/events", h.Stream)
}

// Stream sends change events as Server-Sent Events until the client leaves.
func (h *Handler) Stream(c *gin.Context) {
	ctx := c.Request.Context()

	sub, err := h.bus.Subscribe(ctx)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "event stream unavailable"})
		return
	}
	defer sub.Close()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "streaming unsupported"})
		return
	}

	initialData, _ := json.Marshal(gin.H{"connected": true, "at": time.Now().UTC()})
	fmt.Fprintf(c.Writer, "event: initial\ndata: %s\n\n", initialData)
	flusher.Flush()

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			fmt.Fprint(c.Writer, ": keep-alive\n\n")
			flusher.Flush()

		case e, open := <-sub.Events():
			if !open {
				return
			}
			data, err := json.Marshal(e)
			if err != nil {
				continue
			}
			fmt.Fprintf(c.Writer, "event: change\ndata: %s\n\n", data)
			flusher.Flush()
		}
	}
}
