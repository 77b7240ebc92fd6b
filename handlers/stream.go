package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const streamWriteTimeout = 5 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// StreamErrorLogs pushes each new entry to a websocket client as JSON.
// Slow clients lose entries rather than blocking the logger.
func (h *Handler) StreamErrorLogs(c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Error log stream upgrade failed: %v", err)
		return
	}
	defer ws.Close()

	entries, cancel := h.services.Logs.Logger().Subscribe()
	defer cancel()

	// Reader goroutine only watches for the client going away.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return
		case <-c.Request.Context().Done():
			return
		case entry, open := <-entries:
			if !open {
				return
			}
			_ = ws.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
			if err := ws.WriteJSON(entry); err != nil {
				log.Printf("Error log stream write failed: %v", err)
				return
			}
		}
	}
}
