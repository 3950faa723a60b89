package web

import (
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/websocket/v2"

	"github.com/JoeSaf/StorageBuckets/app"
	"github.com/JoeSaf/StorageBuckets/scan"
)

const chunkSize = 10

type WSRequest struct {
	RequestID int    `json:"requestId"`
	Filter    string `json:"filter"`
}

type WSMessage struct {
	RequestID int        `json:"requestId"`
	Items     []scan.Row `json:"items"`
}

// handleWebSocket answers each tree request with the filtered rows in chunks
// of ten, followed by an empty chunk marking the end of the response.
func (s *Server) handleWebSocket(c *websocket.Conn) {
	defer c.Close()

	log.Debug("WebSocket connected")

	for {
		var req WSRequest
		if err := c.ReadJSON(&req); err != nil {
			log.Debugf("WebSocket read error: %v", err)
			return
		}
		log.Debugf("WebSocket tree request (ID: %d, filter: %q)", req.RequestID, req.Filter)

		s.app.Execute(app.Search{Term: req.Filter})
		rows := []scan.Row{}
		if tree := s.app.View().Tree; tree != nil {
			rows = tree.Rows()
		}

		for i := 0; i < len(rows); i += chunkSize {
			end := min(i+chunkSize, len(rows))
			msg := WSMessage{RequestID: req.RequestID, Items: rows[i:end]}
			if err := c.WriteJSON(msg); err != nil {
				log.Warnf("Error sending chunk: %v", err)
				return
			}
		}

		// Send empty array wrapped with requestId to indicate completion
		if err := c.WriteJSON(WSMessage{RequestID: req.RequestID, Items: []scan.Row{}}); err != nil {
			log.Warnf("Error sending completion signal: %v", err)
			return
		}
		wsRequests.Inc()
	}
}
