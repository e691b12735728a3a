package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	wsReadTimeout  = 60 * time.Second
	wsPingInterval = 30 * time.Second
	wsWriteTimeout = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketMessage is one reply on /ws/extract.
type WebSocketMessage struct {
	Type string `json:"type"` // "extraction" or "error"
	*ExtractResponse
	Kind  string `json:"kind,omitempty"`
	Error string `json:"error,omitempty"`
}

// WebSocketConnWriter is an interface for writing WebSocket messages.
type WebSocketConnWriter interface {
	WriteMessage(messageType int, data []byte) error
}

// extractWebSocketHandler streams extractions: every text message is a token
// document, every reply an extraction or an error. The connection's query
// string (?format=, ?verify=) applies to all of its messages.
func (s *Server) extractWebSocketHandler(w http.ResponseWriter, r *http.Request) {
	req, apiErr := parseExtractRequest(r)
	if apiErr != nil {
		s.writeErrorResponse(w, r, apiErr)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection to WebSocket", "error", err)
		return
	}
	defer func() { _ = conn.Close() }()

	websocketConnections.Inc()
	defer websocketConnections.Dec()

	s.logger.Info("WebSocket connection established", "remote_addr", r.RemoteAddr, "request_id", requestID(r))

	_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	conn.SetReadLimit(s.maxBodyBytes)
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	})

	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(wsPingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteTimeout)); err != nil {
					return
				}
			}
		}
	}()

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("WebSocket read failed", "error", err)
			}
			return
		}
		websocketMessagesTotal.WithLabelValues("received").Inc()
		_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))

		if messageType != websocket.TextMessage {
			s.sendWebSocketMessage(conn, WebSocketMessage{Type: "error", Kind: kindInvalidRequest, Error: "only text messages are accepted"})
			continue
		}

		id := uuid.New().String()
		resp, apiErr := s.process(r.Context(), id, data, req, "websocket")
		if apiErr != nil {
			s.sendWebSocketMessage(conn, WebSocketMessage{
				Type:            "error",
				ExtractResponse: &ExtractResponse{RequestID: id},
				Kind:            apiErr.kind,
				Error:           apiErr.msg,
			})
			continue
		}
		s.sendWebSocketMessage(conn, WebSocketMessage{Type: "extraction", ExtractResponse: resp})
	}
}

// sendWebSocketMessage sends a reply over WebSocket.
func (s *Server) sendWebSocketMessage(conn WebSocketConnWriter, msg WebSocketMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		s.logger.Error("Failed to marshal WebSocket message", "error", err)
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		s.logger.Error("Failed to send WebSocket message", "error", err)
		return
	}
	websocketMessagesTotal.WithLabelValues("sent").Inc()
}
